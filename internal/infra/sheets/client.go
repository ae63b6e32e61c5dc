// Package sheets talks to the spreadsheet-backed player and configuration
// service. The service exposes a single web-app endpoint dispatched by an
// action parameter; reads are GET requests, writes are POSTed JSON envelopes.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aliskhannn/quran-page-quiz/internal/domain"
	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
)

var ErrRequestFailed = errors.New("sheet service request failed")

const (
	resultSuccess  = "success"
	resultNotFound = "notFound"
)

// Client is an HTTP client of the spreadsheet web-app endpoint.
type Client struct {
	scriptURL string
	http      *http.Client
}

// NewClient creates a client for the given web-app endpoint.
func NewClient(scriptURL string, timeout time.Duration) *Client {
	return &Client{
		scriptURL: scriptURL,
		http:      &http.Client{Timeout: timeout},
	}
}

// envelope is the common response wrapper of the sheet service.
type envelope struct {
	Result    string                        `json:"result"`
	Message   string                        `json:"message"`
	Player    *playerRow                    `json:"player"`
	Questions []entities.QuestionTypeConfig `json:"questions"`
	Config    *entities.ProgressionConfig   `json:"config"`
	Rules     *gameRulesRow                 `json:"rules"`
}

// playerRow is the stored shape of a player record: only the identity key and
// the two persisted totals.
type playerRow struct {
	Name     string `json:"name"`
	XP       int    `json:"xp"`
	Diamonds int    `json:"diamonds"`
}

// gameRulesRow carries the rules as stored in the sheet; allowedPages is a
// comma-separated list of page numbers.
type gameRulesRow struct {
	AllowedPages            string `json:"allowedPages"`
	QuestionsCount          int    `json:"questionsCount"`
	XPPerCorrectAnswer      int    `json:"xpPerCorrectAnswer"`
	XPBonusAllCorrect       int    `json:"xpBonusAllCorrect"`
	DiamondsBonusAllCorrect int    `json:"diamondsBonusAllCorrect"`
	DailyQuizzesGoal        int    `json:"dailyQuizzesGoal"`
	DailyQuizzesBonusXP     int    `json:"dailyQuizzesBonusXp"`
}

// GetPlayer fetches a player record by name. Returns ErrPlayerNotFound when
// the store has no row for this name.
func (c *Client) GetPlayer(ctx context.Context, userName string) (*entities.Player, error) {
	params := url.Values{}
	params.Set("action", "getPlayer")
	params.Set("userName", userName)

	var env envelope
	if err := c.get(ctx, params, &env); err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}

	switch env.Result {
	case resultSuccess:
		if env.Player == nil {
			return nil, fmt.Errorf("get player: %w: empty player row", ErrRequestFailed)
		}
		return &entities.Player{
			Name:     env.Player.Name,
			XP:       env.Player.XP,
			Diamonds: env.Player.Diamonds,
		}, nil
	case resultNotFound:
		return nil, domain.ErrPlayerNotFound
	default:
		return nil, fmt.Errorf("get player: %w: %s", ErrRequestFailed, env.Message)
	}
}

// GetQuestionsConfig fetches the list of enabled question types.
func (c *Client) GetQuestionsConfig(ctx context.Context) ([]entities.QuestionTypeConfig, error) {
	params := url.Values{}
	params.Set("action", "getQuestionsConfig")

	var env envelope
	if err := c.get(ctx, params, &env); err != nil {
		return nil, fmt.Errorf("get questions config: %w", err)
	}
	if env.Result != resultSuccess {
		return nil, fmt.Errorf("get questions config: %w: %s", ErrRequestFailed, env.Message)
	}

	return env.Questions, nil
}

// GetProgressionConfig fetches the leveling and store tables.
func (c *Client) GetProgressionConfig(ctx context.Context) (*entities.ProgressionConfig, error) {
	params := url.Values{}
	params.Set("action", "getProgressionConfig")

	var env envelope
	if err := c.get(ctx, params, &env); err != nil {
		return nil, fmt.Errorf("get progression config: %w", err)
	}
	if env.Result != resultSuccess || env.Config == nil {
		return nil, fmt.Errorf("get progression config: %w: %s", ErrRequestFailed, env.Message)
	}

	return env.Config, nil
}

// GetGameRules fetches the rule parameters.
func (c *Client) GetGameRules(ctx context.Context) (*entities.GameRules, error) {
	params := url.Values{}
	params.Set("action", "getGameRules")

	var env envelope
	if err := c.get(ctx, params, &env); err != nil {
		return nil, fmt.Errorf("get game rules: %w", err)
	}
	if env.Result != resultSuccess || env.Rules == nil {
		return nil, fmt.Errorf("get game rules: %w: %s", ErrRequestFailed, env.Message)
	}

	return &entities.GameRules{
		AllowedPages:            parsePageList(env.Rules.AllowedPages),
		QuestionsCount:          env.Rules.QuestionsCount,
		XPPerCorrectAnswer:      env.Rules.XPPerCorrectAnswer,
		XPBonusAllCorrect:       env.Rules.XPBonusAllCorrect,
		DiamondsBonusAllCorrect: env.Rules.DiamondsBonusAllCorrect,
		DailyQuizzesGoal:        env.Rules.DailyQuizzesGoal,
		DailyQuizzesBonusXP:     env.Rules.DailyQuizzesBonusXP,
	}, nil
}

// UpdatePlayer writes the player's persisted fields. The write is
// at-most-once and best-effort: a returned error is for logging and status
// display only, never retried.
func (c *Client) UpdatePlayer(ctx context.Context, player *entities.Player) error {
	payload := playerRow{
		Name:     player.Name,
		XP:       player.XP,
		Diamonds: player.Diamonds,
	}
	if err := c.post(ctx, "updatePlayer", payload); err != nil {
		return fmt.Errorf("update player: %w", err)
	}

	return nil
}

// SaveResult writes a session result summary. Same best-effort contract as
// UpdatePlayer.
func (c *Client) SaveResult(ctx context.Context, result entities.QuizResult) error {
	if err := c.post(ctx, "saveResult", result); err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, params url.Values, out *envelope) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scriptURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrRequestFailed, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, action string, payload any) error {
	body, err := json.Marshal(struct {
		Action  string `json:"action"`
		Payload any    `json:"payload"`
	}{Action: action, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// The web-app endpoint answers writes without a response contract; only
	// the transport status is checked.
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s", ErrRequestFailed, resp.Status)
	}

	return nil
}

// parsePageList parses the comma-separated allowedPages cell, skipping
// anything that is not a number.
func parsePageList(s string) []int {
	parts := strings.Split(s, ",")
	pages := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		pages = append(pages, n)
	}
	return pages
}
