package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-page-quiz/internal/domain"
	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
)

const defaultQuestionsCount = 5

// generatorEntry pairs a question id with its resolved generator.
type generatorEntry struct {
	kind     entities.QuestionKind
	generate Generator
}

// QuizService drives the quiz session state machine: question selection,
// scoring, reward settlement and persistence of the results. The session
// struct is owned by the caller and mutated only through these methods, one
// caller goroutine per session.
type QuizService struct {
	cfgSource   ConfigSource
	playerStore PlayerStore
	resultStore ResultStore
	logger      *zap.Logger

	rng *rand.Rand
	now func() time.Time

	generators  []generatorEntry
	rules       *entities.GameRules
	progression *entities.ProgressionConfig
}

func NewQuizService(
	cfgSource ConfigSource,
	playerStore PlayerStore,
	resultStore ResultStore,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		cfgSource:   cfgSource,
		playerStore: playerStore,
		resultStore: resultStore,
		logger:      logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

// NewQuizServiceWithRand is test-only for a deterministic random source and clock.
func NewQuizServiceWithRand(
	cfgSource ConfigSource,
	playerStore PlayerStore,
	resultStore ResultStore,
	logger *zap.Logger,
	rng *rand.Rand,
	now func() time.Time,
) *QuizService {
	s := NewQuizService(cfgSource, playerStore, resultStore, logger)
	s.rng = rng
	s.now = now
	return s
}

// Init fetches the question-type list, game rules and progression tables from
// the control sheet. Rules and progression are required; a failed question
// config falls back to every registered generator. Returns
// domain.ErrNoActiveGenerators when the active set ends up empty.
func (s *QuizService) Init(ctx context.Context) error {
	rules, err := s.cfgSource.GetGameRules(ctx)
	if err != nil {
		return fmt.Errorf("init quiz: %w", err)
	}
	s.rules = rules

	progression, err := s.cfgSource.GetProgressionConfig(ctx)
	if err != nil {
		return fmt.Errorf("init quiz: %w", err)
	}
	s.progression = progression

	configured, err := s.cfgSource.GetQuestionsConfig(ctx)
	if err != nil {
		// Same fallback the control panel documents: enable everything local.
		s.logger.Warn("questions config unavailable, enabling all generators", zap.Error(err))
		for kind, gen := range generatorRegistry {
			s.generators = append(s.generators, generatorEntry{kind: kind, generate: gen})
		}
	} else {
		for _, q := range configured {
			kind := entities.QuestionKind(q.ID)
			if alias, ok := legacyKindAliases[q.ID]; ok {
				kind = alias
			}
			gen, ok := generatorRegistry[kind]
			if !ok {
				s.logger.Warn("unknown question id in config", zap.String("id", q.ID))
				continue
			}
			s.generators = append(s.generators, generatorEntry{kind: kind, generate: gen})
		}
	}

	if len(s.generators) == 0 {
		return domain.ErrNoActiveGenerators
	}

	s.logger.Info("quiz initialized",
		zap.Int("active_generators", len(s.generators)),
		zap.Ints("allowed_pages", s.rules.AllowedPages),
	)

	return nil
}

// Rules returns the fetched game rules.
func (s *QuizService) Rules() *entities.GameRules {
	return s.rules
}

// Progression returns the fetched leveling and store tables.
func (s *QuizService) Progression() *entities.ProgressionConfig {
	return s.progression
}

// StartSession creates a fresh session for the page with all counters zeroed.
func (s *QuizService) StartSession(player *entities.Player, verses []entities.Verse, page int, qari string) *entities.QuizSession {
	total := s.rules.QuestionsCount
	if total <= 0 {
		total = defaultQuestionsCount
	}

	session := entities.NewQuizSession(uuid.NewString(), player.Name, page, qari, verses, total, s.now())

	s.logger.Info("session started",
		zap.String("session_id", session.ID),
		zap.String("player", player.Name),
		zap.Int("page", page),
		zap.Int("total_questions", total),
	)

	return session
}

// NextQuestion performs the advance step. It returns (nil, true, nil) once
// all question slots are used; the caller then runs Settle. Otherwise it
// consumes a slot and makes a new question live: one generator is picked
// uniformly at random, a declining generator is retried with another pick
// without consuming a slot, and domain.ErrNoQuestionAvailable is returned
// only when every enabled generator declines for this page.
func (s *QuizService) NextQuestion(session *entities.QuizSession) (*entities.Question, bool, error) {
	if session.Status == entities.StatusFinished {
		return nil, false, domain.ErrSessionFinished
	}
	session.Status = entities.StatusAwaitingQuestion
	session.Current = nil

	if session.CurrentQuestionIndex >= session.TotalQuestions {
		return nil, true, nil
	}

	candidates := append([]generatorEntry(nil), s.generators...)
	for len(candidates) > 0 {
		pick := s.rng.Intn(len(candidates))
		question := candidates[pick].generate(session.Verses, session.Qari, s.rng)
		if question == nil {
			// The variant declined for this page; retry with another one
			// without consuming a question slot.
			candidates = append(candidates[:pick], candidates[pick+1:]...)
			continue
		}

		session.CurrentQuestionIndex++
		session.Current = question
		session.Status = entities.StatusQuestionLive
		return question, false, nil
	}

	return nil, false, domain.ErrNoQuestionAvailable
}

// Feedback is what the presentation layer shows after an answer, for the
// configured feedback duration.
type Feedback struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Score         int    `json:"score"`
}

// SubmitAnswer records the selected option for the live question and moves
// the session into the feedback state. Interaction stays disabled until the
// next advance.
func (s *QuizService) SubmitAnswer(session *entities.QuizSession, questionID, optionID string) (*Feedback, error) {
	if session.Status != entities.StatusQuestionLive || session.Current == nil || session.Current.ID != questionID {
		return nil, domain.ErrQuestionNotLive
	}

	question := session.Current
	correct := question.IsCorrect(optionID)

	if correct {
		session.RecordCorrect(s.rules.XPPerCorrectAnswer)
	} else {
		session.RecordWrong(question.Prompt, question.CorrectAnswer)
	}
	session.Status = entities.StatusFeedback

	return &Feedback{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Score:         session.Score,
	}, nil
}

// Settlement summarizes the end-of-session rewards.
type Settlement struct {
	XPEarned         int                 `json:"xpEarned"`
	PerfectRun       bool                `json:"perfectRun"`
	DailyGoalReached bool                `json:"dailyGoalReached"`
	LevelUp          *entities.LevelTier `json:"levelUp,omitempty"`
	Saved            bool                `json:"saved"`
}

// Settle runs the end-of-session settlement exactly once: perfect-run and
// daily-goal bonuses, experience application, level-up evaluation, then the
// best-effort persistence of the player record and the result summary. Save
// failures are logged and reflected in Saved only; they never block the
// result screen.
func (s *QuizService) Settle(ctx context.Context, session *entities.QuizSession, player *entities.Player) (*Settlement, error) {
	if session.Status == entities.StatusFinished {
		return nil, domain.ErrSessionFinished
	}
	if session.CurrentQuestionIndex < session.TotalQuestions {
		return nil, domain.ErrSessionNotSettleable
	}

	settlement := &Settlement{}

	// 1. Perfect run bonus.
	if session.Score == session.TotalQuestions {
		session.XPEarned += s.rules.XPBonusAllCorrect
		player.Diamonds += s.rules.DiamondsBonusAllCorrect
		settlement.PerfectRun = true
	}

	// 2. Daily goal bonus. The check is an equality, not a threshold, so it
	// fires on the goal-crossing session only.
	player.DailyQuizzes.Count++
	if player.DailyQuizzes.Count == s.rules.DailyQuizzesGoal {
		session.XPEarned += s.rules.DailyQuizzesBonusXP
		settlement.DailyGoalReached = true
	}

	// 3. Apply earned experience and evaluate the level-up crossing.
	oldXP := player.XP
	player.XP += session.XPEarned
	settlement.XPEarned = session.XPEarned

	if tier := CheckLevelUp(s.progression.Levels, oldXP, player.XP); tier != nil {
		player.Diamonds += tier.Reward
		settlement.LevelUp = tier
		s.logger.Info("level up",
			zap.String("player", player.Name),
			zap.Int("level", tier.Level),
			zap.String("title", tier.Title),
		)
	}

	now := s.now()
	session.Complete(now)

	// 4. Best-effort persistence, at most once each.
	settlement.Saved = true
	if err := s.playerStore.UpdatePlayer(ctx, player); err != nil {
		s.logger.Warn("player save failed", zap.String("player", player.Name), zap.Error(err))
		settlement.Saved = false
	} else {
		player.IsNew = false
	}
	if err := s.resultStore.SaveResult(ctx, entities.ResultFromSession(session, now)); err != nil {
		s.logger.Warn("result save failed", zap.String("session_id", session.ID), zap.Error(err))
		settlement.Saved = false
	}

	return settlement, nil
}
