package ws

import (
	"encoding/json"

	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
	"github.com/aliskhannn/quran-page-quiz/internal/service"
)

// Screens mirror the mutually exclusive views of the browser client.
const (
	ScreenStart       = "start"
	ScreenQuiz        = "quiz"
	ScreenErrorReview = "errorReview"
	ScreenResult      = "result"
)

// inboundMessage is the envelope of every client intent.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client intents.
const (
	intentLoadPlayer = "loadPlayer"
	intentStart      = "start"
	intentAnswer     = "answer"
	intentShowResult = "showResult"
)

type loadPlayerPayload struct {
	Name string `json:"name"`
}

type startPayload struct {
	Page int    `json:"page"`
	Qari string `json:"qari"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

// outboundMessage is the envelope of every rendering instruction.
type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type screenPayload struct {
	Name string `json:"name"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type playerPayload struct {
	Name     string            `json:"name"`
	XP       int               `json:"xp"`
	Diamonds int               `json:"diamonds"`
	IsNew    bool              `json:"isNew"`
	Level    service.LevelInfo `json:"level"`
}

type questionView struct {
	ID       string                `json:"id"`
	Kind     entities.QuestionKind `json:"kind"`
	Prompt   string                `json:"prompt"`
	AudioURL string                `json:"audioUrl"`
	Options  []entities.Option     `json:"options"`
}

type questionPayload struct {
	Current  int          `json:"current"`
	Total    int          `json:"total"`
	Question questionView `json:"question"`
}

type progressPayload struct {
	Current  int  `json:"current"`
	Total    int  `json:"total"`
	Finished bool `json:"finished"`
}

type errorReviewPayload struct {
	Errors []entities.ErrorEntry `json:"errors"`
}

type resultPayload struct {
	Name       string              `json:"name"`
	Score      int                 `json:"score"`
	Total      int                 `json:"total"`
	XPEarned   int                 `json:"xpEarned"`
	LevelUp    *entities.LevelTier `json:"levelUp,omitempty"`
	Saved      bool                `json:"saved"`
	PlayerInfo playerPayload       `json:"player"`
}

// viewOf strips the answer key off a question before it leaves the server.
func viewOf(q *entities.Question) questionView {
	return questionView{
		ID:       q.ID,
		Kind:     q.Kind,
		Prompt:   q.Prompt,
		AudioURL: q.AudioURL,
		Options:  q.Options,
	}
}
