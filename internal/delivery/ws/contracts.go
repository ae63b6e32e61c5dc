package ws

import (
	"context"

	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
	"github.com/aliskhannn/quran-page-quiz/internal/service"
)

// PlayerService loads player records at the start of a connection.
type PlayerService interface {
	Load(ctx context.Context, userName string) (*entities.Player, error)
}

// VerseSource fetches the verse set of a page at quiz start.
type VerseSource interface {
	FetchPage(ctx context.Context, page int) ([]entities.Verse, error)
}

// QuizService drives the session state machine on behalf of the connection.
type QuizService interface {
	Rules() *entities.GameRules
	Progression() *entities.ProgressionConfig
	StartSession(player *entities.Player, verses []entities.Verse, page int, qari string) *entities.QuizSession
	NextQuestion(session *entities.QuizSession) (*entities.Question, bool, error)
	SubmitAnswer(session *entities.QuizSession, questionID, optionID string) (*service.Feedback, error)
	Settle(ctx context.Context, session *entities.QuizSession, player *entities.Player) (*service.Settlement, error)
}
