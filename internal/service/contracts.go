package service

import (
	"context"

	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
)

// VerseSource fetches the verse set of a Quran page.
type VerseSource interface {
	FetchPage(ctx context.Context, page int) ([]entities.Verse, error)
}

// PlayerStore reads and writes player records in the remote store. Writes are
// at-most-once and best-effort; callers only log failures.
type PlayerStore interface {
	GetPlayer(ctx context.Context, userName string) (*entities.Player, error)
	UpdatePlayer(ctx context.Context, player *entities.Player) error
}

// ResultStore persists session result summaries, best-effort.
type ResultStore interface {
	SaveResult(ctx context.Context, result entities.QuizResult) error
}

// ConfigSource fetches game configuration from the control sheet. Fetched
// once per application load and treated as immutable afterwards.
type ConfigSource interface {
	GetQuestionsConfig(ctx context.Context) ([]entities.QuestionTypeConfig, error)
	GetProgressionConfig(ctx context.Context) (*entities.ProgressionConfig, error)
	GetGameRules(ctx context.Context) (*entities.GameRules, error)
}
