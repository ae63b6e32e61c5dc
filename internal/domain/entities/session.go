package entities

import "time"

// SessionStatus represents the state of the quiz session state machine.
type SessionStatus string

const (
	StatusAwaitingQuestion SessionStatus = "awaiting_question" // between questions, next advance pending
	StatusQuestionLive     SessionStatus = "question_live"     // a question is outstanding
	StatusFeedback         SessionStatus = "feedback"          // answer recorded, feedback on display
	StatusFinished         SessionStatus = "finished"          // terminal, settlement has run
)

// ErrorEntry is one wrong answer recorded for the error-review screen.
type ErrorEntry struct {
	Prompt        string `json:"prompt"`
	CorrectAnswer string `json:"correctAnswer"`
}

// QuizSession holds the full mutable state of one quiz run. It is created
// fresh at session start and mutated only by the quiz service's transition
// methods; it is never persisted itself, only derived summaries are.
//
// Invariants: 0 <= CurrentQuestionIndex <= TotalQuestions and
// Score <= CurrentQuestionIndex; exactly one question is live whenever the
// status is StatusQuestionLive.
type QuizSession struct {
	ID         string
	PlayerName string
	PageNumber int
	Qari       string

	Verses         []Verse
	TotalQuestions int

	CurrentQuestionIndex int
	Score                int
	XPEarned             int
	ErrorLog             []ErrorEntry
	Status               SessionStatus

	// Current is the single outstanding question, nil outside
	// StatusQuestionLive and StatusFeedback.
	Current *Question

	StartedAt   time.Time
	CompletedAt *time.Time
}

// NewQuizSession creates a session with all counters zeroed.
func NewQuizSession(id, playerName string, pageNumber int, qari string, verses []Verse, totalQuestions int, startedAt time.Time) *QuizSession {
	return &QuizSession{
		ID:             id,
		PlayerName:     playerName,
		PageNumber:     pageNumber,
		Qari:           qari,
		Verses:         verses,
		TotalQuestions: totalQuestions,
		Status:         StatusAwaitingQuestion,
		StartedAt:      startedAt,
	}
}

// RecordCorrect applies a correct answer to the session counters.
func (s *QuizSession) RecordCorrect(xpPerCorrect int) {
	s.Score++
	s.XPEarned += xpPerCorrect
}

// RecordWrong appends the missed question to the error log.
func (s *QuizSession) RecordWrong(prompt, correctAnswer string) {
	s.ErrorLog = append(s.ErrorLog, ErrorEntry{Prompt: prompt, CorrectAnswer: correctAnswer})
}

// Complete marks the session as finished and stamps the completion time.
func (s *QuizSession) Complete(now time.Time) {
	s.Status = StatusFinished
	s.Current = nil
	s.CompletedAt = &now
}
