package entities

import "time"

// QuizResult is the session summary persisted to the remote store for
// analytics. Derived from the session at settlement; the session itself is
// never saved.
type QuizResult struct {
	PlayerName     string    `json:"userName"`
	PageNumber     int       `json:"pageNumber"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	XPEarned       int       `json:"xpEarned"`
	Mistakes       int       `json:"mistakes"`
	FinishedAt     time.Time `json:"finishedAt"`
}

// ResultFromSession builds the persisted summary from a finished session.
func ResultFromSession(s *QuizSession, finishedAt time.Time) QuizResult {
	return QuizResult{
		PlayerName:     s.PlayerName,
		PageNumber:     s.PageNumber,
		Score:          s.Score,
		TotalQuestions: s.TotalQuestions,
		XPEarned:       s.XPEarned,
		Mistakes:       len(s.ErrorLog),
		FinishedAt:     finishedAt,
	}
}
