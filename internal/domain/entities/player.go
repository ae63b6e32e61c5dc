package entities

import "time"

// DailyQuizzes tracks how many quizzes the player finished today. It is
// managed locally only and never round-trips through the remote store.
type DailyQuizzes struct {
	Count          int    `json:"count"`
	LastPlayedDate string `json:"lastPlayedDate"` // YYYY-MM-DD
}

// Player is the long-lived player record. Name is the identity key in the
// remote store; XP and Diamonds are the persisted totals.
type Player struct {
	Name         string       `json:"name"`
	XP           int          `json:"xp"`
	Diamonds     int          `json:"diamonds"`
	IsNew        bool         `json:"-"` // true until the first successful save
	DailyQuizzes DailyQuizzes `json:"-"`
}

// NewPlayer creates a fresh record for a player the remote store has never
// seen before.
func NewPlayer(name string) *Player {
	return &Player{
		Name:  name,
		IsNew: true,
	}
}

// DateString formats a timestamp the way the daily counter stores dates.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// ResetDailyCounterIfStale zeroes the daily counter when the stored date
// differs from today. Called on every load, for new and returning players
// alike.
func (p *Player) ResetDailyCounterIfStale(today string) {
	if p.DailyQuizzes.LastPlayedDate != today {
		p.DailyQuizzes = DailyQuizzes{Count: 0, LastPlayedDate: today}
	}
}
