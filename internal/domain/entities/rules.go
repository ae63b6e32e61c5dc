package entities

// QuestionTypeConfig is one enabled question type row from the control sheet.
type QuestionTypeConfig struct {
	ID string `json:"id"` // must match a registered generator kind
}

// GameRules holds the rule parameters configured in the control sheet.
// Fetched once per application load and treated as immutable afterwards.
type GameRules struct {
	AllowedPages            []int `json:"allowedPages"`
	QuestionsCount          int   `json:"questionsCount"`
	XPPerCorrectAnswer      int   `json:"xpPerCorrectAnswer"`
	XPBonusAllCorrect       int   `json:"xpBonusAllCorrect"`
	DiamondsBonusAllCorrect int   `json:"diamondsBonusAllCorrect"`
	DailyQuizzesGoal        int   `json:"dailyQuizzesGoal"`
	DailyQuizzesBonusXP     int   `json:"dailyQuizzesBonusXp"`
}

// PageAllowed reports whether the page number is open for quizzes.
func (r *GameRules) PageAllowed(page int) bool {
	for _, p := range r.AllowedPages {
		if p == page {
			return true
		}
	}
	return false
}

// LevelTier is one row of the level table: the experience threshold at which
// the tier starts, its level number and title, and the diamond reward granted
// on reaching it.
type LevelTier struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	MinXP  int    `json:"minXp"`
	Reward int    `json:"reward"`
}

// StoreItem is one purchasable item from the control sheet's store table.
type StoreItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"` // in diamonds
}

// ProgressionConfig bundles the leveling and store tables.
type ProgressionConfig struct {
	Levels []LevelTier `json:"levels"`
	Store  []StoreItem `json:"store"`
}
