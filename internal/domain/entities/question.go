package entities

// QuestionKind identifies a question generator variant. The values must match
// the question ids configured in the control sheet; ids from older sheets are
// translated to these kinds at startup.
type QuestionKind string

const (
	KindChooseNext       QuestionKind = "chooseNext"       // identify the following verse
	KindLocateVerse      QuestionKind = "locateVerse"      // classify the verse position on the page
	KindCompleteLastWord QuestionKind = "completeLastWord" // complete the final word of a verse
)

// Option is a single selectable answer of a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a transient value produced by a question generator. It is never
// persisted; exactly one question is live at a time during a session.
type Question struct {
	ID              string       `json:"id"`
	Kind            QuestionKind `json:"kind"`
	Prompt          string       `json:"prompt"`
	AudioURL        string       `json:"audioUrl"`
	Options         []Option     `json:"options"`
	CorrectOptionID string       `json:"-"` // never sent to clients
	CorrectAnswer   string       `json:"-"` // canonical correct-answer text
}

// IsCorrect reports whether the selected option is the correct one.
func (q *Question) IsCorrect(optionID string) bool {
	return optionID == q.CorrectOptionID
}
