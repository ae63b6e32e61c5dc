package service

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
)

// Generator produces one question variant from a page's verse set, or nil
// when the variant's precondition is not met for this page. Generators must
// not mutate the verse slice.
type Generator func(verses []entities.Verse, qari string, rng *rand.Rand) *entities.Question

// generatorRegistry maps control-sheet question ids to their generators.
// To add a question type, write its generator above and register it here.
var generatorRegistry = map[entities.QuestionKind]Generator{
	entities.KindChooseNext:       generateChooseNext,
	entities.KindLocateVerse:      generateLocateVerse,
	entities.KindCompleteLastWord: generateCompleteLastWord,
}

// legacyKindAliases maps question ids from older control sheets to the
// current kinds, so an existing sheet keeps working without a rename.
var legacyKindAliases = map[string]entities.QuestionKind{
	"generateChooseNextQuestion":       entities.KindChooseNext,
	"generateLocateAyahQuestion":       entities.KindLocateVerse,
	"generateCompleteLastWordQuestion": entities.KindCompleteLastWord,
}

const (
	promptChooseNext       = "استمع واختر الآية التالية"
	promptLocateVerse      = "أين يقع موضع هذه الآية في الصفحة؟"
	promptCompleteLastWord = "اختر الكلمة الصحيحة لإكمال الآية التالية: "
)

// Page zones for the location question, in display order.
var pageZones = []string{"بداية الصفحة", "وسط الصفحة", "نهاية الصفحة"}

// minWordsForCompletion is the word count a verse must exceed to qualify for
// the last-word question.
const minWordsForCompletion = 3

// generateChooseNext asks which verse follows the one being played. Needs at
// least two verses; the correct answer is the text of the following verse,
// with up to two other verses as distractors.
func generateChooseNext(verses []entities.Verse, qari string, rng *rand.Rand) *entities.Question {
	if len(verses) < 2 {
		return nil
	}

	startIndex := rng.Intn(len(verses) - 1)
	questionVerse := verses[startIndex]
	nextVerse := verses[startIndex+1]

	// Distractors are other verses of the same page, excluding the prompt
	// verse and the answer.
	candidates := make([]string, 0, len(verses))
	for _, v := range verses {
		if v.Number != questionVerse.Number && v.Number != nextVerse.Number {
			candidates = append(candidates, v.Text)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}

	options, correctID := buildOptions(nextVerse.Text, candidates, rng)

	return &entities.Question{
		ID:              uuid.NewString(),
		Kind:            entities.KindChooseNext,
		Prompt:          promptChooseNext,
		AudioURL:        questionVerse.AudioURL(qari),
		Options:         options,
		CorrectOptionID: correctID,
		CorrectAnswer:   nextVerse.Text,
	}
}

// generateLocateVerse asks in which third of the page the played verse lies.
// The three zone options are fixed; only the correct one depends on the verse.
func generateLocateVerse(verses []entities.Verse, qari string, rng *rand.Rand) *entities.Question {
	if len(verses) == 0 {
		return nil
	}

	index := rng.Intn(len(verses))
	questionVerse := verses[index]
	correctZone := zoneForIndex(index, len(verses))

	options := make([]entities.Option, 0, len(pageZones))
	var correctID string
	for _, zone := range pageZones {
		opt := entities.Option{ID: uuid.NewString(), Text: zone}
		if zone == correctZone {
			correctID = opt.ID
		}
		options = append(options, opt)
	}

	return &entities.Question{
		ID:              uuid.NewString(),
		Kind:            entities.KindLocateVerse,
		Prompt:          promptLocateVerse,
		AudioURL:        questionVerse.AudioURL(qari),
		Options:         options,
		CorrectOptionID: correctID,
		CorrectAnswer:   correctZone,
	}
}

// generateCompleteLastWord hides the final word of a verse and offers final
// words of other verses as distractors. Needs at least four verses longer
// than three words.
func generateCompleteLastWord(verses []entities.Verse, qari string, rng *rand.Rand) *entities.Question {
	suitable := suitableForCompletion(verses)
	if len(suitable) < 4 {
		return nil
	}

	pick := rng.Intn(len(suitable))
	questionVerse := suitable[pick]
	words := questionVerse.Words()
	correctWord := words[len(words)-1]
	incomplete := strings.Join(words[:len(words)-1], " ")

	others := make([]entities.Verse, 0, len(suitable)-1)
	for _, v := range suitable {
		if v.Number != questionVerse.Number {
			others = append(others, v)
		}
	}
	rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})
	// Pages with a refrain repeat the closing word; no two options may
	// carry the same text, or only one of them would score.
	seen := map[string]struct{}{correctWord: {}}
	distractors := make([]string, 0, 3)
	for _, v := range others {
		if len(distractors) == 3 {
			break
		}
		w := v.Words()
		last := w[len(w)-1]
		if _, dup := seen[last]; dup {
			continue
		}
		seen[last] = struct{}{}
		distractors = append(distractors, last)
	}

	options, correctID := buildOptions(correctWord, distractors, rng)

	return &entities.Question{
		ID:              uuid.NewString(),
		Kind:            entities.KindCompleteLastWord,
		Prompt:          promptCompleteLastWord + incomplete + " (...)",
		AudioURL:        questionVerse.AudioURL(qari),
		Options:         options,
		CorrectOptionID: correctID,
		CorrectAnswer:   correctWord,
	}
}

// zoneForIndex divides the page's verse sequence into equal thirds by index.
func zoneForIndex(index, total int) string {
	switch {
	case index*3 < total:
		return pageZones[0]
	case index*3 < total*2:
		return pageZones[1]
	default:
		return pageZones[2]
	}
}

// suitableForCompletion filters verses long enough for the last-word question.
func suitableForCompletion(verses []entities.Verse) []entities.Verse {
	out := make([]entities.Verse, 0, len(verses))
	for _, v := range verses {
		if len(v.Words()) > minWordsForCompletion {
			out = append(out, v)
		}
	}
	return out
}

// buildOptions shuffles the correct answer in with the distractors and
// returns the options plus the id of the correct one.
func buildOptions(correct string, distractors []string, rng *rand.Rand) ([]entities.Option, string) {
	texts := make([]string, 0, 1+len(distractors))
	texts = append(texts, correct)
	texts = append(texts, distractors...)

	rng.Shuffle(len(texts), func(i, j int) {
		texts[i], texts[j] = texts[j], texts[i]
	})

	options := make([]entities.Option, 0, len(texts))
	var correctID string
	for _, text := range texts {
		opt := entities.Option{ID: uuid.NewString(), Text: text}
		if text == correct && correctID == "" {
			correctID = opt.ID
		}
		options = append(options, opt)
	}

	return options, correctID
}
