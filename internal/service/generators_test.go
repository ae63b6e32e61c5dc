package service

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func makeVerses(texts ...string) []entities.Verse {
	verses := make([]entities.Verse, 0, len(texts))
	for i, text := range texts {
		verses = append(verses, entities.Verse{Number: 100 + i, Text: text, NumberInSurah: i + 1})
	}
	return verses
}

func TestChooseNextOnTwoVerses(t *testing.T) {
	verses := makeVerses("الآية الأولى", "الآية الثانية")

	// With two verses the prompt is always the first verse and the answer
	// the second, whatever the random source does.
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		q := generateChooseNext(verses, "ar.alafasy", rng)
		if q == nil {
			t.Fatal("generator declined on a 2-verse page")
		}
		if q.CorrectAnswer != verses[1].Text {
			t.Fatalf("seed %d: expected second verse as answer, got %q", seed, q.CorrectAnswer)
		}
		if len(q.Options) != 1 {
			t.Fatalf("seed %d: expected 1 option (no distractors available), got %d", seed, len(q.Options))
		}
		if !q.IsCorrect(q.CorrectOptionID) {
			t.Fatalf("seed %d: correct option id does not verify", seed)
		}
	}
}

func TestChooseNextOptionCount(t *testing.T) {
	verses := makeVerses("أ", "ب", "ج", "د", "هـ", "و")

	q := generateChooseNext(verses, "ar.alafasy", testRand())
	if q == nil {
		t.Fatal("generator declined on a 6-verse page")
	}
	if len(q.Options) != 3 {
		t.Fatalf("expected 3 options (1 correct + 2 distractors), got %d", len(q.Options))
	}

	found := false
	for _, opt := range q.Options {
		if opt.ID == q.CorrectOptionID && opt.Text == q.CorrectAnswer {
			found = true
		}
	}
	if !found {
		t.Fatal("correct answer is not among the options")
	}
}

func TestChooseNextDeclinesOnSingleVerse(t *testing.T) {
	if q := generateChooseNext(makeVerses("واحدة"), "ar.alafasy", testRand()); q != nil {
		t.Fatalf("expected decline, got %+v", q)
	}
}

func TestZoneForIndexThirds(t *testing.T) {
	// A page of 9 verses splits 0-2 / 3-5 / 6-8.
	wants := map[int]string{
		0: pageZones[0], 1: pageZones[0], 2: pageZones[0],
		3: pageZones[1], 4: pageZones[1], 5: pageZones[1],
		6: pageZones[2], 7: pageZones[2], 8: pageZones[2],
	}
	for index, want := range wants {
		if got := zoneForIndex(index, 9); got != want {
			t.Errorf("index %d of 9: expected %q, got %q", index, want, got)
		}
	}
}

func TestLocateVerseOptions(t *testing.T) {
	verses := makeVerses("أ", "ب", "ج", "د", "هـ", "و", "ز", "ح", "ط")

	q := generateLocateVerse(verses, "ar.alafasy", testRand())
	if q == nil {
		t.Fatal("generator declined")
	}
	if len(q.Options) != 3 {
		t.Fatalf("expected the 3 fixed zone options, got %d", len(q.Options))
	}
	if q.CorrectOptionID == "" {
		t.Fatal("no correct option marked")
	}
}

func TestCompleteLastWordDeclinesWithoutLongVerses(t *testing.T) {
	// Only 3 verses exceed three words; the variant needs 4.
	verses := makeVerses(
		"كلمة واحدة فقط",
		"أربع كلمات في الآية",
		"خمس كلمات في هذه الآية",
		"ست كلمات في هذه الآية هنا",
		"قصيرة",
	)
	if q := generateCompleteLastWord(verses, "ar.alafasy", testRand()); q != nil {
		t.Fatalf("expected decline, got %+v", q)
	}
}

func TestCompleteLastWordHidesFinalWord(t *testing.T) {
	verses := make([]entities.Verse, 0, 5)
	for i := 0; i < 5; i++ {
		verses = append(verses, entities.Verse{
			Number: i + 1,
			Text:   fmt.Sprintf("كلمة أولى ثم كلمة أخيرة%d", i),
		})
	}

	q := generateCompleteLastWord(verses, "ar.alafasy", testRand())
	if q == nil {
		t.Fatal("generator declined on 5 qualifying verses")
	}
	if len(q.Options) != 4 {
		t.Fatalf("expected 4 options (1 correct + 3 distractors), got %d", len(q.Options))
	}

	var correctText string
	for _, opt := range q.Options {
		if opt.ID == q.CorrectOptionID {
			correctText = opt.Text
		}
	}
	if correctText != q.CorrectAnswer {
		t.Fatalf("correct option text %q differs from canonical answer %q", correctText, q.CorrectAnswer)
	}
}

func TestCompleteLastWordSkipsDuplicateClosingWords(t *testing.T) {
	// Surah ar-Rahman style page: three verses share the تكذبان refrain.
	// Identical option texts must never appear, or picking the "wrong"
	// copy of the right word would score as incorrect.
	verses := makeVerses(
		"فبأي آلاء ربكما تكذبان",
		"ومن دون ذلك جنتان ثم تكذبان",
		"فيهما من كل فاكهة زوجان تكذبان",
		"خلق الإنسان من صلصال كالفخار",
		"مرج البحرين يلتقيان بينهما برزخ",
	)

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		q := generateCompleteLastWord(verses, "ar.alafasy", rng)
		if q == nil {
			t.Fatalf("seed %d: generator declined on 5 qualifying verses", seed)
		}

		counts := make(map[string]int)
		for _, opt := range q.Options {
			counts[opt.Text]++
		}
		for text, n := range counts {
			if n > 1 {
				t.Fatalf("seed %d: option text %q appears %d times", seed, text, n)
			}
		}
		if counts[q.CorrectAnswer] != 1 {
			t.Fatalf("seed %d: correct answer %q must appear exactly once, options %+v", seed, q.CorrectAnswer, q.Options)
		}
	}
}

func TestGeneratorsDoNotMutateVerses(t *testing.T) {
	verses := makeVerses(
		"الأولى من بين خمس آيات",
		"الثانية من بين خمس آيات",
		"الثالثة من بين خمس آيات",
		"الرابعة من بين خمس آيات",
		"الخامسة من بين خمس آيات",
	)
	snapshot := append([]entities.Verse(nil), verses...)

	rng := testRand()
	for kind, gen := range generatorRegistry {
		gen(verses, "ar.alafasy", rng)
		for i := range verses {
			if verses[i] != snapshot[i] {
				t.Fatalf("generator %s mutated the verse slice at %d", kind, i)
			}
		}
	}
}
