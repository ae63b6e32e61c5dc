package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-page-quiz/internal/domain"
	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
)

// fakeStore implements PlayerStore, ResultStore and ConfigSource against
// in-memory maps.
type fakeStore struct {
	players   map[string]entities.Player
	results   []entities.QuizResult
	questions []entities.QuestionTypeConfig
	rules     entities.GameRules
	levels    []entities.LevelTier

	failSaves bool
	saveCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players: make(map[string]entities.Player),
		questions: []entities.QuestionTypeConfig{
			{ID: string(entities.KindChooseNext)},
			{ID: string(entities.KindLocateVerse)},
			{ID: string(entities.KindCompleteLastWord)},
		},
		rules: entities.GameRules{
			AllowedPages:            []int{1, 2},
			QuestionsCount:          3,
			XPPerCorrectAnswer:      10,
			XPBonusAllCorrect:       20,
			DiamondsBonusAllCorrect: 2,
			DailyQuizzesGoal:        2,
			DailyQuizzesBonusXP:     30,
		},
		levels: []entities.LevelTier{
			{Level: 1, Title: "مبتدئ", MinXP: 0, Reward: 0},
			{Level: 2, Title: "حافظ", MinXP: 100, Reward: 7},
		},
	}
}

func (f *fakeStore) GetPlayer(_ context.Context, userName string) (*entities.Player, error) {
	p, ok := f.players[userName]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return &p, nil
}

func (f *fakeStore) UpdatePlayer(_ context.Context, player *entities.Player) error {
	f.saveCalls++
	if f.failSaves {
		return errors.New("sheet unreachable")
	}
	f.players[player.Name] = entities.Player{
		Name:     player.Name,
		XP:       player.XP,
		Diamonds: player.Diamonds,
	}
	return nil
}

func (f *fakeStore) SaveResult(_ context.Context, result entities.QuizResult) error {
	if f.failSaves {
		return errors.New("sheet unreachable")
	}
	f.results = append(f.results, result)
	return nil
}

func (f *fakeStore) GetQuestionsConfig(_ context.Context) ([]entities.QuestionTypeConfig, error) {
	return f.questions, nil
}

func (f *fakeStore) GetProgressionConfig(_ context.Context) (*entities.ProgressionConfig, error) {
	return &entities.ProgressionConfig{Levels: f.levels}, nil
}

func (f *fakeStore) GetGameRules(_ context.Context) (*entities.GameRules, error) {
	rules := f.rules
	return &rules, nil
}

func quizPage() []entities.Verse {
	return makeVerses(
		"الآية الأولى من صفحة الاختبار هنا",
		"الآية الثانية من صفحة الاختبار هنا",
		"الآية الثالثة من صفحة الاختبار هنا",
		"الآية الرابعة من صفحة الاختبار هنا",
		"الآية الخامسة من صفحة الاختبار هنا",
	)
}

func newTestQuiz(t *testing.T, store *fakeStore) *QuizService {
	t.Helper()

	svc := NewQuizServiceWithRand(
		store, store, store,
		zap.NewNop(),
		rand.New(rand.NewSource(7)),
		func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) },
	)
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return svc
}

// runSession plays a full session answering the first wrongAnswers questions
// incorrectly and the rest correctly.
func runSession(t *testing.T, svc *QuizService, session *entities.QuizSession, wrongAnswers int) {
	t.Helper()

	for i := 0; ; i++ {
		question, finished, err := svc.NextQuestion(session)
		if err != nil {
			t.Fatalf("next question %d: %v", i, err)
		}
		if finished {
			return
		}

		if session.Score > session.CurrentQuestionIndex {
			t.Fatalf("invariant broken: score %d > index %d", session.Score, session.CurrentQuestionIndex)
		}
		if session.CurrentQuestionIndex > session.TotalQuestions {
			t.Fatalf("invariant broken: index %d > total %d", session.CurrentQuestionIndex, session.TotalQuestions)
		}

		optionID := question.CorrectOptionID
		if i < wrongAnswers {
			for _, opt := range question.Options {
				if opt.ID != question.CorrectOptionID {
					optionID = opt.ID
					break
				}
			}
			// Single-option questions cannot be answered wrongly; the
			// location question always has three.
			if optionID == question.CorrectOptionID && len(question.Options) > 1 {
				t.Fatal("could not find a wrong option")
			}
		}

		feedback, err := svc.SubmitAnswer(session, question.ID, optionID)
		if err != nil {
			t.Fatalf("submit answer %d: %v", i, err)
		}
		if feedback.CorrectAnswer != question.CorrectAnswer {
			t.Fatalf("feedback carries %q, expected %q", feedback.CorrectAnswer, question.CorrectAnswer)
		}
	}
}

func TestSessionInvariantsAndErrorLog(t *testing.T) {
	store := newFakeStore()
	svc := newTestQuiz(t, store)
	player := entities.NewPlayer("Zainab")

	session := svc.StartSession(player, quizPage(), 1, "ar.alafasy")
	runSession(t, svc, session, 1)

	if session.Score < session.TotalQuestions-1 || session.Score > session.TotalQuestions {
		t.Fatalf("unexpected score %d of %d", session.Score, session.TotalQuestions)
	}
	if len(session.ErrorLog) != session.TotalQuestions-session.Score {
		t.Fatalf("error log has %d entries, expected %d", len(session.ErrorLog), session.TotalQuestions-session.Score)
	}
}

func TestSubmitAnswerRequiresLiveQuestion(t *testing.T) {
	store := newFakeStore()
	svc := newTestQuiz(t, store)
	session := svc.StartSession(entities.NewPlayer("x"), quizPage(), 1, "ar.alafasy")

	if _, err := svc.SubmitAnswer(session, "missing", "opt"); !errors.Is(err, domain.ErrQuestionNotLive) {
		t.Fatalf("expected ErrQuestionNotLive, got %v", err)
	}

	question, _, err := svc.NextQuestion(session)
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	if _, err := svc.SubmitAnswer(session, "other-id", question.CorrectOptionID); !errors.Is(err, domain.ErrQuestionNotLive) {
		t.Fatalf("expected ErrQuestionNotLive for a stale question id, got %v", err)
	}

	if _, err := svc.SubmitAnswer(session, question.ID, question.CorrectOptionID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Second registration of the same question must be rejected.
	if _, err := svc.SubmitAnswer(session, question.ID, question.CorrectOptionID); !errors.Is(err, domain.ErrQuestionNotLive) {
		t.Fatalf("expected ErrQuestionNotLive after feedback, got %v", err)
	}
}

func TestGeneratorDeclineFallsBackToAnotherVariant(t *testing.T) {
	store := newFakeStore()
	// Short verses: the last-word variant always declines on this page.
	store.questions = []entities.QuestionTypeConfig{
		{ID: string(entities.KindCompleteLastWord)},
		{ID: string(entities.KindLocateVerse)},
	}
	svc := newTestQuiz(t, store)
	session := svc.StartSession(entities.NewPlayer("x"), makeVerses("أ", "ب", "ج", "د"), 1, "ar.alafasy")

	for i := 0; i < session.TotalQuestions; i++ {
		question, finished, err := svc.NextQuestion(session)
		if err != nil || finished {
			t.Fatalf("question %d: finished=%v err=%v", i, finished, err)
		}
		if question.Kind != entities.KindLocateVerse {
			t.Fatalf("expected fallback to the location variant, got %s", question.Kind)
		}
		if _, err := svc.SubmitAnswer(session, question.ID, question.CorrectOptionID); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
}

func TestNextQuestionFailsWhenAllDecline(t *testing.T) {
	store := newFakeStore()
	store.questions = []entities.QuestionTypeConfig{{ID: string(entities.KindCompleteLastWord)}}
	svc := newTestQuiz(t, store)
	session := svc.StartSession(entities.NewPlayer("x"), makeVerses("أ", "ب", "ج", "د"), 1, "ar.alafasy")

	_, _, err := svc.NextQuestion(session)
	if !errors.Is(err, domain.ErrNoQuestionAvailable) {
		t.Fatalf("expected ErrNoQuestionAvailable, got %v", err)
	}
}

func TestInitAcceptsLegacyQuestionIDs(t *testing.T) {
	store := newFakeStore()
	store.questions = []entities.QuestionTypeConfig{
		{ID: "generateChooseNextQuestion"},
		{ID: "generateLocateAyahQuestion"},
		{ID: "generateCompleteLastWordQuestion"},
	}

	svc := NewQuizService(store, store, store, zap.NewNop())
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("init with legacy sheet ids: %v", err)
	}
	if len(svc.generators) != 3 {
		t.Fatalf("expected all 3 generators active, got %d", len(svc.generators))
	}
}

func TestInitFailsWithoutActiveGenerators(t *testing.T) {
	store := newFakeStore()
	store.questions = []entities.QuestionTypeConfig{{ID: "unknownVariant"}}

	svc := NewQuizService(store, store, store, zap.NewNop())
	if err := svc.Init(context.Background()); !errors.Is(err, domain.ErrNoActiveGenerators) {
		t.Fatalf("expected ErrNoActiveGenerators, got %v", err)
	}
}

func TestSettlePerfectRunAndLevelUp(t *testing.T) {
	store := newFakeStore()
	svc := newTestQuiz(t, store)
	player := entities.NewPlayer("Zainab")
	player.XP = 90

	session := svc.StartSession(player, quizPage(), 1, "ar.alafasy")
	runSession(t, svc, session, 0)

	settlement, err := svc.Settle(context.Background(), session, player)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	if !settlement.PerfectRun {
		t.Fatal("expected a perfect run")
	}
	// 3 correct * 10 + 20 perfect bonus = 50 XP.
	if settlement.XPEarned != 50 {
		t.Fatalf("expected 50 XP earned, got %d", settlement.XPEarned)
	}
	if player.XP != 140 {
		t.Fatalf("expected player XP 140, got %d", player.XP)
	}
	// 90 -> 140 crosses the 100 boundary.
	if settlement.LevelUp == nil || settlement.LevelUp.Level != 2 {
		t.Fatalf("expected level up to tier 2, got %+v", settlement.LevelUp)
	}
	// 2 perfect-run diamonds + 7 tier reward.
	if player.Diamonds != 9 {
		t.Fatalf("expected 9 diamonds, got %d", player.Diamonds)
	}
	if !settlement.Saved {
		t.Fatal("expected a successful save")
	}
	if len(store.results) != 1 || store.results[0].Score != 3 {
		t.Fatalf("expected one persisted result with score 3, got %+v", store.results)
	}
}

func TestSettleRunsOnce(t *testing.T) {
	store := newFakeStore()
	svc := newTestQuiz(t, store)
	player := entities.NewPlayer("x")

	session := svc.StartSession(player, quizPage(), 1, "ar.alafasy")

	if _, err := svc.Settle(context.Background(), session, player); !errors.Is(err, domain.ErrSessionNotSettleable) {
		t.Fatalf("expected ErrSessionNotSettleable before the last answer, got %v", err)
	}

	runSession(t, svc, session, 0)
	if _, err := svc.Settle(context.Background(), session, player); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if _, err := svc.Settle(context.Background(), session, player); !errors.Is(err, domain.ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished on the second settle, got %v", err)
	}
	if _, _, err := svc.NextQuestion(session); !errors.Is(err, domain.ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished after settlement, got %v", err)
	}
}

func TestDailyGoalBonusFiresOnEqualityOnly(t *testing.T) {
	store := newFakeStore()
	svc := newTestQuiz(t, store)
	player := entities.NewPlayer("x")

	// Goal is 2. Session 1: counter 0 -> 1, no bonus.
	session := svc.StartSession(player, quizPage(), 1, "ar.alafasy")
	runSession(t, svc, session, 0)
	settlement, err := svc.Settle(context.Background(), session, player)
	if err != nil {
		t.Fatalf("settle 1: %v", err)
	}
	if settlement.DailyGoalReached {
		t.Fatal("bonus fired before the goal")
	}

	// Session 2: counter 1 -> 2 == goal, bonus fires.
	session = svc.StartSession(player, quizPage(), 1, "ar.alafasy")
	runSession(t, svc, session, 0)
	settlement, err = svc.Settle(context.Background(), session, player)
	if err != nil {
		t.Fatalf("settle 2: %v", err)
	}
	if !settlement.DailyGoalReached {
		t.Fatal("bonus did not fire on the goal-crossing session")
	}
	if settlement.XPEarned != 50+30 {
		t.Fatalf("expected 80 XP with the daily bonus, got %d", settlement.XPEarned)
	}

	// Session 3: counter 2 -> 3 > goal, the equality check keeps it silent.
	session = svc.StartSession(player, quizPage(), 1, "ar.alafasy")
	runSession(t, svc, session, 0)
	settlement, err = svc.Settle(context.Background(), session, player)
	if err != nil {
		t.Fatalf("settle 3: %v", err)
	}
	if settlement.DailyGoalReached {
		t.Fatal("bonus fired again past the goal")
	}
}

func TestSettleSaveFailureIsNonBlocking(t *testing.T) {
	store := newFakeStore()
	svc := newTestQuiz(t, store)
	player := entities.NewPlayer("x")

	session := svc.StartSession(player, quizPage(), 1, "ar.alafasy")
	runSession(t, svc, session, 0)

	store.failSaves = true
	settlement, err := svc.Settle(context.Background(), session, player)
	if err != nil {
		t.Fatalf("settle must not fail on save errors, got %v", err)
	}
	if settlement.Saved {
		t.Fatal("expected Saved=false after a failed save")
	}
	if session.Status != entities.StatusFinished {
		t.Fatal("session must finish despite the failed save")
	}
}

func TestPlayerRoundTripThroughStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestQuiz(t, store)
	player := entities.NewPlayer("Zainab")

	session := svc.StartSession(player, quizPage(), 1, "ar.alafasy")
	runSession(t, svc, session, 0)
	if _, err := svc.Settle(context.Background(), session, player); err != nil {
		t.Fatalf("settle: %v", err)
	}

	reloaded, err := store.GetPlayer(context.Background(), "Zainab")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Name != player.Name || reloaded.XP != player.XP || reloaded.Diamonds != player.Diamonds {
		t.Fatalf("round trip mismatch: saved %+v, loaded %+v", player, reloaded)
	}
	// The daily counter is locally managed and not part of the record.
	if reloaded.DailyQuizzes.Count != 0 {
		t.Fatalf("daily counter leaked into the store: %+v", reloaded.DailyQuizzes)
	}
}
