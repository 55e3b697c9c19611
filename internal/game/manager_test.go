package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"khamboran/internal/content"
	"khamboran/internal/models"
	"khamboran/internal/scoring"
	"khamboran/internal/store"
)

type fixedRanker struct {
	position int
	total    int
}

func (r fixedRanker) Ranking(ctx context.Context, score float64) (int, int, error) {
	return r.position, r.total, nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T) (*Manager, *testClock, *store.SessionStore, *store.ProfileStore) {
	t.Helper()
	dual := store.NewDualStore(store.NewMemoryBackend("primary"), store.NewMemoryBackend("local"))
	sessions := store.NewSessionStore(dual)
	profiles := store.NewProfileStore(dual)
	clock := &testClock{now: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}

	profile := &models.LearnerProfile{ID: "s42", Name: "สมชาย ใจดี", Grade: "ม.2", Room: "1"}
	m, err := NewManager(context.Background(), profile, Options{
		Sessions:             sessions,
		Profiles:             profiles,
		Ranker:               fixedRanker{position: 1, total: 1},
		Words:                content.VocabWords(),
		Questions:            content.QuizQuestions(),
		Scoring:              scoring.DefaultConfig(),
		ImaginationRubric:    content.ImaginationRubric(),
		InterpretationRubric: content.InterpretationRubric(),
		Now:                  clock.Now,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(m.Flush)
	return m, clock, sessions, profiles
}

func answerKey() []int {
	questions := content.QuizQuestions()
	key := make([]int, len(questions))
	for i, q := range questions {
		key[i] = q.CorrectIndex
	}
	return key
}

func TestSubmitWordAnswerCorrect(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	result, err := m.SubmitWordAnswer("ม้วย", "ตาย", "royal")
	if err != nil {
		t.Fatalf("SubmitWordAnswer: %v", err)
	}
	if !result.Correct || result.AlreadyAnswered {
		t.Errorf("expected a fresh correct answer, got %+v", result)
	}
	if result.Points != 10 || result.VocabularyScore != 10 {
		t.Errorf("expected 10 points, got %+v", result)
	}
	if result.FoundWords != 1 || result.TotalWords != 12 {
		t.Errorf("progress = %d/%d, want 1/12", result.FoundWords, result.TotalWords)
	}
}

func TestSubmitWordAnswerIdempotent(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if _, err := m.SubmitWordAnswer("ม้วย", "ตาย", "royal"); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	result, err := m.SubmitWordAnswer("ม้วย", "สิ้นชีวิต", "royal")
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if !result.Correct || !result.AlreadyAnswered {
		t.Errorf("resubmission should report already answered, got %+v", result)
	}
	if result.VocabularyScore != 10 {
		t.Errorf("resubmission must not rescore: vocabulary = %d, want 10", result.VocabularyScore)
	}
}

func TestSubmitWordAnswerWrongThenCorrect(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	wrong, err := m.SubmitWordAnswer("ม้วย", "เดินทาง", "royal")
	if err != nil {
		t.Fatalf("wrong submit: %v", err)
	}
	if wrong.Correct || wrong.Attempts != 1 || wrong.ShowHint {
		t.Errorf("first failure: %+v", wrong)
	}

	wrong2, err := m.SubmitWordAnswer("ม้วย", "ท้องฟ้า", "royal")
	if err != nil {
		t.Fatalf("second wrong submit: %v", err)
	}
	if wrong2.Attempts != 2 || !wrong2.ShowHint || wrong2.Hint == "" {
		t.Errorf("hint should unlock on the second failure: %+v", wrong2)
	}

	correct, err := m.SubmitWordAnswer("ม้วย", "ตาย", "royal")
	if err != nil {
		t.Fatalf("correct submit: %v", err)
	}
	if !correct.Correct {
		t.Fatalf("expected correct, got %+v", correct)
	}

	// the word must not sit in both answered and incorrect sets
	session := m.Session()
	if _, ok := session.TranslatedWords["ม้วย"]; !ok {
		t.Error("word missing from translated set")
	}
	if _, ok := session.IncorrectWords["ม้วย"]; ok {
		t.Error("word still present in incorrect set after a correct answer")
	}
}

func TestSubmitWordAnswerValidation(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if _, err := m.SubmitWordAnswer("ม้วย", "ต", "royal"); err == nil {
		t.Error("single-rune translation should be rejected")
	}
	if _, err := m.SubmitWordAnswer("ม้วย", "ตาย", ""); err == nil {
		t.Error("missing reference source should be rejected")
	}
	if _, err := m.SubmitWordAnswer("ไม่มีคำนี้", "ตาย", "royal"); !errors.Is(err, ErrUnknownWord) {
		t.Errorf("unknown word error = %v, want ErrUnknownWord", err)
	}
}

func TestStepNavigation(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if step := m.GoTo(models.StepVocabulary); step != models.StepVocabulary {
		t.Fatalf("GoTo = %v", step)
	}
	if step := m.GoTo(models.StepWriting); step != models.StepWriting {
		t.Fatalf("GoTo = %v", step)
	}
	if step := m.GoBack(); step != models.StepVocabulary {
		t.Errorf("GoBack = %v, want vocabulary", step)
	}
	if step := m.GoBack(); step != models.StepHistory {
		t.Errorf("GoBack = %v, want history", step)
	}
	// empty stack falls back one ordinal, never below the first step
	if step := m.GoBack(); step != models.StepHistory {
		t.Errorf("GoBack at the first step = %v", step)
	}
}

func TestGoBackRestoresMatchingBranch(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	m.GoTo(models.StepVocabulary)
	m.GoTo(models.StepMatching)
	m.GoTo(models.StepWriting)

	if step := m.GoBack(); step != models.StepMatching {
		t.Errorf("GoBack = %v, want the matching branch", step)
	}
	if step := m.GoBack(); step != models.StepVocabulary {
		t.Errorf("GoBack = %v, want vocabulary", step)
	}
}

func TestJumpToLockedStep(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if _, err := m.JumpTo(models.StepQuiz); !errors.Is(err, ErrStepLocked) {
		t.Errorf("jump beyond max reached = %v, want ErrStepLocked", err)
	}
	if _, err := m.JumpTo(models.StepHistory); !errors.Is(err, ErrSameStep) {
		t.Errorf("jump to the current step = %v, want ErrSameStep", err)
	}

	m.GoTo(models.StepVocabulary)
	m.GoTo(models.StepWriting)
	step, err := m.JumpTo(models.StepVocabulary)
	if err != nil || step != models.StepVocabulary {
		t.Errorf("jump back to a reached step: step=%v err=%v", step, err)
	}

	// the matching branch normalizes onto step 2 for gating
	step, err = m.JumpTo(models.StepMatching)
	if err != nil || step != models.StepMatching {
		t.Errorf("jump to matching after reaching step 2: step=%v err=%v", step, err)
	}
}

func TestMatchingGate(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if m.AllWordsFound() {
		t.Fatal("AllWordsFound on a fresh session")
	}
	for _, w := range content.VocabWords() {
		if _, err := m.SubmitWordAnswer(w.Word, w.Meaning, "royal"); err != nil {
			t.Fatalf("submit %s: %v", w.Word, err)
		}
	}
	if !m.AllWordsFound() {
		t.Error("AllWordsFound after answering every word")
	}
}

func TestRecordMatchScoresOnce(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	first, err := m.RecordMatch("ม้วย", true)
	if err != nil {
		t.Fatalf("RecordMatch: %v", err)
	}
	if first.MatchingScore != 10 || first.PairsMatched != 1 {
		t.Errorf("first match: %+v", first)
	}

	again, err := m.RecordMatch("ม้วย", true)
	if err != nil {
		t.Fatalf("RecordMatch repeat: %v", err)
	}
	if !again.AlreadyPaired || again.MatchingScore != 10 {
		t.Errorf("repeated match must not rescore: %+v", again)
	}

	miss, err := m.RecordMatch("วารี", false)
	if err != nil {
		t.Fatalf("RecordMatch miss: %v", err)
	}
	if miss.Correct || miss.MatchingScore != 10 {
		t.Errorf("wrong match changed the score: %+v", miss)
	}

	if _, err := m.RecordMatch("ไม่มีคำนี้", true); !errors.Is(err, ErrUnknownWord) {
		t.Errorf("unknown word error = %v", err)
	}
}

func TestSubmitQuizAndRetry(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	key := answerKey()

	if _, err := m.SubmitWordAnswer("ม้วย", "ตาย", "royal"); err != nil {
		t.Fatalf("submit word: %v", err)
	}

	// two of five correct: below half, must retry
	answers := []int{key[0], key[1], -1, -1, -1}
	result := m.SubmitQuiz(answers)
	if result.Score != 2 || result.Total != 5 {
		t.Fatalf("score = %d/%d, want 2/5", result.Score, result.Total)
	}
	if result.CanFinish || !result.MustRetry {
		t.Errorf("2/5 should force a retry: %+v", result)
	}

	session := m.Session()
	m.RetryQuiz()
	retried := m.Session()
	for i, a := range retried.ComprehensionAnswers {
		if a != -1 {
			t.Errorf("answer %d not cleared: %d", i, a)
		}
	}
	if retried.ComprehensionScore != 0 {
		t.Errorf("comprehension score not cleared: %d", retried.ComprehensionScore)
	}
	// retry clears the quiz only; the wider session is intact
	if len(retried.TranslatedWords) != len(session.TranslatedWords) {
		t.Error("retry touched the vocabulary state")
	}

	// three of five correct: at half, may finish
	result = m.SubmitQuiz([]int{key[0], key[1], key[2], -1, -1})
	if result.Score != 3 || !result.CanFinish || result.MustRetry {
		t.Errorf("3/5 should allow finishing: %+v", result)
	}
}

func TestFinalize(t *testing.T) {
	m, clock, sessions, profiles := newTestManager(t)
	ctx := context.Background()

	if _, err := m.SubmitWordAnswer("ม้วย", "ตาย", "royal"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	key := answerKey()
	m.SubmitQuiz([]int{key[0], key[1], key[2], -1, -1})
	clock.Advance(10 * time.Minute)

	result, err := m.Finalize(ctx)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	// 10 vocab + 3*20 comprehension + 0 matching + 30 time bonus
	if result.TotalScore != 100 {
		t.Errorf("TotalScore = %d, want 100", result.TotalScore)
	}
	if result.TimeBonus != 30 {
		t.Errorf("TimeBonus = %d, want 30", result.TimeBonus)
	}
	if result.EXP != 100 || result.Level != 2 {
		t.Errorf("EXP/Level = %d/%d, want 100/2", result.EXP, result.Level)
	}
	if result.Rank != models.RankApprentice {
		t.Errorf("Rank = %q, want %q", result.Rank, models.RankApprentice)
	}
	if result.RankPosition != 1 || result.RankedPlayers != 1 {
		t.Errorf("ranking = %d/%d", result.RankPosition, result.RankedPlayers)
	}

	session := m.Session()
	if !session.Completed || session.CurrentStep != models.StepSummary {
		t.Errorf("session not finalized: completed=%v step=%v", session.Completed, session.CurrentStep)
	}

	m.Flush()
	stored, err := sessions.Get(ctx, session.SessionID)
	if err != nil || stored == nil {
		t.Fatalf("stored session: %v %v", stored, err)
	}
	if !stored.Completed || stored.TotalScore != 100 {
		t.Errorf("stored session mismatch: %+v", stored)
	}

	profile, err := profiles.Get(ctx, "s42")
	if err != nil || profile == nil {
		t.Fatalf("stored profile: %v %v", profile, err)
	}
	if profile.EXP != 100 || profile.TotalGamesPlayed != 1 || profile.BestScore != 100 {
		t.Errorf("stored profile mismatch: %+v", profile)
	}
}

func TestFinalizeRepeatDoesNotRecredit(t *testing.T) {
	m, clock, _, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.SubmitWordAnswer("ม้วย", "ตาย", "royal"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	key := answerKey()
	m.SubmitQuiz([]int{key[0], key[1], key[2], -1, -1})
	clock.Advance(10 * time.Minute)

	first, err := m.Finalize(ctx)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	// a double-clicked finish replays the summary, never the credit
	clock.Advance(5 * time.Minute)
	second, err := m.Finalize(ctx)
	if err != nil {
		t.Fatalf("repeat Finalize: %v", err)
	}

	if second.TotalScore != first.TotalScore || second.TimeBonus != first.TimeBonus {
		t.Errorf("repeat changed the score: first %+v, second %+v", first, second)
	}
	if second.EXP != first.EXP {
		t.Errorf("EXP = %d after repeat, want %d", second.EXP, first.EXP)
	}

	profile := m.Profile()
	if profile.TotalGamesPlayed != 1 {
		t.Errorf("TotalGamesPlayed = %d, want 1", profile.TotalGamesPlayed)
	}
	if profile.EXP != first.TotalScore {
		t.Errorf("EXP = %d, want %d", profile.EXP, first.TotalScore)
	}
}

func TestFinalizeRequiresPassingQuiz(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.SubmitWordAnswer("ม้วย", "ตาย", "royal"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// no quiz at all
	if _, err := m.Finalize(ctx); !errors.Is(err, ErrQuizRequired) {
		t.Errorf("finalize without quiz: err = %v, want ErrQuizRequired", err)
	}

	// below half
	key := answerKey()
	result := m.SubmitQuiz([]int{key[0], key[1], -1, -1, -1})
	if !result.MustRetry {
		t.Fatalf("2/5 should force a retry: %+v", result)
	}
	if _, err := m.Finalize(ctx); !errors.Is(err, ErrQuizRequired) {
		t.Errorf("finalize below half: err = %v, want ErrQuizRequired", err)
	}
	if session := m.Session(); session.Completed {
		t.Error("blocked finalize still completed the session")
	}
	if profile := m.Profile(); profile.TotalGamesPlayed != 0 || profile.EXP != 0 {
		t.Errorf("blocked finalize credited the profile: %+v", profile)
	}

	// at half the gate opens
	m.SubmitQuiz([]int{key[0], key[1], key[2], -1, -1})
	if _, err := m.Finalize(ctx); err != nil {
		t.Errorf("finalize at half: %v", err)
	}
}

func TestResumeUnfinishedSession(t *testing.T) {
	m, _, sessions, profiles := newTestManager(t)
	ctx := context.Background()

	if _, err := m.SubmitWordAnswer("ม้วย", "ตาย", "royal"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	m.GoTo(models.StepVocabulary)
	m.Flush()
	sessionID := m.Session().SessionID

	resumed, err := NewManager(ctx, m.Profile(), Options{
		Sessions:  sessions,
		Profiles:  profiles,
		Words:     content.VocabWords(),
		Questions: content.QuizQuestions(),
		Scoring:   scoring.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer resumed.Flush()

	session := resumed.Session()
	if session.SessionID != sessionID {
		t.Errorf("resumed session %s, want %s", session.SessionID, sessionID)
	}
	if _, ok := session.TranslatedWords["ม้วย"]; !ok {
		t.Error("resumed session lost the answered word")
	}
}

func TestResetStartsFreshSession(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.SubmitWordAnswer("ม้วย", "ตาย", "royal"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	oldID := m.Session().SessionID
	m.Flush()

	fresh := m.Reset(ctx)
	if fresh.SessionID == oldID {
		t.Error("reset kept the old session id")
	}
	if len(fresh.TranslatedWords) != 0 || fresh.CurrentStep != models.StepHistory {
		t.Errorf("reset session not fresh: %+v", fresh)
	}
}
