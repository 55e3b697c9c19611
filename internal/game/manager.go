// Package game owns the in-progress learner session: step position, history
// stack, per-word attempt records, quiz answers and free-text answers. All
// mutation funnels through the Manager so every transition and scored action
// triggers its auto-save.
package game

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"khamboran/internal/models"
	"khamboran/internal/scoring"
	"khamboran/internal/store"
	"khamboran/internal/validation"
)

// Navigation errors are reported to the UI, never fatal.
var (
	ErrStepLocked   = errors.New("step not yet reached")
	ErrUnknownWord  = errors.New("word is not in the vocabulary list")
	ErrSameStep     = errors.New("already on that step")
	ErrQuizRequired = errors.New("quiz must be answered before finishing")
)

// hintThreshold is the failed-attempt count after which the hint unlocks.
const hintThreshold = 2

// Ranker computes a 1-based position for a score among all known session
// totals. The aggregator implements it; the manager uses it at finalize so
// the learner and teacher views rank against the same pool.
type Ranker interface {
	Ranking(ctx context.Context, score float64) (position, total int, err error)
}

// Manager drives one learner's session through the step state machine.
// Persistence is optimistic and local-first: in-memory state is the source
// of truth and storage failures never block progress.
type Manager struct {
	mu sync.Mutex

	profile *models.LearnerProfile
	session *models.GameSession

	sessions *store.SessionStore
	profiles *store.ProfileStore
	ranker   Ranker

	words     []models.VocabWord
	questions []models.QuizQuestion
	cfg       scoring.Config

	imaginationRubric    scoring.Rubric
	interpretationRubric scoring.Rubric

	now         func() time.Time
	saveTimeout time.Duration
	saves       sync.WaitGroup
}

// Options configures a Manager.
type Options struct {
	Sessions             *store.SessionStore
	Profiles             *store.ProfileStore
	Ranker               Ranker
	Words                []models.VocabWord
	Questions            []models.QuizQuestion
	Scoring              scoring.Config
	ImaginationRubric    scoring.Rubric
	InterpretationRubric scoring.Rubric
	Now                  func() time.Time
	SaveTimeout          time.Duration
}

// NewManager builds a manager for a learner, resuming their most recent
// unfinished session when one exists and starting fresh otherwise.
func NewManager(ctx context.Context, profile *models.LearnerProfile, opts Options) (*Manager, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SaveTimeout == 0 {
		opts.SaveTimeout = 10 * time.Second
	}

	m := &Manager{
		profile:              profile,
		sessions:             opts.Sessions,
		profiles:             opts.Profiles,
		ranker:               opts.Ranker,
		words:                opts.Words,
		questions:            opts.Questions,
		cfg:                  opts.Scoring,
		imaginationRubric:    opts.ImaginationRubric,
		interpretationRubric: opts.InterpretationRubric,
		now:                  opts.Now,
		saveTimeout:          opts.SaveTimeout,
	}

	prior, err := opts.Sessions.Latest(ctx, profile.ID)
	if err != nil {
		log.Printf("Warning: load prior session for %s: %v", profile.ID, err)
	}
	if prior != nil && !prior.Completed {
		m.session = prior
	} else {
		m.session = models.NewGameSession(uuid.New().String(), profile, len(opts.Questions), opts.Now())
	}
	m.sessions.RememberLastStudent(ctx, profile.ID)
	return m, nil
}

// Session returns a snapshot of the current session state.
func (m *Manager) Session() *models.GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// Profile returns the learner profile the manager owns.
func (m *Manager) Profile() *models.LearnerProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *m.profile
	return &p
}

// UpdateProfile live-merges edited identity fields, used when a teacher
// edits the learner that owns this session.
func (m *Manager) UpdateProfile(p *models.LearnerProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.profile = *p
}

// GoTo pushes the current step onto the history stack and moves forward.
// The transition always succeeds locally; the save is fire-and-forget.
func (m *Manager) GoTo(step models.Step) models.Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	if step == m.session.CurrentStep {
		return step
	}
	m.session.StepHistory = append(m.session.StepHistory, m.session.CurrentStep)
	m.session.CurrentStep = step
	if n := step.Normalized(); n > m.session.MaxStepReached {
		m.session.MaxStepReached = n
	}
	m.touchAndSaveLocked()
	return step
}

// GoBack pops the history stack, restoring the exact previous step including
// the matching branch. With an empty stack it falls back one ordinal.
func (m *Manager) GoBack() models.Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.session.StepHistory); n > 0 {
		m.session.CurrentStep = m.session.StepHistory[n-1]
		m.session.StepHistory = m.session.StepHistory[:n-1]
	} else if m.session.CurrentStep > models.StepHistory {
		m.session.CurrentStep = m.session.CurrentStep.Prev()
	}
	m.touchAndSaveLocked()
	return m.session.CurrentStep
}

// JumpTo handles step-chip navigation: only steps already reached are
// allowed, re-selecting the current step is a no-op.
func (m *Manager) JumpTo(step models.Step) (models.Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if step == m.session.CurrentStep {
		return step, ErrSameStep
	}
	if step.Normalized() > m.session.MaxStepReached {
		return m.session.CurrentStep, ErrStepLocked
	}
	m.session.StepHistory = append(m.session.StepHistory, m.session.CurrentStep)
	m.session.CurrentStep = step
	m.touchAndSaveLocked()
	return step, nil
}

// WordResult reports the outcome of one translation submission.
type WordResult struct {
	Correct         bool   `json:"correct"`
	AlreadyAnswered bool   `json:"alreadyAnswered"`
	Points          int    `json:"points"`
	Attempts        int    `json:"attempts"`
	ShowHint        bool   `json:"showHint"`
	Hint            string `json:"hint,omitempty"`
	VocabularyScore int    `json:"vocabularyScore"`
	FoundWords      int    `json:"foundWords"`
	TotalWords      int    `json:"totalWords"`
}

// SubmitWordAnswer validates and scores one translation attempt. A correct
// answer moves the word into the translated set exactly once and clears any
// incorrect record; a wrong one bumps the attempt counter and unlocks the
// hint from the second failure on. Every outcome persists.
func (m *Manager) SubmitWordAnswer(word, translation, referenceSource string) (*WordResult, error) {
	if err := validation.ValidateTranslation(translation); err != nil {
		return nil, err
	}
	if err := validation.ValidateReferenceSource(referenceSource); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, found := findWord(m.words, word)
	if !found {
		return nil, ErrUnknownWord
	}

	result := &WordResult{TotalWords: len(m.words)}

	if _, done := m.session.TranslatedWords[word]; done {
		// idempotent: resubmitting a solved word never rescores it
		result.Correct = true
		result.AlreadyAnswered = true
		result.Points = entry.Points
	} else if scoring.MeaningMatches(translation, entry.Meaning) {
		m.session.TranslatedWords[word] = models.TranslatedWord{
			Translation:     translation,
			ReferenceSource: referenceSource,
			Points:          entry.Points,
			CorrectMeaning:  entry.Meaning,
			Timestamp:       m.now(),
		}
		delete(m.session.IncorrectWords, word)
		result.Correct = true
		result.Points = entry.Points
	} else {
		m.session.WordAttempts[word]++
		m.session.IncorrectWords[word] = models.IncorrectWord{
			Translation:     translation,
			ReferenceSource: referenceSource,
			Timestamp:       m.now(),
		}
		result.Attempts = m.session.WordAttempts[word]
		if result.Attempts >= hintThreshold {
			result.ShowHint = true
			result.Hint = entry.Hint
		}
	}

	result.VocabularyScore = scoring.VocabularyScore(m.session.TranslatedWords)
	result.FoundWords = len(m.session.TranslatedWords)
	m.touchAndSaveLocked()
	return result, nil
}

// AllWordsFound reports whether the matching branch may open.
func (m *Manager) AllWordsFound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.session.TranslatedWords) == len(m.words)
}

// MatchResult reports the outcome of one matching-pair submission.
type MatchResult struct {
	Correct       bool `json:"correct"`
	AlreadyPaired bool `json:"alreadyPaired"`
	MatchingScore int  `json:"matchingScore"`
	PairsMatched  int  `json:"pairsMatched"`
}

// RecordMatch scores one pairing in the matching game. Each word contributes
// its points once, no matter how many wrong attempts preceded the match.
func (m *Manager) RecordMatch(word string, correct bool) (*MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := findWord(m.words, word); !ok {
		return nil, ErrUnknownWord
	}
	result := &MatchResult{Correct: correct}
	if correct {
		for _, matched := range m.session.MatchedPairs {
			if matched == word {
				result.AlreadyPaired = true
				break
			}
		}
		if !result.AlreadyPaired {
			m.session.MatchedPairs = append(m.session.MatchedPairs, word)
			m.session.MatchingScore = scoring.MatchingScore(m.session.MatchedPairs, m.words)
		}
	}
	result.MatchingScore = m.session.MatchingScore
	result.PairsMatched = len(m.session.MatchedPairs)
	m.touchAndSaveLocked()
	return result, nil
}

func findWord(words []models.VocabWord, word string) (models.VocabWord, bool) {
	for _, w := range words {
		if w.Word == word {
			return w, true
		}
	}
	return models.VocabWord{}, false
}

// WritingResult carries the rubric scores for both free-text answers.
type WritingResult struct {
	ImaginationScore    int `json:"imaginationScore"`
	InterpretationScore int `json:"interpretationScore"`
}

// SubmitWriting grades the imagination and interpretation answers against
// their rubrics and stores both text and scores.
func (m *Manager) SubmitWriting(imagination, interpretation string) *WritingResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.ImaginationText = imagination
	m.session.InterpretationText = interpretation
	m.session.ImaginationScore = scoring.EvaluateWriting(imagination, m.imaginationRubric)
	m.session.InterpretationScore = scoring.EvaluateWriting(interpretation, m.interpretationRubric)
	m.touchAndSaveLocked()
	return &WritingResult{
		ImaginationScore:    m.session.ImaginationScore,
		InterpretationScore: m.session.InterpretationScore,
	}
}

// QuizResult reports a comprehension quiz submission. Below half the state
// offers a retry of the quiz only; at or above half the learner may finish.
type QuizResult struct {
	Score     int  `json:"score"`
	Total     int  `json:"total"`
	CanFinish bool `json:"canFinish"`
	MustRetry bool `json:"mustRetry"`
}

// SubmitQuiz scores the answers against the fixed key and stores both the
// raw answers and the scalar score.
func (m *Manager) SubmitQuiz(answers []int) *QuizResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]int, len(m.questions))
	for i := range stored {
		stored[i] = -1
		if i < len(answers) {
			stored[i] = answers[i]
		}
	}
	m.session.ComprehensionAnswers = stored
	m.session.ComprehensionScore = scoring.ComprehensionScore(stored, m.questions)
	m.touchAndSaveLocked()

	half := (len(m.questions) + 1) / 2
	passed := m.session.ComprehensionScore >= half
	return &QuizResult{
		Score:     m.session.ComprehensionScore,
		Total:     len(m.questions),
		CanFinish: passed,
		MustRetry: !passed,
	}
}

// RetryQuiz clears the quiz answers only, leaving the wider session intact.
func (m *Manager) RetryQuiz() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.session.ComprehensionAnswers {
		m.session.ComprehensionAnswers[i] = -1
	}
	m.session.ComprehensionScore = 0
	m.touchAndSaveLocked()
}

// FinalResult is the summary-step payload.
type FinalResult struct {
	VocabularyScore     int    `json:"vocabularyScore"`
	ComprehensionScore  int    `json:"comprehensionScore"`
	MatchingScore       int    `json:"matchingScore"`
	TimeBonus           int    `json:"timeBonus"`
	TotalScore          int    `json:"totalScore"`
	ImaginationScore    int    `json:"imaginationScore"`
	InterpretationScore int    `json:"interpretationScore"`
	EXP                 int    `json:"exp"`
	Level               int    `json:"level"`
	Rank                string `json:"rank"`
	BestScore           int    `json:"bestScore"`
	RankPosition        int    `json:"rankPosition"`
	RankedPlayers       int    `json:"rankedPlayers"`
}

// Finalize computes the session total, folds it into the learner profile,
// persists both, and ranks the learner among all known session totals.
// A quiz below half blocks finishing until the learner retries. Repeating
// the call on a completed session replays the recorded summary without
// crediting the profile again. Storage failures degrade to log lines; the
// summary still renders.
func (m *Manager) Finalize(ctx context.Context) (*FinalResult, error) {
	m.mu.Lock()

	half := (len(m.questions) + 1) / 2
	if !m.session.Completed && m.session.ComprehensionScore < half {
		m.mu.Unlock()
		return nil, ErrQuizRequired
	}

	now := m.now()
	vocab := scoring.VocabularyScore(m.session.TranslatedWords)
	comp := m.session.ComprehensionScore
	matching := m.session.MatchingScore
	alreadyDone := m.session.Completed

	var timeBonus, total int
	if alreadyDone {
		// finish was retried; the bonus is whatever the first pass locked in
		total = m.session.TotalScore
		timeBonus = total - vocab - comp*m.cfg.PerQuestionWeight - matching
	} else {
		timeBonus = m.cfg.TimeBonus(m.session.StartTime, now)
		total = m.cfg.Total(vocab, comp, matching, m.session.StartTime, now)

		m.session.TotalScore = total
		m.session.Completed = true
		if m.session.CurrentStep != models.StepSummary {
			m.session.StepHistory = append(m.session.StepHistory, m.session.CurrentStep)
			m.session.CurrentStep = models.StepSummary
			m.session.MaxStepReached = models.StepSummary.Normalized()
		}
		m.session.LastUpdated = now

		m.profile.AddGameResult(total, now)
	}

	result := &FinalResult{
		VocabularyScore:     vocab,
		ComprehensionScore:  comp,
		MatchingScore:       matching,
		TimeBonus:           timeBonus,
		TotalScore:          total,
		ImaginationScore:    m.session.ImaginationScore,
		InterpretationScore: m.session.InterpretationScore,
		EXP:                 m.profile.EXP,
		Level:               m.profile.Level(),
		Rank:                m.profile.Rank(),
		BestScore:           m.profile.BestScore,
	}
	snapshot := m.session.Clone()
	profile := *m.profile
	m.mu.Unlock()

	if !alreadyDone {
		if err := m.sessions.Save(ctx, snapshot); err != nil {
			log.Printf("Warning: save final session %s: %v", snapshot.SessionID, err)
		}
		if err := m.profiles.Save(ctx, &profile); err != nil {
			log.Printf("Warning: save profile %s: %v", profile.ID, err)
		}
	}
	if m.ranker != nil {
		if pos, count, err := m.ranker.Ranking(ctx, float64(total)); err == nil {
			result.RankPosition = pos
			result.RankedPlayers = count
		} else {
			log.Printf("Warning: compute ranking: %v", err)
		}
	}
	return result, nil
}

// Reset deletes the stored session best-effort and starts a fresh one with a
// new identifier. Profile-level cumulative fields are untouched.
func (m *Manager) Reset(ctx context.Context) *models.GameSession {
	m.mu.Lock()
	oldID := m.session.SessionID
	m.session = models.NewGameSession(uuid.New().String(), m.profile, len(m.questions), m.now())
	fresh := m.session.Clone()
	m.mu.Unlock()

	if err := m.sessions.Delete(ctx, oldID); err != nil {
		log.Printf("Warning: delete session %s: %v", oldID, err)
	}
	return fresh
}

// Terminate abandons the in-memory session without touching storage, used
// when a teacher deletes the learner mid-game.
func (m *Manager) Terminate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = models.NewGameSession(uuid.New().String(), m.profile, len(m.questions), m.now())
}

// Flush waits for in-flight background saves, used on shutdown and in tests.
func (m *Manager) Flush() {
	m.saves.Wait()
}

// touchAndSaveLocked stamps the session and fires the background save. The
// caller must hold m.mu. Failures are logged, never surfaced: the in-memory
// state stays authoritative for the active session.
func (m *Manager) touchAndSaveLocked() {
	m.session.LastUpdated = m.now()
	snapshot := m.session.Clone()
	m.saves.Add(1)
	go func() {
		defer m.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.saveTimeout)
		defer cancel()
		if err := m.sessions.Save(ctx, snapshot); err != nil {
			log.Printf("Warning: save session %s: %v", snapshot.SessionID, err)
		}
	}()
}
