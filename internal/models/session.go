package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Step identifies a position in the game flow. Steps are ordered 1..6 with a
// single optional branch at 2.5 (the matching game, entered from step 2 once
// every vocabulary word has been found). The fractional value is preserved in
// persisted documents, matching the step numbers the front end displays.
type Step float64

const (
	StepHistory    Step = 1
	StepVocabulary Step = 2
	StepMatching   Step = 2.5
	StepWriting    Step = 3
	StepReveal     Step = 4
	StepQuiz       Step = 5
	StepSummary    Step = 6
)

// Normalized collapses the matching branch onto step 2 for progress gating.
func (s Step) Normalized() float64 {
	if s == StepMatching {
		return 2
	}
	return float64(s)
}

// Prev returns the step one ordinal earlier, used when the history stack is
// empty. The matching branch falls back to the vocabulary step.
func (s Step) Prev() Step {
	if s == StepMatching {
		return StepVocabulary
	}
	if s <= StepHistory {
		return StepHistory
	}
	return Step(float64(s) - 1)
}

func (s Step) String() string {
	if s == StepMatching {
		return "2.5"
	}
	return fmt.Sprintf("%g", float64(s))
}

// TranslatedWord records one correctly answered vocabulary word.
type TranslatedWord struct {
	Translation     string    `json:"translation"`
	ReferenceSource string    `json:"referenceSource"`
	Points          int       `json:"points"`
	CorrectMeaning  string    `json:"correctMeaning"`
	Timestamp       time.Time `json:"timestamp"`
}

// IncorrectWord records the most recent failed attempt for a word. A word is
// never present here and in TranslatedWords at the same time.
type IncorrectWord struct {
	Translation     string    `json:"translation"`
	ReferenceSource string    `json:"referenceSource"`
	Timestamp       time.Time `json:"timestamp"`
}

// GameSession is one learner's run through the game. It is the unit of
// persistence: the whole struct is saved as a single document on every
// scored action and step transition.
type GameSession struct {
	SessionID            string                    `json:"sessionKey"`
	LearnerID            string                    `json:"studentId"`
	LearnerName          string                    `json:"studentName,omitempty"`
	Grade                string                    `json:"grade,omitempty"`
	Room                 string                    `json:"room,omitempty"`
	Number               string                    `json:"number,omitempty"`
	CurrentStep          Step                      `json:"currentStep"`
	StepHistory          []Step                    `json:"stepHistory"`
	MaxStepReached       float64                   `json:"maxStepReached"`
	TranslatedWords      map[string]TranslatedWord `json:"translatedWords"`
	IncorrectWords       map[string]IncorrectWord  `json:"incorrectWords"`
	WordAttempts         map[string]int            `json:"wordAttempts"`
	MatchedPairs         []string                  `json:"matchedPairs"`
	MatchingScore        int                       `json:"matchingScore"`
	ComprehensionAnswers []int                     `json:"comprehensionAnswers"`
	ComprehensionScore   int                       `json:"comprehensionScore"`
	ImaginationText      string                    `json:"imaginationText"`
	InterpretationText   string                    `json:"interpretationText"`
	ImaginationScore     int                       `json:"imaginationScore"`
	InterpretationScore  int                       `json:"interpretationScore"`
	TotalScore           int                       `json:"totalScore"`
	StartTime            time.Time                 `json:"startTime"`
	Completed            bool                      `json:"completed"`
	LastUpdated          time.Time                 `json:"lastUpdated"`
}

// NewGameSession returns a fresh session for a learner with all scoring
// state at initial values.
func NewGameSession(sessionID string, profile *LearnerProfile, questionCount int, now time.Time) *GameSession {
	answers := make([]int, questionCount)
	for i := range answers {
		answers[i] = -1
	}
	return &GameSession{
		SessionID:            sessionID,
		LearnerID:            profile.ID,
		LearnerName:          profile.Name,
		Grade:                profile.Grade,
		Room:                 profile.Room,
		Number:               profile.Number,
		CurrentStep:          StepHistory,
		StepHistory:          []Step{},
		MaxStepReached:       1,
		TranslatedWords:      make(map[string]TranslatedWord),
		IncorrectWords:       make(map[string]IncorrectWord),
		WordAttempts:         make(map[string]int),
		MatchedPairs:         []string{},
		ComprehensionAnswers: answers,
		StartTime:            now,
		LastUpdated:          now,
	}
}

// Clone returns a deep copy, used to snapshot the session for background
// saves while the live copy keeps mutating.
func (g *GameSession) Clone() *GameSession {
	c := *g
	c.StepHistory = append([]Step(nil), g.StepHistory...)
	c.MatchedPairs = append([]string(nil), g.MatchedPairs...)
	c.ComprehensionAnswers = append([]int(nil), g.ComprehensionAnswers...)
	c.TranslatedWords = make(map[string]TranslatedWord, len(g.TranslatedWords))
	for k, v := range g.TranslatedWords {
		c.TranslatedWords[k] = v
	}
	c.IncorrectWords = make(map[string]IncorrectWord, len(g.IncorrectWords))
	for k, v := range g.IncorrectWords {
		c.IncorrectWords[k] = v
	}
	c.WordAttempts = make(map[string]int, len(g.WordAttempts))
	for k, v := range g.WordAttempts {
		c.WordAttempts[k] = v
	}
	return &c
}

// ToDocument converts the session to the flat map shape the stores persist.
func (g *GameSession) ToDocument() (map[string]any, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal session document: %w", err)
	}
	return doc, nil
}

// SessionFromDocument rebuilds a session from a stored document. Unknown
// fields are ignored so legacy-collection documents load too.
func SessionFromDocument(doc map[string]any) (*GameSession, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal session document: %w", err)
	}
	var g GameSession
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if g.TranslatedWords == nil {
		g.TranslatedWords = make(map[string]TranslatedWord)
	}
	if g.IncorrectWords == nil {
		g.IncorrectWords = make(map[string]IncorrectWord)
	}
	if g.WordAttempts == nil {
		g.WordAttempts = make(map[string]int)
	}
	return &g, nil
}

// AnswerRecord is one append-only audit document capturing everything the
// learner had answered at save time. Records are never overwritten.
type AnswerRecord struct {
	SessionID            string                    `json:"sessionKey"`
	LearnerID            string                    `json:"studentId"`
	TranslatedWords      map[string]TranslatedWord `json:"translatedWords"`
	IncorrectWords       map[string]IncorrectWord  `json:"incorrectWords"`
	ComprehensionAnswers []int                     `json:"comprehensionAnswers"`
	ImaginationText      string                    `json:"imaginationText"`
	InterpretationText   string                    `json:"interpretationText"`
	SavedAt              time.Time                 `json:"savedAt"`
}
