package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"khamboran/internal/aggregate"
	"khamboran/internal/content"
	"khamboran/internal/game"
	"khamboran/internal/models"
	"khamboran/internal/scoring"
	"khamboran/internal/store"
	"khamboran/internal/validation"
)

// GameHandler exposes the learner-facing game API. All state lives in the
// per-learner game.Manager; handlers only decode, dispatch and encode.
type GameHandler struct {
	registry   *SessionRegistry
	sessions   *store.SessionStore
	profiles   *store.ProfileStore
	aggregator *aggregate.Aggregator
	scoringCfg scoring.Config
}

// NewGameHandler creates a new game handler
func NewGameHandler(registry *SessionRegistry, sessions *store.SessionStore, profiles *store.ProfileStore, aggregator *aggregate.Aggregator) *GameHandler {
	return &GameHandler{
		registry:   registry,
		sessions:   sessions,
		profiles:   profiles,
		aggregator: aggregator,
		scoringCfg: scoring.DefaultConfig(),
	}
}

type startRequest struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Grade     string `json:"grade"`
	Room      string `json:"room"`
	Number    string `json:"number"`
	Email     string `json:"email"`
	PhotoURL  string `json:"photoURL"`
}

// Start registers or loads the learner and starts or resumes their session.
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	if err := validation.ValidateStudentID(req.StudentID); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	ctx := r.Context()
	profile, err := h.profiles.Get(ctx, req.StudentID)
	if err != nil {
		log.Printf("Warning: load profile %s: %v", req.StudentID, err)
	}
	if profile == nil {
		if err := validation.ValidateName(req.Name); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
		now := time.Now()
		profile = &models.LearnerProfile{
			ID:        req.StudentID,
			Name:      req.Name,
			Grade:     req.Grade,
			Room:      req.Room,
			Number:    req.Number,
			Email:     req.Email,
			PhotoURL:  req.PhotoURL,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := h.profiles.Save(ctx, profile); err != nil {
			log.Printf("Warning: save new profile %s: %v", profile.ID, err)
		}
	}

	manager := h.registry.Get(profile.ID)
	if manager == nil {
		manager, err = game.NewManager(ctx, profile, game.Options{
			Sessions:             h.sessions,
			Profiles:             h.profiles,
			Ranker:               h.aggregator,
			Words:                content.VocabWords(),
			Questions:            content.QuizQuestions(),
			Scoring:              h.scoringCfg,
			ImaginationRubric:    content.ImaginationRubric(),
			InterpretationRubric: content.InterpretationRubric(),
		})
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "start session", err)
			return
		}
		h.registry.Put(profile.ID, manager)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"profile": profileView(manager.Profile()),
		"session": manager.Session(),
	})
}

// State returns the current session snapshot for a learner.
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	manager, ok := h.manager(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"profile": profileView(manager.Profile()),
		"session": manager.Session(),
	})
}

type stepRequest struct {
	StudentID string  `json:"studentId"`
	Step      float64 `json:"step"`
}

// Step moves forward to a step.
func (h *GameHandler) Step(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	manager, step, ok := h.managerAndStep(w, req.StudentID, req.Step)
	if !ok {
		return
	}
	if step == models.StepMatching && !manager.AllWordsFound() {
		respondWithError(w, http.StatusConflict, "ต้องหาคำศัพท์ให้ครบก่อนจึงจะเล่นเกมจับคู่ได้", "", nil)
		return
	}
	current := manager.GoTo(step)
	respondJSON(w, http.StatusOK, map[string]any{"currentStep": current})
}

// Back pops the step history.
func (h *GameHandler) Back(w http.ResponseWriter, r *http.Request) {
	manager, ok := h.manager(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"currentStep": manager.GoBack()})
}

// Jump handles step-chip navigation with progress gating.
func (h *GameHandler) Jump(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	manager, step, ok := h.managerAndStep(w, req.StudentID, req.Step)
	if !ok {
		return
	}
	current, err := manager.JumpTo(step)
	switch {
	case errors.Is(err, game.ErrSameStep):
		// no-op by design
	case errors.Is(err, game.ErrStepLocked):
		respondWithError(w, http.StatusConflict, "ยังไปขั้นตอนนั้นไม่ได้", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"currentStep": current})
}

type wordRequest struct {
	StudentID       string `json:"studentId"`
	Word            string `json:"word"`
	Translation     string `json:"translation"`
	ReferenceSource string `json:"referenceSource"`
}

// Word scores one vocabulary translation attempt.
func (h *GameHandler) Word(w http.ResponseWriter, r *http.Request) {
	var req wordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	if !content.ValidReferenceSource(req.ReferenceSource) {
		respondWithError(w, http.StatusBadRequest, "Unknown reference source", "", nil)
		return
	}
	manager := h.registry.Get(req.StudentID)
	if manager == nil {
		respondWithError(w, http.StatusNotFound, "No active session", "", nil)
		return
	}
	result, err := manager.SubmitWordAnswer(req.Word, req.Translation, req.ReferenceSource)
	if err != nil {
		var verr validation.ValidationError
		if errors.As(err, &verr) {
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type matchRequest struct {
	StudentID string `json:"studentId"`
	Word      string `json:"word"`
	Meaning   string `json:"meaning"`
}

// Match verifies a matching-game pairing against the word's reference
// meaning and records it. Correctness is decided here, never by the client.
func (h *GameHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	entry, ok := content.FindWord(req.Word)
	if !ok {
		respondWithError(w, http.StatusBadRequest, game.ErrUnknownWord.Error(), "", nil)
		return
	}
	manager := h.registry.Get(req.StudentID)
	if manager == nil {
		respondWithError(w, http.StatusNotFound, "No active session", "", nil)
		return
	}
	result, err := manager.RecordMatch(req.Word, scoring.MeaningMatches(req.Meaning, entry.Meaning))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type writingRequest struct {
	StudentID      string `json:"studentId"`
	Imagination    string `json:"imagination"`
	Interpretation string `json:"interpretation"`
}

// Writing grades the free-text answers.
func (h *GameHandler) Writing(w http.ResponseWriter, r *http.Request) {
	var req writingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	manager := h.registry.Get(req.StudentID)
	if manager == nil {
		respondWithError(w, http.StatusNotFound, "No active session", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, manager.SubmitWriting(req.Imagination, req.Interpretation))
}

type quizRequest struct {
	StudentID string `json:"studentId"`
	Answers   []int  `json:"answers"`
}

// Quiz scores the comprehension answers.
func (h *GameHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	manager := h.registry.Get(req.StudentID)
	if manager == nil {
		respondWithError(w, http.StatusNotFound, "No active session", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, manager.SubmitQuiz(req.Answers))
}

// QuizRetry clears the quiz answers only.
func (h *GameHandler) QuizRetry(w http.ResponseWriter, r *http.Request) {
	manager, ok := h.manager(w, r)
	if !ok {
		return
	}
	manager.RetryQuiz()
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Finish finalizes the session and returns the summary payload.
func (h *GameHandler) Finish(w http.ResponseWriter, r *http.Request) {
	manager, ok := h.manager(w, r)
	if !ok {
		return
	}
	result, err := manager.Finalize(r.Context())
	if errors.Is(err, game.ErrQuizRequired) {
		respondWithError(w, http.StatusConflict, "Quiz must be passed before finishing", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "finalize session", err)
		return
	}

	// teacher view refreshes eventually, not in the request path
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := h.aggregator.Refresh(ctx); err != nil {
			log.Printf("Warning: refresh dashboard after finish: %v", err)
		}
	}()

	respondJSON(w, http.StatusOK, result)
}

// Reset starts the learner over with a fresh session.
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	manager, ok := h.manager(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"session": manager.Reset(r.Context())})
}

// Words serves the vocabulary list without reference meanings.
func (h *GameHandler) Words(w http.ResponseWriter, r *http.Request) {
	words := content.VocabWords()
	type wordView struct {
		Word   string `json:"word"`
		Points int    `json:"points"`
	}
	views := make([]wordView, len(words))
	for i, word := range words {
		views[i] = wordView{Word: word.Word, Points: word.Points}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"words":   views,
		"sources": content.ReferenceSources(),
	})
}

// Questions serves the quiz without the answer key.
func (h *GameHandler) Questions(w http.ResponseWriter, r *http.Request) {
	questions := content.QuizQuestions()
	type questionView struct {
		Text    string   `json:"text"`
		Options []string `json:"options"`
	}
	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{Text: q.Text, Options: q.Options}
	}
	respondJSON(w, http.StatusOK, map[string]any{"questions": views})
}

// LastStudent returns the remembered learner id for auto-resume.
func (h *GameHandler) LastStudent(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"studentId": h.sessions.LastStudent(r.Context()),
	})
}

func (h *GameHandler) manager(w http.ResponseWriter, r *http.Request) (*game.Manager, bool) {
	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		var req struct {
			StudentID string `json:"studentId"`
		}
		if err := decodeJSON(r, &req); err == nil {
			studentID = req.StudentID
		}
	}
	manager := h.registry.Get(studentID)
	if manager == nil {
		respondWithError(w, http.StatusNotFound, "No active session", "", nil)
		return nil, false
	}
	return manager, true
}

func (h *GameHandler) managerAndStep(w http.ResponseWriter, studentID string, raw float64) (*game.Manager, models.Step, bool) {
	manager := h.registry.Get(studentID)
	if manager == nil {
		respondWithError(w, http.StatusNotFound, "No active session", "", nil)
		return nil, 0, false
	}
	step := models.Step(raw)
	switch step {
	case models.StepHistory, models.StepVocabulary, models.StepMatching,
		models.StepWriting, models.StepReveal, models.StepQuiz, models.StepSummary:
		return manager, step, true
	}
	respondWithError(w, http.StatusBadRequest, "Unknown step", "", nil)
	return nil, 0, false
}

func profileView(p *models.LearnerProfile) map[string]any {
	return map[string]any{
		"studentId":        p.ID,
		"name":             p.Name,
		"grade":            p.Grade,
		"room":             p.Room,
		"number":           p.Number,
		"exp":              p.EXP,
		"level":            p.Level(),
		"rank":             p.Rank(),
		"totalGamesPlayed": p.TotalGamesPlayed,
		"bestScore":        p.BestScore,
	}
}
