package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"khamboran/internal/models"
)

// sessionCollections lists the collection names holding sessions, in lookup
// order: the legacy name first, the canonical name supplementing.
var sessionCollections = []string{CollectionLegacySessions, CollectionSessions}

// DeriveSessionID resolves the one logical identifier for a session
// document, whatever shape it arrived in. Save, load, delete and aggregation
// all use this so the same session is always addressed by the same key.
// Priority: explicit session key field, then the document's own key, then
// game id, then alternate id fields, else synthesized from learner id and
// start timestamp.
func DeriveSessionID(docKey string, fields map[string]any) string {
	if id := FirstStringField(fields, "sessionKey"); id != "" {
		return id
	}
	if docKey != "" {
		return docKey
	}
	if id := FirstStringField(fields, "gameId", "id", "sid", "sessionId"); id != "" {
		return id
	}
	learner := FirstStringField(fields, "studentId", "learnerId", "userId")
	ts := TimeField(fields, "startTime", "timestamp", "lastUpdated")
	var epoch int64
	if !ts.IsZero() {
		epoch = ts.Unix()
	}
	return fmt.Sprintf("%s_%d", learner, epoch)
}

// SessionStore hides the legacy/canonical collection split behind a single
// session API over the dual-backend store.
type SessionStore struct {
	store *DualStore
}

// NewSessionStore wraps a dual store.
func NewSessionStore(store *DualStore) *SessionStore {
	return &SessionStore{store: store}
}

// Store returns the underlying dual store for non-session collections.
func (s *SessionStore) Store() *DualStore {
	return s.store
}

// Save persists the session snapshot under the canonical collection and
// appends one immutable answer-audit document.
func (s *SessionStore) Save(ctx context.Context, session *models.GameSession) error {
	doc, err := session.ToDocument()
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, CollectionSessions, session.SessionID, doc); err != nil {
		return fmt.Errorf("save session %s: %w", session.SessionID, err)
	}

	record := models.AnswerRecord{
		SessionID:            session.SessionID,
		LearnerID:            session.LearnerID,
		TranslatedWords:      session.TranslatedWords,
		IncorrectWords:       session.IncorrectWords,
		ComprehensionAnswers: session.ComprehensionAnswers,
		ImaginationText:      session.ImaginationText,
		InterpretationText:   session.InterpretationText,
		SavedAt:              time.Now().UTC(),
	}
	auditDoc, err := answerRecordToDoc(record)
	if err != nil {
		log.Printf("Warning: encode answer record for %s: %v", session.SessionID, err)
		return nil
	}
	// audit docs get a fresh key per save so earlier snapshots survive
	if err := s.store.Put(ctx, CollectionAnswers, uuid.New().String(), auditDoc); err != nil {
		log.Printf("Warning: append answer record for %s: %v", session.SessionID, err)
	}
	return nil
}

func answerRecordToDoc(record models.AnswerRecord) (map[string]any, error) {
	session := models.GameSession{
		SessionID:            record.SessionID,
		LearnerID:            record.LearnerID,
		TranslatedWords:      record.TranslatedWords,
		IncorrectWords:       record.IncorrectWords,
		ComprehensionAnswers: record.ComprehensionAnswers,
		ImaginationText:      record.ImaginationText,
		InterpretationText:   record.InterpretationText,
		LastUpdated:          record.SavedAt,
	}
	return session.ToDocument()
}

// Get loads one session by id, checking the legacy collection first.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*models.GameSession, error) {
	for _, collection := range sessionCollections {
		fields, err := s.store.Get(ctx, collection, sessionID)
		if err != nil {
			return nil, err
		}
		if fields != nil {
			return models.SessionFromDocument(fields)
		}
	}
	return nil, nil
}

// FindByLearner returns every session document for a learner across both
// collections, deduplicated by derived session id. The first hit for an id
// wins; canonical documents supplement, never overwrite, legacy ones.
func (s *SessionStore) FindByLearner(ctx context.Context, learnerID string) ([]Document, error) {
	return s.collect(ctx, &Filter{Field: "studentId", Value: learnerID})
}

// All returns every session document across both collections, deduplicated.
func (s *SessionStore) All(ctx context.Context) ([]Document, error) {
	return s.collect(ctx, nil)
}

func (s *SessionStore) collect(ctx context.Context, filter *Filter) ([]Document, error) {
	seen := make(map[string]bool)
	var out []Document
	for _, collection := range sessionCollections {
		docs, err := s.store.Query(ctx, collection, filter)
		if err != nil {
			// one failed collection degrades to whatever the other returned
			log.Printf("Warning: query %s: %v", collection, err)
			continue
		}
		for _, doc := range docs {
			id := DeriveSessionID(doc.Key, doc.Fields)
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, doc)
		}
	}
	return out, nil
}

// Latest returns the learner's most recent session by last-updated time, or
// nil when the learner has none.
func (s *SessionStore) Latest(ctx context.Context, learnerID string) (*models.GameSession, error) {
	docs, err := s.FindByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	var best map[string]any
	var bestTime time.Time
	for _, doc := range docs {
		t := TimeField(doc.Fields, "lastUpdated", "timestamp", "startTime")
		if best == nil || t.After(bestTime) {
			best = doc.Fields
			bestTime = t
		}
	}
	if best == nil {
		return nil, nil
	}
	return models.SessionFromDocument(best)
}

// Delete removes a session from both collections on both backends,
// best-effort.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	var lastErr error
	for _, collection := range sessionCollections {
		if err := s.store.Delete(ctx, collection, sessionID); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// DeleteAllForLearner removes every session belonging to a learner from both
// collections.
func (s *SessionStore) DeleteAllForLearner(ctx context.Context, learnerID string) error {
	docs, err := s.FindByLearner(ctx, learnerID)
	if err != nil {
		return err
	}
	var lastErr error
	for _, doc := range docs {
		id := DeriveSessionID(doc.Key, doc.Fields)
		if err := s.Delete(ctx, id); err != nil {
			lastErr = err
		}
		// legacy documents may be keyed differently from their derived id
		if doc.Key != id {
			if err := s.store.Delete(ctx, doc.Collection, doc.Key); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}

// lastStudentKey is the meta row remembering the last learner on this
// device, used for auto-resume.
const lastStudentKey = "lastStudentId"

// RememberLastStudent stores the auto-resume learner id in the local cache
// only; it is device state, not shared data.
func (s *SessionStore) RememberLastStudent(ctx context.Context, learnerID string) {
	err := s.store.Local().Put(ctx, CollectionMeta, lastStudentKey,
		map[string]any{"studentId": learnerID})
	if err != nil {
		log.Printf("Warning: remember last student: %v", err)
	}
}

// LastStudent returns the remembered learner id, or empty.
func (s *SessionStore) LastStudent(ctx context.Context) string {
	fields, err := s.store.Local().Get(ctx, CollectionMeta, lastStudentKey)
	if err != nil || fields == nil {
		return ""
	}
	return StringField(fields, "studentId", "")
}
