// Package aggregate builds the teacher-facing rollups: per-student summary
// rows, rankings and activity timelines. The snapshot is rebuilt wholesale
// on every refresh, never patched incrementally by the game side.
package aggregate

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"khamboran/internal/models"
	"khamboran/internal/store"
)

// Hooks let the serving layer react when the aggregator mutates a learner
// that currently has a live session.
type Hooks struct {
	// LearnerDeleted terminates the learner's live session, if any.
	LearnerDeleted func(learnerID string)
	// LearnerEdited live-updates the learner's in-memory profile, if any.
	LearnerEdited func(profile *models.LearnerProfile)
}

// Aggregator reads many sessions and identity records and derives the
// dashboard view. It owns a read-only snapshot guarded by mu.
type Aggregator struct {
	sessions *store.SessionStore
	profiles *store.ProfileStore
	feed     *store.BulkFeed
	hooks    Hooks

	mu          sync.Mutex
	rows        []models.StudentRow
	sessionDocs []store.Document
	students    []*models.LearnerProfile
}

// New builds an aggregator over the shared stores.
func New(sessions *store.SessionStore, profiles *store.ProfileStore, feed *store.BulkFeed, hooks Hooks) *Aggregator {
	return &Aggregator{
		sessions: sessions,
		profiles: profiles,
		feed:     feed,
		hooks:    hooks,
	}
}

// FetchAll loads students and sessions through the fallback chain: dual
// store first, then the bulk feed when either list is empty, and finally
// students synthesized from session metadata. A failed sub-query degrades to
// an empty list, never an aborted render.
func (a *Aggregator) FetchAll(ctx context.Context) ([]*models.LearnerProfile, []store.Document, error) {
	students, err := a.profiles.AllLearners(ctx)
	if err != nil {
		log.Printf("Warning: fetch students: %v", err)
	}
	sessions, err := a.sessions.All(ctx)
	if err != nil {
		log.Printf("Warning: fetch sessions: %v", err)
	}

	if (len(sessions) == 0 || len(students) == 0) && a.feed != nil && a.feed.Enabled() {
		feedSessions, feedStudents, err := a.feed.Fetch(ctx)
		if err != nil {
			log.Printf("Warning: bulk feed: %v", err)
		}
		if len(sessions) == 0 {
			for _, fields := range feedSessions {
				sessions = append(sessions, store.Document{
					Collection: store.CollectionSessions,
					Key:        store.DeriveSessionID("", fields),
					Fields:     fields,
				})
			}
		}
		if len(students) == 0 {
			for _, fields := range feedStudents {
				if p := profileFromFields(fields); p != nil {
					students = append(students, p)
				}
			}
		}
	}

	if len(students) == 0 && len(sessions) > 0 {
		students = synthesizeStudents(sessions)
	}
	return students, sessions, nil
}

// Refresh rebuilds the whole snapshot from the current stores.
func (a *Aggregator) Refresh(ctx context.Context) ([]models.StudentRow, error) {
	students, sessions, err := a.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := BuildRows(students, sessions)

	a.mu.Lock()
	a.rows = rows
	a.sessionDocs = sessions
	a.students = students
	a.mu.Unlock()
	return rows, nil
}

// Rows returns the current snapshot, refreshing it when empty.
func (a *Aggregator) Rows(ctx context.Context) ([]models.StudentRow, error) {
	a.mu.Lock()
	if a.rows != nil {
		rows := append([]models.StudentRow(nil), a.rows...)
		a.mu.Unlock()
		return rows, nil
	}
	a.mu.Unlock()
	return a.Refresh(ctx)
}

// learnerKey resolves the grouping key for a session document.
func learnerKey(fields map[string]any) string {
	if id := store.FirstStringField(fields, "studentId", "learnerId", "userId"); id != "" {
		return id
	}
	return store.FirstStringField(fields, "studentName", "name")
}

// BuildRows groups sessions by learner and derives one dashboard row per
// known student, including students with no sessions yet. Rows sort by
// total score, then average, then latest activity.
func BuildRows(students []*models.LearnerProfile, sessions []store.Document) []models.StudentRow {
	byLearner := make(map[string]*models.StudentRow)
	order := []string{}

	ensure := func(key string) *models.StudentRow {
		if row, ok := byLearner[key]; ok {
			return row
		}
		row := &models.StudentRow{
			LearnerID: key,
			Name:      store.FallbackName,
			Grade:     store.FallbackField,
			Room:      store.FallbackField,
			Number:    store.FallbackField,
		}
		byLearner[key] = row
		order = append(order, key)
		return row
	}

	for _, p := range students {
		row := ensure(p.ID)
		if p.Name != "" {
			row.Name = p.Name
		}
		if p.Grade != "" {
			row.Grade = p.Grade
		}
		if p.Room != "" {
			row.Room = p.Room
		}
		if p.Number != "" {
			row.Number = p.Number
		}
	}

	latestTimes := make(map[string]time.Time)
	for _, doc := range sessions {
		key := learnerKey(doc.Fields)
		if key == "" {
			continue
		}
		row := ensure(key)
		row.SessionCount++
		row.TotalScore += int(store.NumberField(doc.Fields, "totalScore"))
		if completed, ok := doc.Fields["completed"].(bool); ok && completed {
			row.CompletionCount++
		}
		if row.Name == store.FallbackName {
			if name := store.FirstStringField(doc.Fields, "studentName", "name"); name != "" {
				row.Name = name
			}
		}

		// latest session by normalized timestamp; first-seen wins ties
		t := store.TimeField(doc.Fields, "lastUpdated", "timestamp", "startTime")
		if t.After(latestTimes[key]) {
			latestTimes[key] = t
			row.LatestActivity = t
			if session, err := models.SessionFromDocument(doc.Fields); err == nil {
				row.LatestSession = session
			}
		}
	}

	rows := make([]models.StudentRow, 0, len(order))
	for _, key := range order {
		row := byLearner[key]
		if row.SessionCount > 0 {
			row.AverageScore = float64(row.TotalScore) / float64(row.SessionCount)
		}
		row.RankTier = TierFor(float64(row.TotalScore))
		rows = append(rows, *row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		if rows[i].AverageScore != rows[j].AverageScore {
			return rows[i].AverageScore > rows[j].AverageScore
		}
		return rows[i].LatestActivity.After(rows[j].LatestActivity)
	})
	return rows
}

// History returns a learner's sessions newest-first.
func (a *Aggregator) History(ctx context.Context, learnerID string) ([]*models.GameSession, error) {
	docs, err := a.sessions.FindByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.GameSession, 0, len(docs))
	for _, doc := range docs {
		session, err := models.SessionFromDocument(doc.Fields)
		if err != nil {
			continue
		}
		out = append(out, session)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out, nil
}

// DeleteStudent removes the identity record and every session for the
// learner from both backends and both collections, drops them from the
// snapshot, and terminates their live session if one is active.
func (a *Aggregator) DeleteStudent(ctx context.Context, learnerID string) error {
	if err := a.profiles.Delete(ctx, learnerID); err != nil {
		log.Printf("Warning: delete profile %s: %v", learnerID, err)
	}
	if err := a.sessions.DeleteAllForLearner(ctx, learnerID); err != nil {
		log.Printf("Warning: delete sessions for %s: %v", learnerID, err)
	}

	a.mu.Lock()
	rows := a.rows[:0]
	for _, row := range a.rows {
		if row.LearnerID != learnerID {
			rows = append(rows, row)
		}
	}
	a.rows = rows
	docs := a.sessionDocs[:0]
	for _, doc := range a.sessionDocs {
		if learnerKey(doc.Fields) != learnerID {
			docs = append(docs, doc)
		}
	}
	a.sessionDocs = docs
	a.mu.Unlock()

	if a.hooks.LearnerDeleted != nil {
		a.hooks.LearnerDeleted(learnerID)
	}
	return nil
}

// EditStudent merges updated identity fields through both backends and
// live-updates the learner's active session, if any.
func (a *Aggregator) EditStudent(ctx context.Context, learnerID string, updates map[string]any) (*models.LearnerProfile, error) {
	profile, err := a.profiles.Merge(ctx, learnerID, updates)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	for i := range a.rows {
		if a.rows[i].LearnerID == learnerID {
			if profile.Name != "" {
				a.rows[i].Name = profile.Name
			}
			if profile.Grade != "" {
				a.rows[i].Grade = profile.Grade
			}
			if profile.Room != "" {
				a.rows[i].Room = profile.Room
			}
			if profile.Number != "" {
				a.rows[i].Number = profile.Number
			}
		}
	}
	a.mu.Unlock()

	if a.hooks.LearnerEdited != nil {
		a.hooks.LearnerEdited(profile)
	}
	return profile, nil
}

func profileFromFields(fields map[string]any) *models.LearnerProfile {
	id := store.FirstStringField(fields, "studentId", "learnerId", "userId", "id")
	if id == "" {
		return nil
	}
	return &models.LearnerProfile{
		ID:     id,
		Name:   store.StringField(fields, "name", store.FallbackName),
		Grade:  store.StringField(fields, "grade", store.FallbackField),
		Room:   store.StringField(fields, "room", store.FallbackField),
		Number: store.StringField(fields, "number", store.FallbackField),
		EXP:    int(store.NumberField(fields, "exp")),
	}
}

// synthesizeStudents builds minimal identity records from the name and class
// fields embedded in session documents when no User records exist at all.
func synthesizeStudents(sessions []store.Document) []*models.LearnerProfile {
	seen := make(map[string]bool)
	var out []*models.LearnerProfile
	for _, doc := range sessions {
		key := learnerKey(doc.Fields)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, &models.LearnerProfile{
			ID:     key,
			Name:   store.FirstStringField(doc.Fields, "studentName", "name"),
			Grade:  store.StringField(doc.Fields, "grade", store.FallbackField),
			Room:   store.StringField(doc.Fields, "room", store.FallbackField),
			Number: store.StringField(doc.Fields, "number", store.FallbackField),
		})
	}
	return out
}
