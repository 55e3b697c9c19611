package aggregate

import (
	"context"
	"testing"
	"time"

	"khamboran/internal/models"
	"khamboran/internal/store"
)

func sessionDoc(key string, fields map[string]any) store.Document {
	return store.Document{Collection: store.CollectionSessions, Key: key, Fields: fields}
}

func TestBuildRows(t *testing.T) {
	students := []*models.LearnerProfile{
		{ID: "s1", Name: "สมชาย", Grade: "ม.2", Room: "1"},
		{ID: "s2", Name: "สมหญิง", Grade: "ม.2", Room: "1"},
		{ID: "s3", Name: "ยังไม่เล่น", Grade: "ม.2", Room: "2"},
	}
	sessions := []store.Document{
		sessionDoc("a1", map[string]any{
			"sessionKey": "a1", "studentId": "s1",
			"totalScore": float64(200), "completed": true,
			"lastUpdated": "2026-01-15T09:00:00Z",
		}),
		sessionDoc("a2", map[string]any{
			"sessionKey": "a2", "studentId": "s1",
			"totalScore": float64(100), "completed": false,
			"lastUpdated": "2026-01-15T10:00:00Z",
		}),
		sessionDoc("b1", map[string]any{
			"sessionKey": "b1", "studentId": "s2",
			"totalScore": float64(400), "completed": true,
			"lastUpdated": "2026-01-14T09:00:00Z",
		}),
	}

	rows := BuildRows(students, sessions)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// sorted by total score descending
	if rows[0].LearnerID != "s2" || rows[0].TotalScore != 400 {
		t.Errorf("top row = %+v, want s2 with 400", rows[0])
	}
	if rows[1].LearnerID != "s1" || rows[1].TotalScore != 300 {
		t.Errorf("second row = %+v, want s1 with 300", rows[1])
	}

	s1 := rows[1]
	if s1.SessionCount != 2 || s1.CompletionCount != 1 {
		t.Errorf("s1 counts = %d sessions, %d completed", s1.SessionCount, s1.CompletionCount)
	}
	if s1.AverageScore != 150 {
		t.Errorf("s1 average = %v, want 150", s1.AverageScore)
	}
	wantLatest := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	if !s1.LatestActivity.Equal(wantLatest) {
		t.Errorf("s1 latest = %v, want %v", s1.LatestActivity, wantLatest)
	}
	if s1.LatestSession == nil || s1.LatestSession.SessionID != "a2" {
		t.Errorf("s1 latest session = %+v, want a2", s1.LatestSession)
	}
	if s1.RankTier != "นักสืบคำโบราณ" {
		t.Errorf("s1 tier = %q", s1.RankTier)
	}

	// a student with no sessions still gets a row
	s3 := rows[2]
	if s3.LearnerID != "s3" || s3.SessionCount != 0 || s3.AverageScore != 0 {
		t.Errorf("zero-session row = %+v", s3)
	}
	if s3.RankTier != "ผู้เริ่มเรียนรู้" {
		t.Errorf("zero-session tier = %q", s3.RankTier)
	}
}

func TestBuildRowsFallbackIdentity(t *testing.T) {
	// sessions with no matching student record still produce rows
	sessions := []store.Document{
		sessionDoc("x1", map[string]any{
			"sessionKey": "x1", "studentId": "ghost",
			"studentName": "ชื่อจากเซสชัน", "totalScore": float64(50),
		}),
		sessionDoc("x2", map[string]any{
			"sessionKey": "x2", "studentId": "noname",
			"totalScore": float64(10),
		}),
	}

	rows := BuildRows(nil, sessions)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "ชื่อจากเซสชัน" {
		t.Errorf("name from session metadata = %q", rows[0].Name)
	}
	if rows[1].Name != store.FallbackName {
		t.Errorf("missing name should use the fallback, got %q", rows[1].Name)
	}
	if rows[1].Grade != store.FallbackField {
		t.Errorf("missing grade should use the fallback, got %q", rows[1].Grade)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{score: 1500, want: "ยอดกวี"},
		{score: 1000, want: "ยอดกวี"},
		{score: 999, want: "นักอักษรศาสตร์"},
		{score: 600, want: "นักอักษรศาสตร์"},
		{score: 300, want: "นักสืบคำโบราณ"},
		{score: 299, want: "ผู้เริ่มเรียนรู้"},
		{score: 0, want: "ผู้เริ่มเรียนรู้"},
	}

	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func newTestAggregator(t *testing.T) (*Aggregator, *store.MemoryBackend) {
	t.Helper()
	primary := store.NewMemoryBackend("primary")
	dual := store.NewDualStore(primary, store.NewMemoryBackend("local"))
	sessions := store.NewSessionStore(dual)
	profiles := store.NewProfileStore(dual)
	return New(sessions, profiles, nil, Hooks{}), primary
}

func seedSession(t *testing.T, backend *store.MemoryBackend, key string, total float64) {
	t.Helper()
	err := backend.Put(context.Background(), store.CollectionSessions, key, map[string]any{
		"sessionKey": key, "studentId": key, "totalScore": total, "completed": true,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}

func TestRanking(t *testing.T) {
	agg, primary := newTestAggregator(t)
	ctx := context.Background()

	seedSession(t, primary, "a", 500)
	seedSession(t, primary, "b", 300)
	seedSession(t, primary, "c", 100)
	// zero totals never enter the pool
	seedSession(t, primary, "z", 0)

	pos, total, err := agg.Ranking(ctx, 300)
	if err != nil {
		t.Fatalf("Ranking: %v", err)
	}
	if pos != 2 || total != 3 {
		t.Errorf("Ranking(300) = %d/%d, want 2/3", pos, total)
	}

	// a score within tolerance of a pool entry is the same score
	pos, total, err = agg.Ranking(ctx, 300.4)
	if err != nil {
		t.Fatalf("Ranking: %v", err)
	}
	if pos != 2 || total != 3 {
		t.Errorf("Ranking(300.4) = %d/%d, want 2/3", pos, total)
	}

	// a brand new score joins the pool
	pos, total, err = agg.Ranking(ctx, 600)
	if err != nil {
		t.Fatalf("Ranking: %v", err)
	}
	if pos != 1 || total != 4 {
		t.Errorf("Ranking(600) = %d/%d, want 1/4", pos, total)
	}

	// a higher score never ranks worse than a lower one
	lowPos, _, _ := agg.Ranking(ctx, 100)
	highPos, _, _ := agg.Ranking(ctx, 500)
	if highPos > lowPos {
		t.Errorf("monotonicity violated: 500 ranks %d, 100 ranks %d", highPos, lowPos)
	}
}

func TestSynthesizeStudents(t *testing.T) {
	agg, primary := newTestAggregator(t)
	ctx := context.Background()

	// session documents exist but no identity records do
	err := primary.Put(ctx, store.CollectionSessions, "s1", map[string]any{
		"sessionKey": "s1", "studentId": "learner-1", "studentName": "สมชาย",
		"totalScore": float64(80),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	students, sessions, err := agg.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if len(students) != 1 || students[0].ID != "learner-1" || students[0].Name != "สมชาย" {
		t.Errorf("synthesized students = %+v", students)
	}
}

func TestDeleteStudentPrunesSnapshot(t *testing.T) {
	agg, primary := newTestAggregator(t)
	ctx := context.Background()

	terminated := ""
	agg.hooks.LearnerDeleted = func(learnerID string) { terminated = learnerID }

	seedSession(t, primary, "keep", 100)
	seedSession(t, primary, "drop", 200)
	if _, err := agg.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := agg.DeleteStudent(ctx, "drop"); err != nil {
		t.Fatalf("DeleteStudent: %v", err)
	}
	if terminated != "drop" {
		t.Errorf("live-session hook got %q, want drop", terminated)
	}

	rows, err := agg.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	for _, row := range rows {
		if row.LearnerID == "drop" {
			t.Error("deleted learner still in the snapshot")
		}
	}

	docs, err := primary.Query(ctx, store.CollectionSessions, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, doc := range docs {
		if store.StringField(doc.Fields, "studentId", "") == "drop" {
			t.Error("deleted learner's session survived in storage")
		}
	}
}
