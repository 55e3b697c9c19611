package aggregate

import (
	"context"
	"math"
	"sort"

	"khamboran/internal/store"
)

// rankTiers maps a total score to a display tier, highest threshold first.
// The first tier whose minimum the score meets applies; the last entry is
// the default.
var rankTiers = []struct {
	Min  float64
	Name string
}{
	{Min: 1000, Name: "ยอดกวี"},
	{Min: 600, Name: "นักอักษรศาสตร์"},
	{Min: 300, Name: "นักสืบคำโบราณ"},
	{Min: 0, Name: "ผู้เริ่มเรียนรู้"},
}

// TierFor returns the dashboard tier for a total score.
func TierFor(score float64) string {
	for _, tier := range rankTiers {
		if score >= tier.Min {
			return tier.Name
		}
	}
	return rankTiers[len(rankTiers)-1].Name
}

// rankTolerance treats two totals this close as the same score when
// deciding whether the query score is already in the pool.
const rankTolerance = 0.5

// Ranking returns the 1-based position of a score among all known non-zero
// session totals plus the pool size. The pool prefers the in-memory
// snapshot, then a fresh fetch; the dual store already degrades to the local
// cache underneath. The learner summary and the teacher dashboard both rank
// against this same pool.
func (a *Aggregator) Ranking(ctx context.Context, score float64) (int, int, error) {
	a.mu.Lock()
	docs := a.sessionDocs
	a.mu.Unlock()

	if len(docs) == 0 {
		if _, err := a.Refresh(ctx); err != nil {
			return 0, 0, err
		}
		a.mu.Lock()
		docs = a.sessionDocs
		a.mu.Unlock()
	}

	var pool []float64
	for _, doc := range docs {
		total := store.NumberField(doc.Fields, "totalScore")
		if total > 0 {
			pool = append(pool, total)
		}
	}

	present := false
	for _, total := range pool {
		if math.Abs(total-score) <= rankTolerance {
			present = true
			break
		}
	}
	if !present {
		pool = append(pool, score)
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(pool)))
	position := len(pool)
	for i, total := range pool {
		if math.Abs(total-score) <= rankTolerance {
			position = i + 1
			break
		}
	}
	return position, len(pool), nil
}
