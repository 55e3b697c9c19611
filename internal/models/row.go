package models

import "time"

// StudentRow is one line of the teacher dashboard. It is derived from the
// current session set on every render and never persisted.
type StudentRow struct {
	LearnerID       string       `json:"studentId"`
	Name            string       `json:"name"`
	Grade           string       `json:"grade"`
	Room            string       `json:"room"`
	Number          string       `json:"number"`
	TotalScore      int          `json:"totalScore"`
	AverageScore    float64      `json:"averageScore"`
	SessionCount    int          `json:"sessionCount"`
	CompletionCount int          `json:"completionCount"`
	LatestActivity  time.Time    `json:"latestActivity"`
	LatestSession   *GameSession `json:"latestSession,omitempty"`
	RankTier        string       `json:"rankTier"`
}
