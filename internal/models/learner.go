package models

import "time"

// Rank tier names shown on the learner's profile badge, highest first.
const (
	RankSage       = "ปราชญ์ภาษา"
	RankExpert     = "ผู้เชี่ยวชาญ"
	RankApprentice = "นักเรียนรู้"
	RankNovice     = "ผู้เริ่มต้น"
)

// LearnerProfile is the identity record for a student. The ID is externally
// assigned (school email or student number) and doubles as the document key
// in the User collection.
type LearnerProfile struct {
	ID               string    `json:"studentId"`
	Name             string    `json:"name"`
	Grade            string    `json:"grade"`
	Room             string    `json:"room"`
	Number           string    `json:"number"`
	Email            string    `json:"email,omitempty"`
	PhotoURL         string    `json:"photoURL,omitempty"`
	EXP              int       `json:"exp"`
	TotalGamesPlayed int       `json:"totalGamesPlayed"`
	BestScore        int       `json:"bestScore"`
	IsTeacher        bool      `json:"isTeacher,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Level is derived from accumulated EXP, 100 points per level.
func (p *LearnerProfile) Level() int {
	if p.EXP < 0 {
		return 1
	}
	return p.EXP/100 + 1
}

// Rank returns the tier name for the learner's current level.
func (p *LearnerProfile) Rank() string {
	return RankForLevel(p.Level())
}

// RankForLevel maps a level to its tier name.
func RankForLevel(level int) string {
	switch {
	case level >= 10:
		return RankSage
	case level >= 5:
		return RankExpert
	case level >= 2:
		return RankApprentice
	default:
		return RankNovice
	}
}

// AddGameResult folds a completed session's total score into the profile.
// EXP only ever grows; BestScore keeps the maximum.
func (p *LearnerProfile) AddGameResult(totalScore int, now time.Time) {
	if totalScore > 0 {
		p.EXP += totalScore
	}
	p.TotalGamesPlayed++
	if totalScore > p.BestScore {
		p.BestScore = totalScore
	}
	p.UpdatedAt = now
}
