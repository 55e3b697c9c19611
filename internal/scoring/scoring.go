// Package scoring computes every derived score in the game. All functions
// are pure: they take accumulated session inputs and return numbers, with no
// I/O and no clock access beyond the times passed in.
package scoring

import (
	"time"

	"khamboran/internal/models"
)

// Config holds the tuning constants for score combination. The values are
// content-pack tuning, not algorithm, so a different lesson can retune them.
type Config struct {
	// PerQuestionWeight scales the comprehension score into the total.
	PerQuestionWeight int
	// TimeBonusBase is the bonus for finishing instantly.
	TimeBonusBase int
	// TimeBonusDecayPerMin is subtracted from the base per elapsed minute.
	TimeBonusDecayPerMin float64
}

// DefaultConfig matches the tuning the lesson shipped with: 20 points per
// correct comprehension answer, and a time bonus of 50 decaying by 2 per
// minute (zero from 25 minutes on).
func DefaultConfig() Config {
	return Config{
		PerQuestionWeight:    20,
		TimeBonusBase:        50,
		TimeBonusDecayPerMin: 2,
	}
}

// VocabularyScore sums the point values of every translated word.
func VocabularyScore(translated map[string]models.TranslatedWord) int {
	total := 0
	for _, w := range translated {
		total += w.Points
	}
	return total
}

// ComprehensionScore counts answers matching the question bank's answer key.
// Unanswered entries (-1) never match.
func ComprehensionScore(answers []int, questions []models.QuizQuestion) int {
	score := 0
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		if answers[i] == q.CorrectIndex {
			score++
		}
	}
	return score
}

// TimeBonus returns the speed bonus for a session started at start and
// finished at now. It decays linearly and is clamped at zero, never negative.
func (c Config) TimeBonus(start, now time.Time) int {
	if now.Before(start) {
		return c.TimeBonusBase
	}
	minutes := now.Sub(start).Minutes()
	bonus := float64(c.TimeBonusBase) - minutes*c.TimeBonusDecayPerMin
	if bonus <= 0 {
		return 0
	}
	return int(bonus)
}

// MatchingScore sums the point value of each correctly matched word. A word
// counts once no matter how many wrong attempts preceded the match.
func MatchingScore(matched []string, words []models.VocabWord) int {
	points := make(map[string]int, len(words))
	for _, w := range words {
		points[w.Word] = w.Points
	}
	seen := make(map[string]bool, len(matched))
	total := 0
	for _, word := range matched {
		if seen[word] {
			continue
		}
		seen[word] = true
		total += points[word]
	}
	return total
}

// Total combines the step scores into the session total.
func (c Config) Total(vocabScore, comprehensionScore, matchingScore int, start, now time.Time) int {
	return vocabScore + comprehensionScore*c.PerQuestionWeight + matchingScore + c.TimeBonus(start, now)
}
