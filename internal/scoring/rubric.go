package scoring

import "strings"

// LengthTier awards Bonus when the answer has at least MinRunes runes.
type LengthTier struct {
	MinRunes int
	Bonus    int
}

// Rubric is the heuristic grading table for free-text answers. Keyword lists
// and weights are content-pack data; EvaluateWriting is the only algorithm.
type Rubric struct {
	// AnchorKeywords are the few concepts a good answer must touch; each hit
	// scores AnchorWeight. Keywords score KeywordWeight per hit.
	AnchorKeywords []string
	Keywords       []string
	AnchorWeight   int
	KeywordWeight  int

	// LengthTiers must be sorted by MinRunes ascending; the highest tier the
	// answer reaches applies.
	LengthTiers []LengthTier

	// Sentence bonuses reward structured answers. A clause break is a space
	// or newline in Thai orthography, or terminal punctuation.
	SentenceBonusTwo   int
	SentenceBonusThree int

	// QualityWords and ImageryWords add small capped bonuses.
	QualityWords []string
	ImageryWords []string
	QualityBonus int
	QualityCap   int
	ImageryBonus int
	ImageryCap   int

	// Answers shorter than MinRuneFloor runes take ShortPenalty.
	MinRuneFloor int
	ShortPenalty int
}

// EvaluateWriting grades a free-text answer against the rubric and returns a
// score clamped to [0, 100]. This is a keyword heuristic, not language
// understanding; it rewards coverage, length and imagery, nothing deeper.
func EvaluateWriting(text string, r Rubric) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)
	score := 0

	for _, kw := range r.AnchorKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			score += r.AnchorWeight
		}
	}
	for _, kw := range r.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			score += r.KeywordWeight
		}
	}

	// only the highest length tier reached applies
	runes := len([]rune(trimmed))
	lengthBonus := 0
	for _, tier := range r.LengthTiers {
		if runes >= tier.MinRunes {
			lengthBonus = tier.Bonus
		}
	}
	score += lengthBonus

	sentences := countSentences(trimmed)
	if sentences >= 3 {
		score += r.SentenceBonusThree
	} else if sentences >= 2 {
		score += r.SentenceBonusTwo
	}

	quality := 0
	for _, w := range r.QualityWords {
		if strings.Contains(lower, strings.ToLower(w)) {
			quality += r.QualityBonus
		}
	}
	if quality > r.QualityCap {
		quality = r.QualityCap
	}
	score += quality

	imagery := 0
	for _, w := range r.ImageryWords {
		if strings.Contains(lower, strings.ToLower(w)) {
			imagery += r.ImageryBonus
		}
	}
	if imagery > r.ImageryCap {
		imagery = r.ImageryCap
	}
	score += imagery

	if runes < r.MinRuneFloor {
		score -= r.ShortPenalty
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// countSentences counts clause segments. Thai marks sentence boundaries with
// spaces rather than punctuation, so whitespace runs split too; segments
// under three runes are noise, not clauses.
func countSentences(text string) int {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '.', '!', '?':
			return true
		}
		return false
	})
	count := 0
	for _, seg := range segments {
		if len([]rune(seg)) >= 3 {
			count++
		}
	}
	return count
}
