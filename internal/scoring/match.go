package scoring

import "strings"

// MeaningMatches reports whether a submitted translation is an acceptable
// answer for a reference meaning. The reference is a comma-separated list of
// senses; the submission is accepted when it shares a token with any clause,
// where sharing means a case-insensitive substring match in either direction.
// The check is intentionally lenient: a learner writing a longer sentence
// that contains an accepted sense still passes.
func MeaningMatches(submitted, reference string) bool {
	submitted = strings.ToLower(strings.TrimSpace(submitted))
	if submitted == "" {
		return false
	}
	for _, clause := range strings.Split(reference, ",") {
		clause = strings.ToLower(strings.TrimSpace(clause))
		if clause == "" {
			continue
		}
		if strings.Contains(clause, submitted) || strings.Contains(submitted, clause) {
			return true
		}
	}
	return false
}
