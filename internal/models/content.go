package models

// VocabWord is one archaic word from the poem with its reference meaning and
// point value. The meaning is a comma-separated list of accepted senses.
type VocabWord struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Points  int    `json:"points"`
	Hint    string `json:"hint"`
}

// QuizQuestion is one comprehension question with its answer key index.
type QuizQuestion struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// ReferenceSource names a dictionary the learner can cite for a translation.
type ReferenceSource struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// TeacherCredential is one row of the static teacher table. PasscodeHash is
// a bcrypt hash; legacy rows may carry a bare SHA-256 hex digest instead.
// This is presentational gating for the dashboard, not a security boundary.
type TeacherCredential struct {
	Email        string
	PasscodeHash string
	DisplayName  string
	Department   string
	Classes      []string
}
