// Package validation holds the synchronous input checks. A validation
// failure is rejected before any state mutation happens.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateStudentID checks the externally assigned learner id.
func ValidateStudentID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ValidationError{Field: "studentId", Message: "student id is required"}
	}
	if len(id) < 2 {
		return ValidationError{Field: "studentId", Message: "student id is too short"}
	}
	return nil
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len([]rune(name)) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateTranslation checks a submitted word translation. Length counts
// runes, not bytes: Thai answers are multi-byte.
func ValidateTranslation(translation string) error {
	translation = strings.TrimSpace(translation)
	if translation == "" {
		return ValidationError{Field: "translation", Message: "translation is required"}
	}
	if len([]rune(translation)) < 2 {
		return ValidationError{Field: "translation", Message: "translation must be at least 2 characters"}
	}
	return nil
}

// ValidateReferenceSource checks that a dictionary was cited.
func ValidateReferenceSource(source string) error {
	if strings.TrimSpace(source) == "" {
		return ValidationError{Field: "referenceSource", Message: "a reference source must be selected"}
	}
	return nil
}
