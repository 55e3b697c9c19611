package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "kru.somsri@school.ac.th",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty email",
			email:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			email:   "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "สมชาย ใจดี",
			wantErr: false,
		},
		{
			name:    "two thai runes pass",
			input:   "ดา",
			wantErr: false,
		},
		{
			name:    "single rune fails",
			input:   "ก",
			wantErr: true,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStudentID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{
			name:    "valid id",
			id:      "s12345",
			wantErr: false,
		},
		{
			name:    "minimum length",
			id:      "12",
			wantErr: false,
		},
		{
			name:    "too short",
			id:      "1",
			wantErr: true,
		},
		{
			name:    "empty id",
			id:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStudentID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStudentID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTranslation(t *testing.T) {
	tests := []struct {
		name        string
		translation string
		wantErr     bool
	}{
		{
			name:        "valid thai translation",
			translation: "ตาย",
			wantErr:     false,
		},
		{
			name:        "two runes pass even as multibyte",
			translation: "งู",
			wantErr:     false,
		},
		{
			name:        "single rune fails",
			translation: "น",
			wantErr:     true,
		},
		{
			name:        "empty translation",
			translation: "",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTranslation(tt.translation)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTranslation(%q) error = %v, wantErr %v", tt.translation, err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError{Field: "name", Message: "name is required"}
	if got := err.Error(); got != "name: name is required" {
		t.Errorf("Error() = %q", got)
	}
}
