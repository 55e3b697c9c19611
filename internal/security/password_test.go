package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("krusomsri2567")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "krusomsri2567" {
		t.Fatal("hash equals the plaintext")
	}

	// salted: hashing twice yields different strings that both verify
	again, err := HashPassword("krusomsri2567")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == again {
		t.Error("two hashes of the same passcode are identical; salt missing")
	}
	if !CheckPassword("krusomsri2567", hash) || !CheckPassword("krusomsri2567", again) {
		t.Error("hash does not verify against its own passcode")
	}
	if CheckPassword("wrong-passcode", hash) {
		t.Error("wrong passcode verified")
	}
}

func TestVerifyPasscode(t *testing.T) {
	bcryptHash, err := HashPassword("krusomsri2567")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	sum := sha256.Sum256([]byte("kruwichai1150"))
	shaHex := hex.EncodeToString(sum[:])

	tests := []struct {
		name     string
		passcode string
		stored   string
		want     bool
	}{
		{
			name:     "bcrypt hash matches",
			passcode: "krusomsri2567",
			stored:   bcryptHash,
			want:     true,
		},
		{
			name:     "bcrypt hash rejects wrong passcode",
			passcode: "wrong",
			stored:   bcryptHash,
			want:     false,
		},
		{
			name:     "legacy sha256 hex matches",
			passcode: "kruwichai1150",
			stored:   shaHex,
			want:     true,
		},
		{
			name:     "legacy sha256 hex is case insensitive",
			passcode: "kruwichai1150",
			stored:   strings.ToUpper(shaHex),
			want:     true,
		},
		{
			name:     "legacy sha256 hex rejects wrong passcode",
			passcode: "wrong",
			stored:   shaHex,
			want:     false,
		},
		{
			name:     "empty stored hash never matches",
			passcode: "anything",
			stored:   "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPasscode(tt.passcode, tt.stored); got != tt.want {
				t.Errorf("VerifyPasscode(%q, %q) = %v, want %v", tt.passcode, tt.stored, got, tt.want)
			}
		})
	}
}
