package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/geocoder89/mealmood/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if hash == "correct horse battery" {
		t.Fatalf("hash must not equal the plain password")
	}

	if err := security.CheckPassword(hash, "correct horse battery"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := security.CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch for wrong password")
	}

	again, err := security.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if again == hash {
		t.Fatalf("expected different salts to produce different hashes")
	}
}

func TestBurnPasswordCheck_DoesNotPanic(t *testing.T) {
	security.BurnPasswordCheck("anything")
	security.BurnPasswordCheck("")
}

func TestHashPassword_RejectsOverlongMultibyte(t *testing.T) {
	plain := strings.Repeat("€", 30) // 30 characters, 90 bytes

	if _, err := security.HashPassword(plain); !errors.Is(err, security.ErrPasswordTooLong) {
		t.Fatalf("got %v, want ErrPasswordTooLong", err)
	}
}
