package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "secret1") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrongpass") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordLowCostFallsBack(t *testing.T) {
	// A cost below bcrypt.MinCost must still produce a verifiable hash.
	hash, err := HashPassword("secret1", 0)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "secret1") {
		t.Error("fallback-cost hash does not verify")
	}
}
