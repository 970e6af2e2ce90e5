package auth_test

import (
	"testing"

	"khata-backend/internal/auth"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-khata")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-khata" {
		t.Fatal("password stored in the clear")
	}

	if !auth.VerifyPassword(hash, "s3cret-khata") {
		t.Error("correct password rejected")
	}
	if auth.VerifyPassword(hash, "wrong-password") {
		t.Error("wrong password accepted")
	}
}
