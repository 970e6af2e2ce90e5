package auth_test

import (
	"testing"

	"khata-backend/internal/auth"
	"khata-backend/internal/config"
	"khata-backend/internal/models"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.ExpirationHours = 24
	cfg.JWT.Issuer = "khata-backend"
	return cfg
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := auth.NewJWTManager(testConfig("test-secret"))
	user := &models.User{ID: 7, MobileNumber: "9876543210"}

	token, err := manager.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("user id got=%d want=7", claims.UserID)
	}
	if claims.MobileNumber != "9876543210" {
		t.Errorf("mobile number got=%s want=9876543210", claims.MobileNumber)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := auth.NewJWTManager(testConfig("secret-a"))
	token, err := manager.GenerateToken(&models.User{ID: 1, MobileNumber: "9876543210"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := auth.NewJWTManager(testConfig("secret-b"))
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret validated, want error")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	manager := auth.NewJWTManager(testConfig("test-secret"))
	if _, err := manager.ValidateToken("not.a.token"); err == nil {
		t.Fatal("garbage token validated, want error")
	}
}
