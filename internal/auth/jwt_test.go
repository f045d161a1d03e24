package auth

import (
	"testing"

	"shop-backend/internal/config"
	"shop-backend/internal/models"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.ExpirationHours = 24
	cfg.JWT.Issuer = "shop-backend"
	return cfg
}

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testConfig("test-secret"))
	store := &models.Store{ID: 42, Email: "owner@example.com"}

	token, err := mgr.GenerateToken(store)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := mgr.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.StoreID != 42 {
		t.Errorf("store_id = %d, want 42", claims.StoreID)
	}
	if claims.Email != "owner@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Issuer != "shop-backend" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewJWTManager(testConfig("secret-a")).GenerateToken(&models.Store{ID: 1})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := NewJWTManager(testConfig("secret-b")).ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret was accepted")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	mgr := NewJWTManager(testConfig("test-secret"))
	if _, err := mgr.ValidateToken("not.a.token"); err == nil {
		t.Fatal("garbage token was accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}
