package oauth

import (
	"log/slog"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestNewStore(t *testing.T) {
	store := NewStore()
	if store == nil {
		t.Fatal("NewStore() returned nil")
	}
	defer store.Stop()

	stats := store.Stats()
	if stats["google_tokens"] != 0 {
		t.Errorf("New store should have 0 google_tokens, got %d", stats["google_tokens"])
	}
	if stats["refresh_tokens"] != 0 {
		t.Errorf("New store should have 0 refresh_tokens, got %d", stats["refresh_tokens"])
	}
}

func TestStore_SaveAndGetGoogleToken(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	token := &oauth2.Token{
		AccessToken:  "google-access-token",
		RefreshToken: "google-refresh-token",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}

	if err := store.SaveGoogleToken("user@example.com", token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}

	retrieved, err := store.GetGoogleToken("user@example.com")
	if err != nil {
		t.Fatalf("GetGoogleToken() error = %v", err)
	}

	if retrieved.AccessToken != "google-access-token" {
		t.Errorf("AccessToken = %s, want google-access-token", retrieved.AccessToken)
	}
	if retrieved.RefreshToken != "google-refresh-token" {
		t.Errorf("RefreshToken = %s, want google-refresh-token", retrieved.RefreshToken)
	}
}

func TestStore_GetNonExistentToken(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	_, err := store.GetGoogleToken("nobody@example.com")
	if err == nil {
		t.Error("GetGoogleToken() should fail for unknown user")
	}
}

func TestStore_SaveAndGetRefreshToken(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	expiresAt := time.Now().Add(time.Hour).Unix()
	if err := store.SaveRefreshToken("refresh-123", "user@example.com", expiresAt); err != nil {
		t.Fatalf("SaveRefreshToken() error = %v", err)
	}

	email, err := store.GetRefreshToken("refresh-123")
	if err != nil {
		t.Fatalf("GetRefreshToken() error = %v", err)
	}
	if email != "user@example.com" {
		t.Errorf("email = %s, want user@example.com", email)
	}
}

func TestStore_SaveRefreshToken_Validation(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	expiresAt := time.Now().Add(time.Hour).Unix()

	if err := store.SaveRefreshToken("", "user@example.com", expiresAt); err == nil {
		t.Error("SaveRefreshToken() should fail for empty refresh token")
	}
	if err := store.SaveRefreshToken("refresh-123", "", expiresAt); err == nil {
		t.Error("SaveRefreshToken() should fail for empty email")
	}
}

func TestStore_GetExpiredRefreshToken(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	expiredAt := time.Now().Add(-time.Hour).Unix()
	if err := store.SaveRefreshToken("refresh-expired", "user@example.com", expiredAt); err != nil {
		t.Fatalf("SaveRefreshToken() error = %v", err)
	}

	_, err := store.GetRefreshToken("refresh-expired")
	if err == nil {
		t.Error("GetRefreshToken() should fail for expired refresh token")
	}
}

func TestStore_DeleteRefreshToken(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	expiresAt := time.Now().Add(time.Hour).Unix()
	if err := store.SaveRefreshToken("refresh-123", "user@example.com", expiresAt); err != nil {
		t.Fatalf("SaveRefreshToken() error = %v", err)
	}

	if err := store.DeleteRefreshToken("refresh-123"); err != nil {
		t.Fatalf("DeleteRefreshToken() error = %v", err)
	}

	_, err := store.GetRefreshToken("refresh-123")
	if err == nil {
		t.Error("GetRefreshToken() should fail after deletion")
	}
}

func TestStore_DeleteGoogleToken_CascadesRefreshTokens(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	email := "user@example.com"
	token := &oauth2.Token{
		AccessToken: "google-access-token",
		Expiry:      time.Now().Add(time.Hour),
	}

	if err := store.SaveGoogleToken(email, token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}
	expiresAt := time.Now().Add(time.Hour).Unix()
	if err := store.SaveRefreshToken("refresh-123", email, expiresAt); err != nil {
		t.Fatalf("SaveRefreshToken() error = %v", err)
	}

	if err := store.DeleteGoogleToken(email); err != nil {
		t.Fatalf("DeleteGoogleToken() error = %v", err)
	}

	if _, err := store.GetGoogleToken(email); err == nil {
		t.Error("GetGoogleToken() should fail after deletion")
	}
	if _, err := store.GetRefreshToken("refresh-123"); err == nil {
		t.Error("GetRefreshToken() should fail after the user's Google token was deleted")
	}
}

func TestStore_SaveTokenWithEmailMapping(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	email := "user@example.com"
	accessToken := "server-access-token-123"
	token := &oauth2.Token{
		AccessToken: "google-access-token",
		Expiry:      time.Now().Add(time.Hour),
	}

	if err := store.SaveTokenWithEmailMapping(email, accessToken, token); err != nil {
		t.Fatalf("SaveTokenWithEmailMapping() error = %v", err)
	}

	// Token is retrievable by both email and access token
	byEmail, err := store.GetGoogleToken(email)
	if err != nil {
		t.Fatalf("GetGoogleToken(email) error = %v", err)
	}
	byToken, err := store.GetGoogleToken(accessToken)
	if err != nil {
		t.Fatalf("GetGoogleToken(accessToken) error = %v", err)
	}

	if byEmail.AccessToken != byToken.AccessToken {
		t.Error("Token retrieved by email and by access token should match")
	}

	stats := store.Stats()
	if stats["google_tokens"] != 2 {
		t.Errorf("google_tokens = %d, want 2 (email and access token keys)", stats["google_tokens"])
	}
	if stats["token_email_mappings"] != 1 {
		t.Errorf("token_email_mappings = %d, want 1", stats["token_email_mappings"])
	}
}

func TestStore_SaveTokenWithEmailMapping_Validation(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	token := &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}

	if err := store.SaveTokenWithEmailMapping("", "access", token); err == nil {
		t.Error("SaveTokenWithEmailMapping() should fail for empty email")
	}
	if err := store.SaveTokenWithEmailMapping("user@example.com", "", token); err == nil {
		t.Error("SaveTokenWithEmailMapping() should fail for empty access token")
	}
	if err := store.SaveTokenWithEmailMapping("user@example.com", "access", nil); err == nil {
		t.Error("SaveTokenWithEmailMapping() should fail for nil token")
	}
}

func TestStore_SetLogger(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	store.SetLogger(slog.Default())

	// Store keeps working after the logger swap
	token := &oauth2.Token{
		AccessToken: "tok",
		Expiry:      time.Now().Add(time.Hour),
	}
	if err := store.SaveGoogleToken("user@example.com", token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}
}

func TestStore_Stats(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	token := &oauth2.Token{
		AccessToken: "tok",
		Expiry:      time.Now().Add(time.Hour),
	}
	if err := store.SaveGoogleToken("user@example.com", token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}
	if err := store.SaveGoogleUserInfo("user@example.com", &GoogleUserInfo{Email: "user@example.com"}); err != nil {
		t.Fatalf("SaveGoogleUserInfo() error = %v", err)
	}
	expiresAt := time.Now().Add(time.Hour).Unix()
	if err := store.SaveRefreshToken("refresh-123", "user@example.com", expiresAt); err != nil {
		t.Fatalf("SaveRefreshToken() error = %v", err)
	}

	stats := store.Stats()
	if stats["google_tokens"] != 1 {
		t.Errorf("google_tokens = %d, want 1", stats["google_tokens"])
	}
	if stats["user_info"] != 1 {
		t.Errorf("user_info = %d, want 1", stats["user_info"])
	}
	if stats["refresh_tokens"] != 1 {
		t.Errorf("refresh_tokens = %d, want 1", stats["refresh_tokens"])
	}
}
