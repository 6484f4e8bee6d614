package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// mockTokenStore is a mock implementation of TokenStore for testing.
type mockTokenStore struct {
	token       *oauth2.Token
	savedTokens []*oauth2.Token
}

func (m *mockTokenStore) SaveToken(token *oauth2.Token) error {
	m.savedTokens = append(m.savedTokens, token)
	m.token = token
	return nil
}

func (m *mockTokenStore) LoadToken() (*oauth2.Token, error) {
	return m.token, nil
}

func testOAuthConfig(tokenURL string) *oauth2.Config {
	cfg := GoogleOAuthConfig("test-client-id", "test-client-secret")
	if tokenURL != "" {
		cfg.Endpoint.TokenURL = tokenURL
	}
	return cfg
}

func TestGetAuthenticatedClientTokenExists(t *testing.T) {
	ctx := context.Background()

	mockStore := &mockTokenStore{
		token: &oauth2.Token{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			Expiry:       time.Now().Add(1 * time.Hour),
			TokenType:    "Bearer",
		},
	}

	client, err := GetAuthenticatedClient(ctx, testOAuthConfig(""), mockStore)
	if err != nil {
		t.Fatalf("GetAuthenticatedClient() returned an error: %v", err)
	}
	if client == nil {
		t.Fatal("GetAuthenticatedClient() returned nil client")
	}
	if len(mockStore.savedTokens) != 0 {
		t.Errorf("Expected no save for a valid existing token, got %d saves", len(mockStore.savedTokens))
	}
}

func TestGetAuthenticatedClientWithReaderExchangesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("Failed to parse token request: %v", err)
		}
		if got := r.FormValue("code"); got != "fake-auth-code" {
			t.Errorf("Expected the entered code to be exchanged, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "exchanged-token", "token_type": "Bearer", "expires_in": 3600}`))
	}))
	defer srv.Close()

	mockStore := &mockTokenStore{}
	client, err := GetAuthenticatedClientWithReader(context.Background(),
		testOAuthConfig(srv.URL), mockStore, strings.NewReader("fake-auth-code\n"))
	if err != nil {
		t.Fatalf("GetAuthenticatedClientWithReader() returned an error: %v", err)
	}
	if client == nil {
		t.Fatal("GetAuthenticatedClientWithReader() returned nil client")
	}

	if len(mockStore.savedTokens) != 1 {
		t.Fatalf("Expected the exchanged token to be saved once, got %d saves", len(mockStore.savedTokens))
	}
	if mockStore.savedTokens[0].AccessToken != "exchanged-token" {
		t.Errorf("Expected the exchanged access token to be saved, got '%s'", mockStore.savedTokens[0].AccessToken)
	}
}

func TestAutoSaveTokenSourceSavesRefreshedToken(t *testing.T) {
	initial := &oauth2.Token{AccessToken: "old-token"}
	refreshed := &oauth2.Token{AccessToken: "new-token", Expiry: time.Now().Add(time.Hour)}

	mockStore := &mockTokenStore{}
	source := &autoSaveTokenSource{
		source:     oauth2.StaticTokenSource(refreshed),
		tokenStore: mockStore,
		lastToken:  initial,
	}

	token, err := source.Token()
	if err != nil {
		t.Fatalf("Token() returned an error: %v", err)
	}
	if token.AccessToken != "new-token" {
		t.Errorf("Expected the refreshed token, got '%s'", token.AccessToken)
	}
	if len(mockStore.savedTokens) != 1 {
		t.Fatalf("Expected the refreshed token to be saved, got %d saves", len(mockStore.savedTokens))
	}

	// A second call with the same token must not save again
	if _, err := source.Token(); err != nil {
		t.Fatalf("Token() returned an error: %v", err)
	}
	if len(mockStore.savedTokens) != 1 {
		t.Errorf("Expected no save for an unchanged token, got %d saves", len(mockStore.savedTokens))
	}
}

func TestFileTokenStoreSaveLoad(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	store := NewFileTokenStore(tokenPath)

	token := &oauth2.Token{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		Expiry:       time.Now().Add(1 * time.Hour),
		TokenType:    "Bearer",
	}

	if err := store.SaveToken(token); err != nil {
		t.Fatalf("SaveToken() returned an error: %v", err)
	}

	loaded, err := store.LoadToken()
	if err != nil {
		t.Fatalf("LoadToken() returned an error: %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadToken() returned nil token")
	}
	if loaded.AccessToken != token.AccessToken {
		t.Errorf("Expected AccessToken to be '%s', got '%s'", token.AccessToken, loaded.AccessToken)
	}
	if loaded.RefreshToken != token.RefreshToken {
		t.Errorf("Expected RefreshToken to be '%s', got '%s'", token.RefreshToken, loaded.RefreshToken)
	}
	if !loaded.Expiry.Equal(token.Expiry) {
		t.Errorf("Expected Expiry to be %v, got %v", token.Expiry, loaded.Expiry)
	}
}

func TestFileTokenStoreLoadMissing(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "nonexistent.json"))

	token, err := store.LoadToken()
	if err != nil {
		t.Fatalf("LoadToken() returned an error for a missing file: %v", err)
	}
	if token != nil {
		t.Errorf("Expected nil token for a missing file, got %+v", token)
	}
}
