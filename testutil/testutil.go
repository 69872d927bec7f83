// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/ballot-core/auth"
	"github.com/danielhkuo/ballot-core/cliparse"
	"github.com/danielhkuo/ballot-core/db"
	"github.com/danielhkuo/ballot-core/models"
)

// TestTokenSecret signs every token minted by the helpers below
const TestTokenSecret = "test-token-secret"

// SetupTestDB creates a fresh sqlite database with the full schema.
// The file lives in t.TempDir() and is closed when the test ends.
func SetupTestDB(t *testing.T) (*sql.DB, db.Dialect) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ballot.db")
	conn, dialect, err := db.Open(cliparse.DatabaseSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn, dialect
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              3318,
		DatabaseURL:       "file::memory:",
		DatabaseType:      cliparse.DatabaseSQLite,
		TokenSecret:       TestTokenSecret,
		TokenIssuer:       "ballot-core",
		VoteTimeout:       10 * time.Second,
		IdentityCacheSize: 64,
		ShutdownTimeout:   time.Second,
	}
}

// NewTestGate returns an access gate matching GetTestConfig
func NewTestGate(t *testing.T) *auth.Gate {
	t.Helper()

	cfg := GetTestConfig()
	gate, err := auth.NewGate(cfg.TokenSecret, cfg.TokenIssuer, cfg.IdentityCacheSize)
	if err != nil {
		t.Fatalf("Failed to create gate: %v", err)
	}
	return gate
}

// Voter builds a voter-role identity
func Voter(id string) models.Voter {
	return models.Voter{ID: id, Username: "user-" + id, Role: models.RoleVoter}
}

// Admin builds an admin-role identity
func Admin(id string) models.Voter {
	return models.Voter{ID: id, Username: "admin-" + id, Role: models.RoleAdmin}
}

// BearerHeaders issues a token for v and returns it as request headers
func BearerHeaders(t *testing.T, gate *auth.Gate, v models.Voter) map[string]string {
	t.Helper()

	token, err := gate.Issue(v, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
