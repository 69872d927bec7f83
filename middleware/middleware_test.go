// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/ballot-core/apperrors"
	"github.com/danielhkuo/ballot-core/auth"
	"github.com/danielhkuo/ballot-core/models"
)

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"vote_hash":"abc"}`},
		{"BadRequest", http.StatusBadRequest, `{"error":"bad request"}`},
		{"NotFound", http.StatusNotFound, "not found"},
		{"Unavailable", http.StatusServiceUnavailable, "busy"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/votes", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	submitted := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "simple struct",
			statusCode: http.StatusOK,
			data:       map[string]string{"message": "hello"},
			expected:   `{"message":"hello"}`,
		},
		{
			name:       "receipt",
			statusCode: http.StatusCreated,
			data:       models.Receipt{VoteHash: "ab12", ElectionID: "e1", SubmittedAt: submitted, Message: "ok"},
			expected:   `{"vote_hash":"ab12","election_id":"e1","submitted_at":"2025-03-01T12:00:00Z","message":"ok"}`,
		},
		{
			name:       "vote hides voter and nonce",
			statusCode: http.StatusOK,
			data:       models.Vote{ID: "v1", ElectionID: "e1", CandidateID: "c1", VoterID: "secret", SubmittedAt: submitted, Nonce: []byte{1}, ReceiptHash: "h"},
			expected:   `{"id":"v1","election_id":"e1","candidate_id":"c1","submitted_at":"2025-03-01T12:00:00Z","receipt_hash":"h"}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []string{"a", "b", "c"},
			expected:   `["a","b","c"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			contentType := w.Header().Get("Content-Type")
			if contentType != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
			}

			// Trim newline added by Encode
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestError(t *testing.T) {
	testCases := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedKind    string
		expectedMessage string
	}{
		{"validation", apperrors.Validation("title is required"), http.StatusBadRequest, "validation", "title is required"},
		{"invalid candidate", apperrors.New(apperrors.KindInvalidCandidate, "bad candidate"), http.StatusBadRequest, "invalid_candidate", "bad candidate"},
		{"not active", apperrors.New(apperrors.KindElectionNotActive, "closed"), http.StatusBadRequest, "election_not_active", "closed"},
		{"not found", apperrors.NotFound("election not found"), http.StatusNotFound, "not_found", "election not found"},
		{"already voted", apperrors.New(apperrors.KindAlreadyVoted, "already voted"), http.StatusConflict, "already_voted", "already voted"},
		{"invalid transition", apperrors.New(apperrors.KindInvalidTransition, "no"), http.StatusConflict, "invalid_transition", "no"},
		{"unauthorized", auth.ErrMissingToken, http.StatusUnauthorized, "unauthorized", "missing bearer token"},
		{"forbidden", apperrors.New(apperrors.KindForbidden, "admin role required"), http.StatusForbidden, "forbidden", "admin role required"},
		{"storage unavailable", apperrors.Wrap(apperrors.KindStorageUnavailable, "storage is temporarily unavailable", errors.New("SQLITE_BUSY")), http.StatusServiceUnavailable, "storage_unavailable", "storage is temporarily unavailable"},
		{"internal hides cause", apperrors.Wrap(apperrors.KindInternal, "storage error", errors.New("pq: syntax error")), http.StatusInternalServerError, "internal", "internal error"},
		{"plain error is internal", errors.New("boom"), http.StatusInternalServerError, "internal", "internal error"},
		{"wrapped domain error", fmt.Errorf("cast: %w", apperrors.NotFound("vote not found")), http.StatusNotFound, "not_found", "vote not found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			Error(w, tc.err)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, w.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Kind != tc.expectedKind {
				t.Errorf("Expected kind '%s', got '%s'", tc.expectedKind, resp.Kind)
			}
			if resp.Message != tc.expectedMessage {
				t.Errorf("Expected message '%s', got '%s'", tc.expectedMessage, resp.Message)
			}
			if resp.Detail != resp.Message {
				t.Errorf("Expected detail to mirror message, got '%s'", resp.Detail)
			}
			if resp.Error != http.StatusText(tc.expectedStatus) {
				t.Errorf("Expected error '%s', got '%s'", http.StatusText(tc.expectedStatus), resp.Error)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		body := `{"election_id":"e1","candidate_id":"c1"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CastVoteRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.ElectionID != "e1" || parsed.CandidateID != "c1" {
			t.Errorf("Unexpected parse result: %+v", parsed)
		}
	})

	t.Run("invalid JSON is a validation error", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{invalid json}`))

		var parsed models.CastVoteRequest
		err := ParseJSONBody(req, &parsed)
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))

		var parsed models.CastVoteRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for empty body")
		}
	})

	t.Run("extra fields ignored", func(t *testing.T) {
		body := `{"election_id":"e1","candidate_id":"c1","unknown_field":"ignored"}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var parsed models.CastVoteRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	})

	t.Run("body is consumed after parsing", func(t *testing.T) {
		body := `{"election_id":"e1"}`
		req := httptest.NewRequest("POST", "/", io.NopCloser(bytes.NewReader([]byte(body))))

		var parsed models.CastVoteRequest
		_ = ParseJSONBody(req, &parsed)

		remaining, _ := io.ReadAll(req.Body)
		if len(remaining) > 0 {
			t.Error("Expected body to be consumed")
		}
	})
}

func newGate(t *testing.T) *auth.Gate {
	t.Helper()
	gate, err := auth.NewGate("middleware-secret", "ballot-core", 16)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}
	return gate
}

func bearer(t *testing.T, gate *auth.Gate, role string) string {
	t.Helper()
	token, err := gate.Issue(models.Voter{ID: "u-" + role, Username: role, Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return "Bearer " + token
}

func TestAuthenticate(t *testing.T) {
	gate := newGate(t)

	var seen models.Voter
	handler := Authenticate(gate, func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.VoterFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	testCases := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"voter token", bearer(t, gate, models.RoleVoter), http.StatusNoContent},
		{"admin token", bearer(t, gate, models.RoleAdmin), http.StatusNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seen = models.Voter{}
			req := httptest.NewRequest("GET", "/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, w.Code)
			}
			if tc.expectedStatus == http.StatusUnauthorized {
				if w.Header().Get("WWW-Authenticate") == "" {
					t.Error("Expected WWW-Authenticate header on 401")
				}
				if seen.ID != "" {
					t.Error("Handler must not run without a valid token")
				}
			} else if seen.ID == "" {
				t.Error("Expected identity in request context")
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	gate := newGate(t)

	called := false
	handler := RequireAdmin(gate, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"voter", bearer(t, gate, models.RoleVoter), http.StatusForbidden},
		{"admin", bearer(t, gate, models.RoleAdmin), http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest("POST", "/elections", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, w.Code)
			}
			if called != (tc.expectedStatus == http.StatusOK) {
				t.Errorf("Handler called = %v for status %d", called, tc.expectedStatus)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("handled"))
	})

	corsHandler := CORS(nextHandler)

	t.Run("preflight OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/elections", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Body.String() != "" {
			t.Errorf("Expected empty body for preflight, got '%s'", w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
			t.Error("Expected Access-Control-Allow-Origin to match request origin")
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
			t.Error("Expected Authorization in allowed headers")
		}
	})

	t.Run("regular request with origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/elections", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "https://example.com" {
			t.Error("Expected Access-Control-Allow-Origin to reflect request origin")
		}
	})

	t.Run("request without origin defaults to wildcard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/elections", nil)
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected Access-Control-Allow-Origin to default to '*'")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{
			name:       "X-Forwarded-For chained IPs",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "203.0.113.195",
		},
		{
			name:       "X-Real-IP takes precedence over RemoteAddr",
			headers:    map[string]string{"X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "203.0.113.50",
		},
		{
			name:       "RemoteAddr with port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.50:54321",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.50",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "IPv6 RemoteAddr with port",
			headers:    map[string]string{},
			remoteAddr: "[::1]:12345",
			expectedIP: "::1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, got)
			}
		})
	}
}
