package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_VerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":    "user-123",
				"email": "doc@example.com",
				"role":  "authenticated",
			})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, AnonKey: "anon-key"})

	claims, err := c.VerifyToken(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if claims.UserID != "user-123" || claims.Email != "doc@example.com" || claims.Role != "authenticated" {
		t.Fatalf("unexpected claims: %#v", claims)
	}

	if _, err := c.VerifyToken(context.Background(), "bad-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if _, err := c.VerifyToken(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(Config{})
	if c.IsConfigured() {
		t.Fatalf("expected not configured")
	}
	if _, err := c.VerifyToken(context.Background(), "token"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
