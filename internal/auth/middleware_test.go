package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"painpal/internal/model"
	"painpal/internal/repository/memory"
)

// seedUser registers a user in a fresh in-memory store.
func seedUser(t *testing.T, uid string) (*memory.Store, *model.User) {
	t.Helper()
	store := memory.New()
	u := &model.User{Email: uid + "@example.com", Name: "Test", ExternalUID: uid}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return store, u
}

// echoHandler records the user resolved by the middleware.
func echoHandler(got **model.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := UserFromContext(r.Context()); ok {
			*got = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_DevMode(t *testing.T) {
	store, u := seedUser(t, "uid-dev")

	var got *model.User
	// nil TokenService = development mode: the raw header is trusted.
	h := RequireAuth(nil, store)(echoHandler(&got))

	t.Run("known uid resolves", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/pain-logs", nil)
		req.Header.Set(HeaderIdentityUID, "uid-dev")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		if got == nil || got.ID != u.ID {
			t.Errorf("resolved user = %+v, want id %d", got, u.ID)
		}
	})

	t.Run("missing header is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/pain-logs", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("unknown uid is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/pain-logs", nil)
		req.Header.Set(HeaderIdentityUID, "uid-stranger")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})
}

func TestRequireAuth_VerifiedMode(t *testing.T) {
	store, u := seedUser(t, "uid-signed")
	tokens := newTestTokenService(t)

	var got *model.User
	h := RequireAuth(tokens, store)(echoHandler(&got))

	t.Run("valid bearer token resolves", func(t *testing.T) {
		token, err := tokens.Generate("uid-signed", time.Hour)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/mood-logs", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		if got == nil || got.ID != u.ID {
			t.Errorf("resolved user = %+v, want id %d", got, u.ID)
		}
	})

	t.Run("raw uid header is NOT accepted when a secret is configured", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/mood-logs", nil)
		req.Header.Set(HeaderIdentityUID, "uid-signed")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401 — dev header must not bypass verification", rr.Code)
		}
	})

	t.Run("tampered token is 401", func(t *testing.T) {
		token, err := tokens.Generate("uid-signed", time.Hour)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/mood-logs", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})
}
