package authsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// fakeServer rotates refresh tokens and issues access tokens that are
// already inside the refresh skew, so every Session call refreshes first.
type fakeServer struct {
	mu        sync.Mutex
	refreshes int
	current   string
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "p1" {
			writeJSON(w, http.StatusUnauthorized, authsdk.ErrorResponse{Error: "invalid_credentials", ErrorDescription: "Invalid credentials"})
			return
		}
		f.mu.Lock()
		f.current = "rt-0"
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, authsdk.TokenResponse{AccessToken: "at-0", RefreshToken: "rt-0", TokenType: "Bearer", ExpiresIn: 10})
	})

	mux.HandleFunc("POST /refresh", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		defer f.mu.Unlock()
		if req.RefreshToken != f.current {
			writeJSON(w, http.StatusUnauthorized, authsdk.ErrorResponse{Error: "invalid_refresh_token", ErrorDescription: "Invalid refresh token"})
			return
		}
		f.refreshes++
		f.current = "rt-" + string(rune('0'+f.refreshes))
		writeJSON(w, http.StatusOK, authsdk.TokenResponse{AccessToken: "at-" + string(rune('0'+f.refreshes)), RefreshToken: f.current, TokenType: "Bearer", ExpiresIn: 10})
	})

	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, authsdk.LogoutResponse{Success: "User logged out."})
	})

	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, authsdk.UserResponse{ID: "01J", Email: "a@x.com", Username: ptr(r.Header.Get("Authorization"))})
	})

	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, authsdk.NewValidationError(map[string]string{"email": "user with this email already exists."}))
	})

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func ptr(s string) *string { return &s }

func TestClient_ErrorsAreTyped(t *testing.T) {
	srv := httptest.NewServer((&fakeServer{}).handler())
	defer srv.Close()

	client := authsdk.NewSDKClient(srv.URL + "/")
	ctx := context.Background()

	_, err := client.Login(ctx, "a@x.com", "wrong")
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInvalidCredentials, apiErr.Code)

	_, err = client.Register(ctx, "a@x.com", "p1")
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, authsdk.ErrorCodeValidation, apiErr.Code)
	require.Contains(t, apiErr.Details, "email")

	_, err = client.Livez(ctx)
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestSession_AutoRefreshRotates(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	ctx := context.Background()
	session, err := authsdk.NewSDKClient(srv.URL).AuthenticateWithPassword(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "Bearer at-1", *me.Username)
	require.Equal(t, "rt-1", session.RefreshToken())

	_, err = session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "rt-2", session.RefreshToken())

	require.NoError(t, session.Logout(ctx))
	require.Empty(t, session.RefreshToken())
	require.ErrorIs(t, session.Logout(ctx), authsdk.ErrSessionClosed)

	_, err = session.Me(ctx)
	require.ErrorIs(t, err, authsdk.ErrSessionClosed)
}

func TestSession_ConcurrentCallersShareRefresh(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	ctx := context.Background()
	session, err := authsdk.NewSDKClient(srv.URL).AuthenticateWithPassword(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := session.Me(ctx)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	// Each call refreshes because tokens are issued inside the skew, but
	// never with a stale refresh token.
	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Equal(t, 8, fake.refreshes)
}
