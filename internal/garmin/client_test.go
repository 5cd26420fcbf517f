package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T, apiBase, dir string) *Client {
	t.Helper()
	c, err := NewClient(apiBase, dir)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// TestNewClientTokenFile verifies an absent token file is tolerated while a
// corrupt one fails construction.
func TestNewClientTokenFile(t *testing.T) {
	if _, err := NewClient("http://127.0.0.1:0", t.TempDir()); err != nil {
		t.Fatalf("empty token dir: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewClient("http://127.0.0.1:0", dir); err == nil {
		t.Fatal("expected error for corrupt token file")
	}
}

// TestLoginSavesToken verifies a successful login persists the token and
// flips Status to authenticated.
func TestLoginSavesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth-service/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatal(err)
		}
		if creds["username"] != "swimmer@example.com" {
			t.Errorf("username = %q", creds["username"])
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok-123",
			"display_name": "Swimmer",
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := newTestClient(t, srv.URL, dir)

	if st := c.Status(); st.Authenticated {
		t.Fatal("authenticated before login")
	}
	if err := c.Login(context.Background(), "swimmer@example.com", "secret"); err != nil {
		t.Fatal(err)
	}
	if st := c.Status(); !st.Authenticated || st.UserName != "Swimmer" {
		t.Errorf("status = %+v", st)
	}

	// A fresh client picks the token up from disk.
	c2 := newTestClient(t, srv.URL, dir)
	if st := c2.Status(); !st.Authenticated {
		t.Error("saved token not loaded")
	}
	if _, err := os.Stat(filepath.Join(dir, "tokens.json")); err != nil {
		t.Errorf("token file missing: %v", err)
	}
}

// TestLoginBadCredentials verifies a non-200 login response surfaces as an
// error and leaves the client unauthenticated.
func TestLoginBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, t.TempDir())
	if err := c.Login(context.Background(), "a@b.c", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if c.Status().Authenticated {
		t.Error("authenticated after failed login")
	}
}

// TestUploadWorkout verifies the bearer header and the workoutId extraction.
func TestUploadWorkout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workout-service/workout" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("auth = %q", got)
		}
		var p Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatal(err)
		}
		if p.SportType.SportTypeKey != "lap_swimming" {
			t.Errorf("sport = %q", p.SportType.SportTypeKey)
		}
		json.NewEncoder(w).Encode(map[string]any{"workoutId": 987654})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, t.TempDir())
	c.token = &Token{AccessToken: "tok-123"}

	id, err := c.UploadWorkout(context.Background(), Payload{SportType: lapSwimming()})
	if err != nil {
		t.Fatal(err)
	}
	if id != "987654" {
		t.Errorf("id = %q, want 987654", id)
	}
}

// TestUploadWithoutToken verifies ErrNotAuthenticated before any network
// traffic.
func TestUploadWithoutToken(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0", t.TempDir())
	_, err := c.UploadWorkout(context.Background(), Payload{})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}

// TestUploadExpiredToken verifies a 401 maps to ErrNotAuthenticated without
// retrying.
func TestUploadExpiredToken(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, t.TempDir())
	c.token = &Token{AccessToken: "stale"}

	_, err := c.UploadWorkout(context.Background(), Payload{})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 401)", calls)
	}
}

// TestUploadRetries verifies transient server errors are retried and a later
// success wins.
func TestUploadRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"workoutId": 42})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, t.TempDir())
	c.token = &Token{AccessToken: "tok"}

	id, err := c.UploadWorkout(context.Background(), Payload{})
	if err != nil {
		t.Fatal(err)
	}
	if id != "42" {
		t.Errorf("id = %q, want 42", id)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

// TestLogout verifies the token file is removed and a missing file is not an
// error.
func TestLogout(t *testing.T) {
	dir := t.TempDir()
	c := newTestClient(t, "http://127.0.0.1:0", dir)
	c.token = &Token{AccessToken: "tok"}
	if err := c.saveToken(c.token); err != nil {
		t.Fatal(err)
	}

	if err := c.Logout(); err != nil {
		t.Fatal(err)
	}
	if c.Status().Authenticated {
		t.Error("still authenticated")
	}
	if _, err := os.Stat(filepath.Join(dir, "tokens.json")); !os.IsNotExist(err) {
		t.Error("token file still exists")
	}

	// Second logout with no file.
	if err := c.Logout(); err != nil {
		t.Errorf("logout without token file: %v", err)
	}
}
