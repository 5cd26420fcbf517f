package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultAPIBase is the Garmin Connect API endpoint used when the config
// leaves garmin.api_base empty.
const DefaultAPIBase = "https://connectapi.garmin.com"

// ErrNotAuthenticated is returned when an operation needs a session but no
// valid token is stored.
var ErrNotAuthenticated = errors.New("garmin: not authenticated")

// Token is the persisted session. Saved under the token dir so a later run
// can resume without credentials.
type Token struct {
	AccessToken string    `json:"access_token"`
	DisplayName string    `json:"display_name"`
	SavedAt     time.Time `json:"saved_at"`
}

// Status reports whether a session token is available and for whom.
type Status struct {
	Authenticated bool   `json:"authenticated"`
	UserName      string `json:"user_name,omitempty"`
}

// UploadResult is the outcome of pushing one workout to Garmin Connect.
type UploadResult struct {
	Success   bool   `json:"success"`
	WorkoutID string `json:"workout_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Client talks to Garmin Connect. Tokens are stored as a JSON file under
// tokenDir, mirroring how the desktop tools keep their garth tokens.
type Client struct {
	apiBase    string
	tokenDir   string
	httpClient *http.Client
	token      *Token
}

// NewClient creates a Client. An empty apiBase falls back to DefaultAPIBase.
// Any token already saved under tokenDir is loaded; a missing token file is
// fine, an unreadable one is an error so a corrupt session surfaces at
// startup instead of as a confusing 401 later.
func NewClient(apiBase, tokenDir string) (*Client, error) {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	c := &Client{
		apiBase:    apiBase,
		tokenDir:   tokenDir,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	t, err := loadToken(c.tokenPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading saved token: %w", err)
	}
	c.token = t
	return c, nil
}

func (c *Client) tokenPath() string {
	return filepath.Join(c.tokenDir, "tokens.json")
}

func loadToken(path string) (*Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	if t.AccessToken == "" {
		return nil, errors.New("token file has no access token")
	}
	return &t, nil
}

func (c *Client) saveToken(t *Token) error {
	if err := os.MkdirAll(c.tokenDir, 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.tokenPath(), data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Login exchanges credentials for a session token and persists it. An
// existing valid token is replaced.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{"username": email, "password": password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/oauth-service/token", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("garmin login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("garmin login failed (status %d): %s", resp.StatusCode, respBody)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decoding login response: %w", err)
	}
	if payload.AccessToken == "" {
		return errors.New("garmin login: empty access token in response")
	}

	t := &Token{
		AccessToken: payload.AccessToken,
		DisplayName: payload.DisplayName,
		SavedAt:     time.Now(),
	}
	if err := c.saveToken(t); err != nil {
		return err
	}
	c.token = t
	return nil
}

// Logout discards the stored session.
func (c *Client) Logout() error {
	c.token = nil
	err := os.Remove(c.tokenPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Status reports the current session state without touching the network.
func (c *Client) Status() Status {
	if c.token == nil {
		return Status{}
	}
	return Status{Authenticated: true, UserName: c.token.DisplayName}
}

// UploadWorkout pushes a payload to the workout service and returns Garmin's
// id for it. Transient failures are retried up to 3 times with exponential
// backoff.
func (c *Client) UploadWorkout(ctx context.Context, p Payload) (string, error) {
	if c.token == nil {
		return "", ErrNotAuthenticated
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshaling workout payload: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.apiBase+"/workout-service/workout", bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token.AccessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
			var result struct {
				WorkoutID json.Number `json:"workoutId"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return "", fmt.Errorf("decoding upload response: %w", err)
			}
			return result.WorkoutID.String(), nil
		case resp.StatusCode == http.StatusUnauthorized:
			// Token expired; retrying won't help.
			return "", ErrNotAuthenticated
		default:
			lastErr = fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, body)
		}
	}

	return "", fmt.Errorf("after 3 attempts: %w", lastErr)
}
