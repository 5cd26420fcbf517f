package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dylanjrt/garmin-workouts/internal/model"
)

// Client fetches workout documents from the workout server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the workout server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) get(path string) ([]byte, error) {
	resp, err := c.httpClient.Get(c.serverURL + path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, body)
	}
	return body, nil
}

// FetchWorkouts retrieves list-view summaries of all workouts.
func (c *Client) FetchWorkouts() ([]model.Summary, error) {
	body, err := c.get("/api/v1/workouts")
	if err != nil {
		return nil, err
	}

	var summaries []model.Summary
	if err := json.Unmarshal(body, &summaries); err != nil {
		return nil, fmt.Errorf("decoding workouts: %w", err)
	}
	return summaries, nil
}

// FetchWorkout retrieves one full workout document. It returns both the
// decoded workout and the raw document bytes so callers can hash the
// document for change detection.
func (c *Client) FetchWorkout(id string) (*model.Workout, []byte, error) {
	body, err := c.get("/api/v1/workouts/" + id)
	if err != nil {
		return nil, nil, err
	}

	var w model.Workout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, nil, fmt.Errorf("decoding workout %s: %w", id, err)
	}
	return &w, body, nil
}
