package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dylanjrt/garmin-workouts/internal/model"
	"github.com/google/uuid"
)

// TestHTTPClientListWorkouts verifies the remote data source hits the REST
// list route and decodes summaries.
func TestHTTPClientListWorkouts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workouts" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]model.Summary{
			{ID: "w1", Name: "morning swim", TotalDistance: 1500, StepCount: 4},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL + "/")
	summaries, err := c.ListWorkouts(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].TotalDistance != 1500 {
		t.Errorf("summaries = %+v", summaries)
	}
}

// TestHTTPClientGetWorkout verifies the full document fetch, including the
// step/group union decode.
func TestHTTPClientGetWorkout(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workouts/"+id.String() {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(model.Workout{
			ID:         id.String(),
			Name:       "repeats",
			PoolLength: 25,
			Steps: model.ItemList{
				model.RepeatGroup{ID: "g", StepType: model.StepRepeat, Iterations: 4,
					Steps: []model.WorkoutStep{{ID: "x", StepType: model.StepInterval, DistanceM: 100}}},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	w, err := c.GetWorkout(context.Background(), id, 1)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := w.Steps[0].(model.RepeatGroup)
	if !ok {
		t.Fatalf("step 0 = %T, want RepeatGroup", w.Steps[0])
	}
	if g.Iterations != 4 {
		t.Errorf("iterations = %d, want 4", g.Iterations)
	}
}

// TestHTTPClientErrorStatus verifies non-200 responses surface as errors.
func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if _, err := c.ListWorkouts(context.Background(), 1); err == nil {
		t.Error("expected error")
	}
	if _, err := c.GetWorkout(context.Background(), uuid.New(), 1); err == nil {
		t.Error("expected error")
	}
}
