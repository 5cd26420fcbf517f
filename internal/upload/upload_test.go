package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dylanjrt/garmin-workouts/internal/garmin"
	"github.com/dylanjrt/garmin-workouts/internal/model"
)

// fakeGarmin records uploads without talking to Garmin.
type fakeGarmin struct {
	err      error
	uploaded []garmin.Payload
}

func (g *fakeGarmin) UploadWorkout(ctx context.Context, p garmin.Payload) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.uploaded = append(g.uploaded, p)
	return "gid-1", nil
}

// workoutServer serves a fixed set of workouts over the REST shape the
// uploader fetches.
func workoutServer(t *testing.T, workouts map[string]model.Workout) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/workouts" {
			var summaries []model.Summary
			for _, wk := range workouts {
				summaries = append(summaries, wk.Summarize())
			}
			json.NewEncoder(w).Encode(summaries)
			return
		}
		id := r.URL.Path[len("/api/v1/workouts/"):]
		wk, ok := workouts[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(wk)
	}))
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestUploaderSyncsAndSkips verifies a first run uploads every workout and
// an immediate second run skips them all via the state DB.
func TestUploaderSyncsAndSkips(t *testing.T) {
	workouts := map[string]model.Workout{
		"w1": {ID: "w1", Name: "endurance", PoolLength: 25,
			Steps: model.ItemList{model.WorkoutStep{ID: "a", StepType: model.StepInterval, Stroke: model.StrokeFreestyle, DistanceM: 400}}},
		"w2": {ID: "w2", Name: "sprints", PoolLength: 25,
			Steps: model.ItemList{model.WorkoutStep{ID: "b", StepType: model.StepInterval, Stroke: model.StrokeFreestyle, DistanceM: 50}}},
	}
	srv := workoutServer(t, workouts)
	defer srv.Close()

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	gw := &fakeGarmin{}
	u := New(NewClient(srv.URL), gw, state, false, discard())

	stats, err := u.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsTotal != 2 || stats.WorkoutsUploaded != 2 || stats.WorkoutsSkipped != 0 {
		t.Errorf("first run stats = %+v", stats)
	}
	if len(gw.uploaded) != 2 {
		t.Fatalf("uploads = %d, want 2", len(gw.uploaded))
	}
	if gw.uploaded[0].SportType.SportTypeKey != "lap_swimming" {
		t.Errorf("payload sport = %q", gw.uploaded[0].SportType.SportTypeKey)
	}

	// Second run over unchanged documents sends nothing.
	u2 := New(NewClient(srv.URL), gw, state, false, discard())
	stats, err = u2.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsSkipped != 2 || stats.WorkoutsUploaded != 0 {
		t.Errorf("second run stats = %+v", stats)
	}
	if len(gw.uploaded) != 2 {
		t.Errorf("uploads after second run = %d, want still 2", len(gw.uploaded))
	}
}

// TestUploaderSelectedIDs verifies only the requested workouts are synced.
func TestUploaderSelectedIDs(t *testing.T) {
	workouts := map[string]model.Workout{
		"w1": {ID: "w1", Name: "a", PoolLength: 25},
		"w2": {ID: "w2", Name: "b", PoolLength: 25},
	}
	srv := workoutServer(t, workouts)
	defer srv.Close()

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	gw := &fakeGarmin{}
	u := New(NewClient(srv.URL), gw, state, false, discard())

	stats, err := u.Run(context.Background(), []string{"w2"})
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsTotal != 1 || stats.WorkoutsUploaded != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(gw.uploaded) != 1 || gw.uploaded[0].WorkoutName != "b" {
		t.Errorf("uploaded = %+v", gw.uploaded)
	}
}

// TestUploaderDryRun verifies dry-run builds payloads but neither sends nor
// records state.
func TestUploaderDryRun(t *testing.T) {
	workouts := map[string]model.Workout{
		"w1": {ID: "w1", Name: "a", PoolLength: 25},
	}
	srv := workoutServer(t, workouts)
	defer srv.Close()

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	gw := &fakeGarmin{}
	u := New(NewClient(srv.URL), gw, state, true, discard())

	stats, err := u.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsUploaded != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(gw.uploaded) != 0 {
		t.Error("dry run sent to garmin")
	}
	if up, _ := state.IsUploaded("w1", HashDocument(nil)); up {
		t.Error("dry run recorded state")
	}
}

// TestUploaderErrors verifies a failing upload counts as errored and does
// not mark state, so the next run retries it.
func TestUploaderErrors(t *testing.T) {
	workouts := map[string]model.Workout{
		"w1": {ID: "w1", Name: "a", PoolLength: 25},
	}
	srv := workoutServer(t, workouts)
	defer srv.Close()

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	gw := &fakeGarmin{err: errors.New("garmin down")}
	u := New(NewClient(srv.URL), gw, state, false, discard())

	stats, err := u.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsErrored != 1 || stats.WorkoutsUploaded != 0 {
		t.Errorf("stats = %+v", stats)
	}

	// Retry after the outage succeeds and uploads.
	gw.err = nil
	u2 := New(NewClient(srv.URL), gw, state, false, discard())
	stats, err = u2.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsUploaded != 1 {
		t.Errorf("retry stats = %+v", stats)
	}
}
