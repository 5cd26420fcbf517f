package upload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dylanjrt/garmin-workouts/internal/garmin"
)

// Stats tracks sync progress.
type Stats struct {
	WorkoutsTotal    int
	WorkoutsUploaded int
	WorkoutsSkipped  int
	WorkoutsErrored  int
}

// GarminGateway is the slice of the Garmin client the uploader needs.
type GarminGateway interface {
	UploadWorkout(ctx context.Context, p garmin.Payload) (string, error)
}

// Uploader syncs workout documents from the workout server to Garmin
// Connect, skipping workouts whose documents are unchanged since the
// last successful upload.
type Uploader struct {
	client *Client
	garmin GarminGateway
	state  *StateDB
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, gw GarminGateway, state *StateDB, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		garmin: gw,
		state:  state,
		dryRun: dryRun,
		log:    log,
	}
}

// Run syncs the workouts with the given ids. An empty slice means all
// workouts on the server.
func (u *Uploader) Run(ctx context.Context, ids []string) (*Stats, error) {
	if len(ids) == 0 {
		summaries, err := u.client.FetchWorkouts()
		if err != nil {
			return &u.stats, fmt.Errorf("listing workouts: %w", err)
		}
		for _, s := range summaries {
			ids = append(ids, s.ID)
		}
	}

	for _, id := range ids {
		u.stats.WorkoutsTotal++
		if err := u.syncOne(ctx, id); err != nil {
			u.log.Warn("sync failed", "workout", id, "error", err)
			u.stats.WorkoutsErrored++
		}
	}

	return &u.stats, nil
}

func (u *Uploader) syncOne(ctx context.Context, id string) error {
	w, doc, err := u.client.FetchWorkout(id)
	if err != nil {
		return err
	}

	hash := HashDocument(doc)
	uploaded, err := u.state.IsUploaded(id, hash)
	if err != nil {
		return fmt.Errorf("state check: %w", err)
	}
	if uploaded {
		u.stats.WorkoutsSkipped++
		u.log.Info("unchanged, skipping", "workout", id, "name", w.Name)
		return nil
	}

	payload := garmin.BuildPayload(*w)

	if u.dryRun {
		u.log.Info("dry-run: would upload",
			"workout", id,
			"name", payload.WorkoutName,
			"segments", len(payload.WorkoutSegments),
		)
		u.stats.WorkoutsUploaded++
		return nil
	}

	garminID, err := u.garmin.UploadWorkout(ctx, payload)
	if err != nil {
		return fmt.Errorf("uploading to garmin: %w", err)
	}

	if err := u.state.MarkUploaded(id, hash); err != nil {
		u.log.Warn("failed to mark uploaded", "workout", id, "error", err)
	}

	u.stats.WorkoutsUploaded++
	u.log.Info("uploaded", "workout", id, "name", payload.WorkoutName, "garmin_id", garminID)
	return nil
}
