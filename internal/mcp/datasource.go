package mcp

import (
	"context"

	"github.com/dylanjrt/garmin-workouts/internal/model"
	"github.com/dylanjrt/garmin-workouts/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, userID int) ([]model.Summary, error)
	GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*model.Workout, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
