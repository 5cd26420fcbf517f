package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dylanjrt/garmin-workouts/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when no workout exists for the requested id.
var ErrNotFound = errors.New("workout not found")

// ListWorkouts returns list-view summaries of a user's workouts, newest
// first. Totals are computed from the stored step tree.
func (db *DB) ListWorkouts(ctx context.Context, userID int) ([]model.Summary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, steps
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []model.Summary
	for rows.Next() {
		var (
			id    uuid.UUID
			name  string
			steps []byte
		)
		if err := rows.Scan(&id, &name, &steps); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}

		var items model.ItemList
		if err := json.Unmarshal(steps, &items); err != nil {
			return nil, fmt.Errorf("decoding steps for %s: %w", id, err)
		}

		result = append(result, model.Summary{
			ID:            id.String(),
			Name:          name,
			TotalDistance: model.TotalDistance(items),
			StepCount:     len(items),
		})
	}
	return result, rows.Err()
}

// GetWorkout loads the full document for one workout.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*model.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, pool_length, COALESCE(target_distance, 0), steps
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		id, userID)

	var (
		wid   uuid.UUID
		w     model.Workout
		steps []byte
	)
	err := row.Scan(&wid, &w.Name, &w.PoolLength, &w.TargetDistance, &steps)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	w.ID = wid.String()
	if err := json.Unmarshal(steps, &w.Steps); err != nil {
		return nil, fmt.Errorf("decoding steps: %w", err)
	}
	return &w, nil
}

// CreateWorkout inserts a new workout document.
func (db *DB) CreateWorkout(ctx context.Context, w model.Workout, userID int) error {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return fmt.Errorf("invalid workout id %q: %w", w.ID, err)
	}
	steps, err := json.Marshal(w.Steps)
	if err != nil {
		return fmt.Errorf("encoding steps: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, pool_length, target_distance, steps)
		 VALUES ($1, $2, $3, $4, NULLIF($5, 0), $6)`,
		id, userID, w.Name, w.PoolLength, w.TargetDistance, steps)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

// SaveWorkout replaces the stored document with the given tree. Saves always
// carry the full document; the last save wins.
func (db *DB) SaveWorkout(ctx context.Context, w model.Workout, userID int) error {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return fmt.Errorf("invalid workout id %q: %w", w.ID, err)
	}
	steps, err := json.Marshal(w.Steps)
	if err != nil {
		return fmt.Errorf("encoding steps: %w", err)
	}

	tag, err := db.Pool.Exec(ctx,
		`UPDATE workouts
		 SET name = $3, pool_length = $4, target_distance = NULLIF($5, 0),
		     steps = $6, updated_at = now()
		 WHERE id = $1 AND user_id = $2`,
		id, userID, w.Name, w.PoolLength, w.TargetDistance, steps)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWorkout removes a workout document.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
