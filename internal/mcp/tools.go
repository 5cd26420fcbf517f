package mcp

import (
	"context"

	"github.com/dylanjrt/garmin-workouts/internal/garmin"
	"github.com/dylanjrt/garmin-workouts/internal/model"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List all saved swim workouts with id, name, computed total distance in meters, and top-level step count."),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get the full document for one workout: pool length, optional target distance, and the ordered tree of steps and repeat groups."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolWorkoutSummary = mcp.NewTool("workout_summary",
	mcp.WithDescription("Get derived numbers for one workout: total distance, target distance, progress toward the target (0-1), and step count."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolPreviewGarminPayload = mcp.NewTool("preview_garmin_payload",
	mcp.WithDescription("Build the Garmin Connect upload payload for a workout without uploading it. Useful for checking what would be sent to the device."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	summaries, err := h.ds.ListWorkouts(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summaries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workout, errResult := h.fetch(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	result, err := mcp.NewToolResultJSON(workout)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) workoutSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workout, errResult := h.fetch(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	summary := map[string]any{
		"id":              workout.ID,
		"name":            workout.Name,
		"pool_length":     workout.PoolLength,
		"total_distance":  workout.TotalDistance(),
		"target_distance": workout.TargetDistance,
		"progress":        workout.Progress(),
		"step_count":      len(workout.Steps),
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) previewGarminPayload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workout, errResult := h.fetch(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	result, err := mcp.NewToolResultJSON(garmin.BuildPayload(*workout))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// fetch resolves the required id argument and loads the workout, returning
// an error tool result when either fails.
func (h *handlers) fetch(ctx context.Context, req mcp.CallToolRequest) (*model.Workout, *mcp.CallToolResult) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return nil, mcp.NewToolResultError("id parameter is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, mcp.NewToolResultError("invalid workout id")
	}

	uid := UserIDFromContext(ctx)
	workout, err := h.ds.GetWorkout(ctx, id, uid)
	if err != nil {
		h.log.Error("mcp get workout", "id", id, "error", err)
		return nil, mcp.NewToolResultError("query failed: " + err.Error())
	}
	return workout, nil
}
