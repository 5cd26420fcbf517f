package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dylanjrt/garmin-workouts/internal/garmin"
	"github.com/dylanjrt/garmin-workouts/internal/model"
	"github.com/dylanjrt/garmin-workouts/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListWorkouts(r.Context(), defaultUserID)
	if err != nil {
		s.log.Error("list workouts", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if summaries == nil {
		summaries = []model.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// workoutCreate is the request body for creating a workout. Steps may carry
// a full tree; an empty body yields an empty workout.
type workoutCreate struct {
	Name           string         `json:"name"`
	PoolLength     float64        `json:"pool_length"`
	TargetDistance int            `json:"target_distance"`
	Steps          model.ItemList `json:"steps"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var body workoutCreate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if len(body.Name) > model.MaxNameLength {
		body.Name = body.Name[:model.MaxNameLength]
	}
	if body.PoolLength <= 0 {
		body.PoolLength = 25
	}

	workout := model.Workout{
		ID:             uuid.NewString(),
		Name:           body.Name,
		PoolLength:     body.PoolLength,
		TargetDistance: body.TargetDistance,
		Steps:          body.Steps,
	}
	if workout.Steps == nil {
		workout.Steps = model.ItemList{}
	}

	if err := s.store.CreateWorkout(r.Context(), workout, defaultUserID); err != nil {
		s.log.Error("create workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	workout, err := s.store.GetWorkout(r.Context(), id, defaultUserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		s.log.Error("get workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleSaveWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	var workout model.Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	// Saves always carry the whole document; the path id is authoritative.
	workout.ID = id.String()
	if len(workout.Name) > model.MaxNameLength {
		workout.Name = workout.Name[:model.MaxNameLength]
	}

	err := s.store.SaveWorkout(r.Context(), workout, defaultUserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		s.log.Error("save workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	err := s.store.DeleteWorkout(r.Context(), id, defaultUserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		s.log.Error("delete workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDuplicateWorkout creates a copy of a workout under a fresh ID with
// " (copy)" appended to the name.
func (s *Server) handleDuplicateWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	source, err := s.store.GetWorkout(r.Context(), id, defaultUserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		s.log.Error("duplicate workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	copyWorkout := source.Clone()
	copyWorkout.ID = uuid.NewString()
	copyWorkout.Name = source.Name + " (copy)"
	if len(copyWorkout.Name) > model.MaxNameLength {
		copyWorkout.Name = copyWorkout.Name[:model.MaxNameLength]
	}
	if copyWorkout.Steps == nil {
		copyWorkout.Steps = model.ItemList{}
	}

	if err := s.store.CreateWorkout(r.Context(), copyWorkout, defaultUserID); err != nil {
		s.log.Error("duplicate workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, copyWorkout)
}

// handlePreviewWorkout returns the Garmin payload for a workout without
// uploading it.
func (s *Server) handlePreviewWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	workout, err := s.store.GetWorkout(r.Context(), id, defaultUserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		s.log.Error("preview workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, garmin.BuildPayload(*workout))
}

func (s *Server) handleUploadWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	workout, err := s.store.GetWorkout(r.Context(), id, defaultUserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		s.log.Error("upload workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	garminID, err := s.garmin.UploadWorkout(r.Context(), garmin.BuildPayload(*workout))
	if errors.Is(err, garmin.ErrNotAuthenticated) {
		writeJSON(w, http.StatusUnauthorized, garmin.UploadResult{Error: "not logged in to Garmin Connect"})
		return
	}
	if err != nil {
		s.log.Error("garmin upload", "workout", id, "error", err)
		writeJSON(w, http.StatusBadGateway, garmin.UploadResult{Error: err.Error()})
		return
	}

	s.log.Info("workout uploaded to Garmin", "workout", id, "garmin_id", garminID)
	writeJSON(w, http.StatusOK, garmin.UploadResult{Success: true, WorkoutID: garminID})
}

type garminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleGarminLogin(w http.ResponseWriter, r *http.Request) {
	var body garminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	if err := s.garmin.Login(r.Context(), body.Email, body.Password); err != nil {
		s.log.Error("garmin login", "error", err)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login failed"})
		return
	}
	writeJSON(w, http.StatusOK, s.garmin.Status())
}

// handleGarminLogout clears the saved Garmin session.
func (s *Server) handleGarminLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.garmin.Logout(); err != nil {
		s.log.Error("garmin logout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGarminStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.garmin.Status())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// workoutID parses the {id} path parameter, writing a 400 on failure.
func workoutID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return uuid.Nil, false
	}
	return id, true
}
