package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dylanjrt/garmin-workouts/internal/garmin"
	"github.com/dylanjrt/garmin-workouts/internal/model"
	"github.com/dylanjrt/garmin-workouts/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// defaultUserID scopes all data in single-user deployments. Access control
// is handled by the listener (tsnet) rather than per-request auth.
const defaultUserID = 1

// WorkoutStore is the persistence surface the handlers need. *storage.DB
// satisfies it; tests use a stub.
type WorkoutStore interface {
	ListWorkouts(ctx context.Context, userID int) ([]model.Summary, error)
	GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*model.Workout, error)
	CreateWorkout(ctx context.Context, w model.Workout, userID int) error
	SaveWorkout(ctx context.Context, w model.Workout, userID int) error
	DeleteWorkout(ctx context.Context, id uuid.UUID, userID int) error
}

// Compile-time check: *storage.DB satisfies WorkoutStore.
var _ WorkoutStore = (*storage.DB)(nil)

// GarminGateway is the device-sync surface. *garmin.Client satisfies it.
type GarminGateway interface {
	Login(ctx context.Context, email, password string) error
	Logout() error
	Status() garmin.Status
	UploadWorkout(ctx context.Context, p garmin.Payload) (string, error)
}

var _ GarminGateway = (*garmin.Client)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  WorkoutStore
	garmin GarminGateway
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured. The API key guards
// the Garmin credential routes.
func New(store WorkoutStore, gw GarminGateway, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		garmin: gw,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/health", s.handleHealth)

	s.router.Route("/api/v1/workouts", func(r chi.Router) {
		r.Get("/", s.handleListWorkouts)
		r.Post("/", s.handleCreateWorkout)
		r.Get("/{id}", s.handleGetWorkout)
		r.Put("/{id}", s.handleSaveWorkout)
		r.Delete("/{id}", s.handleDeleteWorkout)
		r.Post("/{id}/duplicate", s.handleDuplicateWorkout)
		r.Get("/{id}/preview", s.handlePreviewWorkout)
		r.Post("/{id}/upload", s.handleUploadWorkout)
	})

	// Garmin credential routes (API key required)
	s.router.Route("/api/v1/garmin", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/login", s.handleGarminLogin)
		r.Post("/logout", s.handleGarminLogout)
		r.Get("/status", s.handleGarminStatus)
	})
}

// MountMCP exposes the MCP endpoint on the main router.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}
