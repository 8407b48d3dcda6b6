package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/yaseenp24/workout-buddy/internal/telemetry/tracing"
	"github.com/yaseenp24/workout-buddy/pkg"
)

type catalogRepo interface {
	ListExercises(ctx context.Context, category string) ([]Exercise, error)
	ListTemplates(ctx context.Context) ([]WorkoutTemplate, error)
}

type ExercisesResponse struct {
	Exercises []Exercise `json:"exercises"`
}

type TemplatesResponse struct {
	Templates []WorkoutTemplate `json:"templates"`
}

type Handler struct {
	repo catalogRepo
}

func NewHandler(repo catalogRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/exercises", handler.HandleListExercises).Methods("GET", "OPTIONS").Name("list-exercises")
	router.HandleFunc("/workouts/templates", handler.HandleListTemplates).Methods("GET", "OPTIONS").Name("list-templates")
}

func (handler *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	category := r.URL.Query().Get("category")

	exercises, err := handler.repo.ListExercises(ctx, category)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(ExercisesResponse{Exercises: exercises})
	if err != nil {
		log.Errorf("marshal exercises: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}

func (handler *Handler) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.list")
	defer span.End()

	templates, err := handler.repo.ListTemplates(ctx)
	if err != nil {
		log.Errorf("list templates: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(TemplatesResponse{Templates: templates})
	if err != nil {
		log.Errorf("marshal templates: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}
