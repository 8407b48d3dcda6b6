package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/yaseenp24/workout-buddy/internal/auth"
	"github.com/yaseenp24/workout-buddy/internal/telemetry/metrics"
	"github.com/yaseenp24/workout-buddy/internal/telemetry/tracing"
	"github.com/yaseenp24/workout-buddy/pkg"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

type workoutsRepo interface {
	Add(ctx context.Context, userID int, workout NewWorkout) (*WorkoutLog, error)
	Get(ctx context.Context, workoutID, userID int) (*WorkoutLog, error)
	ListForUser(ctx context.Context, userID, page, pageSize int) ([]WorkoutLog, int, error)
}

type LogWorkoutRequest struct {
	TemplateID      *int       `json:"template_id"`
	DurationMinutes *int       `json:"duration_minutes"`
	Notes           string     `json:"notes"`
	Sets            []SetInput `json:"sets"`
}

type SetInput struct {
	ExerciseID int      `json:"exercise_id"`
	SetNumber  int      `json:"set_number"`
	Weight     *float64 `json:"weight"`
	Reps       int      `json:"reps"`
	RPE        *int     `json:"rpe"`
}

type LogWorkoutResponse struct {
	Message string      `json:"message"`
	Workout *WorkoutLog `json:"workout"`
}

type WorkoutDetailsResponse struct {
	Workout *WorkoutLog `json:"workout"`
}

type HistoryResponse struct {
	Workouts    []WorkoutLog `json:"workouts"`
	Total       int          `json:"total"`
	Pages       int          `json:"pages"`
	CurrentPage int          `json:"current_page"`
}

type Handler struct {
	repo           workoutsRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/workouts/log", handler.HandleLogWorkout).Methods("POST", "OPTIONS").Name("log-workout")
	router.HandleFunc("/workouts/history", handler.HandleHistory).Methods("GET", "OPTIONS").Name("workout-history")
	router.HandleFunc("/workouts/{id:[0-9]+}", handler.HandleDetails).Methods("GET", "OPTIONS").Name("workout-details")
}

func (handler *Handler) HandleLogWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.log")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req LogWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("log workout, invalid payload: %s", err)
		pkg.WriteJSONError(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	newWorkout := NewWorkout{
		TemplateID:      req.TemplateID,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Sets:            make([]NewSet, 0, len(req.Sets)),
	}
	for i, set := range req.Sets {
		if errMessage := validateSet(set); errMessage != "" {
			log.Debugf("log workout, set %d invalid: %s", i+1, errMessage)
			pkg.WriteJSONError(w, errMessage, http.StatusBadRequest)
			return
		}
		newWorkout.Sets = append(newWorkout.Sets, NewSet{
			ExerciseID: set.ExerciseID,
			SetNumber:  set.SetNumber,
			Weight:     set.Weight,
			Reps:       set.Reps,
			RPE:        set.RPE,
		})
	}

	workout, err := handler.repo.Add(ctx, userID, newWorkout)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownExercise),
			errors.Is(err, ErrUnknownTemplate),
			errors.Is(err, ErrInvalidSetData):
			pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("log workout for user %d: %s", userID, err)
			pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	handler.metricsManager.CounterWorkoutsLogged.Inc()
	log.Debugf("user %d logged workout %d with %d sets", userID, workout.ID, len(workout.Sets))

	respBytes, err := json.Marshal(LogWorkoutResponse{
		Message: "Workout logged successfully",
		Workout: workout,
	})
	if err != nil {
		log.Errorf("marshal logged workout: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusCreated)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	page := positiveIntParam(r, "page", defaultPage)
	pageSize := positiveIntParam(r, "per_page", defaultPageSize)

	workouts, total, err := handler.repo.ListForUser(ctx, userID, page, pageSize)
	if err != nil {
		log.Errorf("workout history for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(HistoryResponse{
		Workouts:    workouts,
		Total:       total,
		Pages:       (total + pageSize - 1) / pageSize,
		CurrentPage: page,
	})
	if err != nil {
		log.Errorf("marshal workout history: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}

func (handler *Handler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.details")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid workout id", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.Get(ctx, workoutID, userID)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			pkg.WriteJSONError(w, "Workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("workout %d details for user %d: %s", workoutID, userID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(WorkoutDetailsResponse{Workout: workout})
	if err != nil {
		log.Errorf("marshal workout details: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}

func validateSet(set SetInput) string {
	switch {
	case set.ExerciseID <= 0:
		return "set exercise_id is required"
	case set.SetNumber <= 0:
		return "set_number must be a positive number"
	case set.Reps <= 0:
		return "reps must be a positive number"
	case set.Weight != nil && *set.Weight < 0:
		return "weight must not be negative"
	case set.RPE != nil && (*set.RPE < 1 || *set.RPE > 10):
		return "rpe must be between 1 and 10"
	default:
		return ""
	}
}

// positiveIntParam reads a positive integer query parameter, degrading to
// the default on anything missing or malformed.
func positiveIntParam(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return defaultValue
	}
	return value
}
