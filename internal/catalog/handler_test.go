package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestHandler() (*Handler, *repoMock, *mux.Router) {
	repo := newRepoMock()
	repo.exercises = []Exercise{
		{ID: 1, Name: "Bench Press", Category: "push", MuscleGroups: []string{"chest", "triceps"}, EquipmentNeeded: []string{"barbell", "bench"}},
		{ID: 2, Name: "Pull-ups", Category: "pull", MuscleGroups: []string{"lats", "biceps"}, EquipmentNeeded: []string{"pull_up_bar"}},
		{ID: 3, Name: "Squats", Category: "legs", MuscleGroups: []string{"quads", "glutes"}, EquipmentNeeded: []string{"barbell"}},
	}
	repo.templates = []WorkoutTemplate{
		{
			ID: 1, Name: "Push/Pull/Legs", Type: "push_pull_legs",
			Description: "A 3-day split",
			Exercises: []TemplateExercise{
				{ID: 1, Exercise: repo.exercises[0], Sets: 4, RepsRange: "6-8", Order: 1},
				{ID: 2, Exercise: repo.exercises[1], Sets: 3, RepsRange: "8-12", Order: 2},
			},
		},
	}

	handler := NewHandler(repo)
	router := mux.NewRouter()
	handler.SetupRoutes(router)
	return handler, repo, router
}

func TestHandler_ListExercises(t *testing.T) {
	_, _, router := newTestHandler()

	req := httptest.NewRequest("GET", "/exercises", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ExercisesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Exercises, 3)
	assert.Equal(t, "Bench Press", resp.Exercises[0].Name)
	assert.Equal(t, []string{"chest", "triceps"}, resp.Exercises[0].MuscleGroups)
}

func TestHandler_ListExercises_CategoryFilter(t *testing.T) {
	_, _, router := newTestHandler()

	req := httptest.NewRequest("GET", "/exercises?category=pull", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ExercisesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Exercises, 1)
	assert.Equal(t, "Pull-ups", resp.Exercises[0].Name)
}

func TestHandler_ListExercises_UnknownCategory(t *testing.T) {
	_, _, router := newTestHandler()

	req := httptest.NewRequest("GET", "/exercises?category=cardio", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"exercises": []}`, rr.Body.String())
}

func TestHandler_ListExercises_RepoError(t *testing.T) {
	_, repo, router := newTestHandler()
	repo.listExercisesErr = errors.New("db gone")

	req := httptest.NewRequest("GET", "/exercises", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error": "internal server error"}`, rr.Body.String())
}

func TestHandler_ListTemplates(t *testing.T) {
	_, _, router := newTestHandler()

	req := httptest.NewRequest("GET", "/workouts/templates", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp TemplatesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Templates, 1)
	assert.Equal(t, "Push/Pull/Legs", resp.Templates[0].Name)
	require.Len(t, resp.Templates[0].Exercises, 2)
	assert.Equal(t, 1, resp.Templates[0].Exercises[0].Order)
	assert.Equal(t, "Bench Press", resp.Templates[0].Exercises[0].Exercise.Name)
	assert.Equal(t, "6-8", resp.Templates[0].Exercises[0].RepsRange)
}
