package workouts

import (
	"time"

	"github.com/yaseenp24/workout-buddy/internal/catalog"
)

// WorkoutLog is one recorded session. It serializes with its full nested
// template (when present) and the full exercise object for every set.
type WorkoutLog struct {
	ID              int                      `json:"id"`
	Template        *catalog.WorkoutTemplate `json:"template"`
	Date            time.Time                `json:"date"`
	DurationMinutes *int                     `json:"duration_minutes"`
	Notes           string                   `json:"notes"`
	Sets            []SetLog                 `json:"sets"`
}

type SetLog struct {
	ID        int              `json:"id"`
	Exercise  catalog.Exercise `json:"exercise"`
	SetNumber int              `json:"set_number"`
	Weight    *float64         `json:"weight"`
	Reps      int              `json:"reps"`
	RPE       *int             `json:"rpe"`
}

// NewWorkout is the write-side shape, references by id only.
type NewWorkout struct {
	TemplateID      *int
	DurationMinutes *int
	Notes           string
	Sets            []NewSet
}

type NewSet struct {
	ExerciseID int
	SetNumber  int
	Weight     *float64
	Reps       int
	RPE        *int
}
