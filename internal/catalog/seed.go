package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type seedExercise struct {
	name            string
	category        string
	muscleGroups    []string
	equipmentNeeded []string
}

type seedTemplateExercise struct {
	exerciseName string
	sets         int
	repsRange    string
	order        int
}

type seedTemplate struct {
	name         string
	templateType string
	description  string
	exercises    []seedTemplateExercise
}

var seedExercises = []seedExercise{
	// push
	{"Bench Press", "push", []string{"chest", "triceps", "shoulders"}, []string{"barbell", "bench"}},
	{"Overhead Press", "push", []string{"shoulders", "triceps"}, []string{"barbell"}},
	{"Incline Dumbbell Press", "push", []string{"chest", "shoulders"}, []string{"dumbbells", "bench"}},
	{"Dips", "push", []string{"chest", "triceps"}, []string{"dip_bars"}},

	// pull
	{"Pull-ups", "pull", []string{"lats", "biceps"}, []string{"pull_up_bar"}},
	{"Barbell Rows", "pull", []string{"lats", "rhomboids", "biceps"}, []string{"barbell"}},
	{"Lat Pulldowns", "pull", []string{"lats", "biceps"}, []string{"cable_machine"}},
	{"Face Pulls", "pull", []string{"rear_delts", "rhomboids"}, []string{"cable_machine"}},

	// legs
	{"Squats", "legs", []string{"quads", "glutes"}, []string{"barbell"}},
	{"Deadlifts", "legs", []string{"hamstrings", "glutes", "lower_back"}, []string{"barbell"}},
	{"Romanian Deadlifts", "legs", []string{"hamstrings", "glutes"}, []string{"barbell"}},
	{"Leg Press", "legs", []string{"quads", "glutes"}, []string{"leg_press_machine"}},

	// upper body compound
	{"Barbell Curls", "upper", []string{"biceps"}, []string{"barbell"}},
	{"Close-Grip Bench Press", "upper", []string{"triceps", "chest"}, []string{"barbell", "bench"}},

	// lower body
	{"Calf Raises", "lower", []string{"calves"}, []string{"none"}},
	{"Lunges", "lower", []string{"quads", "glutes"}, []string{"dumbbells"}},
}

var seedTemplates = []seedTemplate{
	{
		name:         "Push/Pull/Legs",
		templateType: "push_pull_legs",
		description:  "A 3-day split focusing on pushing movements, pulling movements, and leg exercises",
		exercises: []seedTemplateExercise{
			{"Bench Press", 4, "6-8", 1},
			{"Overhead Press", 3, "8-10", 2},
			{"Incline Dumbbell Press", 3, "10-12", 3},
			{"Dips", 3, "12-15", 4},
		},
	},
	{
		name:         "Upper/Lower",
		templateType: "upper_lower",
		description:  "A 2-day split alternating between upper body and lower body exercises",
		exercises: []seedTemplateExercise{
			{"Bench Press", 4, "6-8", 1},
			{"Barbell Rows", 4, "6-8", 2},
			{"Overhead Press", 3, "8-10", 3},
			{"Pull-ups", 3, "8-12", 4},
		},
	},
}

// Seed fills the exercise and template tables with the fixed reference
// catalog. Idempotent: rows already present (matched by name) are skipped.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	inserted := 0
	for _, ex := range seedExercises {
		var existingID int
		err := db.QueryRow(ctx, `SELECT id FROM exercise WHERE name = $1;`, ex.name).Scan(&existingID)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("check exercise %q: %w", ex.name, err)
		}

		muscleGroupsJson, err := json.Marshal(ex.muscleGroups)
		if err != nil {
			return fmt.Errorf("marshal muscle groups for %q: %w", ex.name, err)
		}
		equipmentJson, err := json.Marshal(ex.equipmentNeeded)
		if err != nil {
			return fmt.Errorf("marshal equipment for %q: %w", ex.name, err)
		}

		if _, err := db.Exec(
			ctx,
			`INSERT INTO exercise (name, category, muscle_groups, equipment_needed)
				VALUES ($1, $2, $3, $4);`,
			ex.name, ex.category, muscleGroupsJson, equipmentJson,
		); err != nil {
			return fmt.Errorf("insert exercise %q: %w", ex.name, err)
		}
		inserted++
	}

	for _, tmpl := range seedTemplates {
		var templateID int
		err := db.QueryRow(ctx, `SELECT id FROM workout_template WHERE name = $1;`, tmpl.name).Scan(&templateID)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("check template %q: %w", tmpl.name, err)
		}

		err = db.QueryRow(
			ctx,
			`INSERT INTO workout_template (name, type, description)
				VALUES ($1, $2, $3)
			RETURNING id;`,
			tmpl.name, tmpl.templateType, tmpl.description,
		).Scan(&templateID)
		if err != nil {
			return fmt.Errorf("insert template %q: %w", tmpl.name, err)
		}

		for _, te := range tmpl.exercises {
			var exerciseID int
			err := db.QueryRow(ctx, `SELECT id FROM exercise WHERE name = $1;`, te.exerciseName).Scan(&exerciseID)
			if err != nil {
				return fmt.Errorf("template %q references unknown exercise %q: %w", tmpl.name, te.exerciseName, err)
			}

			if _, err := db.Exec(
				ctx,
				`INSERT INTO template_exercise (template_id, exercise_id, sets, reps_range, ord)
					VALUES ($1, $2, $3, $4, $5);`,
				templateID, exerciseID, te.sets, te.repsRange, te.order,
			); err != nil {
				return fmt.Errorf("insert template exercise %q/%q: %w", tmpl.name, te.exerciseName, err)
			}
		}
		inserted++
	}

	if inserted > 0 {
		log.Debugf("catalog seeded, %d new rows", inserted)
	}
	return nil
}
