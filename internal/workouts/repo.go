package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yaseenp24/workout-buddy/internal/catalog"
	"github.com/yaseenp24/workout-buddy/internal/telemetry/tracing"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrUnknownTemplate = errors.New("unknown workout template")
	ErrInvalidSetData  = errors.New("invalid set data")
)

const (
	fkViolationCode     = "23503"
	uniqueViolationCode = "23505"
	checkViolationCode  = "23514"
)

type templateGetter interface {
	GetTemplate(ctx context.Context, id int) (*catalog.WorkoutTemplate, error)
}

type Repo struct {
	db        *pgxpool.Pool
	templates templateGetter
}

func NewRepo(db *pgxpool.Pool, templates templateGetter) *Repo {
	return &Repo{
		db:        db,
		templates: templates,
	}
}

// Add persists the workout and all its sets in one transaction. The parent
// row gets its id first, then every set references it; a failure anywhere
// rolls the whole workout back.
func (r *Repo) Add(ctx context.Context, userID int, workout NewWorkout) (_ *WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("userId", userID),
		attribute.Int("sets", len(workout.Sets)),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var workoutID int
	err = tx.QueryRow(
		ctx,
		`INSERT INTO workout_log (user_id, template_id, duration_minutes, notes)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		userID, workout.TemplateID, workout.DurationMinutes, workout.Notes,
	).Scan(&workoutID)
	if err != nil {
		return nil, asWorkoutErr(err)
	}

	for _, set := range workout.Sets {
		if _, err = tx.Exec(
			ctx,
			`INSERT INTO set_log (workout_log_id, exercise_id, set_number, weight, reps, rpe)
				VALUES ($1, $2, $3, $4, $5, $6);`,
			workoutID, set.ExerciseID, set.SetNumber, set.Weight, set.Reps, set.RPE,
		); err != nil {
			return nil, asWorkoutErr(err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.Get(ctx, workoutID, userID)
}

// Get returns one workout with the full template and exercise expansion.
// A workout belonging to another user is reported as not found.
func (r *Repo) Get(ctx context.Context, workoutID, userID int) (_ *WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("workoutId", workoutID),
		attribute.Int("userId", userID),
	)

	var w WorkoutLog
	var templateID *int
	var notes *string
	err = r.db.QueryRow(
		ctx,
		`SELECT id, template_id, date, duration_minutes, notes
			FROM workout_log
			WHERE id = $1 AND user_id = $2;`,
		workoutID, userID,
	).Scan(&w.ID, &templateID, &w.Date, &w.DurationMinutes, &notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("select workout: %w", err)
	}
	if notes != nil {
		w.Notes = *notes
	}

	if err = r.expand(ctx, &w, templateID); err != nil {
		return nil, err
	}
	return &w, nil
}

// ListForUser returns one page of the user's workouts, newest first,
// together with the total count across all pages.
func (r *Repo) ListForUser(ctx context.Context, userID, page, pageSize int) (_ []WorkoutLog, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("userId", userID),
		attribute.Int("page", page),
		attribute.Int("pageSize", pageSize),
	)

	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout_log WHERE user_id = $1;`,
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count workouts: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, template_id, date, duration_minutes, notes
			FROM workout_log
			WHERE user_id = $1
			ORDER BY date DESC, id DESC
			LIMIT $2 OFFSET $3;`,
		userID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	workouts := make([]WorkoutLog, 0)
	templateIDs := make([]*int, 0)
	for rows.Next() {
		var w WorkoutLog
		var templateID *int
		var notes *string
		if err := rows.Scan(&w.ID, &templateID, &w.Date, &w.DurationMinutes, &notes); err != nil {
			return nil, 0, fmt.Errorf("scan workout: %w", err)
		}
		if notes != nil {
			w.Notes = *notes
		}
		workouts = append(workouts, w)
		templateIDs = append(templateIDs, templateID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("workout rows: %w", err)
	}

	for i := range workouts {
		if err := r.expand(ctx, &workouts[i], templateIDs[i]); err != nil {
			return nil, 0, err
		}
	}

	return workouts, total, nil
}

func (r *Repo) expand(ctx context.Context, w *WorkoutLog, templateID *int) error {
	if templateID != nil {
		template, err := r.templates.GetTemplate(ctx, *templateID)
		if err != nil {
			return fmt.Errorf("workout %d template: %w", w.ID, err)
		}
		w.Template = template
	}

	sets, err := r.workoutSets(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("workout %d sets: %w", w.ID, err)
	}
	w.Sets = sets
	return nil
}

func (r *Repo) workoutSets(ctx context.Context, workoutID int) ([]SetLog, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT
			sl.id, sl.set_number, sl.weight, sl.reps, sl.rpe,
			e.id, e.name, e.category, e.muscle_groups, e.equipment_needed, e.instructions
		FROM set_log sl
		JOIN exercise e ON sl.exercise_id = e.id
		WHERE sl.workout_log_id = $1
		ORDER BY sl.set_number;`,
		workoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	sets := make([]SetLog, 0)
	for rows.Next() {
		var s SetLog
		var muscleGroupsJson, equipmentJson []byte
		var instructions *string
		if err := rows.Scan(
			&s.ID, &s.SetNumber, &s.Weight, &s.Reps, &s.RPE,
			&s.Exercise.ID, &s.Exercise.Name, &s.Exercise.Category,
			&muscleGroupsJson, &equipmentJson, &instructions,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if instructions != nil {
			s.Exercise.Instructions = *instructions
		}
		if err := unmarshalStringList(muscleGroupsJson, &s.Exercise.MuscleGroups); err != nil {
			return nil, fmt.Errorf("muscle groups: %w", err)
		}
		if err := unmarshalStringList(equipmentJson, &s.Exercise.EquipmentNeeded); err != nil {
			return nil, fmt.Errorf("equipment: %w", err)
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return sets, nil
}

func unmarshalStringList(raw []byte, dest *[]string) error {
	if len(raw) == 0 {
		*dest = []string{}
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return err
	}
	if *dest == nil {
		*dest = []string{}
	}
	return nil
}

// asWorkoutErr maps postgres constraint violations from the workout insert
// to the sentinel errors handlers turn into 400s.
func asWorkoutErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("insert workout: %w", err)
	}
	switch pgErr.Code {
	case fkViolationCode:
		if pgErr.TableName == "workout_log" {
			return ErrUnknownTemplate
		}
		return ErrUnknownExercise
	case uniqueViolationCode, checkViolationCode:
		return ErrInvalidSetData
	default:
		return fmt.Errorf("insert workout: %w", err)
	}
}
