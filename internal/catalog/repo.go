package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yaseenp24/workout-buddy/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrExerciseNotFound = errors.New("exercise not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ListExercises returns all exercises, optionally narrowed to a category.
func (r *Repo) ListExercises(ctx context.Context, category string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.listExercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("category", category))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, category, muscle_groups, equipment_needed, instructions
			FROM exercise
			WHERE ($1::text = '' OR category = $1)
			ORDER BY id;`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return rows2exercises(rows)
}

func (r *Repo) GetExercise(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.getExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, category, muscle_groups, equipment_needed, instructions
			FROM exercise WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, err
	}
	if len(exercises) != 1 {
		return nil, ErrExerciseNotFound
	}

	return &exercises[0], nil
}

// ListTemplates returns all workout templates with the full
// template_exercise -> exercise expansion, ordered by template and position.
func (r *Repo) ListTemplates(ctx context.Context) (_ []WorkoutTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.listTemplates")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, type, description FROM workout_template ORDER BY id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var templates []WorkoutTemplate
	for rows.Next() {
		var t WorkoutTemplate
		var description *string
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &description); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		if description != nil {
			t.Description = *description
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("template rows: %w", err)
	}

	for i := range templates {
		exercises, err := r.templateExercises(ctx, templates[i].ID)
		if err != nil {
			return nil, fmt.Errorf("template %d exercises: %w", templates[i].ID, err)
		}
		templates[i].Exercises = exercises
	}

	if templates == nil {
		templates = make([]WorkoutTemplate, 0)
	}
	return templates, nil
}

// GetTemplate returns one template with its full exercise expansion,
// or nil when the id is unknown.
func (r *Repo) GetTemplate(ctx context.Context, id int) (_ *WorkoutTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.getTemplate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var t WorkoutTemplate
	var description *string
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, type, description FROM workout_template WHERE id = $1;`,
		id,
	).Scan(&t.ID, &t.Name, &t.Type, &description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select template: %w", err)
	}
	if description != nil {
		t.Description = *description
	}

	t.Exercises, err = r.templateExercises(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("template %d exercises: %w", t.ID, err)
	}

	return &t, nil
}

func (r *Repo) templateExercises(ctx context.Context, templateID int) ([]TemplateExercise, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT
			te.id, te.sets, te.reps_range, te.ord,
			e.id, e.name, e.category, e.muscle_groups, e.equipment_needed, e.instructions
		FROM template_exercise te
		JOIN exercise e ON te.exercise_id = e.id
		WHERE te.template_id = $1
		ORDER BY te.ord;`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var templateExercises []TemplateExercise
	for rows.Next() {
		var te TemplateExercise
		var repsRange *string
		var muscleGroupsJson, equipmentJson []byte
		var instructions *string
		if err := rows.Scan(
			&te.ID, &te.Sets, &repsRange, &te.Order,
			&te.Exercise.ID, &te.Exercise.Name, &te.Exercise.Category,
			&muscleGroupsJson, &equipmentJson, &instructions,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if repsRange != nil {
			te.RepsRange = *repsRange
		}
		if err := unmarshalExerciseLists(&te.Exercise, muscleGroupsJson, equipmentJson, instructions); err != nil {
			return nil, err
		}
		templateExercises = append(templateExercises, te)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if templateExercises == nil {
		templateExercises = make([]TemplateExercise, 0)
	}
	return templateExercises, nil
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		var muscleGroupsJson, equipmentJson []byte
		var instructions *string
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Category, &muscleGroupsJson, &equipmentJson, &instructions,
		); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		if err := unmarshalExerciseLists(&e, muscleGroupsJson, equipmentJson, instructions); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}

	if exercises == nil {
		exercises = make([]Exercise, 0)
	}
	return exercises, nil
}

func unmarshalExerciseLists(e *Exercise, muscleGroupsJson, equipmentJson []byte, instructions *string) error {
	if len(muscleGroupsJson) > 0 {
		if err := json.Unmarshal(muscleGroupsJson, &e.MuscleGroups); err != nil {
			return fmt.Errorf("unmarshal muscle groups for exercise %d: %w", e.ID, err)
		}
	}
	if len(equipmentJson) > 0 {
		if err := json.Unmarshal(equipmentJson, &e.EquipmentNeeded); err != nil {
			return fmt.Errorf("unmarshal equipment for exercise %d: %w", e.ID, err)
		}
	}
	if instructions != nil {
		e.Instructions = *instructions
	}
	return nil
}
