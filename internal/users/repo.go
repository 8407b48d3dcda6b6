package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yaseenp24/workout-buddy/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const uniqueViolationCode = "23505"

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO app_user (email, password_hash, name)
			VALUES ($1, $2, $3)
		RETURNING id, created_at;`,
		user.Email, user.PasswordHash, user.Name,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	return &user, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getWhere(ctx, "email = $1", email)
}

func (r *Repo) GetByID(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	return r.getWhere(ctx, "id = $1", id)
}

// CompleteOnboarding stores all onboarding answers at once and flips the
// completed flag, so a user is either fully onboarded or not at all.
func (r *Repo) CompleteOnboarding(
	ctx context.Context,
	userID int,
	goals []string,
	schedule string,
	equipment []string,
	experienceLevel string,
) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.completeOnboarding")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	goalsJson, err := json.Marshal(goals)
	if err != nil {
		return nil, fmt.Errorf("marshal goals: %w", err)
	}
	equipmentJson, err := json.Marshal(equipment)
	if err != nil {
		return nil, fmt.Errorf("marshal equipment: %w", err)
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE app_user
			SET goals = $1, schedule = $2, equipment = $3,
				experience_level = $4, onboarding_completed = TRUE
			WHERE id = $5;`,
		goalsJson, schedule, equipmentJson, experienceLevel, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update onboarding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}

	return r.GetByID(ctx, userID)
}

func (r *Repo) getWhere(ctx context.Context, where string, arg any) (*User, error) {
	var (
		user          User
		goalsJson     []byte
		equipmentJson []byte
		schedule      *string
		experience    *string
	)
	err := r.db.QueryRow(
		ctx,
		`SELECT
			id, email, password_hash, name, created_at,
			goals, schedule, equipment, experience_level, onboarding_completed
		FROM app_user WHERE `+where+`;`,
		arg,
	).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt,
		&goalsJson, &schedule, &equipmentJson, &experience, &user.OnboardingCompleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	if schedule != nil {
		user.Schedule = *schedule
	}
	if experience != nil {
		user.ExperienceLevel = *experience
	}
	if len(goalsJson) > 0 {
		if err := json.Unmarshal(goalsJson, &user.Goals); err != nil {
			return nil, fmt.Errorf("unmarshal goals for user %d: %w", user.ID, err)
		}
	}
	if len(equipmentJson) > 0 {
		if err := json.Unmarshal(equipmentJson, &user.Equipment); err != nil {
			return nil, fmt.Errorf("unmarshal equipment for user %d: %w", user.ID, err)
		}
	}

	return &user, nil
}
