//go:build integration_test || all_tests

package users

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yaseenp24/workout-buddy/internal/db"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T) (*Repo, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	params := db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "workout_buddy",
		TracingEnabled: false,
	}
	require.NoError(t, db.Migrate(timeoutCtx, params))

	dbPool, err := db.NewDBPool(timeoutCtx, params)
	require.NoError(t, err)

	return NewRepo(dbPool), func() {
		dbPool.Close()
	}
}

func TestRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	email := gofakeit.Email()
	created, err := repo.Create(ctx, User{
		Email:        email,
		PasswordHash: "$2a$14$notarealhashbutlongenough1234567890abcdefgh",
		Name:         gofakeit.Name(),
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.False(t, byEmail.OnboardingCompleted)
	assert.Empty(t, byEmail.Goals)

	// same email twice
	_, err = repo.Create(ctx, User{
		Email:        email,
		PasswordHash: "$2a$14$notarealhashbutlongenough1234567890abcdefgh",
		Name:         "someone else",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRepo_CompleteOnboarding(t *testing.T) {
	ctx := context.Background()
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	created, err := repo.Create(ctx, User{
		Email:        gofakeit.Email(),
		PasswordHash: "$2a$14$notarealhashbutlongenough1234567890abcdefgh",
		Name:         gofakeit.Name(),
	})
	require.NoError(t, err)

	updated, err := repo.CompleteOnboarding(
		ctx, created.ID,
		[]string{"weight_loss"}, "3-4 days/week", []string{"dumbbells"}, "intermediate",
	)
	require.NoError(t, err)
	assert.True(t, updated.OnboardingCompleted)
	assert.Equal(t, []string{"weight_loss"}, updated.Goals)
	assert.Equal(t, []string{"dumbbells"}, updated.Equipment)
	assert.Equal(t, "intermediate", updated.ExperienceLevel)

	_, err = repo.CompleteOnboarding(ctx, 999999999, nil, "", nil, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepo_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	_, err := repo.GetByID(ctx, 999999999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
