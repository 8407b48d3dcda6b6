package users

import (
	"context"
	"sync"
	"time"
)

var _ usersRepo = (*repoMock)(nil)

type repoMock struct {
	users  map[int]*User
	nextID int
	mutex  sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		users:  make(map[int]*User),
		nextID: 1,
	}
}

func (r *repoMock) Create(_ context.Context, user User) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, ErrEmailTaken
		}
	}

	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.ID] = &user

	return &user, nil
}

func (r *repoMock) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) GetByID(_ context.Context, id int) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *u
	return &userCopy, nil
}

func (r *repoMock) CompleteOnboarding(
	_ context.Context,
	userID int,
	goals []string,
	schedule string,
	equipment []string,
	experienceLevel string,
) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	u.Goals = goals
	u.Schedule = schedule
	u.Equipment = equipment
	u.ExperienceLevel = experienceLevel
	u.OnboardingCompleted = true

	userCopy := *u
	return &userCopy, nil
}
