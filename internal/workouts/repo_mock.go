package workouts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yaseenp24/workout-buddy/internal/catalog"
)

var _ workoutsRepo = (*repoMock)(nil)

type repoMock struct {
	mutex     sync.Mutex
	nextID    int
	nextSetID int
	nextDate  time.Time
	owners    map[int]int // workout id -> user id
	workouts  map[int]WorkoutLog
	exercises map[int]catalog.Exercise
	templates map[int]catalog.WorkoutTemplate

	addErr error
}

func newRepoMock() *repoMock {
	return &repoMock{
		nextID:    1,
		nextSetID: 1,
		nextDate:  time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC),
		owners:    map[int]int{},
		workouts:  map[int]WorkoutLog{},
		exercises: map[int]catalog.Exercise{},
		templates: map[int]catalog.WorkoutTemplate{},
	}
}

func (m *repoMock) Add(_ context.Context, userID int, workout NewWorkout) (*WorkoutLog, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.addErr != nil {
		return nil, m.addErr
	}

	w := WorkoutLog{
		ID:              m.nextID,
		Date:            m.nextDate,
		DurationMinutes: workout.DurationMinutes,
		Notes:           workout.Notes,
		Sets:            make([]SetLog, 0, len(workout.Sets)),
	}
	m.nextID++
	// every added workout is newer than the previous one
	m.nextDate = m.nextDate.Add(24 * time.Hour)

	if workout.TemplateID != nil {
		template, ok := m.templates[*workout.TemplateID]
		if !ok {
			return nil, ErrUnknownTemplate
		}
		w.Template = &template
	}

	for _, set := range workout.Sets {
		exercise, ok := m.exercises[set.ExerciseID]
		if !ok {
			return nil, ErrUnknownExercise
		}
		w.Sets = append(w.Sets, SetLog{
			ID:        m.nextSetID,
			Exercise:  exercise,
			SetNumber: set.SetNumber,
			Weight:    set.Weight,
			Reps:      set.Reps,
			RPE:       set.RPE,
		})
		m.nextSetID++
	}

	m.owners[w.ID] = userID
	m.workouts[w.ID] = w
	return &w, nil
}

func (m *repoMock) Get(_ context.Context, workoutID, userID int) (*WorkoutLog, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	w, ok := m.workouts[workoutID]
	if !ok || m.owners[workoutID] != userID {
		return nil, ErrWorkoutNotFound
	}
	return &w, nil
}

func (m *repoMock) ListForUser(_ context.Context, userID, page, pageSize int) ([]WorkoutLog, int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	all := make([]WorkoutLog, 0)
	for id, w := range m.workouts {
		if m.owners[id] == userID {
			all = append(all, w)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	offset := (page - 1) * pageSize
	if offset >= total {
		return []WorkoutLog{}, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
