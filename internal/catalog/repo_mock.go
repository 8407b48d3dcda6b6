package catalog

import (
	"context"
	"sync"
)

var _ catalogRepo = (*repoMock)(nil)

type repoMock struct {
	mutex     sync.Mutex
	exercises []Exercise
	templates []WorkoutTemplate

	listExercisesErr error
	listTemplatesErr error
}

func newRepoMock() *repoMock {
	return &repoMock{}
}

func (m *repoMock) ListExercises(_ context.Context, category string) ([]Exercise, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.listExercisesErr != nil {
		return nil, m.listExercisesErr
	}
	filtered := []Exercise{}
	for _, ex := range m.exercises {
		if category != "" && ex.Category != category {
			continue
		}
		filtered = append(filtered, ex)
	}
	return filtered, nil
}

func (m *repoMock) ListTemplates(_ context.Context) ([]WorkoutTemplate, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.listTemplatesErr != nil {
		return nil, m.listTemplatesErr
	}
	templates := make([]WorkoutTemplate, len(m.templates))
	copy(templates, m.templates)
	return templates, nil
}
