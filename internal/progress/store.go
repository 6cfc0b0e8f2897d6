package progress

import (
	"context"
	"sort"
	"sync"
)

// Store is the per-device persistence for progress records and attempts.
// Reads degrade: a corrupt or unreadable row is treated as absent, never as a
// hard error, because this store is a local mirror rather than the source of
// truth.
type Store interface {
	GetLessonProgress(ctx context.Context, userID string) ([]LessonProgress, error)
	GetLessonProgressFor(ctx context.Context, userID, lessonID string) (LessonProgress, bool, error)
	SaveLessonProgress(ctx context.Context, rec LessonProgress) error

	GetTestAttempt(ctx context.Context, id string) (TestAttempt, error)
	SaveTestAttempt(ctx context.Context, a TestAttempt) error
	GetUserTestAttempts(ctx context.Context, userID, testID string) ([]TestAttempt, error)

	// ClearAllData wipes every progress record and attempt. Debug/reset only.
	ClearAllData(ctx context.Context) error
}

type memoryStore struct {
	mu       sync.RWMutex
	progress map[string]map[string]LessonProgress // userID -> lessonID -> record
	attempts map[string]TestAttempt
}

func NewInMemoryStore() Store {
	return &memoryStore{
		progress: map[string]map[string]LessonProgress{},
		attempts: map[string]TestAttempt{},
	}
}

func (m *memoryStore) GetLessonProgress(_ context.Context, userID string) ([]LessonProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.progress[userID]
	out := make([]LessonProgress, 0, len(recs))
	for _, r := range recs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessonID < out[j].LessonID })
	return out, nil
}

func (m *memoryStore) GetLessonProgressFor(_ context.Context, userID, lessonID string) (LessonProgress, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.progress[userID][lessonID]
	return r, ok, nil
}

func (m *memoryStore) SaveLessonProgress(_ context.Context, rec LessonProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.progress[rec.UserID] == nil {
		m.progress[rec.UserID] = map[string]LessonProgress{}
	}
	m.progress[rec.UserID][rec.LessonID] = rec
	return nil
}

func (m *memoryStore) GetTestAttempt(_ context.Context, id string) (TestAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return TestAttempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memoryStore) SaveTestAttempt(_ context.Context, a TestAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = a
	return nil
}

func (m *memoryStore) GetUserTestAttempts(_ context.Context, userID, testID string) ([]TestAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []TestAttempt{}
	for _, a := range m.attempts {
		if a.UserID == userID && a.TestID == testID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

func (m *memoryStore) ClearAllData(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = map[string]map[string]LessonProgress{}
	m.attempts = map[string]TestAttempt{}
	return nil
}
