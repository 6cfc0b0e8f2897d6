package content

import (
	"context"
	"sort"
	"sync"
)

// Catalog is the read-only view of lesson/test content this subsystem consumes.
// Next/first lesson resolution goes through order_index within a book; lesson
// ids are opaque and never assumed contiguous.
type Catalog interface {
	PutLesson(ctx context.Context, l Lesson) error
	PutTest(ctx context.Context, t Test) error

	GetTest(ctx context.Context, id string) (Test, error)
	GetLesson(ctx context.Context, id string) (Lesson, error)

	// FirstLesson returns the lowest order_index lesson of a book.
	FirstLesson(ctx context.Context, bookID string) (Lesson, error)
	// NextLesson returns the lesson following the given one within the same
	// book, or ErrLessonNotFound when the given lesson is the last.
	NextLesson(ctx context.Context, lessonID string) (Lesson, error)
}

type memoryCatalog struct {
	mu      sync.RWMutex
	lessons map[string]Lesson
	tests   map[string]Test
}

func NewInMemoryCatalog() Catalog {
	return &memoryCatalog{
		lessons: map[string]Lesson{},
		tests:   map[string]Test{},
	}
}

func (m *memoryCatalog) PutLesson(_ context.Context, l Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[l.ID] = l
	return nil
}

func (m *memoryCatalog) PutTest(_ context.Context, t Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range t.Questions {
		if t.Questions[i].Points == 0 {
			t.Questions[i].Points = 1
		}
	}
	m.tests[t.ID] = t
	return nil
}

func (m *memoryCatalog) GetTest(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, ErrTestNotFound
	}
	return t, nil
}

func (m *memoryCatalog) GetLesson(_ context.Context, id string) (Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lessons[id]
	if !ok {
		return Lesson{}, ErrLessonNotFound
	}
	return l, nil
}

func (m *memoryCatalog) FirstLesson(_ context.Context, bookID string) (Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ls := m.bookLessons(bookID)
	if len(ls) == 0 {
		return Lesson{}, ErrLessonNotFound
	}
	return ls[0], nil
}

func (m *memoryCatalog) NextLesson(_ context.Context, lessonID string) (Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cur, ok := m.lessons[lessonID]
	if !ok {
		return Lesson{}, ErrLessonNotFound
	}
	for _, l := range m.bookLessons(cur.BookID) {
		if l.OrderIndex > cur.OrderIndex {
			return l, nil
		}
	}
	return Lesson{}, ErrLessonNotFound
}

// bookLessons returns a book's lessons sorted by order_index; callers hold the lock.
func (m *memoryCatalog) bookLessons(bookID string) []Lesson {
	out := make([]Lesson, 0, len(m.lessons))
	for _, l := range m.lessons {
		if l.BookID == bookID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}
