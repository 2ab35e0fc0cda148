package lifecycle

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"campusboard/internal/models"

	"github.com/google/uuid"
)

// MemoryStore implements Store using an in-memory map. Used by tests.
type MemoryStore[T Subject] struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]T
	clone func(T) T
	match func(T, models.ListFilter) bool
}

// NewMemoryStore constructs an empty store. clone must deep-copy an item.
func NewMemoryStore[T Subject](clone func(T) T) *MemoryStore[T] {
	return &MemoryStore[T]{byID: make(map[uuid.UUID]T), clone: clone}
}

// WithMatcher adds type-specific filtering (category, topic) to List.
func (m *MemoryStore[T]) WithMatcher(match func(T, models.ListFilter) bool) *MemoryStore[T] {
	m.match = match
	return m
}

func (m *MemoryStore[T]) Get(_ context.Context, id uuid.UUID) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.byID[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return m.clone(item), nil
}

func (m *MemoryStore[T]) List(_ context.Context, filter models.ListFilter) ([]T, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var items []T
	for _, item := range m.byID {
		h := item.Meta()
		if filter.Status != "" && h.Status != filter.Status {
			continue
		}
		if filter.AuthorID != nil && h.AuthorID != *filter.AuthorID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(searchText(item)), search) {
			continue
		}
		if m.match != nil && !m.match(item, filter) {
			continue
		}
		items = append(items, m.clone(item))
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].Meta(), items[j].Meta()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	total := len(items)
	filter = filter.Normalize()
	start := min(filter.Offset(), total)
	end := min(start+filter.Limit, total)
	return items[start:end], total, nil
}

// searchText is what ListFilter.Search matches against: the item's
// SearchText when it has one, otherwise its summary.
func searchText[T Subject](item T) string {
	if s, ok := any(item).(interface{ SearchText() string }); ok {
		return s.SearchText()
	}
	return item.Summary()
}

func (m *MemoryStore[T]) Create(_ context.Context, item T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := item.Meta().ID
	if _, exists := m.byID[id]; exists {
		return errors.New("lifecycle: duplicate id")
	}
	m.byID[id] = m.clone(item)
	return nil
}

func (m *MemoryStore[T]) Update(_ context.Context, item T, expected models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := item.Meta()
	existing, ok := m.byID[h.ID]
	if !ok {
		return ErrNotFound
	}
	current := existing.Meta()
	if current.Status != expected || current.AuthorID != h.AuthorID {
		return ErrStale
	}
	updated := m.clone(item)
	*updated.Meta() = *current
	updated.Meta().Status = h.Status
	updated.Meta().UpdatedAt = h.UpdatedAt
	m.byID[h.ID] = updated
	return nil
}

func (m *MemoryStore[T]) Transition(_ context.Context, id uuid.UUID, expected models.Status, change Change) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	existing, ok := m.byID[id]
	if !ok {
		return zero, ErrNotFound
	}
	if existing.Meta().Status != expected {
		return zero, ErrStale
	}
	updated := m.clone(existing)
	change.Apply(updated.Meta())
	m.byID[id] = updated
	return m.clone(updated), nil
}

func (m *MemoryStore[T]) Delete(_ context.Context, id, authorID uuid.UUID, expected models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	h := existing.Meta()
	if h.Status != expected || h.AuthorID != authorID {
		return ErrStale
	}
	delete(m.byID, id)
	return nil
}
