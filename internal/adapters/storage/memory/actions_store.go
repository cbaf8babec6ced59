package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"nursery-care-log/internal/domain/actions"
)

type actionStore struct {
	mu    sync.RWMutex
	byID  map[string]actions.Action
	slots map[string]string // slot -> id de la acción abierta que lo ocupa
}

func NewActionStore() actions.Store {
	return &actionStore{
		byID:  make(map[string]actions.Action),
		slots: make(map[string]string),
	}
}

func (s *actionStore) Insert(ctx context.Context, a actions.Action, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("action id required")
	}
	if _, exists := s.byID[a.ID]; exists {
		return fmt.Errorf("%w: action %s already exists", actions.ErrConflict, a.ID)
	}
	if slot != "" {
		if holder, taken := s.slots[slot]; taken {
			if cur, ok := s.byID[holder]; ok && cur.IsOpen() {
				return fmt.Errorf("%w: child already has an open %s (%s)", actions.ErrConflict, a.Kind, holder)
			}
		}
		s.slots[slot] = a.ID
	}

	s.byID[a.ID] = a.Clone()
	return nil
}

func (s *actionStore) Replace(ctx context.Context, a actions.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[a.ID]; !ok {
		return actions.ErrNotFound
	}
	s.byID[a.ID] = a.Clone()
	return nil
}

func (s *actionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return actions.ErrNotFound
	}
	delete(s.byID, id)
	for slot, holder := range s.slots {
		if holder == id {
			delete(s.slots, slot)
		}
	}
	return nil
}

func (s *actionStore) GetByID(ctx context.Context, id string) (actions.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return actions.Action{}, actions.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *actionStore) List(ctx context.Context, filter actions.Filter) ([]actions.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]actions.Action, 0)
	for _, a := range s.byID {
		if filter.Match(a) {
			out = append(out, a.Clone())
		}
	}

	// Más reciente primero; a igual inicio, por id para que sea estable.
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].StartTime(), out[j].StartTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
