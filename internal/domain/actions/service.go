package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service es el lado servidor de la colección /actions: asigna ids y
// fechas, valida y delega en el Store. Implementa Repository, así que
// también sirve como repositorio en proceso.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
	loc   *time.Location

	exclusiveActivities bool
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
		loc:   time.Local,
	}
}

// WithLocation fija el huso que define el "día" de las acciones abiertas.
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// WithExclusiveActivities hace que una actividad abierta ocupe su slot
// igual que presencia y siesta.
func (s *Service) WithExclusiveActivities(on bool) *Service {
	s.exclusiveActivities = on
	return s
}

func (s *Service) openSlot(a Action) string {
	if a.Kind == KindActivity && s.exclusiveActivities {
		return slotKey(a, s.loc)
	}
	return OpenSlot(a, s.loc)
}

// stamp: Postgres guarda microsegundos; truncamos para que UpdatedAt
// compare igual después de un round-trip.
func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) Create(ctx context.Context, a Action) (Action, error) {
	a = a.Clone()
	a.ID = s.newID()

	if err := a.Validate(); err != nil {
		return Action{}, newError("create", a.ChildID, "", err)
	}

	now := s.stamp()
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.store.Insert(ctx, a, s.openSlot(a)); err != nil {
		return Action{}, newError("create", a.ChildID, a.ID, err)
	}
	return a, nil
}

// Update reemplaza la acción. Reglas:
// - action_type, niño y guardería son inmutables;
// - un intervalo cerrado no se reabre;
// - si a.UpdatedAt viene informado debe coincidir con el guardado (ErrConflict).
func (s *Service) Update(ctx context.Context, a Action) (Action, error) {
	const op = "update"
	a = a.Clone()
	a.ID = strings.TrimSpace(a.ID)
	if a.ID == "" {
		return Action{}, newError(op, a.ChildID, "", fmt.Errorf("%w: id required", ErrValidation))
	}

	current, err := s.store.GetByID(ctx, a.ID)
	if err != nil {
		return Action{}, newError(op, a.ChildID, a.ID, err)
	}

	if a.Kind != current.Kind || a.ChildID != current.ChildID || a.NurseryID != current.NurseryID {
		return Action{}, newError(op, a.ChildID, a.ID, fmt.Errorf("%w: action_type, child and nursery are immutable", ErrValidation))
	}
	if current.State() == StateClosed && a.State() == StateOpen {
		return Action{}, newError(op, a.ChildID, a.ID, fmt.Errorf("%w: closed action cannot be reopened", ErrValidation))
	}
	// El slot de una acción abierta se fija al crearla.
	if a.IsOpen() && s.openSlot(a) != s.openSlot(current) {
		return Action{}, newError(op, a.ChildID, a.ID, fmt.Errorf("%w: open action cannot move to another day", ErrValidation))
	}
	if !a.UpdatedAt.IsZero() && !a.UpdatedAt.Equal(current.UpdatedAt) {
		return Action{}, newError(op, a.ChildID, a.ID, fmt.Errorf("%w: action was modified by someone else", ErrConflict))
	}
	if err := a.Validate(); err != nil {
		return Action{}, newError(op, a.ChildID, a.ID, err)
	}

	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = s.stamp()

	if err := s.store.Replace(ctx, a); err != nil {
		return Action{}, newError(op, a.ChildID, a.ID, err)
	}
	return a, nil
}

// Delete es un borrado físico.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return newError("delete", "", "", fmt.Errorf("%w: id required", ErrValidation))
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return newError("delete", "", id, err)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Action, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Action{}, ErrNotFound
	}
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(items))
	for _, a := range items {
		rec, err := Encode(a)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
