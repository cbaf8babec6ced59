package actions

import (
	"context"
	"time"
)

// Repository es el cliente CRUD de la colección remota de acciones.
// Lo implementan el cliente REST (adapters/api/actionsapi) y, en proceso,
// el Service de este paquete.
type Repository interface {
	Create(ctx context.Context, a Action) (Action, error)
	// Update reemplaza la representación completa (PUT /actions/{id}).
	Update(ctx context.Context, a Action) (Action, error)
	Delete(ctx context.Context, id string) error
	// List devuelve los registros crudos; el FieldResolver los interpreta.
	List(ctx context.Context, filter Filter) ([]Record, error)
}

// Store persiste acciones del lado servidor.
type Store interface {
	// Insert falla con ErrConflict si slot != "" y ya existe una acción
	// abierta con el mismo slot (ver OpenSlot).
	Insert(ctx context.Context, a Action, slot string) error
	Replace(ctx context.Context, a Action) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Action, error)
	// List ordena por StartTime desc.
	List(ctx context.Context, filter Filter) ([]Action, error)
}

type Filter struct {
	NurseryIDs []string
	ChildIDs   []string
	AgentIDs   []string // agente que abrió o cerró
	Kinds      []Kind

	// Rango sobre StartTime.
	From *time.Time
	To   *time.Time

	// OpenOnly: solo intervalos sin cierre (state=action_in_progress).
	OpenOnly bool
}

// Match aplica el filtro en memoria.
func (f Filter) Match(a Action) bool {
	if len(f.NurseryIDs) > 0 && !contains(f.NurseryIDs, a.NurseryID) {
		return false
	}
	if len(f.ChildIDs) > 0 && !contains(f.ChildIDs, a.ChildID) {
		return false
	}
	if len(f.AgentIDs) > 0 && !contains(f.AgentIDs, a.StartAgentID) && !contains(f.AgentIDs, a.CompletedAgentID) {
		return false
	}
	if len(f.Kinds) > 0 {
		ok := false
		for _, k := range f.Kinds {
			if a.Kind == k {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	start := a.StartTime()
	if f.From != nil && start.Before(*f.From) {
		return false
	}
	if f.To != nil && start.After(*f.To) {
		return false
	}
	if f.OpenOnly && !a.IsOpen() {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
