package historic

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"nursery-care-log/internal/domain/actions"
	"nursery-care-log/internal/platform/logger"
)

const DefaultWindowSize = 20

// ErrStale: la respuesta llegó después de otra consulta o de Discard.
var ErrStale = errors.New("historic: stale response")

type Filters = actions.Filter

type ViewModel struct {
	Items   []actions.Normalized
	HasMore bool
	Sort    SortState
	Total   int
}

// Engine mantiene el resultado de una consulta del histórico: ventana
// revelada, orden activo y borrados optimistas. El mutex solo protege
// trabajo en memoria; nunca se mantiene durante una llamada al repositorio.
type Engine struct {
	repo     actions.Repository
	resolver *actions.Resolver
	log      logger.Logger
	names    Names
	loc      *time.Location
	window   int

	mu       sync.Mutex
	filters  Filters
	all      []actions.Normalized // orden del servidor
	revealed int
	view     []actions.Normalized
	sort     SortState
	gen      uint64

	// Borrados optimistas: 0 mientras la llamada está en curso; si terminó
	// bien, la generación vigente en ese momento. Una respuesta de esa
	// generación o anterior puede traer todavía la fila.
	pending map[string]uint64
}

func NewEngine(repo actions.Repository, windowSize int, log logger.Logger) *Engine {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Engine{
		repo:     repo,
		resolver: actions.NewResolver(),
		log:      logger.OrNop(log),
		loc:      time.Local,
		window:   windowSize,
		pending:  make(map[string]uint64),
	}
}

// WithLocation fija el huso para mostrar y exportar fechas.
func (e *Engine) WithLocation(loc *time.Location) *Engine {
	if loc != nil {
		e.mu.Lock()
		e.loc = loc
		e.mu.Unlock()
	}
	return e
}

func (e *Engine) WithNames(n Names) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names = n
	return e
}

// ApplyFilters consulta, normaliza y muestra la primera ventana. Los
// registros de tipo desconocido o mal formados se descartan con un aviso.
func (e *Engine) ApplyFilters(ctx context.Context, f Filters) error {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	recs, err := e.repo.List(ctx, f)

	var items []actions.Normalized
	if err == nil {
		items = e.normalize(recs)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		e.log.Debug("historic: discarding stale response", map[string]any{"gen": gen, "latest": e.gen})
		return ErrStale
	}
	if err != nil {
		return err
	}

	e.filters = f
	e.all = e.dropPending(items, gen)
	e.revealed = min(e.window, len(items))
	e.rebuild()
	return nil
}

// dropPending quita de items las filas con un borrado en curso o ya
// confirmado después de que empezara la consulta gen. Llamar con mu.
func (e *Engine) dropPending(items []actions.Normalized, gen uint64) []actions.Normalized {
	for id, done := range e.pending {
		if done != 0 && gen > done {
			delete(e.pending, id)
		}
	}
	if len(e.pending) == 0 {
		return items
	}
	return slices.DeleteFunc(items, func(n actions.Normalized) bool {
		_, ok := e.pending[n.ID]
		return ok
	})
}

func (e *Engine) normalize(recs []actions.Record) []actions.Normalized {
	out := make([]actions.Normalized, 0, len(recs))
	for _, rec := range recs {
		n, err := e.resolver.Resolve(rec)
		if err != nil {
			e.log.Warn("historic: record excluded", map[string]any{
				"id":     rec["id"],
				"reason": string(actions.KindOf(err)),
				"err":    err,
			})
			continue
		}
		out = append(out, n)
	}
	return out
}

// RevealMore amplía la ventana. false si ya está todo visible.
func (e *Engine) RevealMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.revealed >= len(e.all) {
		return false
	}
	e.revealed = min(e.revealed+e.window, len(e.all))
	e.rebuild()
	return true
}

// CycleSort rota el orden de col: asc, desc y vuelta al orden del servidor.
func (e *Engine) CycleSort(col Column) error {
	if !col.Valid() {
		return fmt.Errorf("%w: unknown sort column %q", actions.ErrValidation, col)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sort = e.sort.next(col)
	e.rebuild()
	return nil
}

// Delete quita la acción de la vista y la borra en el servidor. Si el
// borrado falla se restaura en su posición.
func (e *Engine) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	e.mu.Lock()
	idx := slices.IndexFunc(e.all, func(n actions.Normalized) bool { return n.ID == id })
	if idx < 0 {
		e.mu.Unlock()
		return actions.WithEntity("delete", "", id, actions.ErrNotFound)
	}
	removed := e.all[idx]
	wasRevealed := idx < e.revealed
	gen := e.gen
	e.pending[id] = 0

	e.all = slices.Delete(slices.Clone(e.all), idx, idx+1)
	if wasRevealed {
		e.revealed--
	}
	e.rebuild()
	e.mu.Unlock()

	err := e.repo.Delete(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err == nil {
		e.pending[id] = e.gen
		return nil
	}
	delete(e.pending, id)

	// Otra consulta ya reemplazó el resultado, o la fila volvió con él: no
	// hay nada que restaurar.
	present := slices.ContainsFunc(e.all, func(n actions.Normalized) bool { return n.ID == id })
	if gen == e.gen && !present {
		idx = min(idx, len(e.all))
		e.all = slices.Insert(e.all, idx, removed)
		if wasRevealed {
			e.revealed = min(e.revealed+1, len(e.all))
		}
		e.rebuild()
	}
	e.log.Warn("historic: delete failed", map[string]any{"id": id, "child_id": removed.ChildID, "err": err})
	return actions.WithEntity("delete", removed.ChildID, id, err)
}

// Discard invalida las respuestas pendientes (el usuario salió de la pantalla).
func (e *Engine) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
}

func (e *Engine) View() ViewModel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ViewModel{
		Items:   slices.Clone(e.view),
		HasMore: e.revealed < len(e.all),
		Sort:    e.sort,
		Total:   len(e.all),
	}
}

func (e *Engine) Filters() Filters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filters
}

// rebuild recalcula la vista: prefijo revelado de all y, si hay orden
// activo, ordenado de forma estable. Requiere e.mu.
func (e *Engine) rebuild() {
	view := slices.Clone(e.all[:e.revealed])
	if e.sort.Active() {
		cmp := comparators[e.sort.Column]
		names := e.names
		desc := e.sort.Direction == DirDesc
		slices.SortStableFunc(view, func(a, b actions.Normalized) int {
			c := cmp(a, b, names)
			if desc {
				return -c
			}
			return c
		})
	}
	e.view = view
}
