package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"nursery-care-log/internal/domain/actions"
	"nursery-care-log/internal/platform/logger"
)

type OpType string

const (
	OpBegin  OpType = "begin"
	OpClose  OpType = "close"
	OpRecord OpType = "record"
)

// Operation describe lo que se aplica a cada niño seleccionado.
// El payload es compartido (misma calidad de pañal, mismos cuidados...).
type Operation struct {
	Type      OpType
	Kind      actions.Kind
	NurseryID string
	AgentID   string
	At        time.Time // zero = ahora
	Comment   string
	Payload   actions.Payload
}

type Failure struct {
	ChildID string
	Kind    actions.ErrorKind
	Err     error
}

// Result conserva el orden de entrada en ambas listas.
type Result struct {
	Succeeded []string
	Failed    []Failure
}

// FailedIDs es el subconjunto a reintentar.
func (r Result) FailedIDs() []string {
	out := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		out = append(out, f.ChildID)
	}
	return out
}

func (r Result) OK() bool { return len(r.Failed) == 0 }

type Coordinator struct {
	repo    actions.Repository
	machine *actions.StateMachine
	log     logger.Logger
	now     func() time.Time

	// MaxInFlight limita las peticiones simultáneas; <= 0 sin límite.
	MaxInFlight int
}

func NewCoordinator(repo actions.Repository, machine *actions.StateMachine, log logger.Logger) *Coordinator {
	if machine == nil {
		machine = actions.NewStateMachine()
	}
	return &Coordinator{
		repo:    repo,
		machine: machine,
		log:     logger.OrNop(log),
		now:     time.Now,
	}
}

type outcome struct {
	childID string
	err     error
}

// ApplyToMany aplica op a cada niño de forma independiente. Nunca devuelve
// error: cada fallo queda en Result.Failed con el niño y su tipo de error.
func (c *Coordinator) ApplyToMany(ctx context.Context, childIDs []string, op Operation) Result {
	ids := dedup(childIDs)
	if op.At.IsZero() {
		op.At = c.now()
	}

	outcomes := make([]outcome, len(ids))
	valid := make([]string, 0, len(ids))
	for i, id := range ids {
		outcomes[i].childID = id
		if id == "" {
			outcomes[i].err = actions.WithEntity(string(op.Type), "", "", fmt.Errorf("%w: empty child id", actions.ErrValidation))
			continue
		}
		valid = append(valid, id)
	}

	var open map[string][]actions.Action
	if (op.Type == OpBegin || op.Type == OpClose) && len(valid) > 0 {
		var err error
		open, err = c.openByChild(ctx, op, valid)
		if err != nil {
			for i := range outcomes {
				if outcomes[i].err == nil {
					outcomes[i].err = actions.WithEntity("list", outcomes[i].childID, "", err)
				}
			}
			return c.collect(op, outcomes, true)
		}
	}

	var g errgroup.Group
	if c.MaxInFlight > 0 {
		g.SetLimit(c.MaxInFlight)
	}
	for i := range outcomes {
		if outcomes[i].err != nil {
			continue
		}
		g.Go(func() error {
			childID := outcomes[i].childID
			outcomes[i].err = c.applyOne(ctx, childID, op, open[childID])
			return nil
		})
	}
	_ = g.Wait()

	return c.collect(op, outcomes, false)
}

func (c *Coordinator) applyOne(ctx context.Context, childID string, op Operation, open []actions.Action) error {
	var (
		a   actions.Action
		err error
	)
	switch op.Type {
	case OpBegin:
		a, err = c.machine.BeginInterval(actions.BeginInput{
			NurseryID: op.NurseryID,
			ChildID:   childID,
			Kind:      op.Kind,
			StartTime: op.At,
			AgentID:   op.AgentID,
			Comment:   op.Comment,
			Payload:   op.Payload,
		}, open)
		if err != nil {
			return err
		}
		_, err = c.repo.Create(ctx, a)
		return actions.WithEntity("begin", childID, "", err)

	case OpClose:
		target, ok := latestOpen(open, op.Kind)
		if !ok {
			return actions.WithEntity("close", childID, "", fmt.Errorf("%w: no open %s", actions.ErrNotFound, op.Kind))
		}
		a, err = c.machine.CloseInterval(target, op.At, op.AgentID)
		if err != nil {
			return err
		}
		if op.Comment != "" {
			a.Comment = strings.TrimSpace(op.Comment)
		}
		_, err = c.repo.Update(ctx, a)
		return actions.WithEntity("close", childID, a.ID, err)

	case OpRecord:
		a, err = c.machine.Record(actions.RecordInput{
			NurseryID: op.NurseryID,
			ChildID:   childID,
			Kind:      op.Kind,
			At:        op.At,
			AgentID:   op.AgentID,
			Comment:   op.Comment,
			Payload:   op.Payload,
		})
		if err != nil {
			return err
		}
		_, err = c.repo.Create(ctx, a)
		return actions.WithEntity("record", childID, "", err)
	}
	return actions.WithEntity(string(op.Type), childID, "", fmt.Errorf("%w: unknown operation %q", actions.ErrValidation, op.Type))
}

// openByChild trae en una sola llamada los intervalos abiertos de los niños
// seleccionados.
func (c *Coordinator) openByChild(ctx context.Context, op Operation, childIDs []string) (map[string][]actions.Action, error) {
	filter := actions.Filter{
		ChildIDs: childIDs,
		Kinds:    []actions.Kind{op.Kind},
		OpenOnly: true,
	}
	if op.NurseryID != "" {
		filter.NurseryIDs = []string{op.NurseryID}
	}

	recs, err := c.repo.List(ctx, filter)
	if err != nil {
		if !errors.Is(err, actions.ErrNetwork) {
			err = fmt.Errorf("%w: %v", actions.ErrNetwork, err)
		}
		return nil, err
	}

	out := make(map[string][]actions.Action, len(childIDs))
	for _, rec := range recs {
		a, err := actions.Decode(rec)
		if err != nil {
			c.log.Warn("batch: skipping undecodable open action", map[string]any{"id": rec["id"], "err": err})
			continue
		}
		out[a.ChildID] = append(out[a.ChildID], a)
	}
	return out, nil
}

func (c *Coordinator) collect(op Operation, outcomes []outcome, listFailed bool) Result {
	res := Result{Succeeded: []string{}, Failed: []Failure{}}
	for _, o := range outcomes {
		if o.err == nil {
			res.Succeeded = append(res.Succeeded, o.childID)
			continue
		}
		kind := actions.KindOf(o.err)
		if listFailed && kind != actions.KindValidation {
			kind = actions.KindNetwork
		}
		res.Failed = append(res.Failed, Failure{ChildID: o.childID, Kind: kind, Err: o.err})
		c.log.Warn("batch: child failed", map[string]any{
			"op":       string(op.Type),
			"kind":     string(op.Kind),
			"child_id": o.childID,
			"reason":   string(kind),
			"err":      o.err,
		})
	}
	if len(res.Failed) > 0 {
		c.log.Info("batch: applied with failures", map[string]any{
			"op":        string(op.Type),
			"kind":      string(op.Kind),
			"succeeded": len(res.Succeeded),
			"failed":    len(res.Failed),
		})
	}
	return res
}

// Close cierra una sola acción (pantalla de edición).
func (c *Coordinator) Close(ctx context.Context, a actions.Action, agentID string) (actions.Action, error) {
	closed, err := c.machine.CloseInterval(a, c.now(), agentID)
	if err != nil {
		return actions.Action{}, err
	}
	updated, err := c.repo.Update(ctx, closed)
	if err != nil {
		return actions.Action{}, actions.WithEntity("close", a.ChildID, a.ID, err)
	}
	return updated, nil
}

// Amend corrige una acción existente sin cambiar su estado.
func (c *Coordinator) Amend(ctx context.Context, a actions.Action, am actions.Amendment) (actions.Action, error) {
	amended, err := c.machine.Amend(a, am)
	if err != nil {
		return actions.Action{}, err
	}
	updated, err := c.repo.Update(ctx, amended)
	if err != nil {
		return actions.Action{}, actions.WithEntity("amend", a.ChildID, a.ID, err)
	}
	return updated, nil
}

// latestOpen: List ya viene por inicio descendente, pero no lo damos por hecho.
func latestOpen(open []actions.Action, kind actions.Kind) (actions.Action, bool) {
	var (
		best  actions.Action
		found bool
	)
	for _, a := range open {
		if a.Kind != kind || !a.IsOpen() {
			continue
		}
		if !found || a.StartTime().After(best.StartTime()) {
			best, found = a, true
		}
	}
	return best, found
}

// dedup conserva la primera aparición; los vacíos se mantienen para
// reportarlos como fallo.
func dedup(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
