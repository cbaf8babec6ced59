package batch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"nursery-care-log/internal/domain/actions"
	"nursery-care-log/internal/domain/actions/details"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]actions.Action
	failFor map[string]error // childID -> error en Create/Update
	listErr error
	lists   int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]actions.Action{}, failFor: map[string]error{}}
}

func (r *testRepo) Create(ctx context.Context, a actions.Action) (actions.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor[a.ChildID]; err != nil {
		return actions.Action{}, err
	}
	r.seq++
	a.ID = fmt.Sprintf("a-%d", r.seq)
	a.CreatedAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a.UpdatedAt = a.CreatedAt
	r.byID[a.ID] = a
	return a, nil
}

func (r *testRepo) Update(ctx context.Context, a actions.Action) (actions.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor[a.ChildID]; err != nil {
		return actions.Action{}, err
	}
	if _, ok := r.byID[a.ID]; !ok {
		return actions.Action{}, actions.ErrNotFound
	}
	r.byID[a.ID] = a
	return a, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *testRepo) List(ctx context.Context, f actions.Filter) ([]actions.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []actions.Record{}
	for _, a := range r.byID {
		if !f.Match(a) {
			continue
		}
		rec, err := actions.Encode(a)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *testRepo) byChild(childID string) []actions.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []actions.Action
	for _, a := range r.byID {
		if a.ChildID == childID {
			out = append(out, a)
		}
	}
	return out
}

func newTestCoordinator(repo *testRepo) *Coordinator {
	c := NewCoordinator(repo, actions.NewStateMachine(), nil)
	c.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }
	return c
}

// -------------------------
// Tests
// -------------------------

func TestApplyToMany_PartialFailure_KeepsOrder(t *testing.T) {
	repo := newTestRepo()
	repo.failFor["c2"] = fmt.Errorf("%w: duplicated", actions.ErrConflict)
	c := newTestCoordinator(repo)

	res := c.ApplyToMany(context.Background(), []string{"c1", "c2", "c3"}, Operation{
		Type:      OpRecord,
		Kind:      actions.KindDiaper,
		NurseryID: "n1",
		AgentID:   "agent-1",
		Payload:   actions.Payload{DiaperQuality: details.DiaperQualitySoft},
	})

	if !reflect.DeepEqual(res.Succeeded, []string{"c1", "c3"}) {
		t.Fatalf("expected succeeded [c1 c3], got %v", res.Succeeded)
	}
	if len(res.Failed) != 1 || res.Failed[0].ChildID != "c2" {
		t.Fatalf("expected c2 failed, got %+v", res.Failed)
	}
	if res.Failed[0].Kind != actions.KindConflict {
		t.Fatalf("expected conflict kind, got %s", res.Failed[0].Kind)
	}
	if !errors.Is(res.Failed[0].Err, actions.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", res.Failed[0].Err)
	}
	if !reflect.DeepEqual(res.FailedIDs(), []string{"c2"}) {
		t.Fatalf("unexpected retry set: %v", res.FailedIDs())
	}
	if len(repo.byChild("c1")) != 1 || len(repo.byChild("c3")) != 1 {
		t.Fatalf("expected one action for c1 and c3")
	}
}

func TestApplyToMany_DedupAndBlank(t *testing.T) {
	repo := newTestRepo()
	c := newTestCoordinator(repo)

	res := c.ApplyToMany(context.Background(), []string{"c1", "c1", " ", "c2"}, Operation{
		Type:      OpRecord,
		Kind:      actions.KindCare,
		NurseryID: "n1",
		AgentID:   "agent-1",
		Payload:   actions.Payload{CareTypes: []details.CareType{details.CareTypeEye, details.CareTypeNose}},
	})

	if !reflect.DeepEqual(res.Succeeded, []string{"c1", "c2"}) {
		t.Fatalf("expected [c1 c2], got %v", res.Succeeded)
	}
	if len(res.Failed) != 1 || res.Failed[0].Kind != actions.KindValidation {
		t.Fatalf("expected one validation failure, got %+v", res.Failed)
	}
	if got := len(repo.byChild("c1")); got != 1 {
		t.Fatalf("duplicate child must be applied once, got %d", got)
	}
}

func TestApplyToMany_BeginTwice_Overlap(t *testing.T) {
	repo := newTestRepo()
	c := newTestCoordinator(repo)
	op := Operation{Type: OpBegin, Kind: actions.KindPresence, NurseryID: "n1", AgentID: "agent-1"}

	first := c.ApplyToMany(context.Background(), []string{"c1", "c2"}, op)
	if !first.OK() {
		t.Fatalf("first begin should succeed: %+v", first.Failed)
	}

	second := c.ApplyToMany(context.Background(), []string{"c1", "c3"}, op)
	if !reflect.DeepEqual(second.Succeeded, []string{"c3"}) {
		t.Fatalf("expected only c3 to begin, got %v", second.Succeeded)
	}
	if len(second.Failed) != 1 || second.Failed[0].ChildID != "c1" || second.Failed[0].Kind != actions.KindOverlap {
		t.Fatalf("expected c1 overlap, got %+v", second.Failed)
	}
	if repo.lists != 2 {
		t.Fatalf("expected one List per batch, got %d", repo.lists)
	}
}

func TestApplyToMany_Close(t *testing.T) {
	repo := newTestRepo()
	c := newTestCoordinator(repo)
	ctx := context.Background()

	begin := c.ApplyToMany(ctx, []string{"c1"}, Operation{Type: OpBegin, Kind: actions.KindRest, NurseryID: "n1", AgentID: "agent-1"})
	if !begin.OK() {
		t.Fatalf("begin failed: %+v", begin.Failed)
	}

	res := c.ApplyToMany(ctx, []string{"c1", "c2"}, Operation{
		Type:      OpClose,
		Kind:      actions.KindRest,
		NurseryID: "n1",
		AgentID:   "agent-2",
		At:        time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
	})

	if !reflect.DeepEqual(res.Succeeded, []string{"c1"}) {
		t.Fatalf("expected c1 closed, got %v", res.Succeeded)
	}
	if len(res.Failed) != 1 || res.Failed[0].Kind != actions.KindNotFound {
		t.Fatalf("expected c2 not_found, got %+v", res.Failed)
	}

	got := repo.byChild("c1")
	if len(got) != 1 || got[0].IsOpen() || got[0].CompletedAgentID != "agent-2" {
		t.Fatalf("expected closed rest by agent-2, got %+v", got)
	}
}

func TestApplyToMany_ListFailure_AllNetwork(t *testing.T) {
	repo := newTestRepo()
	repo.listErr = errors.New("connection refused")
	c := newTestCoordinator(repo)

	res := c.ApplyToMany(context.Background(), []string{"c1", "c2"}, Operation{
		Type: OpBegin, Kind: actions.KindPresence, NurseryID: "n1", AgentID: "agent-1",
	})

	if len(res.Succeeded) != 0 || len(res.Failed) != 2 {
		t.Fatalf("expected all failed, got %+v", res)
	}
	for _, f := range res.Failed {
		if f.Kind != actions.KindNetwork {
			t.Fatalf("expected network for %s, got %s", f.ChildID, f.Kind)
		}
	}
}

// gatedRepo retiene cada Create hasta que need llamadas han entrado y mide
// cuántas hay en curso a la vez.
type gatedRepo struct {
	*testRepo
	need int
	hold time.Duration

	gmu      sync.Mutex
	entered  int
	inFlight int
	peak     int
	all      chan struct{}
}

func newGatedRepo(need int, hold time.Duration) *gatedRepo {
	return &gatedRepo{testRepo: newTestRepo(), need: need, hold: hold, all: make(chan struct{})}
}

func (g *gatedRepo) Create(ctx context.Context, a actions.Action) (actions.Action, error) {
	g.gmu.Lock()
	g.entered++
	g.inFlight++
	g.peak = max(g.peak, g.inFlight)
	if g.entered == g.need {
		close(g.all)
	}
	g.gmu.Unlock()

	defer func() {
		g.gmu.Lock()
		g.inFlight--
		g.gmu.Unlock()
	}()

	select {
	case <-g.all:
	case <-time.After(2 * time.Second):
		return actions.Action{}, errors.New("calls were not issued concurrently")
	}
	time.Sleep(g.hold)
	return g.testRepo.Create(ctx, a)
}

func (g *gatedRepo) peakInFlight() int {
	g.gmu.Lock()
	defer g.gmu.Unlock()
	return g.peak
}

func treatmentOp() Operation {
	return Operation{
		Type:      OpRecord,
		Kind:      actions.KindTreatment,
		NurseryID: "n1",
		AgentID:   "agent-1",
		Payload:   actions.Payload{TreatmentID: "t1", Dose: "5ml"},
	}
}

func TestApplyToMany_AllCallsInFlightWithoutLimit(t *testing.T) {
	children := []string{"c1", "c2", "c3", "c4", "c5"}
	repo := newGatedRepo(len(children), 0)
	c := NewCoordinator(repo, actions.NewStateMachine(), nil)

	res := c.ApplyToMany(context.Background(), children, treatmentOp())
	if !res.OK() {
		t.Fatalf("expected every call outstanding at once, got failures %+v", res.Failed)
	}
	if got := repo.peakInFlight(); got != len(children) {
		t.Fatalf("expected %d calls in flight, peak was %d", len(children), got)
	}
}

func TestApplyToMany_MaxInFlight(t *testing.T) {
	children := []string{"c1", "c2", "c3", "c4", "c5", "c6"}
	repo := newGatedRepo(2, 20*time.Millisecond)
	c := NewCoordinator(repo, actions.NewStateMachine(), nil)
	c.MaxInFlight = 2

	res := c.ApplyToMany(context.Background(), children, treatmentOp())
	if !reflect.DeepEqual(res.Succeeded, children) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := repo.peakInFlight(); got != 2 {
		t.Fatalf("expected peak of 2 calls in flight, got %d", got)
	}
}

func TestCoordinator_Amend_DiaperQuality(t *testing.T) {
	repo := newTestRepo()
	c := newTestCoordinator(repo)
	ctx := context.Background()

	res := c.ApplyToMany(ctx, []string{"c1"}, Operation{
		Type: OpRecord, Kind: actions.KindDiaper, NurseryID: "n1", AgentID: "agent-1",
		Payload: actions.Payload{DiaperQuality: details.DiaperQualitySoft},
	})
	if !res.OK() {
		t.Fatalf("record failed: %+v", res.Failed)
	}

	current := repo.byChild("c1")[0]
	hard := details.DiaperQualityHard
	updated, err := c.Amend(ctx, current, actions.Amendment{DiaperQuality: &hard})
	if err != nil {
		t.Fatalf("amend: %v", err)
	}
	if updated.Diaper.Quality != details.DiaperQualityHard {
		t.Fatalf("expected hard, got %s", updated.Diaper.Quality)
	}
	if all := repo.byChild("c1"); len(all) != 1 || all[0].Diaper.Quality != details.DiaperQualityHard {
		t.Fatalf("expected a single hard diaper, got %+v", all)
	}
}

func TestCoordinator_Close_AlreadyClosed(t *testing.T) {
	repo := newTestRepo()
	c := newTestCoordinator(repo)
	ctx := context.Background()

	c.ApplyToMany(ctx, []string{"c1"}, Operation{
		Type: OpBegin, Kind: actions.KindActivity, NurseryID: "n1", AgentID: "agent-1",
		Payload: actions.Payload{ActivityTypeID: "painting"},
	})
	open := repo.byChild("c1")[0]

	closed, err := c.Close(ctx, open, "agent-1")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := c.Close(ctx, closed, "agent-1"); !errors.Is(err, actions.ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
}
