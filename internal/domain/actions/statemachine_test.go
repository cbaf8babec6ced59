package actions

import (
	"errors"
	"testing"
	"time"

	"nursery-care-log/internal/domain/actions/details"
)

func beginPresence(t *testing.T, m *StateMachine, childID string, at time.Time, open []Action) Action {
	t.Helper()
	a, err := m.BeginInterval(BeginInput{
		NurseryID: "n1",
		ChildID:   childID,
		Kind:      KindPresence,
		StartTime: at,
		AgentID:   "agent-1",
	}, open)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return a
}

func TestStateMachine_BeginInterval_Open(t *testing.T) {
	m := NewStateMachine()
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	a := beginPresence(t, m, "c1", at, nil)
	if a.State() != StateOpen || a.EndTime() != nil || a.CompletedAgentID != "" {
		t.Fatalf("expected open presence, got %+v", a)
	}
	if !a.StartTime().Equal(at) {
		t.Fatalf("unexpected start: %v", a.StartTime())
	}
}

func TestStateMachine_BeginInterval_InvalidKind(t *testing.T) {
	m := NewStateMachine()
	_, err := m.BeginInterval(BeginInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindDiaper,
		StartTime: time.Now(), AgentID: "agent-1",
	}, nil)
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestStateMachine_BeginInterval_OverlapSameDay(t *testing.T) {
	m := NewStateMachine()
	m.Location = time.UTC
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	first := beginPresence(t, m, "c1", at, nil)
	first.ID = "a1"

	_, err := m.BeginInterval(BeginInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindPresence,
		StartTime: at.Add(time.Hour), AgentID: "agent-2",
	}, []Action{first})
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
	var ae *Error
	if !errors.As(err, &ae) || ae.ChildID != "c1" || ae.ActionID != "a1" {
		t.Fatalf("expected error naming child and open action, got %v", err)
	}

	// Otro día no solapa.
	if _, err := m.BeginInterval(BeginInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindPresence,
		StartTime: at.Add(24 * time.Hour), AgentID: "agent-1",
	}, []Action{first}); err != nil {
		t.Fatalf("next day should not overlap: %v", err)
	}
}

func TestStateMachine_ConcurrentActivities(t *testing.T) {
	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	in := BeginInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindActivity,
		StartTime: at, AgentID: "agent-1",
		Payload: Payload{ActivityTypeID: "painting"},
	}

	m := NewStateMachine()
	first, err := m.BeginInterval(in, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := m.BeginInterval(in, []Action{first}); err != nil {
		t.Fatalf("concurrent activities allowed by default: %v", err)
	}

	m.AllowConcurrentActivities = false
	if _, err := m.BeginInterval(in, []Action{first}); !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap when disabled, got %v", err)
	}
}

func TestStateMachine_CloseInterval(t *testing.T) {
	m := NewStateMachine()
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	open := beginPresence(t, m, "c1", at, nil)

	closed, err := m.CloseInterval(open, at.Add(9*time.Hour+30*time.Minute), "agent-2")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.State() != StateClosed || closed.CompletedAgentID != "agent-2" || closed.EndTime() == nil {
		t.Fatalf("expected closed with completing agent, got %+v", closed)
	}
	if open.State() != StateOpen || open.CompletedAgentID != "" {
		t.Fatalf("input must not be mutated")
	}

	again, err := m.CloseInterval(closed, at.Add(10*time.Hour), "agent-3")
	if !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
	if again.ID != "" || closed.CompletedAgentID != "agent-2" || !closed.EndTime().Equal(at.Add(9*time.Hour+30*time.Minute)) {
		t.Fatalf("closed action must be unchanged")
	}
}

func TestStateMachine_CloseInterval_Errors(t *testing.T) {
	m := NewStateMachine()
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	open := beginPresence(t, m, "c1", at, nil)

	if _, err := m.CloseInterval(open, at.Add(-time.Minute), "agent-1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for end before start, got %v", err)
	}
	if _, err := m.CloseInterval(open, at.Add(time.Hour), " "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty agent, got %v", err)
	}

	diaper, err := m.Record(RecordInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindDiaper, At: at, AgentID: "agent-1",
		Payload: Payload{DiaperQuality: details.DiaperQualitySoft},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := m.CloseInterval(diaper, at, "agent-1"); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
}

func TestStateMachine_Record(t *testing.T) {
	m := NewStateMachine()
	at := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)

	care, err := m.Record(RecordInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindCare, At: at, AgentID: "agent-1",
		Payload: Payload{CareTypes: []details.CareType{details.CareTypeEye, details.CareTypeEye, details.CareTypeNose}},
	})
	if err != nil {
		t.Fatalf("record care: %v", err)
	}
	if len(care.Care.Types) != 2 || care.State() != StateRecorded {
		t.Fatalf("expected deduplicated care types, got %+v", care.Care)
	}

	if _, err := m.Record(RecordInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindCare, At: at, AgentID: "agent-1",
		Payload: Payload{CareTypes: []details.CareType{"elbow"}},
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown care type, got %v", err)
	}

	if _, err := m.Record(RecordInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindDiaper, At: at, AgentID: "agent-1",
		Payload: Payload{DiaperQuality: "green"},
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown quality, got %v", err)
	}

	tr, err := m.Record(RecordInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindTreatment, At: at, AgentID: "agent-1",
		Payload: Payload{TreatmentID: "t1", Dose: "2.5 ml"},
	})
	if err != nil {
		t.Fatalf("record treatment: %v", err)
	}
	if !tr.Treatment.DosingTime.Equal(at) || !tr.StartTime().Equal(at) {
		t.Fatalf("dosing time must default to At, got %v", tr.Treatment.DosingTime)
	}

	if _, err := m.Record(RecordInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindRest, At: at, AgentID: "agent-1",
	}); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
}

func TestStateMachine_Amend(t *testing.T) {
	m := NewStateMachine()
	at := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)

	diaper, _ := m.Record(RecordInput{
		NurseryID: "n1", ChildID: "c1", Kind: KindDiaper, At: at, AgentID: "agent-1",
		Payload: Payload{DiaperQuality: details.DiaperQualitySoft},
	})

	hard := details.DiaperQualityHard
	note := "  revisado  "
	out, err := m.Amend(diaper, Amendment{DiaperQuality: &hard, Comment: &note})
	if err != nil {
		t.Fatalf("amend: %v", err)
	}
	if out.Diaper.Quality != details.DiaperQualityHard || out.Comment != "revisado" {
		t.Fatalf("unexpected amended diaper: %+v", out)
	}
	if diaper.Diaper.Quality != details.DiaperQualitySoft {
		t.Fatalf("input must not be mutated")
	}

	absent := true
	if _, err := m.Amend(diaper, Amendment{IsAbsent: &absent}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for field of another kind, got %v", err)
	}

	open := beginPresence(t, m, "c1", at, nil)
	end := at.Add(time.Hour)
	if _, err := m.Amend(open, Amendment{EndTime: &end}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation amending end of open action, got %v", err)
	}
	if out, err := m.Amend(open, Amendment{IsAbsent: &absent}); err != nil || !out.Presence.IsAbsent || out.State() != StateOpen {
		t.Fatalf("amend must keep lifecycle: %+v %v", out, err)
	}
}

func TestStateMachine_Amend_OpenExclusiveStaysOnItsDay(t *testing.T) {
	m := NewStateMachine()
	m.Location = time.UTC
	at := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	open := beginPresence(t, m, "c1", at, nil)

	earlier := at.Add(-2 * time.Hour)
	out, err := m.Amend(open, Amendment{StartTime: &earlier})
	if err != nil || !out.StartTime().Equal(earlier) {
		t.Fatalf("same-day move must be accepted: %+v %v", out, err)
	}

	nextDay := at.Add(24 * time.Hour)
	if _, err := m.Amend(open, Amendment{StartTime: &nextDay}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation moving open presence to another day, got %v", err)
	}

	closed, err := m.CloseInterval(open, at.Add(6*time.Hour), "agent-2")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	prevDay := at.Add(-24 * time.Hour)
	if _, err := m.Amend(closed, Amendment{StartTime: &prevDay}); err != nil {
		t.Fatalf("closed presence may move freely: %v", err)
	}
}
