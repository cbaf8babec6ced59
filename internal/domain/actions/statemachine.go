package actions

import (
	"fmt"
	"strings"
	"time"

	"nursery-care-log/internal/domain/actions/details"
)

// StateMachine decide y valida las transiciones de una acción.
// Es lógica pura: no hace I/O y nunca modifica los valores recibidos.
type StateMachine struct {
	// AllowConcurrentActivities permite que un niño tenga varias
	// actividades abiertas a la vez. Presencia y siesta nunca se solapan.
	AllowConcurrentActivities bool

	// Location define el "día" de la guardería para detectar solapes.
	Location *time.Location
}

func NewStateMachine() *StateMachine {
	return &StateMachine{
		AllowConcurrentActivities: true,
		Location:                  time.Local,
	}
}

// Payload reúne los campos propios de cada tipo. Cada operación usa solo
// los que corresponden al tipo pedido.
type Payload struct {
	IsAbsent       bool
	ActivityTypeID string

	DiaperQuality details.DiaperQuality
	CareTypes     []details.CareType

	TreatmentID string
	Dose        string
	DosingTime  time.Time // zero = At del registro
	Temperature *float64
}

type BeginInput struct {
	NurseryID string
	ChildID   string
	Kind      Kind
	StartTime time.Time
	AgentID   string
	Comment   string
	Payload   Payload
}

type RecordInput struct {
	NurseryID string
	ChildID   string
	Kind      Kind
	At        time.Time
	AgentID   string
	Comment   string
	Payload   Payload
}

// Amendment: nil = no tocar.
type Amendment struct {
	Comment *string

	// Solo intervalos. EndTime solo sobre intervalos ya cerrados.
	StartTime *time.Time
	EndTime   *time.Time

	IsAbsent       *bool
	ActivityTypeID *string

	DiaperQuality *details.DiaperQuality
	CareTypes     []details.CareType

	TreatmentID *string
	Dose        *string
	DosingTime  *time.Time
	Temperature *float64
}

func (m *StateMachine) location() *time.Location {
	if m == nil || m.Location == nil {
		return time.Local
	}
	return m.Location
}

// BeginInterval abre una presencia, siesta o actividad. open son las
// acciones abiertas actuales del niño (fetch-then-act).
func (m *StateMachine) BeginInterval(in BeginInput, open []Action) (Action, error) {
	const op = "begin"
	childID := strings.TrimSpace(in.ChildID)

	if !in.Kind.IsInterval() {
		return Action{}, newError(op, childID, "", fmt.Errorf("%w: %q", ErrInvalidKind, in.Kind))
	}
	if childID == "" || strings.TrimSpace(in.NurseryID) == "" || strings.TrimSpace(in.AgentID) == "" {
		return Action{}, newError(op, childID, "", fmt.Errorf("%w: nursery, child and agent required", ErrValidation))
	}
	if in.StartTime.IsZero() {
		return Action{}, newError(op, childID, "", fmt.Errorf("%w: start time required", ErrValidation))
	}

	if m.exclusive(in.Kind) {
		day := dayOf(in.StartTime, m.location())
		for _, o := range open {
			if o.Kind != in.Kind || o.ChildID != childID || o.NurseryID != in.NurseryID || !o.IsOpen() {
				continue
			}
			if dayOf(o.StartTime(), m.location()) != day {
				continue
			}
			return Action{}, newError(op, childID, o.ID, ErrOverlap)
		}
	}

	start := in.StartTime.UTC()
	iv := details.Interval{StartDateTime: start}

	a := Action{
		ChildID:      childID,
		NurseryID:    strings.TrimSpace(in.NurseryID),
		Kind:         in.Kind,
		StartAgentID: strings.TrimSpace(in.AgentID),
		Comment:      strings.TrimSpace(in.Comment),
	}
	switch in.Kind {
	case KindPresence:
		a.Presence = &details.Presence{Interval: iv, IsAbsent: in.Payload.IsAbsent}
	case KindRest:
		a.Rest = &details.Rest{Interval: iv}
	case KindActivity:
		a.Activity = &details.Activity{Interval: iv, ActivityTypeID: strings.TrimSpace(in.Payload.ActivityTypeID)}
	}

	if err := a.Validate(); err != nil {
		return Action{}, newError(op, childID, "", err)
	}
	return a, nil
}

func (m *StateMachine) exclusive(k Kind) bool {
	if k.Exclusive() {
		return true
	}
	return k == KindActivity && m != nil && !m.AllowConcurrentActivities
}

// CloseInterval cierra un intervalo abierto. Fin y agente que cierra se
// fijan juntos.
func (m *StateMachine) CloseInterval(a Action, end time.Time, agentID string) (Action, error) {
	const op = "close"

	if !a.Kind.IsInterval() {
		return Action{}, newError(op, a.ChildID, a.ID, fmt.Errorf("%w: %s is not an interval action", ErrWrongKind, a.Kind))
	}
	if a.State() == StateClosed {
		return Action{}, newError(op, a.ChildID, a.ID, ErrAlreadyClosed)
	}
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return Action{}, newError(op, a.ChildID, a.ID, fmt.Errorf("%w: completing agent required", ErrValidation))
	}
	if end.IsZero() {
		return Action{}, newError(op, a.ChildID, a.ID, fmt.Errorf("%w: end time required", ErrValidation))
	}

	out := a.Clone()
	iv := out.interval()
	if iv == nil {
		return Action{}, newError(op, a.ChildID, a.ID, fmt.Errorf("%w: missing %s payload", ErrValidation, a.Kind))
	}
	e := end.UTC()
	iv.EndDateTime = &e
	out.CompletedAgentID = agentID

	if err := out.Validate(); err != nil {
		return Action{}, newError(op, a.ChildID, a.ID, err)
	}
	return out, nil
}

// Record crea un pañal, cuidado o tratamiento.
func (m *StateMachine) Record(in RecordInput) (Action, error) {
	const op = "record"
	childID := strings.TrimSpace(in.ChildID)

	if !in.Kind.IsInstant() {
		return Action{}, newError(op, childID, "", fmt.Errorf("%w: %q is not an instantaneous action", ErrWrongKind, in.Kind))
	}
	if childID == "" || strings.TrimSpace(in.NurseryID) == "" || strings.TrimSpace(in.AgentID) == "" {
		return Action{}, newError(op, childID, "", fmt.Errorf("%w: nursery, child and agent required", ErrValidation))
	}

	a := Action{
		ChildID:      childID,
		NurseryID:    strings.TrimSpace(in.NurseryID),
		Kind:         in.Kind,
		StartAgentID: strings.TrimSpace(in.AgentID),
		Comment:      strings.TrimSpace(in.Comment),
	}
	switch in.Kind {
	case KindDiaper:
		a.Diaper = &details.Diaper{Quality: in.Payload.DiaperQuality}
	case KindCare:
		types, ok := details.NormalizeCareTypes(in.Payload.CareTypes)
		if !ok {
			return Action{}, newError(op, childID, "", fmt.Errorf("%w: unknown care type", ErrValidation))
		}
		a.Care = &details.Care{Types: types}
	case KindTreatment:
		dosing := in.Payload.DosingTime
		if dosing.IsZero() {
			dosing = in.At
		}
		a.Treatment = &details.Treatment{
			TreatmentID: strings.TrimSpace(in.Payload.TreatmentID),
			Dose:        strings.TrimSpace(in.Payload.Dose),
			DosingTime:  dosing.UTC(),
		}
		if in.Payload.Temperature != nil {
			t := *in.Payload.Temperature
			a.Treatment.Temperature = &t
		}
	}

	if err := a.Validate(); err != nil {
		return Action{}, newError(op, childID, "", err)
	}
	return a, nil
}

// Amend reescribe comentario, horas o datos del tipo sin cambiar el
// estado del ciclo de vida.
func (m *StateMachine) Amend(a Action, am Amendment) (Action, error) {
	const op = "amend"
	fail := func(err error) (Action, error) {
		return Action{}, newError(op, a.ChildID, a.ID, err)
	}
	notFor := func(field string) (Action, error) {
		return fail(fmt.Errorf("%w: %s does not apply to %s", ErrValidation, field, a.Kind))
	}

	out := a.Clone()
	if am.Comment != nil {
		out.Comment = strings.TrimSpace(*am.Comment)
	}

	iv := out.interval()
	if am.StartTime != nil {
		if iv == nil {
			return notFor("start time")
		}
		iv.StartDateTime = am.StartTime.UTC()
		if out.IsOpen() && m.exclusive(out.Kind) && dayOf(a.StartTime(), m.location()) != dayOf(out.StartTime(), m.location()) {
			return fail(fmt.Errorf("%w: open %s cannot move to another day", ErrValidation, a.Kind))
		}
	}
	if am.EndTime != nil {
		if iv == nil {
			return notFor("end time")
		}
		if iv.EndDateTime == nil {
			return fail(fmt.Errorf("%w: open action must be closed, not amended", ErrValidation))
		}
		e := am.EndTime.UTC()
		iv.EndDateTime = &e
	}

	if am.IsAbsent != nil {
		if out.Presence == nil {
			return notFor("is_absent")
		}
		out.Presence.IsAbsent = *am.IsAbsent
	}
	if am.ActivityTypeID != nil {
		if out.Activity == nil {
			return notFor("activity_type_id")
		}
		out.Activity.ActivityTypeID = strings.TrimSpace(*am.ActivityTypeID)
	}
	if am.DiaperQuality != nil {
		if out.Diaper == nil {
			return notFor("diaper_quality")
		}
		out.Diaper.Quality = *am.DiaperQuality
	}
	if am.CareTypes != nil {
		if out.Care == nil {
			return notFor("care_types")
		}
		types, ok := details.NormalizeCareTypes(am.CareTypes)
		if !ok {
			return fail(fmt.Errorf("%w: unknown care type", ErrValidation))
		}
		out.Care.Types = types
	}
	if am.TreatmentID != nil || am.Dose != nil || am.DosingTime != nil || am.Temperature != nil {
		if out.Treatment == nil {
			return notFor("treatment fields")
		}
		if am.TreatmentID != nil {
			out.Treatment.TreatmentID = strings.TrimSpace(*am.TreatmentID)
		}
		if am.Dose != nil {
			out.Treatment.Dose = strings.TrimSpace(*am.Dose)
		}
		if am.DosingTime != nil {
			out.Treatment.DosingTime = am.DosingTime.UTC()
		}
		if am.Temperature != nil {
			t := *am.Temperature
			out.Treatment.Temperature = &t
		}
	}

	if err := out.Validate(); err != nil {
		return fail(err)
	}
	return out, nil
}

func dayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
