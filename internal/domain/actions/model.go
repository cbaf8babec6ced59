package actions

import (
	"fmt"
	"strings"
	"time"

	"nursery-care-log/internal/domain/actions/details"
)

// Action es un evento de cuidado registrado para un niño.
// Exactamente uno de los payloads está presente y corresponde a Kind.
type Action struct {
	ID        string
	ChildID   string
	NurseryID string

	Kind Kind

	StartAgentID     string // quien abre o registra
	CompletedAgentID string // quien cierra (solo intervalos cerrados)

	Comment string

	CreatedAt time.Time
	UpdatedAt time.Time

	Presence  *details.Presence
	Rest      *details.Rest
	Activity  *details.Activity
	Diaper    *details.Diaper
	Care      *details.Care
	Treatment *details.Treatment
}

// Clone copia también los payloads para que las transiciones nunca
// modifiquen el valor recibido.
func (a Action) Clone() Action {
	out := a
	out.Presence = a.Presence.Clone()
	out.Rest = a.Rest.Clone()
	out.Activity = a.Activity.Clone()
	out.Diaper = a.Diaper.Clone()
	out.Care = a.Care.Clone()
	out.Treatment = a.Treatment.Clone()
	return out
}

// interval devuelve el intervalo embebido en el payload o nil.
func (a *Action) interval() *details.Interval {
	switch a.Kind {
	case KindPresence:
		if a.Presence != nil {
			return &a.Presence.Interval
		}
	case KindRest:
		if a.Rest != nil {
			return &a.Rest.Interval
		}
	case KindActivity:
		if a.Activity != nil {
			return &a.Activity.Interval
		}
	}
	return nil
}

// StartTime es el momento de referencia de la acción: inicio del intervalo,
// hora de toma para tratamientos, creación para el resto.
func (a Action) StartTime() time.Time {
	if iv := a.interval(); iv != nil {
		return iv.StartDateTime
	}
	if a.Kind == KindTreatment && a.Treatment != nil {
		return a.Treatment.DosingTime
	}
	return a.CreatedAt
}

func (a Action) EndTime() *time.Time {
	if iv := a.interval(); iv != nil && iv.EndDateTime != nil {
		t := *iv.EndDateTime
		return &t
	}
	return nil
}

func (a Action) State() State {
	if !a.Kind.IsInterval() {
		return StateRecorded
	}
	if iv := a.interval(); iv != nil && iv.EndDateTime != nil {
		return StateClosed
	}
	return StateOpen
}

func (a Action) IsOpen() bool {
	return a.State() == StateOpen
}

func (a Action) payloadCount() int {
	n := 0
	if a.Presence != nil {
		n++
	}
	if a.Rest != nil {
		n++
	}
	if a.Activity != nil {
		n++
	}
	if a.Diaper != nil {
		n++
	}
	if a.Care != nil {
		n++
	}
	if a.Treatment != nil {
		n++
	}
	return n
}

func (a Action) hasPayloadFor(k Kind) bool {
	switch k {
	case KindPresence:
		return a.Presence != nil
	case KindRest:
		return a.Rest != nil
	case KindActivity:
		return a.Activity != nil
	case KindDiaper:
		return a.Diaper != nil
	case KindCare:
		return a.Care != nil
	case KindTreatment:
		return a.Treatment != nil
	}
	return false
}

// Validate comprueba las invariantes del modelo. No mira el ID ni las
// fechas de servidor: sirve antes y después de crear.
func (a Action) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: action_type %q", ErrValidation, a.Kind)
	}
	if strings.TrimSpace(a.ChildID) == "" {
		return fmt.Errorf("%w: child_id required", ErrValidation)
	}
	if strings.TrimSpace(a.NurseryID) == "" {
		return fmt.Errorf("%w: nursery_id required", ErrValidation)
	}
	if strings.TrimSpace(a.StartAgentID) == "" {
		return fmt.Errorf("%w: start_agent_id required", ErrValidation)
	}
	if a.payloadCount() != 1 || !a.hasPayloadFor(a.Kind) {
		return fmt.Errorf("%w: payload does not match action_type %s", ErrValidation, a.Kind)
	}

	if a.Kind.IsInterval() {
		iv := a.interval()
		if iv.StartDateTime.IsZero() {
			return fmt.Errorf("%w: start_date_time required", ErrValidation)
		}
		closed := iv.EndDateTime != nil
		hasCompleter := strings.TrimSpace(a.CompletedAgentID) != ""
		if closed != hasCompleter {
			return fmt.Errorf("%w: end_date_time and completed_agent_id go together", ErrValidation)
		}
		if closed && iv.EndDateTime.Before(iv.StartDateTime) {
			return fmt.Errorf("%w: end_date_time before start_date_time", ErrValidation)
		}
	} else if a.CompletedAgentID != "" {
		return fmt.Errorf("%w: completed_agent_id only applies to interval actions", ErrValidation)
	}

	switch a.Kind {
	case KindActivity:
		if strings.TrimSpace(a.Activity.ActivityTypeID) == "" {
			return fmt.Errorf("%w: activity_type_id required", ErrValidation)
		}
	case KindDiaper:
		if !a.Diaper.Quality.Valid() {
			return fmt.Errorf("%w: diaper_quality %q", ErrValidation, a.Diaper.Quality)
		}
	case KindCare:
		if len(a.Care.Types) == 0 {
			return fmt.Errorf("%w: care_types required", ErrValidation)
		}
		norm, ok := details.NormalizeCareTypes(a.Care.Types)
		if !ok || len(norm) != len(a.Care.Types) {
			return fmt.Errorf("%w: care_types must be distinct values of eye, nose, mouth, ear", ErrValidation)
		}
	case KindTreatment:
		if strings.TrimSpace(a.Treatment.TreatmentID) == "" {
			return fmt.Errorf("%w: treatment_id required", ErrValidation)
		}
		if strings.TrimSpace(a.Treatment.Dose) == "" {
			return fmt.Errorf("%w: dose required", ErrValidation)
		}
		if a.Treatment.DosingTime.IsZero() {
			return fmt.Errorf("%w: dosing_time required", ErrValidation)
		}
	}
	return nil
}

// OpenSlot identifica el hueco exclusivo que ocupa una presencia o siesta
// abierta: guardería, niño, tipo y día local del inicio. "" si no aplica.
func OpenSlot(a Action, loc *time.Location) string {
	if !a.Kind.Exclusive() {
		return ""
	}
	return slotKey(a, loc)
}

func slotKey(a Action, loc *time.Location) string {
	if !a.IsOpen() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	day := a.StartTime().In(loc).Format("2006-01-02")
	return strings.Join([]string{a.NurseryID, a.ChildID, string(a.Kind), day}, "|")
}
