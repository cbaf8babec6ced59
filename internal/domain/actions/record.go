package actions

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"nursery-care-log/internal/domain/actions/details"
)

// Record es una acción tal como viaja por la API: objeto JSON con el
// payload anidado bajo una clave distinta según action_type.
type Record map[string]any

// wireAction es la forma JSON del contrato REST (/actions).
type wireAction struct {
	ID        string `json:"id,omitempty"`
	ChildID   string `json:"child_id"`
	NurseryID string `json:"nursery_id"`
	Kind      Kind   `json:"action_type"`

	StartAgentID     string `json:"start_agent_id"`
	CompletedAgentID string `json:"completed_agent_id,omitempty"`
	Comment          string `json:"comment"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	Presence  *details.Presence  `json:"presence,omitempty"`
	Rest      *details.Rest      `json:"rest,omitempty"`
	Activity  *details.Activity  `json:"activity,omitempty"`
	Diaper    *details.Diaper    `json:"diaper,omitempty"`
	Care      *details.Care      `json:"care,omitempty"`
	Treatment *details.Treatment `json:"treatment,omitempty"`
}

func toWire(a Action) wireAction {
	a = a.Clone()
	utc(&a)

	w := wireAction{
		ID:               a.ID,
		ChildID:          a.ChildID,
		NurseryID:        a.NurseryID,
		Kind:             a.Kind,
		StartAgentID:     a.StartAgentID,
		CompletedAgentID: a.CompletedAgentID,
		Comment:          a.Comment,
		Presence:         a.Presence,
		Rest:             a.Rest,
		Activity:         a.Activity,
		Diaper:           a.Diaper,
		Care:             a.Care,
		Treatment:        a.Treatment,
	}
	if !a.CreatedAt.IsZero() {
		w.CreatedAt = &a.CreatedAt
	}
	if !a.UpdatedAt.IsZero() {
		w.UpdatedAt = &a.UpdatedAt
	}
	return w
}

func fromWire(w wireAction) (Action, error) {
	kind := Kind(strings.TrimSpace(string(w.Kind)))
	if !kind.Valid() {
		return Action{}, newError("decode", w.ChildID, w.ID, fmt.Errorf("%w: %q", ErrUnknownKind, w.Kind))
	}
	a := Action{
		ID:               w.ID,
		ChildID:          w.ChildID,
		NurseryID:        w.NurseryID,
		Kind:             kind,
		StartAgentID:     w.StartAgentID,
		CompletedAgentID: w.CompletedAgentID,
		Comment:          w.Comment,
		Presence:         w.Presence,
		Rest:             w.Rest,
		Activity:         w.Activity,
		Diaper:           w.Diaper,
		Care:             w.Care,
		Treatment:        w.Treatment,
	}
	if w.CreatedAt != nil {
		a.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		a.UpdatedAt = *w.UpdatedAt
	}
	utc(&a)
	return a, nil
}

// utc normaliza todas las fechas: en el cable siempre van en UTC.
func utc(a *Action) {
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	if iv := a.interval(); iv != nil {
		iv.StartDateTime = iv.StartDateTime.UTC()
		if iv.EndDateTime != nil {
			t := iv.EndDateTime.UTC()
			iv.EndDateTime = &t
		}
	}
	if a.Treatment != nil {
		a.Treatment.DosingTime = a.Treatment.DosingTime.UTC()
	}
}

// Marshal serializa una acción al JSON del contrato.
func Marshal(a Action) ([]byte, error) {
	return json.Marshal(toWire(a))
}

// Unmarshal decodifica el JSON del contrato a una acción tipada.
func Unmarshal(b []byte) (Action, error) {
	var w wireAction
	if err := json.Unmarshal(b, &w); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return fromWire(w)
}

// Encode devuelve la acción como Record.
func Encode(a Action) (Record, error) {
	b, err := Marshal(a)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// Decode convierte un Record a acción tipada. No valida invariantes.
func Decode(r Record) (Action, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return Unmarshal(b)
}

// MarshalPayload serializa solo el payload del tipo (para los stores SQL).
func MarshalPayload(a Action) ([]byte, error) {
	w := toWire(a)
	switch a.Kind {
	case KindPresence:
		return json.Marshal(w.Presence)
	case KindRest:
		return json.Marshal(w.Rest)
	case KindActivity:
		return json.Marshal(w.Activity)
	case KindDiaper:
		return json.Marshal(w.Diaper)
	case KindCare:
		return json.Marshal(w.Care)
	case KindTreatment:
		return json.Marshal(w.Treatment)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
}

// UnmarshalPayload rellena en a el payload que corresponde a a.Kind.
func UnmarshalPayload(a *Action, b []byte) error {
	var err error
	switch a.Kind {
	case KindPresence:
		a.Presence = &details.Presence{}
		err = json.Unmarshal(b, a.Presence)
	case KindRest:
		a.Rest = &details.Rest{}
		err = json.Unmarshal(b, a.Rest)
	case KindActivity:
		a.Activity = &details.Activity{}
		err = json.Unmarshal(b, a.Activity)
	case KindDiaper:
		a.Diaper = &details.Diaper{}
		err = json.Unmarshal(b, a.Diaper)
	case KindCare:
		a.Care = &details.Care{}
		err = json.Unmarshal(b, a.Care)
	case KindTreatment:
		a.Treatment = &details.Treatment{}
		err = json.Unmarshal(b, a.Treatment)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
	}
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", a.Kind, err)
	}
	utc(a)
	return nil
}
