package actions

import "strings"

type Kind string

const (
	KindPresence  Kind = "presence"
	KindDiaper    Kind = "diaper"
	KindCare      Kind = "care"
	KindActivity  Kind = "activity"
	KindRest      Kind = "rest"
	KindTreatment Kind = "treatment"
)

// Kinds lista los tipos en el orden en que se muestran en los filtros.
var Kinds = []Kind{KindPresence, KindDiaper, KindCare, KindActivity, KindRest, KindTreatment}

func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

func (k Kind) Valid() bool {
	switch k {
	case KindPresence, KindDiaper, KindCare, KindActivity, KindRest, KindTreatment:
		return true
	default:
		return false
	}
}

// IsInterval: acciones con apertura y cierre.
func (k Kind) IsInterval() bool {
	return k == KindPresence || k == KindRest || k == KindActivity
}

// IsInstant: acciones completas desde su creación.
func (k Kind) IsInstant() bool {
	return k == KindDiaper || k == KindCare || k == KindTreatment
}

// Exclusive indica que un niño no puede tener dos acciones abiertas de
// este tipo el mismo día en la misma guardería.
func (k Kind) Exclusive() bool {
	return k == KindPresence || k == KindRest
}

type State string

const (
	StateOpen     State = "open"
	StateClosed   State = "closed"
	StateRecorded State = "recorded"
)
