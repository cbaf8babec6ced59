package historic

import (
	"strings"
	"time"

	"nursery-care-log/internal/domain/actions"
)

type Column string

const (
	ColumnChild          Column = "child"
	ColumnKind           Column = "kind"
	ColumnStartAgent     Column = "start_agent"
	ColumnCompletedAgent Column = "completed_agent"
	ColumnComment        Column = "comment"
	ColumnStartTime      Column = "start_time"
	ColumnEndTime        Column = "end_time"
	ColumnCreatedAt      Column = "created_at"
)

func (c Column) Valid() bool {
	_, ok := comparators[c]
	return ok
}

type Direction string

const (
	DirNone Direction = ""
	DirAsc  Direction = "asc"
	DirDesc Direction = "desc"
)

type SortState struct {
	Column    Column
	Direction Direction
}

func (s SortState) Active() bool { return s.Direction != DirNone }

// next: none -> asc -> desc -> none en la misma columna; otra columna
// empieza en asc.
func (s SortState) next(col Column) SortState {
	if col != s.Column || s.Direction == DirNone {
		return SortState{Column: col, Direction: DirAsc}
	}
	if s.Direction == DirAsc {
		return SortState{Column: col, Direction: DirDesc}
	}
	return SortState{}
}

// Names resuelve nombres para mostrar; ordenar por niño o agente usa el
// nombre si lo hay.
type Names interface {
	ChildName(id string) string
	AgentName(id string) string
}

type comparator func(a, b actions.Normalized, names Names) int

var comparators = map[Column]comparator{
	ColumnChild: func(a, b actions.Normalized, n Names) int {
		return compareText(childName(n, a.ChildID), childName(n, b.ChildID))
	},
	ColumnKind: func(a, b actions.Normalized, _ Names) int {
		return compareText(string(a.Kind), string(b.Kind))
	},
	ColumnStartAgent: func(a, b actions.Normalized, n Names) int {
		return compareText(agentName(n, a.StartAgentID), agentName(n, b.StartAgentID))
	},
	ColumnCompletedAgent: func(a, b actions.Normalized, n Names) int {
		return compareText(agentName(n, a.CompletedAgentID), agentName(n, b.CompletedAgentID))
	},
	ColumnComment: func(a, b actions.Normalized, _ Names) int {
		return compareText(a.Comment, b.Comment)
	},
	ColumnStartTime: func(a, b actions.Normalized, _ Names) int {
		return a.StartTime.Compare(b.StartTime)
	},
	ColumnEndTime: func(a, b actions.Normalized, _ Names) int {
		return compareOptionalTime(a.EndTime, b.EndTime)
	},
	ColumnCreatedAt: func(a, b actions.Normalized, _ Names) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
}

func compareText(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Sin fin (abierto) va después de cualquier fecha.
func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

func childName(n Names, id string) string {
	if n != nil {
		if name := n.ChildName(id); name != "" {
			return name
		}
	}
	return id
}

func agentName(n Names, id string) string {
	if n != nil && id != "" {
		if name := n.AgentName(id); name != "" {
			return name
		}
	}
	return id
}
