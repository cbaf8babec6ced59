package details

import "time"

// Interval es la parte común de las acciones con apertura y cierre
// (presencia, siesta, actividad). EndDateTime nil = abierta.
type Interval struct {
	StartDateTime time.Time  `json:"start_date_time"`
	EndDateTime   *time.Time `json:"end_date_time,omitempty"`
}

func (i Interval) IsOpen() bool {
	return i.EndDateTime == nil
}

func (i Interval) clone() Interval {
	out := Interval{StartDateTime: i.StartDateTime}
	if i.EndDateTime != nil {
		t := *i.EndDateTime
		out.EndDateTime = &t
	}
	return out
}
