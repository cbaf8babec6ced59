package details

// Presence registra la llegada (y luego la salida) de un niño.
// IsAbsent marca una ausencia declarada para el día.
type Presence struct {
	Interval
	IsAbsent bool `json:"is_absent"`
}

func (p *Presence) Clone() *Presence {
	if p == nil {
		return nil
	}
	return &Presence{Interval: p.Interval.clone(), IsAbsent: p.IsAbsent}
}

// Rest es una siesta.
type Rest struct {
	Interval
}

func (r *Rest) Clone() *Rest {
	if r == nil {
		return nil
	}
	return &Rest{Interval: r.Interval.clone()}
}
