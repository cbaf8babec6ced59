package details

import "time"

// Treatment es una toma de medicamento.
type Treatment struct {
	TreatmentID string    `json:"treatment_id"`
	Dose        string    `json:"dose"` // texto libre: "2.5 ml", "1 sobre"
	DosingTime  time.Time `json:"dosing_time"`

	Temperature *float64 `json:"temperature,omitempty"` // °C, opcional
}

func (t *Treatment) Clone() *Treatment {
	if t == nil {
		return nil
	}
	out := *t
	if t.Temperature != nil {
		v := *t.Temperature
		out.Temperature = &v
	}
	return &out
}
