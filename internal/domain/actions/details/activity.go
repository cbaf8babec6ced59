package details

// Activity es una actividad supervisada; ActivityTypeID referencia el
// catálogo de actividades de la guardería.
type Activity struct {
	Interval
	ActivityTypeID string `json:"activity_type_id"`
}

func (a *Activity) Clone() *Activity {
	if a == nil {
		return nil
	}
	return &Activity{Interval: a.Interval.clone(), ActivityTypeID: a.ActivityTypeID}
}
