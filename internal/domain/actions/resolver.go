package actions

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Normalized es la proyección uniforme de cualquier acción para el histórico.
type Normalized struct {
	ID        string
	ChildID   string
	NurseryID string
	Kind      Kind

	StartTime time.Time
	EndTime   *time.Time

	StartAgentID     string
	CompletedAgentID string

	Comment   string
	CreatedAt time.Time

	// KindSpecific lleva los datos del tipo con claves del contrato
	// (diaper_quality, care_types, ...).
	KindSpecific map[string]any
}

type converter func(v any) (any, error)

// rule copia el valor en path (ruta explícita dentro del registro) al
// campo normalizado que decide apply.
type rule struct {
	path     []string
	conv     converter
	apply    func(n *Normalized, v any)
	required bool
}

func startAt(path ...string) rule {
	return rule{
		path:     path,
		conv:     asTime,
		required: true,
		apply:    func(n *Normalized, v any) { n.StartTime = v.(time.Time) },
	}
}

func endAt(path ...string) rule {
	return rule{
		path: path,
		conv: asTime,
		apply: func(n *Normalized, v any) {
			t := v.(time.Time)
			n.EndTime = &t
		},
	}
}

func extra(key string, conv converter, path ...string) rule {
	return rule{
		path:  path,
		conv:  conv,
		apply: func(n *Normalized, v any) { n.KindSpecific[key] = v },
	}
}

// Resolver extrae los campos de un Record según una tabla fija por tipo.
// No hay búsqueda genérica: si un campo no está en su ruta, no existe.
type Resolver struct {
	common []rule
	tables map[Kind][]rule
}

func NewResolver() *Resolver {
	str := func(key string, required bool, set func(n *Normalized, s string)) rule {
		return rule{
			path:     []string{key},
			conv:     asString,
			required: required,
			apply:    func(n *Normalized, v any) { set(n, v.(string)) },
		}
	}

	return &Resolver{
		common: []rule{
			str("id", true, func(n *Normalized, s string) { n.ID = s }),
			str("child_id", true, func(n *Normalized, s string) { n.ChildID = s }),
			str("nursery_id", false, func(n *Normalized, s string) { n.NurseryID = s }),
			str("start_agent_id", false, func(n *Normalized, s string) { n.StartAgentID = s }),
			str("completed_agent_id", false, func(n *Normalized, s string) { n.CompletedAgentID = s }),
			str("comment", false, func(n *Normalized, s string) { n.Comment = s }),
			{
				path:  []string{"created_at"},
				conv:  asTime,
				apply: func(n *Normalized, v any) { n.CreatedAt = v.(time.Time) },
			},
		},
		tables: map[Kind][]rule{
			KindPresence: {
				startAt("presence", "start_date_time"),
				endAt("presence", "end_date_time"),
				extra("is_absent", asBool, "presence", "is_absent"),
			},
			KindRest: {
				startAt("rest", "start_date_time"),
				endAt("rest", "end_date_time"),
			},
			KindActivity: {
				startAt("activity", "start_date_time"),
				endAt("activity", "end_date_time"),
				extra("activity_type_id", asString, "activity", "activity_type_id"),
			},
			KindDiaper: {
				startAt("created_at"),
				extra("diaper_quality", asString, "diaper", "diaper_quality"),
			},
			KindCare: {
				startAt("created_at"),
				extra("care_types", asStrings, "care", "care_types"),
			},
			KindTreatment: {
				startAt("treatment", "dosing_time"),
				extra("treatment_id", asString, "treatment", "treatment_id"),
				extra("dose", asString, "treatment", "dose"),
				extra("temperature", asFloat, "treatment", "temperature"),
			},
		},
	}
}

// Resolve normaliza un registro. ErrUnknownKind si action_type no está en
// la tabla; ErrValidation si falta un campo obligatorio o un valor no se
// puede convertir.
func (r *Resolver) Resolve(rec Record) (Normalized, error) {
	id, _ := rec["id"].(string)
	childID, _ := rec["child_id"].(string)

	raw, _ := rec["action_type"].(string)
	kind := Kind(strings.TrimSpace(raw))
	table, ok := r.tables[kind]
	if !ok {
		return Normalized{}, newError("resolve", childID, id, fmt.Errorf("%w: %q", ErrUnknownKind, raw))
	}

	n := Normalized{Kind: kind, KindSpecific: map[string]any{}}
	for _, rules := range [][]rule{r.common, table} {
		for _, ru := range rules {
			if err := ru.resolve(rec, &n); err != nil {
				return Normalized{}, newError("resolve", childID, id, err)
			}
		}
	}
	return n, nil
}

func (ru rule) resolve(rec Record, n *Normalized) error {
	v, found := lookup(rec, ru.path)
	if !found || v == nil {
		if ru.required {
			return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(ru.path, "."))
		}
		return nil
	}
	out, err := ru.conv(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrValidation, strings.Join(ru.path, "."), err)
	}
	ru.apply(n, out)
	return nil
}

// lookup sigue exactamente path; cualquier salto que no sea un objeto
// termina la búsqueda.
func lookup(rec Record, path []string) (any, bool) {
	var cur any = map[string]any(rec)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	}
	return nil, false
}

func asString(v any) (any, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	}
	return nil, fmt.Errorf("expected string, got %T", v)
}

func asBool(v any) (any, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	}
	return nil, fmt.Errorf("expected bool, got %T", v)
}

func asFloat(v any) (any, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case json.Number:
		return f.Float64()
	case string:
		return strconv.ParseFloat(f, 64)
	}
	return nil, fmt.Errorf("expected number, got %T", v)
}

func asStrings(v any) (any, error) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string list, got %T item", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list, got %T", v)
}

func asTime(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(t))
		if err != nil {
			return nil, err
		}
		return parsed.UTC(), nil
	}
	return nil, fmt.Errorf("expected RFC3339 time, got %T", v)
}
