package details

// CareType es una zona de higiene atendida.
type CareType string

const (
	CareTypeEye   CareType = "eye"
	CareTypeNose  CareType = "nose"
	CareTypeMouth CareType = "mouth"
	CareTypeEar   CareType = "ear"
)

func (c CareType) Valid() bool {
	switch c {
	case CareTypeEye, CareTypeNose, CareTypeMouth, CareTypeEar:
		return true
	default:
		return false
	}
}

// Care agrupa los cuidados de higiene hechos en un mismo registro.
// Types se trata como un conjunto (ver NormalizeCareTypes).
type Care struct {
	Types []CareType `json:"care_types"`
}

func (c *Care) Clone() *Care {
	if c == nil {
		return nil
	}
	return &Care{Types: append([]CareType(nil), c.Types...)}
}

// NormalizeCareTypes deduplica conservando el orden de llegada.
// ok=false si algún valor no es un CareType conocido.
func NormalizeCareTypes(in []CareType) ([]CareType, bool) {
	seen := map[CareType]struct{}{}
	out := make([]CareType, 0, len(in))
	for _, t := range in {
		if !t.Valid() {
			return nil, false
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, true
}
