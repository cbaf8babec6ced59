package details

// DiaperQuality describe el contenido del pañal.
type DiaperQuality string

const (
	DiaperQualityLiquid  DiaperQuality = "liquid"
	DiaperQualitySoft    DiaperQuality = "soft"
	DiaperQualityCorrect DiaperQuality = "correct"
	DiaperQualityHard    DiaperQuality = "hard"
)

func (q DiaperQuality) Valid() bool {
	switch q {
	case DiaperQualityLiquid, DiaperQualitySoft, DiaperQualityCorrect, DiaperQualityHard:
		return true
	default:
		return false
	}
}

type Diaper struct {
	Quality DiaperQuality `json:"diaper_quality"`
}

func (d *Diaper) Clone() *Diaper {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}
