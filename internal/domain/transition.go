package domain

// Transition classifies how a target's up/down state moved between two
// consecutive records.
type Transition int

const (
	NoChange Transition = iota
	WentDown
	WentUp
)

func (t Transition) String() string {
	switch t {
	case WentDown:
		return "down"
	case WentUp:
		return "up"
	default:
		return "no-change"
	}
}

// Classify compares the previous record with the one replacing it.
func Classify(prev, next StatusRecord) Transition {
	switch {
	case prev.IsUp && !next.IsUp:
		return WentDown
	case !prev.IsUp && next.IsUp:
		return WentUp
	default:
		return NoChange
	}
}
