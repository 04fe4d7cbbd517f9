package metrics

// DeltaKind tells how a period-over-period change should be read.
type DeltaKind int

const (
	// NoBase means there is no previous value to compare against.
	NoBase DeltaKind = iota
	// PercentagePoints is used when the previous value was exactly 0 and the
	// current one is positive, where a ratio would divide by zero.
	PercentagePoints
	// Signed is current minus previous.
	Signed
)

func (k DeltaKind) String() string {
	switch k {
	case NoBase:
		return "no-base"
	case PercentagePoints:
		return "pp"
	default:
		return "signed"
	}
}

// Delta is the change of a metric against its previous value.
type Delta struct {
	Kind  DeltaKind
	Value float64
}

// ComputeDelta compares current with previous. hasPrevious is false when no
// previous value was ever stored.
func ComputeDelta(current, previous float64, hasPrevious bool) Delta {
	if !hasPrevious {
		return Delta{Kind: NoBase}
	}
	if previous == 0 && current > 0 {
		return Delta{Kind: PercentagePoints, Value: current}
	}
	return Delta{Kind: Signed, Value: current - previous}
}
