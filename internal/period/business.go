package period

import "time"

// DefaultBusinessDays is the working-day count assumed for every month when
// no calendar is configured.
const DefaultBusinessDays = 22

// BusinessDays decides how many working days a period has.
type BusinessDays interface {
	Days(p Period) int
}

// Fixed reports the same number of business days for every period.
type Fixed int

func (f Fixed) Days(Period) int {
	if f < 0 {
		return 0
	}
	return int(f)
}

// Calendar counts Monday to Friday, skipping the holiday dates it holds.
// Holidays are keyed by KeyLayout.
type Calendar struct {
	Holidays map[string]bool
}

func (c Calendar) Days(p Period) int {
	n := 0
	for _, d := range p.Days() {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if c.Holidays[d.Format(KeyLayout)] {
			continue
		}
		n++
	}
	return n
}
