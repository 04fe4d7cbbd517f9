// Package period computes monthly reporting windows and formats their
// boundaries the way the ponto backend expects them in query strings.
package period

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// BackendLayout is the dd/MM/yyyy layout used by every backend date parameter.
const BackendLayout = "02/01/2006"

// KeyLayout is the canonical day key used when bucketing records.
const KeyLayout = "2006-01-02"

// Period is a reporting window. Both Start and End are named days and are
// included; Start is midnight of the first day of a month and End is
// midnight of its last day, in the location of the reference instant.
type Period struct {
	Start time.Time
	End   time.Time
}

// CurrentMonth returns the calendar month containing now, in now's location.
func CurrentMonth(now time.Time) Period {
	return MonthOffset(now, 0)
}

// MonthOffset returns the calendar month n months away from the one
// containing now. n = -1 is the previous month.
func MonthOffset(now time.Time, n int) Period {
	loc := now.Location()
	start := time.Date(now.Year(), now.Month()+time.Month(n), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, -1)
	return Period{Start: start, End: end}
}

// Previous returns the month before p.
func (p Period) Previous() Period {
	return MonthOffset(p.Start, -1)
}

// Days returns every day of the period in order.
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Label renders the period as MM/yyyy.
func (p Period) Label() string {
	return p.Start.Format("01/2006")
}

// Query returns the dataInicio/dataFim parameters for the period.
func (p Period) Query() url.Values {
	return url.Values{
		"dataInicio": {FormatDate(p.Start)},
		"dataFim":    {FormatDate(p.End)},
	}
}

func (p Period) String() string {
	return fmt.Sprintf("%s–%s", FormatDate(p.Start), FormatDate(p.End))
}

// FormatDate renders t as two-digit day, two-digit month and four-digit
// year joined by slashes.
func FormatDate(t time.Time) string {
	return t.Format(BackendLayout)
}

// ParseDay parses the first ten characters of s into a local midnight,
// trying layouts in order. With no layouts it tries KeyLayout then
// BackendLayout, so a trailing time part is ignored.
func ParseDay(s string, layouts ...string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	if len(layouts) == 0 {
		layouts = []string{KeyLayout, BackendLayout}
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}
