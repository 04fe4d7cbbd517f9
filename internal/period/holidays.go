package period

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"
)

// LoadHolidays reads an iCalendar feed from a URL or file path and returns
// the set of days covered by its events, keyed by KeyLayout in local time.
func LoadHolidays(ctx context.Context, source string) (map[string]bool, error) {
	var r io.ReadCloser

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching holiday calendar: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("holiday calendar fetch returned status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening holiday calendar: %w", err)
		}
		r = f
	}
	defer r.Close()

	return parseHolidays(r)
}

func parseHolidays(r io.Reader) (map[string]bool, error) {
	dec := ical.NewDecoder(r)
	holidays := make(map[string]bool)

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing holiday calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(time.Local)
			if err != nil {
				continue
			}
			start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.Local)
			holidays[start.Format(KeyLayout)] = true

			// all-day events carry an exclusive DTEND
			end, err := event.DateTimeEnd(time.Local)
			if err != nil {
				continue
			}
			for d := start.AddDate(0, 0, 1); d.Before(end); d = d.AddDate(0, 0, 1) {
				holidays[d.Format(KeyLayout)] = true
			}
		}
	}

	return holidays, nil
}
