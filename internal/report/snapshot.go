package report

import (
	"context"
	"fmt"

	"github.com/christopherklint97/ponto/internal/backend"
	"github.com/christopherklint97/ponto/internal/metrics"
	"github.com/christopherklint97/ponto/internal/period"
	"github.com/christopherklint97/ponto/internal/records"
)

// DailyRow is one employee-day of a Snapshot.
type DailyRow struct {
	EmployeeID int64
	Name       string
	DateKey    string
	Dated      bool
	Hours      float64
	Overtime   float64
}

// Snapshot is everything known about a month, flattened for export.
type Snapshot struct {
	Period     period.Period
	Cards      []Card
	Daily      []DailyRow
	Allocation []Bar
}

// Snapshot computes every card, the daily buckets and the allocation from a
// single fetch of the month. Cards carry their delta against the stored
// values but are not saved: an export is not a page load. It fails only
// when the apontamentos cannot be read.
func (s *Service) Snapshot(ctx context.Context, managerID int64) (*Snapshot, error) {
	p := s.Period()
	res := s.aggregation(ctx, managerID, p)
	if res.Outcome == backend.OutcomeFailure {
		return nil, fmt.Errorf("building snapshot for %s: %w", p.Label(), res.Err)
	}
	agg := res.Value

	snap := &Snapshot{Period: p}
	for _, def := range cardDefs {
		var value backend.Result[float64]
		if def.fromAgg != nil {
			value = s.fromAggregation(def, res, p)
		} else {
			value = def.fetch(ctx, s, managerID, p)
		}
		snap.Cards = append(snap.Cards, s.finish(def, p, value, false))
	}
	for _, b := range agg.Sorted() {
		profile := agg.Profile(b.EmployeeID)
		snap.Daily = append(snap.Daily, DailyRow{
			EmployeeID: b.EmployeeID,
			Name:       profile.Name,
			DateKey:    b.DateKey,
			Dated:      b.Dated,
			Hours:      b.Hours,
			Overtime:   metrics.DailyOvertime(b, profile),
		})
	}
	breakdown := metrics.AllocationBreakdown(agg.Records)
	for _, c := range records.Categories {
		snap.Allocation = append(snap.Allocation, Bar{Label: string(c), Value: breakdown[c]})
	}
	return snap, nil
}
