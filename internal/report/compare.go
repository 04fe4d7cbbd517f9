package report

import (
	"context"
	"fmt"

	"github.com/christopherklint97/ponto/internal/aggregate"
	"github.com/christopherklint97/ponto/internal/backend"
	"github.com/christopherklint97/ponto/internal/metrics"
	"github.com/christopherklint97/ponto/internal/period"
	"golang.org/x/sync/errgroup"
)

// Comparison is the overtime of the current month set against the previous one.
type Comparison struct {
	Current          period.Period
	Previous         period.Period
	CurrentAgg       *aggregate.Aggregation
	PreviousAgg      *aggregate.Aggregation
	CurrentOvertime  float64
	PreviousOvertime float64
	// PreviousEmpty is true when the previous month had no apontamentos,
	// in which case Delta has no base.
	PreviousEmpty bool
	Delta         metrics.Delta
}

// Compare fetches the current and previous month in parallel and derives
// the overtime percentage delta between them. The store is not consulted.
func (s *Service) Compare(ctx context.Context, managerID int64) (*Comparison, error) {
	cur := s.Period()
	prev := cur.Previous()

	var curRes, prevRes backend.Result[*aggregate.Aggregation]
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		curRes = s.aggregation(gctx, managerID, cur)
		if curRes.Outcome == backend.OutcomeFailure {
			return fmt.Errorf("current month %s: %w", cur.Label(), curRes.Err)
		}
		return nil
	})
	g.Go(func() error {
		prevRes = s.aggregation(gctx, managerID, prev)
		if prevRes.Outcome == backend.OutcomeFailure {
			return fmt.Errorf("previous month %s: %w", prev.Label(), prevRes.Err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Comparison{
		Current:          cur,
		Previous:         prev,
		CurrentAgg:       curRes.Value,
		PreviousAgg:      prevRes.Value,
		CurrentOvertime:  metrics.OvertimePercent(curRes.Value, s.policy(cur)),
		PreviousOvertime: metrics.OvertimePercent(prevRes.Value, s.policy(prev)),
		PreviousEmpty:    prevRes.Outcome == backend.OutcomeEmpty,
	}
	c.Delta = metrics.ComputeDelta(c.CurrentOvertime, c.PreviousOvertime, !c.PreviousEmpty)
	return c, nil
}
