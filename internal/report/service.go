// Package report runs the fetch, normalize, aggregate and compute chain
// behind every dashboard card and chart.
package report

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/christopherklint97/ponto/internal/aggregate"
	"github.com/christopherklint97/ponto/internal/backend"
	"github.com/christopherklint97/ponto/internal/metrics"
	"github.com/christopherklint97/ponto/internal/period"
	"github.com/christopherklint97/ponto/internal/records"
	"github.com/christopherklint97/ponto/internal/store"
)

// Source is the part of the backend the reports read from.
type Source interface {
	ListManagerEntries(ctx context.Context, managerID int64, p period.Period) backend.Result[[]records.Raw]
	ListOvertime(ctx context.Context, employeeID int64, p period.Period) backend.Result[backend.OvertimeSummary]
	MissingHours(ctx context.Context, managerID int64, p period.Period) backend.Result[float64]
}

var _ Source = (*backend.Client)(nil)

type Options struct {
	Source            Source
	Store             store.MetricStore
	BusinessDays      period.BusinessDays
	DefaultDailyHours float64
	Now               func() time.Time
	Logger            *slog.Logger
}

type Service struct {
	source            Source
	store             store.MetricStore
	businessDays      period.BusinessDays
	defaultDailyHours float64
	now               func() time.Time
	logger            *slog.Logger
}

func New(opts Options) *Service {
	s := &Service{
		source:            opts.Source,
		store:             opts.Store,
		businessDays:      opts.BusinessDays,
		defaultDailyHours: opts.DefaultDailyHours,
		now:               opts.Now,
		logger:            opts.Logger,
	}
	if s.store == nil {
		s.store = store.NewMemory()
	}
	if s.businessDays == nil {
		s.businessDays = period.Fixed(period.DefaultBusinessDays)
	}
	if s.defaultDailyHours <= 0 {
		s.defaultDailyHours = aggregate.DefaultDailyHours
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Period is the month every report is computed for.
func (s *Service) Period() period.Period {
	return period.CurrentMonth(s.now())
}

func (s *Service) policy(p period.Period) metrics.Policy {
	return metrics.Policy{Period: p, BusinessDays: s.businessDays}
}

// aggregation fetches and folds a manager's records for p. An empty period
// yields an empty aggregation with OutcomeEmpty.
func (s *Service) aggregation(ctx context.Context, managerID int64, p period.Period) backend.Result[*aggregate.Aggregation] {
	res := s.source.ListManagerEntries(ctx, managerID, p)
	switch res.Outcome {
	case backend.OutcomeEmpty:
		s.logger.Debug("no apontamentos", "manager", managerID, "period", p.String())
		return backend.Result[*aggregate.Aggregation]{
			Outcome: backend.OutcomeEmpty,
			Value:   aggregate.Aggregate(nil, s.defaultDailyHours),
		}
	case backend.OutcomeFailure:
		s.logger.Error("fetching apontamentos failed", "manager", managerID, "period", p.String(), "error", res.Err)
		return backend.Failure[*aggregate.Aggregation](res.Err)
	}

	recs := records.NormalizeAll(res.Value)
	agg := aggregate.Aggregate(recs, s.defaultDailyHours)
	s.logger.Debug("aggregated apontamentos",
		"manager", managerID,
		"period", p.String(),
		"records", len(recs),
		"employees", len(agg.Profiles),
		"buckets", len(agg.Buckets),
	)
	return backend.OK(agg)
}
