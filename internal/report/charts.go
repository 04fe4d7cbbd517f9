package report

import (
	"context"

	"github.com/christopherklint97/ponto/internal/backend"
	"github.com/christopherklint97/ponto/internal/metrics"
	"github.com/christopherklint97/ponto/internal/records"
)

// Bar is one labelled value of a chart.
type Bar struct {
	Label string
	Value float64
}

type Chart struct {
	Title string
	Unit  Unit
	State State
	Bars  []Bar
	Err   error
}

// AllocationChart is the share of hours per activity category, Other
// included, in records.Categories order.
func (s *Service) AllocationChart(ctx context.Context, managerID int64) Chart {
	chart := Chart{Title: "Alocação por atividade", Unit: UnitPercent}

	res := s.aggregation(ctx, managerID, s.Period())
	if res.Outcome == backend.OutcomeFailure {
		chart.State, chart.Err = StateFailed, res.Err
		return chart
	}
	chart.State = stateOf(res.Outcome)

	breakdown := metrics.AllocationBreakdown(res.Value.Records)
	for _, c := range records.Categories {
		chart.Bars = append(chart.Bars, Bar{Label: string(c), Value: breakdown[c]})
	}
	return chart
}

// OvertimeChart is overtime hours per employee, ordered by name.
func (s *Service) OvertimeChart(ctx context.Context, managerID int64) Chart {
	chart := Chart{Title: "Horas extras por colaborador", Unit: UnitHours}

	res := s.aggregation(ctx, managerID, s.Period())
	if res.Outcome == backend.OutcomeFailure {
		chart.State, chart.Err = StateFailed, res.Err
		return chart
	}
	chart.State = stateOf(res.Outcome)

	for _, e := range metrics.RankOvertime(res.Value) {
		chart.Bars = append(chart.Bars, Bar{Label: e.Name, Value: e.Hours})
	}
	return chart
}

// EmployeeOvertime lists one employee's horas extras for the current month.
func (s *Service) EmployeeOvertime(ctx context.Context, employeeID int64) backend.Result[backend.OvertimeSummary] {
	p := s.Period()
	res := s.source.ListOvertime(ctx, employeeID, p)
	if res.Outcome == backend.OutcomeFailure {
		s.logger.Error("fetching horas extras failed", "employee", employeeID, "period", p.String(), "error", res.Err)
	}
	return res
}

func stateOf(o backend.Outcome) State {
	switch o {
	case backend.OutcomeOK:
		return StateReady
	case backend.OutcomeEmpty:
		return StateEmpty
	default:
		return StateFailed
	}
}
