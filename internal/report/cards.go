package report

import (
	"context"
	"fmt"

	"github.com/christopherklint97/ponto/internal/aggregate"
	"github.com/christopherklint97/ponto/internal/backend"
	"github.com/christopherklint97/ponto/internal/metrics"
	"github.com/christopherklint97/ponto/internal/period"
	"github.com/christopherklint97/ponto/internal/records"
	"github.com/christopherklint97/ponto/internal/store"
	"golang.org/x/sync/errgroup"
)

type CardKey string

const (
	CardMonthlyHours      CardKey = "horas-mensais"
	CardOvertimePercent   CardKey = "horas-extras"
	CardPlannedVsExecuted CardKey = "planejado-executado"
	CardDevelopment       CardKey = "desenvolvimento"
	CardMeeting           CardKey = "reuniao"
	CardTraining          CardKey = "treinamento"
	CardAverageOvertime   CardKey = "media-horas-extras"
	CardMissingHours      CardKey = "horas-faltantes"
)

type Unit int

const (
	UnitHours Unit = iota
	UnitPercent
)

type State int

const (
	StateReady State = iota
	StateEmpty
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	default:
		return "failed"
	}
}

// Card is one computed KPI. Value and Delta are zero when State is
// StateFailed; Err is set only then.
type Card struct {
	Key    CardKey
	Title  string
	Unit   Unit
	Period period.Period
	Value  float64
	State  State
	Delta  metrics.Delta
	Err    error
}

// cardDef describes one card. Cards computed from the team's aggregation
// set fromAgg; the others fetch their own value.
type cardDef struct {
	key      CardKey
	title    string
	unit     Unit
	storeKey string
	fromAgg  func(*aggregate.Aggregation, metrics.Policy) float64
	fetch    func(ctx context.Context, s *Service, managerID int64, p period.Period) backend.Result[float64]
}

func totalHours(agg *aggregate.Aggregation, _ metrics.Policy) float64 {
	return agg.TotalHours()
}

func averageOvertime(agg *aggregate.Aggregation, _ metrics.Policy) float64 {
	return metrics.AverageOvertimePerEmployee(agg)
}

func allocation(c records.Category) func(*aggregate.Aggregation, metrics.Policy) float64 {
	return func(agg *aggregate.Aggregation, _ metrics.Policy) float64 {
		return metrics.Allocation(agg.Records, c)
	}
}

func missingHours(ctx context.Context, s *Service, managerID int64, p period.Period) backend.Result[float64] {
	res := s.source.MissingHours(ctx, managerID, p)
	if res.Outcome == backend.OutcomeFailure {
		s.logger.Error("fetching horas faltantes failed", "manager", managerID, "error", res.Err)
	}
	return res
}

var cardDefs = []cardDef{
	{key: CardMonthlyHours, title: "Horas no mês", unit: UnitHours, storeKey: store.KeyMonthlyHours, fromAgg: totalHours},
	{key: CardOvertimePercent, title: "Horas extras", unit: UnitPercent, storeKey: store.KeyOvertimePercent, fromAgg: metrics.OvertimePercent},
	{key: CardPlannedVsExecuted, title: "Planejado x executado", unit: UnitPercent, storeKey: store.KeyPlannedVsExecuted, fromAgg: metrics.PlannedVsExecutedFor},
	{key: CardDevelopment, title: "Desenvolvimento", unit: UnitPercent, storeKey: store.KeyDevelopmentPercent, fromAgg: allocation(records.Development)},
	{key: CardMeeting, title: "Reuniões", unit: UnitPercent, storeKey: store.KeyMeetingPercent, fromAgg: allocation(records.Meeting)},
	{key: CardTraining, title: "Treinamento", unit: UnitPercent, storeKey: store.KeyTrainingPercent, fromAgg: allocation(records.Training)},
	{key: CardAverageOvertime, title: "Média de horas extras", unit: UnitHours, storeKey: store.KeyAverageOvertime, fromAgg: averageOvertime},
	{key: CardMissingHours, title: "Horas faltantes", unit: UnitHours, storeKey: store.KeyMissingHours, fetch: missingHours},
}

// CardKeys lists every card in dashboard order.
func CardKeys() []CardKey {
	keys := make([]CardKey, len(cardDefs))
	for i, d := range cardDefs {
		keys[i] = d.key
	}
	return keys
}

// StoreKey is the previous-value slot a card reads and writes.
func StoreKey(key CardKey) (string, bool) {
	def, ok := lookupCard(key)
	return def.storeKey, ok
}

func lookupCard(key CardKey) (cardDef, bool) {
	for _, d := range cardDefs {
		if d.key == key {
			return d, true
		}
	}
	return cardDef{}, false
}

// Card runs the chain of a single card for the current month. The previous
// stored value feeds the delta and the new value replaces it; a failed card
// leaves the store untouched.
func (s *Service) Card(ctx context.Context, managerID int64, key CardKey) (Card, error) {
	def, ok := lookupCard(key)
	if !ok {
		return Card{}, fmt.Errorf("unknown card %q", key)
	}
	return s.runCard(ctx, def, managerID), nil
}

func (s *Service) runCard(ctx context.Context, def cardDef, managerID int64) Card {
	p := s.Period()
	var res backend.Result[float64]
	if def.fromAgg != nil {
		res = s.fromAggregation(def, s.aggregation(ctx, managerID, p), p)
	} else {
		res = def.fetch(ctx, s, managerID, p)
	}
	return s.finish(def, p, res, true)
}

// fromAggregation applies a card's calculator to an aggregation result.
func (s *Service) fromAggregation(def cardDef, agg backend.Result[*aggregate.Aggregation], p period.Period) backend.Result[float64] {
	if agg.Outcome == backend.OutcomeFailure {
		return backend.Failure[float64](agg.Err)
	}
	v := def.fromAgg(agg.Value, s.policy(p))
	if agg.Outcome == backend.OutcomeEmpty {
		return backend.Result[float64]{Outcome: backend.OutcomeEmpty, Value: v}
	}
	return backend.OK(v)
}

// finish turns a computed value into a Card, with its delta against the
// stored previous value. The value replaces the stored one only when save
// is set and the card did not fail.
func (s *Service) finish(def cardDef, p period.Period, res backend.Result[float64], save bool) Card {
	card := Card{Key: def.key, Title: def.title, Unit: def.unit, Period: p}

	switch res.Outcome {
	case backend.OutcomeFailure:
		card.State = StateFailed
		card.Err = res.Err
		return card
	case backend.OutcomeEmpty:
		card.State = StateEmpty
	default:
		card.State = StateReady
	}
	card.Value = res.Value

	prev, hasPrev, err := s.store.Previous(def.storeKey)
	if err != nil {
		s.logger.Warn("reading previous metric", "key", def.storeKey, "error", err)
		hasPrev = false
	}
	card.Delta = metrics.ComputeDelta(card.Value, prev, hasPrev)

	if save {
		if err := s.store.Save(def.storeKey, card.Value); err != nil {
			s.logger.Warn("saving metric", "key", def.storeKey, "error", err)
		}
	}

	s.logger.Debug("card computed",
		"card", string(def.key),
		"state", card.State.String(),
		"value", card.Value,
		"delta", card.Delta.Kind.String(),
		"saved", save,
	)
	return card
}

// Dashboard runs every card chain concurrently. A failing card carries its
// own error and never affects the others.
func (s *Service) Dashboard(ctx context.Context, managerID int64) []Card {
	cards := make([]Card, len(cardDefs))
	var g errgroup.Group
	for i, def := range cardDefs {
		g.Go(func() error {
			cards[i] = s.runCard(ctx, def, managerID)
			return nil
		})
	}
	_ = g.Wait()
	return cards
}
