package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/christopherklint97/ponto/internal/backend"
	"github.com/christopherklint97/ponto/internal/metrics"
	"github.com/christopherklint97/ponto/internal/period"
	"github.com/christopherklint97/ponto/internal/records"
	"github.com/christopherklint97/ponto/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu        sync.Mutex
	entries   map[string]backend.Result[[]records.Raw] // by period label
	overtime  backend.Result[backend.OvertimeSummary]
	missing   backend.Result[float64]
	calls     int
	employees []int64
}

func (f *fakeSource) ListManagerEntries(_ context.Context, _ int64, p period.Period) backend.Result[[]records.Raw] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if res, ok := f.entries[p.Label()]; ok {
		return res
	}
	return backend.Empty[[]records.Raw]()
}

func (f *fakeSource) ListOvertime(_ context.Context, employeeID int64, _ period.Period) backend.Result[backend.OvertimeSummary] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employees = append(f.employees, employeeID)
	return f.overtime
}

func (f *fakeSource) MissingHours(context.Context, int64, period.Period) backend.Result[float64] {
	return f.missing
}

func entry(id int64, name string, jornada float64, day string, hours float64, acao string) records.Raw {
	return records.Raw{
		"usuario":    map[string]any{"id": float64(id), "nome": name, "jornada": jornada},
		"data":       day,
		"horasFeita": hours,
		"acao":       acao,
	}
}

func january() []records.Raw {
	return []records.Raw{
		entry(1, "Ana", 8, "2025-01-06", 10, "Desenvolvimento"),
		entry(1, "Ana", 8, "2025-01-07", 8, "Reunião semanal"),
		entry(2, "Bruno", 6, "2025-01-06", 6, "treinamento"),
	}
}

var now = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.Local)

func newService(src Source, st store.MetricStore) *Service {
	return New(Options{
		Source: src,
		Store:  st,
		Now:    func() time.Time { return now },
	})
}

func TestDashboardValues(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{"01/2025": backend.OK(january())},
		missing: backend.OK(12.5),
	}
	svc := newService(src, store.NewMemory())

	cards := svc.Dashboard(context.Background(), 7)
	require.Len(t, cards, len(CardKeys()))

	byKey := make(map[CardKey]Card)
	for _, c := range cards {
		assert.Equal(t, StateReady, c.State, c.Key)
		assert.NoError(t, c.Err)
		assert.Equal(t, metrics.NoBase, c.Delta.Kind, c.Key)
		byKey[c.Key] = c
	}

	// planned = (8 + 6) * 22 = 308
	assert.InDelta(t, 24.0, byKey[CardMonthlyHours].Value, 1e-9)
	assert.InDelta(t, 2.0/308*100, byKey[CardOvertimePercent].Value, 1e-9)
	assert.InDelta(t, 24.0/308*100, byKey[CardPlannedVsExecuted].Value, 1e-9)
	assert.InDelta(t, 10.0/24*100, byKey[CardDevelopment].Value, 1e-9)
	assert.InDelta(t, 8.0/24*100, byKey[CardMeeting].Value, 1e-9)
	assert.InDelta(t, 25.0, byKey[CardTraining].Value, 1e-9)
	assert.InDelta(t, 1.0, byKey[CardAverageOvertime].Value, 1e-9)
	assert.InDelta(t, 12.5, byKey[CardMissingHours].Value, 1e-9)
}

func TestCardDeltaUsesStore(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{"01/2025": backend.OK(january())},
	}
	st := store.NewMemory()
	svc := newService(src, st)
	ctx := context.Background()

	first, err := svc.Card(ctx, 7, CardMonthlyHours)
	require.NoError(t, err)
	assert.Equal(t, metrics.NoBase, first.Delta.Kind)

	saved, ok, err := st.Previous(store.KeyMonthlyHours)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 24.0, saved)

	require.NoError(t, st.Save(store.KeyMonthlyHours, 20))
	second, err := svc.Card(ctx, 7, CardMonthlyHours)
	require.NoError(t, err)
	assert.Equal(t, metrics.Delta{Kind: metrics.Signed, Value: 4}, second.Delta)
}

func TestCardZeroBaseIsPercentagePoints(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{"01/2025": backend.OK(january())},
	}
	st := store.NewMemory()
	require.NoError(t, st.Save(store.KeyTrainingPercent, 0))

	card, err := newService(src, st).Card(context.Background(), 7, CardTraining)
	require.NoError(t, err)
	assert.Equal(t, metrics.Delta{Kind: metrics.PercentagePoints, Value: 25}, card.Delta)
}

func TestFailedCardDoesNotWriteStore(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{
			"01/2025": backend.Failure[[]records.Raw](errors.New("connection refused")),
		},
		missing: backend.OK(3.0),
	}
	st := store.NewMemory()
	require.NoError(t, st.Save(store.KeyOvertimePercent, 4.2))

	cards := newService(src, st).Dashboard(context.Background(), 7)
	for _, c := range cards {
		if c.Key == CardMissingHours {
			assert.Equal(t, StateReady, c.State, "independent chain still renders")
			assert.Equal(t, 3.0, c.Value)
			continue
		}
		assert.Equal(t, StateFailed, c.State, c.Key)
		assert.ErrorContains(t, c.Err, "connection refused")
		assert.Zero(t, c.Value)
	}

	v, ok, err := st.Previous(store.KeyOvertimePercent)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4.2, v)

	_, ok, err = st.Previous(store.KeyMonthlyHours)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyPeriodCards(t *testing.T) {
	src := &fakeSource{missing: backend.Empty[float64]()}
	cards := newService(src, store.NewMemory()).Dashboard(context.Background(), 7)
	for _, c := range cards {
		assert.Equal(t, StateEmpty, c.State, c.Key)
		assert.Zero(t, c.Value, c.Key)
		assert.NoError(t, c.Err)
	}
}

func TestUnknownCard(t *testing.T) {
	_, err := newService(&fakeSource{}, nil).Card(context.Background(), 1, "nope")
	assert.ErrorContains(t, err, "unknown card")
}

func TestCompare(t *testing.T) {
	december := []records.Raw{
		entry(1, "Ana", 8, "2024-12-02", 8, "Desenvolvimento"),
	}
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{
			"01/2025": backend.OK(january()),
			"12/2024": backend.OK(december),
		},
	}

	c, err := newService(src, nil).Compare(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "01/2025", c.Current.Label())
	assert.Equal(t, "12/2024", c.Previous.Label())
	assert.Equal(t, 2, src.calls)
	assert.Zero(t, c.PreviousOvertime)
	assert.False(t, c.PreviousEmpty)
	assert.Equal(t, metrics.PercentagePoints, c.Delta.Kind)
	assert.InDelta(t, c.CurrentOvertime, c.Delta.Value, 1e-9)
}

func TestCompareEmptyPreviousHasNoBase(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{"01/2025": backend.OK(january())},
	}

	c, err := newService(src, nil).Compare(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, c.PreviousEmpty)
	assert.Equal(t, metrics.NoBase, c.Delta.Kind)
}

func TestCompareFailure(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{
			"01/2025": backend.OK(january()),
			"12/2024": backend.Failure[[]records.Raw](errors.New("timeout")),
		},
	}

	_, err := newService(src, nil).Compare(context.Background(), 7)
	assert.ErrorContains(t, err, "previous month 12/2024")
}

func TestAllocationChart(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{"01/2025": backend.OK(append(january(),
			entry(2, "Bruno", 6, "2025-01-08", 6, "Suporte"),
		))},
	}

	chart := newService(src, nil).AllocationChart(context.Background(), 7)
	require.Equal(t, StateReady, chart.State)
	require.Len(t, chart.Bars, 4)
	assert.Equal(t, string(records.Development), chart.Bars[0].Label)
	assert.InDelta(t, 10.0/30*100, chart.Bars[0].Value, 1e-9)
	assert.Equal(t, string(records.Other), chart.Bars[3].Label)
	assert.InDelta(t, 20.0, chart.Bars[3].Value, 1e-9)
}

func TestOvertimeChart(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{"01/2025": backend.OK(january())},
	}

	chart := newService(src, nil).OvertimeChart(context.Background(), 7)
	require.Equal(t, StateReady, chart.State)
	assert.Equal(t, []Bar{{Label: "Ana", Value: 2}, {Label: "Bruno", Value: 0}}, chart.Bars)
}

func TestChartFailure(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{
			"01/2025": backend.Failure[[]records.Raw](errors.New("boom")),
		},
	}

	chart := newService(src, nil).OvertimeChart(context.Background(), 7)
	assert.Equal(t, StateFailed, chart.State)
	assert.Error(t, chart.Err)
	assert.Empty(t, chart.Bars)
}

func TestEmployeeOvertime(t *testing.T) {
	src := &fakeSource{
		overtime: backend.OK(backend.OvertimeSummary{TotalHours: 3}),
	}

	res := newService(src, nil).EmployeeOvertime(context.Background(), 42)
	assert.Equal(t, backend.OutcomeOK, res.Outcome)
	assert.Equal(t, 3.0, res.Value.TotalHours)
	assert.Equal(t, []int64{42}, src.employees)
}

func TestSnapshot(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{"01/2025": backend.OK(january())},
		missing: backend.OK(1.0),
	}

	st := store.NewMemory()
	require.NoError(t, st.Save(store.KeyMonthlyHours, 20))

	snap, err := newService(src, st).Snapshot(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	require.Len(t, snap.Cards, len(CardKeys()))
	assert.Equal(t, CardMonthlyHours, snap.Cards[0].Key)
	assert.Equal(t, 24.0, snap.Cards[0].Value)
	assert.Equal(t, metrics.Signed, snap.Cards[0].Delta.Kind)
	assert.Equal(t, 4.0, snap.Cards[0].Delta.Value)
	require.Len(t, snap.Daily, 3)
	assert.Equal(t, DailyRow{EmployeeID: 1, Name: "Ana", DateKey: "2025-01-06", Dated: true, Hours: 10, Overtime: 2}, snap.Daily[0])
	assert.Len(t, snap.Allocation, 4)

	v, ok, err := st.Previous(store.KeyMonthlyHours)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20.0, v, "export leaves the baseline alone")
	_, ok, err = st.Previous(store.KeyOvertimePercent)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBusinessDaysPolicy(t *testing.T) {
	src := &fakeSource{
		entries: map[string]backend.Result[[]records.Raw]{"01/2025": backend.OK(january())},
	}
	svc := New(Options{
		Source:       src,
		BusinessDays: period.Fixed(20),
		Now:          func() time.Time { return now },
	})

	card, err := svc.Card(context.Background(), 7, CardPlannedVsExecuted)
	require.NoError(t, err)
	assert.InDelta(t, 24.0/280*100, card.Value, 1e-9)
}

func TestStoreKey(t *testing.T) {
	k, ok := StoreKey(CardOvertimePercent)
	assert.True(t, ok)
	assert.Equal(t, store.KeyOvertimePercent, k)

	_, ok = StoreKey("nope")
	assert.False(t, ok)
}
