package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/christopherklint97/ponto/internal/backend"
	"github.com/christopherklint97/ponto/internal/export"
	"github.com/christopherklint97/ponto/internal/metrics"
	"github.com/christopherklint97/ponto/internal/period"
	"github.com/christopherklint97/ponto/internal/present"
	"github.com/christopherklint97/ponto/internal/report"
	"github.com/go-chi/chi/v5"
)

// Reporter is the report surface the HTTP API exposes. *report.Service
// satisfies it.
type Reporter interface {
	Period() period.Period
	Dashboard(ctx context.Context, managerID int64) []report.Card
	Card(ctx context.Context, managerID int64, key report.CardKey) (report.Card, error)
	AllocationChart(ctx context.Context, managerID int64) report.Chart
	OvertimeChart(ctx context.Context, managerID int64) report.Chart
	EmployeeOvertime(ctx context.Context, employeeID int64) backend.Result[backend.OvertimeSummary]
	Snapshot(ctx context.Context, managerID int64) (*report.Snapshot, error)
}

var _ Reporter = (*report.Service)(nil)

type Handler struct {
	reports   Reporter
	managerID int64
	logger    *slog.Logger
}

func NewHandler(reports Reporter, managerID int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{reports: reports, managerID: managerID, logger: logger}
}

type deltaDTO struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

type cardDTO struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Unit    string   `json:"unit"`
	State   string   `json:"state"`
	Value   float64  `json:"value"`
	Display string   `json:"display"`
	Delta   deltaDTO `json:"delta"`
	Error   string   `json:"error,omitempty"`
}

type barDTO struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

type chartDTO struct {
	Title string   `json:"title"`
	Unit  string   `json:"unit"`
	State string   `json:"state"`
	Bars  []barDTO `json:"bars"`
	Error string   `json:"error,omitempty"`
}

type overtimeEntryDTO struct {
	Date          string  `json:"date"`
	Hours         float64 `json:"hours"`
	Display       string  `json:"display"`
	Justification string  `json:"justification,omitempty"`
	Status        string  `json:"status,omitempty"`
}

type overtimeDTO struct {
	EmployeeID int64              `json:"employeeId"`
	Period     string             `json:"period"`
	State      string             `json:"state"`
	TotalHours float64            `json:"totalHours"`
	Display    string             `json:"display"`
	Entries    []overtimeEntryDTO `json:"entries"`
}

func unitName(u report.Unit) string {
	if u == report.UnitPercent {
		return "percent"
	}
	return "hours"
}

func toCardDTO(c report.Card) cardDTO {
	dto := cardDTO{
		Key:     string(c.Key),
		Title:   c.Title,
		Unit:    unitName(c.Unit),
		State:   c.State.String(),
		Value:   c.Value,
		Display: present.Value(c),
		Delta: deltaDTO{
			Kind:  c.Delta.Kind.String(),
			Value: c.Delta.Value,
			Label: present.DeltaLabel(c.Delta, c.Unit),
		},
	}
	if c.Err != nil {
		dto.Error = c.Err.Error()
		dto.Delta = deltaDTO{Kind: metrics.NoBase.String(), Label: present.Placeholder}
	}
	return dto
}

func toChartDTO(c report.Chart) chartDTO {
	dto := chartDTO{
		Title: c.Title,
		Unit:  unitName(c.Unit),
		State: c.State.String(),
		Bars:  make([]barDTO, 0, len(c.Bars)),
	}
	for _, b := range c.Bars {
		dto.Bars = append(dto.Bars, barDTO{Label: b.Label, Value: b.Value, Display: present.BarValue(b.Value, c.Unit)})
	}
	if c.Err != nil {
		dto.Error = c.Err.Error()
	}
	return dto
}

// Dashboard answers every card; failed cards are reported inline.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	cards := h.reports.Dashboard(r.Context(), h.managerID)
	out := make([]cardDTO, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardDTO(c))
	}
	success(w, map[string]any{
		"period": h.reports.Period().Label(),
		"cards":  out,
	})
}

func (h *Handler) Card(w http.ResponseWriter, r *http.Request) {
	key := report.CardKey(chi.URLParam(r, "key"))
	card, err := h.reports.Card(r.Context(), h.managerID, key)
	if err != nil {
		notFound(w, err.Error())
		return
	}
	success(w, toCardDTO(card))
}

func (h *Handler) AllocationChart(w http.ResponseWriter, r *http.Request) {
	success(w, toChartDTO(h.reports.AllocationChart(r.Context(), h.managerID)))
}

func (h *Handler) OvertimeChart(w http.ResponseWriter, r *http.Request) {
	success(w, toChartDTO(h.reports.OvertimeChart(r.Context(), h.managerID)))
}

func (h *Handler) EmployeeOvertime(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "Invalid employee ID")
		return
	}

	res := h.reports.EmployeeOvertime(r.Context(), id)
	summary, err := res.Unwrap()
	if err != nil {
		h.logger.Error("employee overtime", "employee", id, "error", err)
		handleError(w, err)
		return
	}

	dto := overtimeDTO{
		EmployeeID: id,
		Period:     h.reports.Period().Label(),
		State:      res.Outcome.String(),
		TotalHours: summary.TotalHours,
		Display:    present.Duration(summary.TotalHours),
		Entries:    make([]overtimeEntryDTO, 0, len(summary.Entries)),
	}
	for _, e := range summary.Entries {
		date := e.DateKey
		if !e.Dated {
			date = ""
		}
		dto.Entries = append(dto.Entries, overtimeEntryDTO{
			Date:          date,
			Hours:         e.HoursWorked,
			Display:       present.Duration(e.HoursWorked),
			Justification: e.Justification,
			Status:        e.Status,
		})
	}
	success(w, dto)
}

// Workbook streams the month as an xlsx attachment.
func (h *Handler) Workbook(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reports.Snapshot(r.Context(), h.managerID)
	if err != nil {
		h.logger.Error("building snapshot", "error", err)
		handleError(w, err)
		return
	}

	name := fmt.Sprintf("ponto-%s.xlsx", snap.Period.Start.Format("2006-01"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.Write(w, snap); err != nil {
		h.logger.Error("writing workbook", "error", err)
	}
}
