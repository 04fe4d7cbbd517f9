// Package metrics holds the KPI calculators. Every function is total: empty
// input and zero denominators produce 0, never NaN, an error or a panic.
package metrics

import (
	"math"
	"sort"

	"github.com/christopherklint97/ponto/internal/aggregate"
	"github.com/christopherklint97/ponto/internal/period"
	"github.com/christopherklint97/ponto/internal/records"
)

// Clamp decides whether a percentage is bounded to [0, 100].
type Clamp int

const (
	Unclamped Clamp = iota
	ClampPercent
)

// The overtime percentage is left unclamped and may exceed 100 when
// overtime is extreme; part-of-whole ratios are clamped.
const (
	OvertimePercentClamp = Unclamped
	RatioClamp           = ClampPercent
)

// Apply bounds v according to c. Non-finite values become 0.
func (c Clamp) Apply(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if c == ClampPercent {
		return math.Max(0, math.Min(100, v))
	}
	return v
}

// Policy carries the period-level constants the calculators need.
type Policy struct {
	Period       period.Period
	BusinessDays period.BusinessDays
}

func (p Policy) businessDays() int {
	if p.BusinessDays == nil {
		return period.DefaultBusinessDays
	}
	return p.BusinessDays.Days(p.Period)
}

// percent returns part/whole*100, or 0 when whole is not positive.
func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

// DailyOvertime is the hours worked beyond the employee's jornada on one day.
func DailyOvertime(b aggregate.DailyBucket, p aggregate.EmployeeProfile) float64 {
	return math.Max(0, b.Hours-p.DailyHours)
}

// TotalOvertime sums DailyOvertime over every employee-day.
func TotalOvertime(agg *aggregate.Aggregation) float64 {
	total := 0.0
	for _, b := range agg.Buckets {
		total += DailyOvertime(*b, agg.Profile(b.EmployeeID))
	}
	return total
}

// OvertimeByEmployee sums DailyOvertime per employee. Employees with
// records but no overtime are present with 0.
func OvertimeByEmployee(agg *aggregate.Aggregation) map[int64]float64 {
	out := make(map[int64]float64, len(agg.Profiles))
	for _, id := range agg.Employees() {
		profile := agg.Profile(id)
		total := 0.0
		for _, b := range agg.Days(id) {
			total += DailyOvertime(b, profile)
		}
		out[id] = total
	}
	return out
}

// PlannedHours is the sum over employees of jornada times business days.
func PlannedHours(agg *aggregate.Aggregation, policy Policy) float64 {
	days := float64(policy.businessDays())
	total := 0.0
	for _, p := range agg.Profiles {
		total += p.DailyHours * days
	}
	return total
}

// OvertimePercent is total overtime over planned hours, times 100.
func OvertimePercent(agg *aggregate.Aggregation, policy Policy) float64 {
	return OvertimePercentClamp.Apply(percent(TotalOvertime(agg), PlannedHours(agg, policy)))
}

// PlannedVsExecuted is executed over planned hours, clamped to [0, 100].
func PlannedVsExecuted(executed, planned float64) float64 {
	return RatioClamp.Apply(percent(executed, planned))
}

// PlannedVsExecutedFor applies PlannedVsExecuted to an aggregation.
func PlannedVsExecutedFor(agg *aggregate.Aggregation, policy Policy) float64 {
	return PlannedVsExecuted(agg.TotalHours(), PlannedHours(agg, policy))
}

// Allocation is the share of all hours logged against category.
func Allocation(recs []records.TimeRecord, category records.Category) float64 {
	total, part := 0.0, 0.0
	for _, r := range recs {
		total += r.HoursWorked
		if r.Category == category {
			part += r.HoursWorked
		}
	}
	return RatioClamp.Apply(percent(part, total))
}

// AllocationBreakdown returns Allocation for every category, Other included.
func AllocationBreakdown(recs []records.TimeRecord) map[records.Category]float64 {
	out := make(map[records.Category]float64, len(records.Categories))
	for _, c := range records.Categories {
		out[c] = Allocation(recs, c)
	}
	return out
}

// AverageOvertimePerEmployee divides total overtime by the number of
// employees with at least one record.
func AverageOvertimePerEmployee(agg *aggregate.Aggregation) float64 {
	n := len(agg.Profiles)
	if n == 0 {
		return 0
	}
	return TotalOvertime(agg) / float64(n)
}

// EmployeeHours is one bar of a per-employee chart.
type EmployeeHours struct {
	EmployeeID int64
	Name       string
	Hours      float64
}

// RankOvertime returns per-employee overtime ordered by name, then ID.
func RankOvertime(agg *aggregate.Aggregation) []EmployeeHours {
	byEmployee := OvertimeByEmployee(agg)
	out := make([]EmployeeHours, 0, len(byEmployee))
	for id, h := range byEmployee {
		out = append(out, EmployeeHours{EmployeeID: id, Name: agg.Profile(id).Name, Hours: h})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}
