// Package aggregate buckets normalized records by employee and day.
package aggregate

import (
	"sort"

	"github.com/christopherklint97/ponto/internal/records"
)

// DefaultDailyHours is the jornada assumed when no record carries one.
const DefaultDailyHours = 8.0

// BucketKey identifies one employee-day.
type BucketKey struct {
	EmployeeID int64
	DateKey    string
}

// DailyBucket holds the hours an employee logged on one day.
type DailyBucket struct {
	BucketKey
	Dated bool
	Hours float64
}

// EmployeeProfile is captured from the first record seen for an employee.
type EmployeeProfile struct {
	EmployeeID int64
	Name       string
	DailyHours float64
}

// Aggregation is the result of one pass over a period's records.
type Aggregation struct {
	Buckets  map[BucketKey]*DailyBucket
	Profiles map[int64]EmployeeProfile
	Records  []records.TimeRecord
}

// Aggregate folds recs into daily buckets in a single pass. Each profile is
// built from the first record seen for its employee; its jornada is
// defaultDailyHours when that record carries none. A non-positive
// defaultDailyHours falls back to DefaultDailyHours.
func Aggregate(recs []records.TimeRecord, defaultDailyHours float64) *Aggregation {
	if defaultDailyHours <= 0 {
		defaultDailyHours = DefaultDailyHours
	}

	agg := &Aggregation{
		Buckets:  make(map[BucketKey]*DailyBucket),
		Profiles: make(map[int64]EmployeeProfile),
		Records:  recs,
	}

	for _, r := range recs {
		key := BucketKey{EmployeeID: r.EmployeeID, DateKey: r.DateKey}
		b, ok := agg.Buckets[key]
		if !ok {
			b = &DailyBucket{BucketKey: key, Dated: r.Dated}
			agg.Buckets[key] = b
		}
		b.Hours += r.HoursWorked

		if _, seen := agg.Profiles[r.EmployeeID]; !seen {
			p := EmployeeProfile{EmployeeID: r.EmployeeID, Name: r.EmployeeName, DailyHours: defaultDailyHours}
			if r.DailyHours > 0 {
				p.DailyHours = r.DailyHours
			}
			agg.Profiles[r.EmployeeID] = p
		}
	}

	return agg
}

// Employees returns the IDs of every employee with at least one record, ascending.
func (a *Aggregation) Employees() []int64 {
	ids := make([]int64, 0, len(a.Profiles))
	for id := range a.Profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Sorted returns the buckets ordered by employee and day.
func (a *Aggregation) Sorted() []DailyBucket {
	out := make([]DailyBucket, 0, len(a.Buckets))
	for _, b := range a.Buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].DateKey < out[j].DateKey
	})
	return out
}

// Days returns one employee's buckets ordered by day.
func (a *Aggregation) Days(employeeID int64) []DailyBucket {
	var out []DailyBucket
	for _, b := range a.Sorted() {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	return out
}

// TotalHours sums every bucket.
func (a *Aggregation) TotalHours() float64 {
	total := 0.0
	for _, b := range a.Buckets {
		total += b.Hours
	}
	return total
}

// Profile returns the captured profile, or a default one for an employee
// that has no records.
func (a *Aggregation) Profile(employeeID int64) EmployeeProfile {
	if p, ok := a.Profiles[employeeID]; ok {
		return p
	}
	return EmployeeProfile{
		EmployeeID: employeeID,
		Name:       records.FallbackName(employeeID),
		DailyHours: DefaultDailyHours,
	}
}
