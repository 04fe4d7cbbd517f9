// Package records turns loosely shaped backend payloads into TimeRecords.
//
// The backend does not fix field names across endpoints, so every concept is
// read through an ordered list of candidate fields (see fields.go). Nothing
// here fails: a missing or malformed field degrades to a safe default.
package records

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// undatedPrefix marks synthetic day keys given to records with no date field.
const undatedPrefix = "sem-data:"

// TimeRecord is the canonical shape of one apontamento or punch entry.
type TimeRecord struct {
	EmployeeID   int64
	EmployeeName string
	// DailyHours is the contracted jornada when the record carries one, 0 otherwise.
	DailyHours    float64
	HoursWorked   float64
	ActivityLabel string
	Category      Category
	// DateKey is yyyy-MM-dd for dated records and a unique synthetic key otherwise.
	DateKey string
	Dated   bool
}

// Normalize extracts a TimeRecord from raw. It never panics; a nil raw
// yields an undated zero-hour record.
func Normalize(raw Raw) TimeRecord {
	if raw == nil {
		raw = Raw{}
	}

	rec := TimeRecord{}

	if v, ok := first(raw, HoursFields); ok {
		rec.HoursWorked = Number(v)
	}
	if rec.HoursWorked < 0 {
		rec.HoursWorked = 0
	}

	if v, ok := first(raw, EmployeeIDPaths); ok {
		rec.EmployeeID = int64(Number(v))
	}

	rec.EmployeeName = displayName(raw, rec.EmployeeID)

	if v, ok := first(raw, DailyHoursPaths); ok {
		if h := Number(v); h > 0 {
			rec.DailyHours = h
		}
	}

	if v, ok := first(raw, ActivityPaths); ok {
		rec.ActivityLabel = strings.TrimSpace(toString(v))
	}
	rec.Category = Classify(rec.ActivityLabel)

	if key, ok := dateKey(raw); ok {
		rec.DateKey = key
		rec.Dated = true
	} else {
		rec.DateKey = undatedPrefix + uuid.NewString()
	}

	return rec
}

// NormalizeAll normalizes every element of raws, keeping their order.
func NormalizeAll(raws []Raw) []TimeRecord {
	out := make([]TimeRecord, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r))
	}
	return out
}

// FallbackName is the display name synthesized when a record carries none.
func FallbackName(employeeID int64) string {
	return fmt.Sprintf("Usuário %d", employeeID)
}

// displayName skips blank names as well as absent ones.
func displayName(raw Raw, employeeID int64) string {
	for _, p := range NamePaths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		if name := strings.TrimSpace(toString(v)); name != "" {
			return name
		}
	}
	return FallbackName(employeeID)
}
