// Package present turns computed metrics into the strings shown on cards.
package present

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/christopherklint97/ponto/internal/metrics"
	"github.com/christopherklint97/ponto/internal/report"
)

const (
	// Placeholder is shown for a value that could not be computed.
	Placeholder = "--"
	// ZeroPercent is shown for a percentage card with no data.
	ZeroPercent = "0,00%"
	NoBase      = "N/A"
)

// Duration renders hours as HH:MM:SS. Hours are not wrapped at 24 and
// negative values render as zero.
func Duration(hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		hours = 0
	}
	secs := int64(math.Round(hours * 3600))
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// Percent renders v with two decimals and a comma separator, e.g. "83,33%".
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ZeroPercent
	}
	return decimal(v, 2) + "%"
}

// Number renders v with up to two decimals, dropping trailing zeros.
func Number(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		s = "0"
	}
	return strings.Replace(s, ".", ",", 1)
}

func decimal(v float64, places int) string {
	s := strconv.FormatFloat(v, 'f', places, 64)
	return strings.Replace(s, ".", ",", 1)
}

func signed(v float64) string {
	s := Number(v)
	if v > 0 && s != "0" {
		return "+" + s
	}
	return s
}

// DeltaLabel renders a delta: "N/A" without a base, "+25 pp" against a
// zero base, otherwise the signed difference in the card's unit.
func DeltaLabel(d metrics.Delta, unit report.Unit) string {
	switch d.Kind {
	case metrics.NoBase:
		return NoBase
	case metrics.PercentagePoints:
		return signed(d.Value) + " pp"
	}
	if unit == report.UnitHours {
		return signed(d.Value) + "h"
	}
	return signed(d.Value) + "%"
}

// Value is the display string of a card's value.
func Value(c report.Card) string {
	switch c.State {
	case report.StateFailed:
		return Placeholder
	case report.StateEmpty:
		if c.Unit == report.UnitPercent {
			return ZeroPercent
		}
		return Duration(0)
	}
	if c.Unit == report.UnitPercent {
		return Percent(c.Value)
	}
	return Duration(c.Value)
}

// BarValue renders a chart bar in its chart's unit.
func BarValue(v float64, unit report.Unit) string {
	if unit == report.UnitPercent {
		return Percent(v)
	}
	return Duration(v)
}

// CardText is a single plain line for a card, e.g.
// "Horas extras: 0,65% (+0,2%)".
func CardText(c report.Card) string {
	line := c.Title + ": " + Value(c)
	if c.State == report.StateFailed {
		return line
	}
	return line + " (" + DeltaLabel(c.Delta, c.Unit) + ")"
}
