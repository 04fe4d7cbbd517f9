package records

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is the activity bucket a record's free-text label falls into.
type Category string

const (
	Development Category = "Desenvolvimento"
	Meeting     Category = "Reunião"
	Training    Category = "Treinamento"
	Other       Category = "Outros"
)

// Categories lists the named categories in display order, Other last.
var Categories = []Category{Development, Meeting, Training, Other}

type categoryRule struct {
	category Category
	match    func(label string) bool
}

var rules = []categoryRule{
	{Development, func(l string) bool { return strings.Contains(l, "desenv") }},
	{Meeting, func(l string) bool { return strings.Contains(l, "reuniao") }},
	{Training, func(l string) bool { return l == "treinamento" }},
}

// FoldLabel lower-cases s, decomposes it (NFD) and drops combining marks,
// so "Reunião" and "reuniao" compare equal.
func FoldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return folded
}

// Classify maps a free-text activity label to its Category.
func Classify(label string) Category {
	folded := FoldLabel(label)
	for _, r := range rules {
		if r.match(folded) {
			return r.category
		}
	}
	return Other
}
