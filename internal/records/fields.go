package records

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/ponto/internal/period"
)

// Raw is one decoded element of a backend response.
type Raw = map[string]any

// Candidate field paths, tried in order. A dotted path reaches into a
// nested object. The first path whose value is present and not null wins.
var (
	HoursFields     = []string{"horasFeita", "horas", "totalHoras", "quantidade"}
	EmployeeIDPaths = []string{"usuario.id", "usuarioId", "idUsuario", "id"}
	NamePaths       = []string{"usuario.nome", "nome", "colaborador.nome", "usuarioNome"}
	DailyHoursPaths = []string{"usuario.jornada", "jornada", "jornadaDiaria", "cargaHoraria"}
	ActivityPaths   = []string{"acao", "atividade", "tipoAtividade", "categoria"}
)

// DateField names a field that may carry the record's day and the layouts
// its string values are declared to use.
type DateField struct {
	Name    string
	Layouts []string
}

var dayLayouts = []string{period.KeyLayout, period.BackendLayout}

// DateFields lists the date candidates in priority order.
var DateFields = []DateField{
	{Name: "dataApontamento", Layouts: dayLayouts},
	{Name: "data", Layouts: dayLayouts},
	{Name: "dia", Layouts: dayLayouts},
	{Name: "dataRegistro", Layouts: dayLayouts},
	{Name: "dataHora", Layouts: dayLayouts},
	{Name: "createdAt", Layouts: dayLayouts},
}

// lookup resolves a dotted path. Missing keys, JSON nulls and non-object
// intermediates all report absent.
func lookup(raw Raw, path string) (any, bool) {
	var cur any = raw
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := obj[part]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Field returns the value of the first present path.
func Field(raw Raw, paths ...string) (any, bool) {
	return first(raw, paths)
}

func first(raw Raw, paths []string) (any, bool) {
	for _, p := range paths {
		if v, ok := lookup(raw, p); ok {
			return v, true
		}
	}
	return nil, false
}

// Number coerces a decoded JSON value to a finite float. Anything that
// does not read as a number yields 0.
func Number(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// dateKey extracts the day of a record. ok is false when no candidate field
// carries a usable value; a blank string counts as absent.
func dateKey(raw Raw) (string, bool) {
	for _, field := range DateFields {
		v, present := lookup(raw, field.Name)
		if !present {
			continue
		}
		switch d := v.(type) {
		case time.Time:
			return d.Local().Format(period.KeyLayout), true
		case string:
			d = strings.TrimSpace(d)
			if d == "" {
				continue
			}
			return canonicalDay(d, field.Layouts), true
		}
	}
	return "", false
}

// canonicalDay rewrites the day as yyyy-MM-dd when it parses with one of
// the declared layouts, and otherwise keeps its first 10 characters.
func canonicalDay(s string, layouts []string) string {
	if t, err := period.ParseDay(s, layouts...); err == nil {
		return t.Format(period.KeyLayout)
	}
	if len(s) > 10 {
		s = s[:10]
	}
	return s
}
