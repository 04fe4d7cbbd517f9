package records

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) Raw {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw Raw
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func TestNormalizeTotality(t *testing.T) {
	inputs := []Raw{
		nil,
		{},
		{"horasFeita": nil, "usuario": nil},
		{"usuario": "not an object", "horas": "abc"},
		{"horas": math.NaN()},
		{"horas": math.Inf(1)},
		{"horas": -4.0},
		{"horas": []any{1, 2}},
		{"data": 20250105},
		{"usuario": map[string]any{"id": map[string]any{"deep": 1}}},
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			rec := Normalize(in)
			assert.False(t, math.IsNaN(rec.HoursWorked))
			assert.False(t, math.IsInf(rec.HoursWorked, 0))
			assert.GreaterOrEqual(t, rec.HoursWorked, 0.0)
			assert.NotEmpty(t, rec.DateKey)
		})
	}
}

func TestHoursFieldPriority(t *testing.T) {
	cases := []struct {
		raw  Raw
		want float64
	}{
		{Raw{"horasFeita": 5.0, "horas": 3.0}, 5},
		{Raw{"horasFeita": nil, "horas": 3.0}, 3},
		{Raw{"totalHoras": "7.5", "quantidade": 1.0}, 7.5},
		{Raw{"quantidade": json.Number("2")}, 2},
		{Raw{"horasFeita": "abc", "horas": 3.0}, 0},
		{Raw{"horasFeita": "", "horas": 3.0}, 0},
		{Raw{"horasFeita": true}, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(c.raw).HoursWorked, "%v", c.raw)
	}
}

func TestEmployeeIDPriority(t *testing.T) {
	raw := decode(t, `{"usuario":{"id":7,"nome":"Ana"},"usuarioId":8,"idUsuario":9,"id":10}`)
	assert.Equal(t, int64(7), Normalize(raw).EmployeeID)

	raw = decode(t, `{"usuarioId":"8","id":10}`)
	assert.Equal(t, int64(8), Normalize(raw).EmployeeID)

	raw = decode(t, `{"idUsuario":9,"id":10}`)
	assert.Equal(t, int64(9), Normalize(raw).EmployeeID)

	raw = decode(t, `{"id":10}`)
	assert.Equal(t, int64(10), Normalize(raw).EmployeeID)
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		json string
		want string
	}{
		{`{"usuario":{"id":1,"nome":"Ana"},"nome":"Outro"}`, "Ana"},
		{`{"usuarioId":1,"nome":"Bruno"}`, "Bruno"},
		{`{"usuarioId":1,"colaborador":{"nome":"Carla"}}`, "Carla"},
		{`{"usuarioId":1,"usuarioNome":"Davi"}`, "Davi"},
		{`{"usuarioId":1,"nome":"  "}`, "Usuário 1"},
		{`{"usuarioId":42}`, "Usuário 42"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(decode(t, c.json)).EmployeeName, c.json)
	}
}

func TestDailyHours(t *testing.T) {
	assert.Equal(t, 6.0, Normalize(decode(t, `{"usuario":{"id":1,"jornada":6}}`)).DailyHours)
	assert.Equal(t, 4.0, Normalize(decode(t, `{"jornadaDiaria":"4"}`)).DailyHours)
	assert.Equal(t, 0.0, Normalize(decode(t, `{"jornada":0}`)).DailyHours)
	assert.Equal(t, 0.0, Normalize(decode(t, `{}`)).DailyHours)
}

func TestDateKey(t *testing.T) {
	cases := []struct {
		raw  Raw
		want string
	}{
		{Raw{"dataApontamento": "2025-01-05T13:00:00", "data": "2025-02-01"}, "2025-01-05"},
		{Raw{"data": "2025-01-05"}, "2025-01-05"},
		{Raw{"dia": "05/01/2025"}, "2025-01-05"},
		{Raw{"dataRegistro": "05/01/2025 08:00"}, "2025-01-05"},
		{Raw{"createdAt": "garbage-value-here"}, "garbage-va"},
		{Raw{"data": "  ", "dia": "05/01/2025"}, "2025-01-05"},
		{Raw{"dataHora": time.Date(2025, time.January, 5, 10, 0, 0, 0, time.Local)}, "2025-01-05"},
	}
	for _, c := range cases {
		rec := Normalize(c.raw)
		assert.True(t, rec.Dated, "%v", c.raw)
		assert.Equal(t, c.want, rec.DateKey, "%v", c.raw)
	}
}

func TestUndatedRecordsGetDistinctKeys(t *testing.T) {
	a := Normalize(Raw{"usuarioId": 1.0, "horas": 2.0})
	b := Normalize(Raw{"usuarioId": 1.0, "horas": 3.0})

	assert.False(t, a.Dated)
	assert.False(t, b.Dated)
	assert.NotEqual(t, a.DateKey, b.DateKey)
	assert.True(t, strings.HasPrefix(a.DateKey, undatedPrefix))
}

func TestBlankDateCountsAsAbsent(t *testing.T) {
	recs := NormalizeAll([]Raw{
		{"usuarioId": 1.0, "horas": 8.0, "data": ""},
		{"usuarioId": 1.0, "horas": 8.0, "data": ""},
		{"usuarioId": 1.0, "horas": 8.0, "data": "   "},
	})

	keys := map[string]bool{}
	for _, rec := range recs {
		assert.False(t, rec.Dated)
		assert.True(t, strings.HasPrefix(rec.DateKey, undatedPrefix), rec.DateKey)
		keys[rec.DateKey] = true
	}
	assert.Len(t, keys, 3)
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	recs := NormalizeAll([]Raw{{"horas": 1.0}, nil, {"horas": 3.0}})
	require.Len(t, recs, 3)
	assert.Equal(t, 1.0, recs[0].HoursWorked)
	assert.Equal(t, 0.0, recs[1].HoursWorked)
	assert.Equal(t, 3.0, recs[2].HoursWorked)
}
