package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "ponto.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDBPreviousAbsent(t *testing.T) {
	db := openTemp(t)

	v, ok, err := db.Previous(KeyOvertimePercent)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestDBSaveAndPrevious(t *testing.T) {
	db := openTemp(t)

	require.NoError(t, db.Save(KeyOvertimePercent, 12.5))
	require.NoError(t, db.Save(KeyOvertimePercent, 0))

	v, ok, err := db.Previous(KeyOvertimePercent)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok, err = db.Previous(KeyTrainingPercent)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDBHistory(t *testing.T) {
	db := openTemp(t)

	for _, v := range []float64{1, 2, 3} {
		require.NoError(t, db.Save(KeyMonthlyHours, v))
	}
	require.NoError(t, db.Save(KeyMissingHours, 9))

	samples, err := db.History(KeyMonthlyHours, 2)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 3.0, samples[0].Value)
	assert.Equal(t, 2.0, samples[1].Value)
	assert.False(t, samples[0].RecordedAt.IsZero())
}

func TestDBUnparseableStateIsAbsent(t *testing.T) {
	db := openTemp(t)

	require.NoError(t, db.SetState(KeyMeetingPercent, "NaN%"))
	_, ok, err := db.Previous(KeyMeetingPercent)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDBToken(t *testing.T) {
	db := openTemp(t)

	tok, err := db.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, db.SetToken("abc"))
	tok, err = db.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

func TestReopenKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ponto.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Save(KeyAverageOvertime, 3.25))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := db.Previous(KeyAverageOvertime)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3.25, v)
}

func TestMemory(t *testing.T) {
	var s MetricStore = NewMemory()

	_, ok, err := s.Previous(KeyPlannedVsExecuted)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(KeyPlannedVsExecuted, 88))
	v, ok, err := s.Previous(KeyPlannedVsExecuted)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 88.0, v)
}
