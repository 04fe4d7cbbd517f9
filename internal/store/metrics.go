// Package store keeps the little state ponto needs between runs: the last
// value of every metric (for period-over-period deltas) and the auth token.
package store

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Keys of the previous-value slots, one per metric family.
const (
	KeyMonthlyHours       = "ultimaHoraMensal"
	KeyOvertimePercent    = "ultimaHoraExtraPercentual"
	KeyTrainingPercent    = "ultimaPercentualTreinamento"
	KeyDevelopmentPercent = "ultimaPercentualDesenvolvimento"
	KeyMeetingPercent     = "ultimaPercentualReuniao"
	KeyPlannedVsExecuted  = "ultimaPlanejadoExecutado"
	KeyAverageOvertime    = "ultimaMediaHoraExtra"
	KeyMissingHours       = "ultimaHorasFaltantes"
)

// MetricStore remembers the last computed value of each metric.
type MetricStore interface {
	// Previous returns the stored value; ok is false when nothing was saved.
	Previous(key string) (value float64, ok bool, err error)
	Save(key string, value float64) error
}

// Previous reads a metric from the state table. A value that does not
// parse as a number counts as absent.
func (db *DB) Previous(key string) (float64, bool, error) {
	raw, err := db.GetState(key)
	if err != nil {
		return 0, false, fmt.Errorf("reading %s: %w", key, err)
	}
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, nil
	}
	return v, true, nil
}

// Save stores value as the latest for key and appends it to the history.
func (db *DB) Save(key string, value float64) error {
	if err := db.SetState(key, strconv.FormatFloat(value, 'f', -1, 64)); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	if _, err := db.Exec(
		"INSERT INTO metric_history (key, value, recorded_at) VALUES (?, ?, ?)",
		key, value, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording %s history: %w", key, err)
	}
	return nil
}

// Sample is one saved metric value.
type Sample struct {
	Key        string
	Value      float64
	RecordedAt time.Time
}

// History returns up to limit saved values for key, newest first.
func (db *DB) History(key string, limit int) ([]Sample, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT key, value, recorded_at FROM metric_history
		 WHERE key = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		key, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var recorded string
		if err := rows.Scan(&s.Key, &s.Value, &recorded); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, recorded); err == nil {
			s.RecordedAt = t
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// Memory is an in-process MetricStore.
type Memory struct {
	mu     sync.RWMutex
	values map[string]float64
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]float64)}
}

func (m *Memory) Previous(key string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Save(key string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}
