package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/glucodeck/glucodeck/internal/models"
)

// bucketEndingAt builds a snapshot whose most recent bucket yields the given
// next-reading estimate: estimate = end + duration + 15s.
func bucketEndingAt(estimate, now time.Time, duration time.Duration) *models.Snapshot {
	end := estimate.Add(-duration).Add(-arrivalBuffer)
	return &models.Snapshot{
		Buckets: []models.Bucket{{
			Index:     0,
			FromMills: end.Add(-duration).UnixMilli(),
			ToMills:   end.UnixMilli(),
		}},
	}
}

func TestNextFetchDelay(t *testing.T) {
	// Millisecond precision: bucket boundaries travel as Unix millis.
	now := time.Now().Truncate(time.Millisecond)

	tests := []struct {
		name     string
		snap     *models.Snapshot
		expected time.Duration
	}{
		{
			name:     "nil snapshot uses default",
			snap:     nil,
			expected: 30 * time.Second,
		},
		{
			name:     "no buckets uses default",
			snap:     &models.Snapshot{},
			expected: 30 * time.Second,
		},
		{
			name:     "estimate 20s out shortens the delay",
			snap:     bucketEndingAt(now.Add(20*time.Second), now, 5*time.Minute),
			expected: 20 * time.Second,
		},
		{
			name:     "estimate 45s out is capped at the default",
			snap:     bucketEndingAt(now.Add(45*time.Second), now, 5*time.Minute),
			expected: 30 * time.Second,
		},
		{
			name:     "estimate 10m out is ignored",
			snap:     bucketEndingAt(now.Add(10*time.Minute), now, 5*time.Minute),
			expected: 30 * time.Second,
		},
		{
			name:     "estimate in the past is ignored",
			snap:     bucketEndingAt(now.Add(-time.Minute), now, 5*time.Minute),
			expected: 30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextFetchDelay(tt.snap, now))
		})
	}
}

func TestHistoryCount(t *testing.T) {
	tests := []struct {
		hours    int
		expected int
	}{
		{hours: 1, expected: 12},
		{hours: 2, expected: 24},
		{hours: 4, expected: 48},
		{hours: 8, expected: 96},
		{hours: 12, expected: 144},
		{hours: 24, expected: 288},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, HistoryCount(tt.hours), "graphHours=%d", tt.hours)
	}
}
