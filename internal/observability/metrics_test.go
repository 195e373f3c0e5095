package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/crises", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/crises", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/api/crises/:id", "GET", 404, time.Millisecond)
	m.RecordError("/api/crises/7", "GET", "NOT_FOUND")

	snap := m.Snapshot()

	require.Len(t, snap.Requests, 2)
	// "/" sorts before "|", so the parameterized route comes first.
	assert.Equal(t, 404, snap.Requests[0].Status)
	assert.Equal(t, RequestStat{Path: "/api/crises", Method: "GET", Status: 200, Count: 2, AvgDurationMs: 20}, snap.Requests[1])
	require.Len(t, snap.Errors, 1)
	assert.Equal(t, ErrorStat{Path: "/api/crises/7", Method: "GET", Code: "NOT_FOUND", Count: 1}, snap.Errors[0])
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	snap := m.Snapshot()
	assert.Empty(t, snap.Requests)
	assert.Empty(t, snap.Errors)
}
