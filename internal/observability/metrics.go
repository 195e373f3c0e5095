package observability

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	totalDuration map[string]time.Duration
}

// RequestStat is a snapshot entry for one path/method/status key.
type RequestStat struct {
	Path          string  `json:"path"`
	Method        string  `json:"method"`
	Status        int     `json:"status"`
	Count         int64   `json:"count"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

// ErrorStat is a snapshot entry for one path/method/error-code key.
type ErrorStat struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	Code   string `json:"code"`
	Count  int64  `json:"count"`
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests []RequestStat `json:"requests"`
	Errors   []ErrorStat   `json:"errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		totalDuration: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.totalDuration[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the counters, sorted by key.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Requests: []RequestStat{}, Errors: []ErrorStat{}}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range sortedKeys(m.requestCount) {
		parts := strings.SplitN(key, "|", 3)
		status, _ := strconv.Atoi(parts[2])
		count := m.requestCount[key]
		snap.Requests = append(snap.Requests, RequestStat{
			Path:          parts[0],
			Method:        parts[1],
			Status:        status,
			Count:         count,
			AvgDurationMs: float64(m.totalDuration[key].Microseconds()) / 1000 / float64(count),
		})
	}
	for _, key := range sortedKeys(m.errorCount) {
		parts := strings.SplitN(key, "|", 3)
		snap.Errors = append(snap.Errors, ErrorStat{
			Path:   parts[0],
			Method: parts[1],
			Code:   parts[2],
			Count:  m.errorCount[key],
		})
	}
	return snap
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
