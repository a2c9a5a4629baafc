package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	started      time.Time
	requestCount map[string]int64
	errorCount   map[string]int64
	totalLatency time.Duration
	requests     int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Uptime         string           `json:"uptime"`
	Requests       int64            `json:"requests"`
	AvgLatencyMs   float64          `json:"avgLatencyMs"`
	RequestsByPath map[string]int64 `json:"requestsByPath"`
	ErrorsByCode   map[string]int64 `json:"errorsByCode"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		started:      time.Now(),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
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
	m.requests++
	m.totalLatency += duration
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

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Uptime:         time.Since(m.started).Truncate(time.Second).String(),
		Requests:       m.requests,
		RequestsByPath: copyCounts(m.requestCount),
		ErrorsByCode:   copyCounts(m.errorCount),
	}
	if m.requests > 0 {
		s.AvgLatencyMs = float64(m.totalLatency.Microseconds()) / float64(m.requests) / 1000
	}
	return s
}

// TopPaths returns up to n request keys by count, highest first.
func (s Snapshot) TopPaths(n int) []string {
	keys := make([]string, 0, len(s.RequestsByPath))
	for k := range s.RequestsByPath {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := s.RequestsByPath[keys[i]], s.RequestsByPath[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
