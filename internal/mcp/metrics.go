package mcp

import (
	"sort"
	"sync"
	"time"
)

// CallMetrics tracks tool call statistics for the MCP server.
// All methods are thread-safe and can be called concurrently.
type CallMetrics struct {
	started time.Time
	tools   map[string]*toolMetrics
	mu      sync.RWMutex
}

type toolMetrics struct {
	calls        int64
	failures     int64
	results      int64
	totalTime    time.Duration
	lastCallTime time.Time
	lastError    string
}

// ToolSnapshot is an immutable view of one tool's counters.
type ToolSnapshot struct {
	Tool         string    `json:"tool"`
	Calls        int64     `json:"calls"`
	Failures     int64     `json:"failures"`
	Results      int64     `json:"results"` // matches found or files changed
	AvgMs        int64     `json:"avg_ms"`
	LastCallTime time.Time `json:"last_call_time"`
	LastError    string    `json:"last_error,omitempty"`
}

// MetricsSnapshot is an immutable snapshot of call metrics at a point in time.
// It can be safely shared across goroutines without synchronization.
type MetricsSnapshot struct {
	UptimeMs int64          `json:"uptime_ms"`
	Tools    []ToolSnapshot `json:"tools"`
}

// NewCallMetrics creates a new CallMetrics instance with zero values.
func NewCallMetrics() *CallMetrics {
	return &CallMetrics{
		started: time.Now(),
		tools:   make(map[string]*toolMetrics),
	}
}

// RecordCall records the outcome of one tool call.
//
// Parameters:
//   - tool: the tool name
//   - duration: how long the call took
//   - err: error if the call failed, nil if successful
//   - results: matches found or files changed (0 if the call failed)
func (m *CallMetrics) RecordCall(tool string, duration time.Duration, err error, results int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tm, ok := m.tools[tool]
	if !ok {
		tm = &toolMetrics{}
		m.tools[tool] = tm
	}
	tm.calls++
	tm.totalTime += duration
	tm.lastCallTime = time.Now()
	tm.results += int64(results)

	if err != nil {
		tm.failures++
		tm.lastError = err.Error()
	} else {
		tm.lastError = ""
	}
}

// Snapshot returns an immutable snapshot of current metrics, sorted by tool.
func (m *CallMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		UptimeMs: time.Since(m.started).Milliseconds(),
		Tools:    make([]ToolSnapshot, 0, len(m.tools)),
	}
	for name, tm := range m.tools {
		ts := ToolSnapshot{
			Tool:         name,
			Calls:        tm.calls,
			Failures:     tm.failures,
			Results:      tm.results,
			LastCallTime: tm.lastCallTime,
			LastError:    tm.lastError,
		}
		if tm.calls > 0 {
			ts.AvgMs = (tm.totalTime / time.Duration(tm.calls)).Milliseconds()
		}
		snap.Tools = append(snap.Tools, ts)
	}
	sort.Slice(snap.Tools, func(i, j int) bool { return snap.Tools[i].Tool < snap.Tools[j].Tool })
	return snap
}
