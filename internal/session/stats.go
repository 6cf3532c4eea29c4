package session

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	at       time.Time
	micros   int64
	rejected bool
}

// LatencySnapshot aggregates the recent runs of one command.
type LatencySnapshot struct {
	Count    int     `json:"count"`
	Rejected int     `json:"rejected"`
	MinUs    int64   `json:"min_us"`
	MaxUs    int64   `json:"max_us"`
	AvgUs    float64 `json:"avg_us"`
	P50Us    float64 `json:"p50_us"`
	P95Us    float64 `json:"p95_us"`
	P99Us    float64 `json:"p99_us"`
}

// CommandStats tracks per-command latencies within a rolling window.
type CommandStats struct {
	mu      sync.Mutex
	samples map[string][]sample
	maxAge  time.Duration
}

func NewCommandStats(maxAge time.Duration) *CommandStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &CommandStats{
		samples: make(map[string][]sample),
		maxAge:  maxAge,
	}
}

// Record adds one run of command. rejected marks runs that ended in an error.
func (s *CommandStats) Record(command string, d time.Duration, rejected bool) {
	micros := d.Microseconds()
	if micros < 0 {
		micros = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples[command] = append(s.samples[command], sample{at: now, micros: micros, rejected: rejected})
}

// Snapshot returns aggregates keyed by command name. Commands with no
// samples left in the window are omitted.
func (s *CommandStats) Snapshot() map[string]LatencySnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	out := make(map[string]LatencySnapshot, len(s.samples))
	for cmd, samples := range s.samples {
		out[cmd] = summarize(samples)
	}
	return out
}

func summarize(samples []sample) LatencySnapshot {
	values := make([]int64, 0, len(samples))
	var sum int64
	rejected := 0
	for _, sm := range samples {
		values = append(values, sm.micros)
		sum += sm.micros
		if sm.rejected {
			rejected++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return LatencySnapshot{
		Count:    len(values),
		Rejected: rejected,
		MinUs:    values[0],
		MaxUs:    values[len(values)-1],
		AvgUs:    float64(sum) / float64(len(values)),
		P50Us:    percentile(values, 50),
		P95Us:    percentile(values, 95),
		P99Us:    percentile(values, 99),
	}
}

func (s *CommandStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	for cmd, samples := range s.samples {
		kept := samples[:0]
		for _, sm := range samples {
			if !sm.at.Before(cutoff) {
				kept = append(kept, sm)
			}
		}
		if len(kept) == 0 {
			delete(s.samples, cmd)
			continue
		}
		s.samples[cmd] = kept
	}
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}
	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(index-float64(lower))
}
