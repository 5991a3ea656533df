package kernel

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

const latencyWindow = 2048

// Metrics accumulates the scheduler's accounting data: switch latency and
// the idle/total cycle ratio that backs core-load reporting. The recorded
// "switch latency" is the cycle-source interval between one context switch
// and the next; the outgoing task's exit and the incoming task's entry are
// taken from the same cycle reading, so no separate exit-to-entry interval
// is measured. Mean and quantiles of those intervals are computed with a
// statistics package.
type Metrics struct {
	mu sync.Mutex

	lastSwitchCycles uint64
	latencies        []float64

	lastSample     time.Time
	prevIdleCycles uint64
	prevTotal      uint64
	cachedLoad     uint32
	cachedMantis   uint32
}

func newMetrics() *Metrics {
	return &Metrics{lastSample: time.Now()}
}

// recordSwitch is called by the scheduler on every actual context switch
// (not on a no-op reschedule that keeps the same task running).
func (m *Metrics) recordSwitch(cycles uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastSwitchCycles != 0 {
		latency := float64(cycles - m.lastSwitchCycles)
		m.latencies = append(m.latencies, latency)
		if len(m.latencies) > latencyWindow {
			m.latencies = m.latencies[len(m.latencies)-latencyWindow:]
		}
	}
	m.lastSwitchCycles = cycles
}

// LatencyQuantile reports the q-quantile (0..1) of recent switch latencies,
// in the cycle source's units. 0 if no switches have been recorded yet.
func (m *Metrics) LatencyQuantile(q float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.latencies) == 0 {
		return 0
	}
	sorted := append([]float64(nil), m.latencies...)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// MeanLatency reports the mean recorded switch latency.
func (m *Metrics) MeanLatency() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.latencies) == 0 {
		return 0
	}
	return stat.Mean(m.latencies, nil)
}

// CoreLoad samples idle-task vs. total cumulative execution cycles, at
// most once per second, and reports 1 - idle/total over the elapsed
// interval (not lifetime) as an integer percent plus a 1/100-percent
// mantissa. The idle and total deltas are taken with unsigned
// subtraction so a wrapped cycle counter still yields a correct delta.
func (k *Kernel) CoreLoad() (load, mantissa uint32) {
	m := k.metrics

	m.mu.Lock()
	if time.Since(m.lastSample) < time.Second {
		load, mantissa = m.cachedLoad, m.cachedMantis
		m.mu.Unlock()
		return load, mantissa
	}
	m.mu.Unlock()

	k.mu.Lock()
	var idle, total uint64
	for _, t := range k.registry.Tasks() {
		total += t.execCycles
		if t == k.idle {
			idle = t.execCycles
		}
	}
	k.mu.Unlock()

	m.mu.Lock()
	idleDelta := idle - m.prevIdleCycles
	totalDelta := total - m.prevTotal
	m.prevIdleCycles, m.prevTotal = idle, total

	var busyPct float64
	if totalDelta > 0 {
		busyPct = (1 - float64(idleDelta)/float64(totalDelta)) * 100
	}
	load = uint32(busyPct)
	mantissa = uint32(busyPct*100) % 100

	m.cachedLoad, m.cachedMantis, m.lastSample = load, mantissa, time.Now()
	m.mu.Unlock()
	return load, mantissa
}
