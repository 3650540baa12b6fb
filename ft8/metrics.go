package ft8

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/v3/process"
)

// Metrics holds the Prometheus collectors a Decoder reports through. Construct
// one with NewMetrics against whatever registerer the caller's process uses —
// never the global default, so embedding more than one decoder doesn't panic on
// duplicate registration.
type Metrics struct {
	CandidatesPerSlot prometheus.Histogram
	LDPCFailures      prometheus.Counter
	CRCFailures       prometheus.Counter
	MessagesDecoded   *prometheus.CounterVec
	DecodeDuration    prometheus.Histogram
	HashTableEntries  prometheus.Gauge

	ProcessCPUPercent prometheus.Gauge
	ProcessRSSBytes   prometheus.Gauge

	proc *process.Process
}

// NewMetrics registers and returns a fresh Metrics against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		CandidatesPerSlot: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ft8_candidates_per_slot",
				Help:    "Costas sync candidates found in a single decoded slot.",
				Buckets: prometheus.LinearBuckets(0, 20, 10),
			},
		),
		LDPCFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ft8_ldpc_failures_total",
				Help: "Candidates that failed to converge to a valid LDPC codeword.",
			},
		),
		CRCFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ft8_crc_failures_total",
				Help: "Candidates with a valid LDPC codeword but a CRC mismatch.",
			},
		),
		MessagesDecoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ft8_messages_decoded_total",
				Help: "Successfully decoded, CRC-verified messages per protocol.",
			},
			[]string{"protocol"},
		),
		DecodeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ft8_decode_duration_seconds",
				Help:    "Wall-clock time to decode one slot's waterfall.",
				Buckets: prometheus.DefBuckets,
			},
		),
		HashTableEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ft8_hash_table_entries",
				Help: "Callsigns currently cached in the hash table.",
			},
		),
		ProcessCPUPercent: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ft8_process_cpu_percent",
				Help: "CPU percent used by this process, sampled on UpdateProcessStats.",
			},
		),
		ProcessRSSBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ft8_process_rss_bytes",
				Help: "Resident set size of this process, sampled on UpdateProcessStats.",
			},
		),
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		m.proc = proc
	}
	return m
}

// UpdateProcessStats samples this process's CPU and memory usage into the
// ProcessCPUPercent/ProcessRSSBytes gauges. DecodeSlot does not call it;
// StartProcessStatsLoop calls it on an interval. It is a no-op if the process
// handle couldn't be opened at construction time.
func (m *Metrics) UpdateProcessStats() {
	if m.proc == nil {
		return
	}
	if pct, err := m.proc.CPUPercent(); err == nil {
		m.ProcessCPUPercent.Set(pct)
	}
	if mem, err := m.proc.MemoryInfo(); err == nil && mem != nil {
		m.ProcessRSSBytes.Set(float64(mem.RSS))
	}
}

// StartProcessStatsLoop runs UpdateProcessStats every interval until stop is
// closed, returning immediately. Callers that embed a Metrics in a
// long-running decoder process use this to keep ProcessCPUPercent/RSSBytes
// fresh without sampling on every decode.
func (m *Metrics) StartProcessStatsLoop(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.UpdateProcessStats()
			case <-stop:
				return
			}
		}
	}()
}
