package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
// Tracks instruction outcomes, instruction latency and read-side join gaps.
type Metrics struct {
	Instructions        *prometheus.CounterVec
	InstructionDuration *prometheus.HistogramVec
	JoinGaps            *prometheus.CounterVec
	ScanDuration        *prometheus.HistogramVec
}

// New registers the registry metrics with reg. Pass prometheus.DefaultRegisterer
// in the server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Instructions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "daviz_instructions_total",
			Help: "Registry instructions by name and outcome (ok or error code)",
		}, []string{"instruction", "outcome"}),
		InstructionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daviz_instruction_duration_seconds",
			Help:    "Duration of registry instructions",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"instruction"}),
		JoinGaps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "daviz_enrichment_join_gaps_total",
			Help: "Trust records whose framework or asset could not be resolved at read time",
		}, []string{"target"}),
		ScanDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daviz_account_scan_duration_seconds",
			Help:    "Duration of bulk account scans by record type",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"record"}),
	}
}

// ObserveInstruction records one instruction with its outcome.
// Call with time.Now() at the start of the instruction.
func (m *Metrics) ObserveInstruction(instruction, outcome string, start time.Time) {
	m.Instructions.WithLabelValues(instruction, outcome).Inc()
	m.InstructionDuration.WithLabelValues(instruction).Observe(time.Since(start).Seconds())
}

// IncrementJoinGap records an unresolved framework or asset reference.
func (m *Metrics) IncrementJoinGap(target string) {
	m.JoinGaps.WithLabelValues(target).Inc()
}

// ObserveScan records the duration of a bulk scan.
func (m *Metrics) ObserveScan(record string, start time.Time) {
	m.ScanDuration.WithLabelValues(record).Observe(time.Since(start).Seconds())
}
