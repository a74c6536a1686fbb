package relayer

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "relayer"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Height of the newest sequencer block seen.
	SequencerHeight metrics.Gauge
	// Height of the last relayed sequencer block.
	RelayedHeight metrics.Gauge
	// DA height of the last relayed block.
	DAHeight metrics.Gauge `metrics_name:"da_height"`

	// Number of relayed blocks.
	RelayedBlocks metrics.Counter
	// Number of blocks that failed verification.
	InvalidBlocks metrics.Counter
	// Number of failed submission attempts.
	SubmissionFailures metrics.Counter

	// Time to publish a block, including retries.
	SubmitTime metrics.Histogram
	// Number of namespaces a block was published to.
	BlockNamespaces metrics.Histogram
	// Number of transactions in a relayed block.
	BlockTxs metrics.Histogram
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		SequencerHeight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "sequencer_height",
			Help:      "Height of the newest sequencer block seen.",
		}, labels).With(labelsAndValues...),
		RelayedHeight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "relayed_height",
			Help:      "Height of the last relayed sequencer block.",
		}, labels).With(labelsAndValues...),
		DAHeight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "da_height",
			Help:      "DA height of the last relayed block.",
		}, labels).With(labelsAndValues...),
		RelayedBlocks: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "relayed_blocks_total",
			Help:      "Number of relayed blocks.",
		}, labels).With(labelsAndValues...),
		InvalidBlocks: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "invalid_blocks_total",
			Help:      "Number of blocks that failed verification.",
		}, labels).With(labelsAndValues...),
		SubmissionFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "submission_failures_total",
			Help:      "Number of failed submission attempts.",
		}, labels).With(labelsAndValues...),
		SubmitTime: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "submit_time_seconds",
			Help:      "Time to publish a block, including retries.",
		}, labels).With(labelsAndValues...),
		BlockNamespaces: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "block_namespaces",
			Help:      "Number of namespaces a block was published to.",
			Buckets:   stdprometheus.LinearBuckets(1, 1, 10),
		}, labels).With(labelsAndValues...),
		BlockTxs: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "block_txs",
			Help:      "Number of transactions in a relayed block.",
			Buckets:   stdprometheus.ExponentialBuckets(1, 2, 12),
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		SequencerHeight:    discard.NewGauge(),
		RelayedHeight:      discard.NewGauge(),
		DAHeight:           discard.NewGauge(),
		RelayedBlocks:      discard.NewCounter(),
		InvalidBlocks:      discard.NewCounter(),
		SubmissionFailures: discard.NewCounter(),
		SubmitTime:         discard.NewHistogram(),
		BlockNamespaces:    discard.NewHistogram(),
		BlockTxs:           discard.NewHistogram(),
	}
}
