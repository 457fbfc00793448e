package iforest

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "syscallguard"

type collectors struct {
	fits      prometheus.Counter
	trees     prometheus.Gauge
	threshold prometheus.Gauge
	scored    prometheus.Counter
	anomalies prometheus.Counter
	scores    prometheus.Histogram
}

func newCollectors() *collectors {
	return &collectors{
		fits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "forest_fits_total",
			Help:      "Number of completed isolation forest trainings.",
		}),
		trees: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "forest_trees",
			Help:      "Number of trees in the current forest.",
		}),
		threshold: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "anomaly_threshold",
			Help:      "Score at or above which a sample is classified as an anomaly.",
		}),
		scored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scored_total",
			Help:      "Number of feature vectors scored.",
		}),
		anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "anomalies_total",
			Help:      "Number of feature vectors classified as anomalous.",
		}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "anomaly_score",
			Help:      "Distribution of anomaly scores.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
	}
}

func (c *collectors) register(reg prometheus.Registerer) {
	reg.MustRegister(c.fits, c.trees, c.threshold, c.scored, c.anomalies, c.scores)
}

func (c *collectors) observe(value float64, anomaly bool) {
	c.scored.Inc()
	c.scores.Observe(value)
	if anomaly {
		c.anomalies.Inc()
	}
}
