// Package metrics holds the Prometheus collectors for dataset loads,
// recommendations and MQTT ingestion. They register on the default registry and
// are served by promhttp at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "species_recommender"

// Label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"

	SourceHTTP = "http"
	SourceMQTT = "mqtt"

	MQTTAccepted = "accepted"
	MQTTDecode   = "decode_error"
	MQTTInvalid  = "invalid"
	MQTTFailed   = "handler_error"
)

var (
	datasetLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dataset_loads_total",
		Help:      "Dataset load attempts by result",
	}, []string{"result"})

	datasetSpecies = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_species",
		Help:      "Species profiles in the current snapshot",
	})

	recommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Recommendation runs by source and result",
	}, []string{"source", "result"})

	recommendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recommend_duration_seconds",
		Help:      "Time to score and rank the catalog for one reading",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"strategy"})

	mqttMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mqtt_messages_total",
		Help:      "MQTT sensor messages by outcome",
	}, []string{"result"})
)

// RecordDatasetLoad counts one load attempt. species is the snapshot size after
// a successful load and is ignored on failure.
func RecordDatasetLoad(err error, species int) {
	if err != nil {
		datasetLoadsTotal.WithLabelValues(ResultError).Inc()
		return
	}
	datasetLoadsTotal.WithLabelValues(ResultSuccess).Inc()
	datasetSpecies.Set(float64(species))
}

// RecordDatasetCleared resets the species gauge.
func RecordDatasetCleared() {
	datasetSpecies.Set(0)
}

func RecordRecommendation(source string, err error, strategy string, elapsed time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	recommendationsTotal.WithLabelValues(source, result).Inc()
	if err == nil {
		recommendDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	}
}

func RecordMQTTMessage(result string) {
	mqttMessagesTotal.WithLabelValues(result).Inc()
}
