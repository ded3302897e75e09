package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Collectors are package globals; tests compare against the value before the call.

func TestRecordDatasetLoad(t *testing.T) {
	ok := datasetLoadsTotal.WithLabelValues(ResultSuccess)
	failed := datasetLoadsTotal.WithLabelValues(ResultError)
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordDatasetLoad(nil, 42)
	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(datasetSpecies); got != 42 {
		t.Errorf("dataset_species = %v, want 42", got)
	}

	RecordDatasetLoad(errors.New("boom"), 0)
	if got := testutil.ToFloat64(failed) - failedBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(datasetSpecies); got != 42 {
		t.Errorf("dataset_species after failed load = %v, want 42", got)
	}

	RecordDatasetCleared()
	if got := testutil.ToFloat64(datasetSpecies); got != 0 {
		t.Errorf("dataset_species after clear = %v, want 0", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		name   string
		source string
		err    error
		result string
	}{
		{name: "http success", source: SourceHTTP, result: ResultSuccess},
		{name: "mqtt success", source: SourceMQTT, result: ResultSuccess},
		{name: "http error", source: SourceHTTP, err: errors.New("no dataset"), result: ResultError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := recommendationsTotal.WithLabelValues(tt.source, tt.result)
			before := testutil.ToFloat64(c)
			histBefore := testutil.CollectAndCount(recommendDuration)

			RecordRecommendation(tt.source, tt.err, "tapered", 3*time.Millisecond)

			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("counter delta = %v, want 1", got)
			}
			if tt.err == nil && testutil.CollectAndCount(recommendDuration) < 1 {
				t.Error("duration histogram has no series after a successful run")
			}
			if tt.err != nil && testutil.CollectAndCount(recommendDuration) != histBefore {
				t.Error("failed run added a duration series")
			}
		})
	}
}

func TestRecordMQTTMessage(t *testing.T) {
	for _, result := range []string{MQTTAccepted, MQTTDecode, MQTTInvalid, MQTTFailed} {
		c := mqttMessagesTotal.WithLabelValues(result)
		before := testutil.ToFloat64(c)
		RecordMQTTMessage(result)
		if got := testutil.ToFloat64(c) - before; got != 1 {
			t.Errorf("%s delta = %v, want 1", result, got)
		}
	}
}
