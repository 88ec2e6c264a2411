package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Event tests ---

func TestNewEvent_Fields(t *testing.T) {
	type ReviewData struct {
		Index  int    `json:"index"`
		Rating int    `json:"rating"`
		Review string `json:"review"`
	}

	data := ReviewData{Index: 3, Rating: 4, Review: "Great tacos"}
	event, err := NewEvent("review.submitted", "3", "review", "feedback-service", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID, "EventID should be a non-empty UUID")
	assert.Equal(t, "review.submitted", event.EventType)
	assert.Equal(t, "3", event.AggregateID)
	assert.Equal(t, "review", event.AggregateType)
	assert.Equal(t, "feedback-service", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.NotNil(t, event.Data)

	// Verify the data was marshaled correctly.
	var roundTripped ReviewData
	require.NoError(t, json.Unmarshal(event.Data, &roundTripped))
	assert.Equal(t, data, roundTripped)
}

func TestNewEvent_InvalidData(t *testing.T) {
	// Channels are not serializable to JSON.
	_, err := NewEvent("review.submitted", "agg-1", "review", "feedback-service", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode review.submitted payload")
}

func TestEvent_MarshalWireFormat(t *testing.T) {
	event, err := NewEvent("review.submitted", "2025-06-01 12:30:45", "review", "feedback-service", map[string]any{"rating": 2})
	require.NoError(t, err)
	event.WithCorrelationID("corr-abc")

	raw, err := event.Marshal()
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, event.EventID, wire["event_id"])
	assert.Equal(t, "review.submitted", wire["event_type"])
	assert.Equal(t, "2025-06-01 12:30:45", wire["aggregate_id"])
	assert.Equal(t, "review", wire["aggregate_type"])
	assert.EqualValues(t, 1, wire["version"])
	assert.Equal(t, "feedback-service", wire["source"])
	assert.Equal(t, "corr-abc", wire["correlation_id"])
	assert.Equal(t, map[string]any{"rating": float64(2)}, wire["data"])
}

func TestEvent_MarshalOmitsEmptyCorrelationID(t *testing.T) {
	event, err := NewEvent("review.submitted", "agg-1", "review", "feedback-service", nil)
	require.NoError(t, err)

	raw, err := event.Marshal()
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "correlation_id")
	assert.Contains(t, string(raw), `"data":null`)
}

func TestEvent_WithCorrelationID(t *testing.T) {
	event, err := NewEvent("test.event", "agg-1", "test", "svc", nil)
	require.NoError(t, err)

	// Verify chaining returns the same pointer.
	result := event.WithCorrelationID("corr-xyz")
	assert.Same(t, event, result, "WithCorrelationID should return the same event for chaining")
	assert.Equal(t, "corr-xyz", event.CorrelationID)
}

// --- ProducerConfig tests ---

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestDefaultProducerConfig_SingleBroker(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	assert.Len(t, cfg.Brokers, 1)
	assert.Equal(t, "localhost:9092", cfg.Brokers[0])
}

// --- Topic tests ---

func TestTopic_Prefix(t *testing.T) {
	assert.Equal(t, "feedback", TopicPrefix)
}

func TestTopic_VariousCombinations(t *testing.T) {
	tests := []struct {
		domain string
		action string
		want   string
	}{
		{"review", "submitted", "feedback.review.submitted"},
		{"prediction", "completed", "feedback.prediction.completed"},
		{"review", "enriched", "feedback.review.enriched"},
	}

	for _, tt := range tests {
		t.Run(tt.domain+"."+tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
		})
	}
}

// --- Producer tests ---

func TestNewProducer_CreatesInstance(t *testing.T) {
	// NewProducer requires broker addresses but does not connect immediately.
	// We verify the returned producer is non-nil and can be closed.
	cfg := DefaultProducerConfig([]string{"localhost:19092"})
	p := NewProducer(cfg, nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)

	// Close should succeed even without a real broker.
	err := p.Close()
	assert.NoError(t, err)
}

func TestNewProducer_DefaultsLogger(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	t.Cleanup(func() { _ = p.Close() })
	assert.NotNil(t, p.logger)
}

func TestPublish_UnreachableBrokerCountsError(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"127.0.0.1:1"})
	cfg.WriteTimeout = 200 * time.Millisecond
	p := NewProducer(cfg, nil)
	t.Cleanup(func() { _ = p.Close() })

	topic := "feedback.test.unreachable"
	event, err := NewEvent("test.unreachable", "1", "review", "feedback-service", map[string]int{"rating": 5})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	before := testutil.ToFloat64(ProducerPublishErrors.WithLabelValues(topic))
	err = p.Publish(ctx, topic, event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), topic)
	assert.Equal(t, before+1, testutil.ToFloat64(ProducerPublishErrors.WithLabelValues(topic)))
}

func TestPingBrokers_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	err := PingBrokers(ctx, []string{"127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all brokers unreachable")
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestPingBrokers_EmptySlice(t *testing.T) {
	err := PingBrokers(t.Context(), []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}
