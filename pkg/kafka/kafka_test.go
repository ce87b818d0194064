package kafka

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

type revalidated struct {
	Entries []string `json:"entries"`
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("catalog.revalidated", "product", "catalog", "site", revalidated{Entries: []string{"statuario"}})
	require.NoError(t, err)

	assert.Len(t, ev.EventID, 36)
	assert.Equal(t, 1, ev.Version)
	assert.WithinDuration(t, time.Now(), ev.Timestamp, time.Second)

	ev.WithCorrelationID("corr-1").WithMetadata("cms", "sanity")
	data, err := ev.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, "corr-1", decoded.CorrelationID)
	assert.Equal(t, "sanity", decoded.Metadata["cms"])

	var payload revalidated
	require.NoError(t, decoded.UnmarshalData(&payload))
	assert.Equal(t, []string{"statuario"}, payload.Entries)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("x", "", "", "site", make(chan int))
	assert.Error(t, err)
}

func TestUnmarshalEvent_Rejects(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{"))
	assert.Error(t, err)

	_, err = UnmarshalEvent([]byte(`{"event_id":"1"}`))
	assert.ErrorContains(t, err, "missing event_type")
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "site.catalog.revalidated", Topic("catalog", "revalidated"))
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "event_type", Value: []byte("a")}}
	c := HeaderCarrier{Headers: &headers}

	c.Set("traceparent", "x")
	c.Set("event_type", "b")

	assert.Equal(t, "b", c.Get("event_type"))
	assert.Equal(t, "x", c.Get("traceparent"))
	assert.Empty(t, c.Get("missing"))
	assert.ElementsMatch(t, []string{"event_type", "traceparent"}, c.Keys())
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	p := &Producer{writer: w, logger: quiet()}

	ev, err := NewEvent("catalog.revalidated", "product", "catalog", "site", revalidated{})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-9")

	require.NoError(t, p.Publish(ctx, Topic("catalog", "revalidated"), ev))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "site.catalog.revalidated", msg.Topic)
	assert.Equal(t, []byte("product"), msg.Key)

	carrier := HeaderCarrier{Headers: &msg.Headers}
	assert.Equal(t, "catalog.revalidated", carrier.Get("event_type"))
	assert.Equal(t, "corr-9", carrier.Get("correlation_id"))
	assert.Contains(t, carrier.Get("traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")
}

func TestProducer_PublishError(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("leader not available")}, logger: quiet()}
	ev, err := NewEvent("catalog.revalidated", "", "catalog", "site", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "t", ev)
	assert.ErrorContains(t, err, "publish event to t")
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.ErrorContains(t, PingBrokers(context.Background(), nil), "no brokers")
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func eventMessage(t *testing.T, offset int64) kafka.Message {
	t.Helper()
	ev, err := NewEvent("catalog.revalidated", "product", "catalog", "site", revalidated{})
	require.NoError(t, err)
	msg, err := Message(context.Background(), "site.catalog.revalidated", ev)
	require.NoError(t, err)
	msg.Offset = offset
	return msg
}

func TestConsumer_ProcessesAndCommits(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		eventMessage(t, 1),
		{Offset: 2, Value: []byte("not json")},
		eventMessage(t, 3),
	}}

	var handled int
	c := newConsumer(r, "site.catalog.revalidated", "site", func(context.Context, *Event) error {
		handled++
		return nil
	}, quiet())

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, 2, handled)
	assert.Equal(t, []int64{1, 2, 3}, r.committed)
	assert.True(t, r.closed)
}

func TestConsumer_RetriesThenSkips(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, 7)}}

	attempts := 0
	c := newConsumer(r, "t", "g", func(context.Context, *Event) error {
		attempts++
		return errors.New("redis down")
	}, quiet())
	c.backoff = time.Millisecond

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, maxHandlerRetries, attempts)
	assert.Equal(t, []int64{7}, r.committed)
}

func TestConsumer_RecoversOnRetry(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, 1)}}

	attempts := 0
	c := newConsumer(r, "t", "g", func(context.Context, *Event) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	}, quiet())
	c.backoff = time.Millisecond

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, 2, attempts)
}

func TestConsumer_CloseIdempotent(t *testing.T) {
	c := newConsumer(&fakeReader{}, "t", "g", nil, quiet())
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
