package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// --- Fakes ---

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader replays msgs and then reports io.EOF.
type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func useTraceContext(t *testing.T) {
	t.Helper()
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
}

func sampledContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	return trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Tests ---

func TestProducerPublish(t *testing.T) {
	useTraceContext(t)
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "order.created")

	err := p.Publish(sampledContext(t), "42", map[string]any{"order_id": 42})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.JSONEq(t, `{"order_id":42}`, string(msg.Value))
	assert.Equal(t, "application/json", header(&msg, HeaderContentType))
	assert.Equal(t, "order.created", header(&msg, HeaderEventType))
	assert.Contains(t, header(&msg, "traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")
}

func TestProducerPublish_Errors(t *testing.T) {
	t.Run("unencodable event", func(t *testing.T) {
		p := NewProducerWithWriter(&fakeWriter{}, "order.created")
		assert.ErrorContains(t, p.Publish(context.Background(), "1", make(chan int)), "encode order.created event")
	})

	t.Run("write failure", func(t *testing.T) {
		p := NewProducerWithWriter(&fakeWriter{err: errors.New("leader not available")}, "order.created")
		assert.ErrorContains(t, p.Publish(context.Background(), "1", struct{}{}), "leader not available")
	})
}

func TestTracePropagatesThroughHeaders(t *testing.T) {
	useTraceContext(t)
	var msg kafka.Message

	InjectTrace(sampledContext(t), &msg)
	ctx := ExtractTrace(context.Background(), &msg)

	sc := trace.SpanContextFromContext(ctx)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
	assert.True(t, sc.IsRemote())
}

func TestConsumerConsume(t *testing.T) {
	t.Run("commits handled messages in order", func(t *testing.T) {
		r := &fakeReader{msgs: []kafka.Message{
			{Offset: 1, Value: []byte(`a`)},
			{Offset: 2, Value: []byte(`b`)},
		}}
		c := NewConsumerWithReader(r, "order.created", "stock-alerts", discardLogger())

		var got []string
		err := c.Consume(context.Background(), func(ctx context.Context, payload []byte) error {
			got = append(got, string(payload))
			return nil
		})

		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, []string{"a", "b"}, got)
		assert.Equal(t, []int64{1, 2}, r.committed)
	})

	t.Run("handler failure stops without committing", func(t *testing.T) {
		r := &fakeReader{msgs: []kafka.Message{{Offset: 7}, {Offset: 8}}}
		c := NewConsumerWithReader(r, "order.created", "stock-alerts", discardLogger())

		err := c.Consume(context.Background(), func(ctx context.Context, payload []byte) error {
			return errors.New("database unavailable")
		})

		assert.ErrorContains(t, err, "process offset 7")
		assert.Empty(t, r.committed)
	})

	t.Run("skipped messages are committed", func(t *testing.T) {
		r := &fakeReader{msgs: []kafka.Message{
			{Offset: 1, Value: []byte(`garbage`)},
			{Offset: 2, Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte("order.cancelled")}}},
			{Offset: 3, Value: []byte(`ok`)},
		}}
		c := NewConsumerWithReader(r, "order.created", "stock-alerts", discardLogger())

		var handled []int
		err := c.Consume(context.Background(), func(ctx context.Context, payload []byte) error {
			if string(payload) == "garbage" {
				return ErrSkip
			}
			handled = append(handled, len(payload))
			return nil
		})

		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, []int64{1, 2, 3}, r.committed)
		assert.Equal(t, []int{2}, handled, "wrong event type never reaches the handler")
	})
}
