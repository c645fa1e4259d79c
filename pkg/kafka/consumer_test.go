package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	applogger "FinStudies/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

type fakeWriter struct {
	written []kafka.Message
	err     error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type scriptedHandler struct {
	topic string
	errs  []error
	calls int
	ctxs  []context.Context
}

func (h *scriptedHandler) Topic() string { return h.topic }

func (h *scriptedHandler) Handle(ctx context.Context, _ []byte) error {
	h.calls++
	h.ctxs = append(h.ctxs, ctx)
	if len(h.errs) == 0 {
		return nil
	}
	err := h.errs[0]
	h.errs = h.errs[1:]
	return err
}

func newTestConsumer(t *testing.T, h MessageHandler, opts ...ConsumerOption) (*Consumer, *fakeReader) {
	t.Helper()
	opts = append([]ConsumerOption{
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(2, time.Millisecond, 2*time.Millisecond),
	}, opts...)
	c, err := NewConsumer(applogger.Nop(), opts...)
	require.NoError(t, err)
	c.RegisterHandler(h)
	r := &fakeReader{}
	c.readers[h.Topic()] = r
	return c, r
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer(applogger.Nop())
	assert.Error(t, err)
}

func TestProcessRetriesThenCommits(t *testing.T) {
	h := &scriptedHandler{topic: "study.requests", errs: []error{errors.New("a"), errors.New("b")}}
	c, r := newTestConsumer(t, h)

	c.process(kafka.Message{Topic: "study.requests", Offset: 7})

	assert.Equal(t, 3, h.calls)
	require.Len(t, r.committed, 1)
	assert.Equal(t, int64(7), r.committed[0].Offset)
}

func TestProcessDeadLettersAfterRetries(t *testing.T) {
	h := &scriptedHandler{topic: "study.requests", errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	c, r := newTestConsumer(t, h, WithConsumerDLQ("study.requests.dlq"))
	w := &fakeWriter{}
	c.dlq = w

	c.process(kafka.Message{Topic: "study.requests", Value: []byte(`{}`)})

	assert.Equal(t, 3, h.calls)
	require.Len(t, w.written, 1)
	assert.Equal(t, "study.requests.dlq", w.written[0].Topic)
	assert.Equal(t, "study.requests", string(w.written[0].Headers[0].Value))
	assert.Len(t, r.committed, 1)
}

func TestProcessFailedDeadLetterLeavesUncommitted(t *testing.T) {
	h := &scriptedHandler{topic: "study.requests", errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	c, r := newTestConsumer(t, h, WithConsumerDLQ("study.requests.dlq"))
	w := &fakeWriter{err: errors.New("leader not available")}
	c.dlq = w

	c.process(kafka.Message{Topic: "study.requests", Offset: 11, Value: []byte(`{}`)})

	assert.Equal(t, 3, h.calls)
	assert.Empty(t, w.written)
	assert.Empty(t, r.committed)
}

func TestProcessWithoutDLQLeavesFailureUncommitted(t *testing.T) {
	h := &scriptedHandler{topic: "t", errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	c, r := newTestConsumer(t, h)

	c.process(kafka.Message{Topic: "t"})
	assert.Empty(t, r.committed)
}

func TestProcessRecoversHandlerPanic(t *testing.T) {
	h := &panicHandler{}
	c, r := newTestConsumer(t, h, WithConsumerRetry(0, time.Millisecond, time.Millisecond))

	assert.NotPanics(t, func() { c.process(kafka.Message{Topic: "p"}) })
	assert.Empty(t, r.committed)
}

type panicHandler struct{}

func (panicHandler) Topic() string { return "p" }

func (panicHandler) Handle(context.Context, []byte) error { panic("boom") }

func TestTraceHookPropagatesHeader(t *testing.T) {
	h := &scriptedHandler{topic: "t"}
	c, _ := newTestConsumer(t, h)
	c.WithConsumerHook(TraceHook())

	c.process(kafka.Message{Topic: "t", Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}})

	require.Len(t, h.ctxs, 1)
	assert.Equal(t, "abc", TraceID(h.ctxs[0]))
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt < 10; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 100*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 100*time.Millisecond)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	h := &scriptedHandler{topic: "t"}
	c, _ := newTestConsumer(t, h)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, c.Stop(ctx))
	require.NoError(t, c.Stop(ctx))
}
