package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/aescanero/dago-agent-patterns/internal/config"
	"github.com/aescanero/dago-agent-patterns/internal/llm"
	"github.com/aescanero/dago-agent-patterns/internal/llm/llmtest"
	"github.com/aescanero/dago-agent-patterns/internal/router"
)

func testConfig() *config.Config {
	return &config.Config{
		WorkerID:      "router-test",
		StreamKey:     "router.work",
		ConsumerGroup: "router-workers",
		ResultStream:  "router.decided",
		BlockTime:     100 * time.Millisecond,
	}
}

func setup(t *testing.T, client *llmtest.Client) (*Worker, *redis.Client, *Metrics) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := zaptest.NewLogger(t)
	r, err := router.NewRouter(client, router.Config{}, logger)
	require.NoError(t, err)

	metrics := NewMetrics(prometheus.NewRegistry())
	w := NewWorker(testConfig(), rdb, r, metrics, logger)
	require.NoError(t, w.ensureConsumerGroup())
	return w, rdb, metrics
}

func workMessage(t *testing.T, id string, req WorkRequest) redis.XMessage {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return redis.XMessage{ID: id, Values: map[string]interface{}{"data": string(data)}}
}

func readData(t *testing.T, rdb *redis.Client, stream string, v interface{}) {
	t.Helper()
	msgs, err := rdb.XRange(context.Background(), stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), v))
}

func TestHandleMessage_PublishesDecision(t *testing.T) {
	w, rdb, metrics := setup(t, llmtest.Reply("booker"))

	w.handleMessage(workMessage(t, "1-0", WorkRequest{
		RequestID: "req-1",
		Request:   "Book me a flight to London",
	}))

	var d Decision
	readData(t, rdb, "router.decided", &d)
	assert.Equal(t, "req-1", d.RequestID)
	assert.Equal(t, "booker", d.Decision)
	assert.Equal(t, "booking_handler", d.Handler)
	assert.Contains(t, d.Output, "Booking Handler processed request: 'Book me a flight to London'")
	assert.Equal(t, router.PathModel, d.PathTaken)
	assert.False(t, d.Timestamp.IsZero())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("booker", router.PathModel)))
}

func TestHandleMessage_GeneratesRequestID(t *testing.T) {
	w, rdb, _ := setup(t, llmtest.Reply("info"))

	w.handleMessage(workMessage(t, "1-0", WorkRequest{Request: "What is the capital of France?"}))

	var d Decision
	readData(t, rdb, "router.decided", &d)
	assert.NotEmpty(t, d.RequestID)
	assert.Equal(t, "info_handler", d.Handler)
}

func TestHandleMessage_RoutingErrorPublished(t *testing.T) {
	w, rdb, metrics := setup(t, llmtest.Fail(errors.New("upstream 503")))

	w.handleMessage(workMessage(t, "1-0", WorkRequest{RequestID: "req-2", Request: "hello"}))

	var e ErrorEvent
	readData(t, rdb, w.ErrorStream(), &e)
	assert.Equal(t, "req-2", e.RequestID)
	assert.Equal(t, "hello", e.Request)
	assert.Contains(t, e.Error, "upstream 503")

	n, err := rdb.XLen(context.Background(), "router.decided").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failures.WithLabelValues(stageRoute)))
}

func TestHandleMessage_ParseErrorPublished(t *testing.T) {
	w, rdb, metrics := setup(t, llmtest.Reply("info"))

	w.handleMessage(redis.XMessage{ID: "7-0", Values: map[string]interface{}{"data": "garbage"}})

	var e ErrorEvent
	readData(t, rdb, w.ErrorStream(), &e)
	assert.Equal(t, "7-0", e.MessageID)
	assert.Equal(t, "garbage", e.Request)
	assert.Empty(t, e.RequestID)
	assert.Contains(t, e.Error, "unmarshal")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failures.WithLabelValues(stageParse)))
}

func TestHandleMessage_MissingDataPublished(t *testing.T) {
	w, rdb, _ := setup(t, llmtest.Reply("info"))

	w.handleMessage(redis.XMessage{ID: "8-0", Values: map[string]interface{}{"other": "x"}})

	var e ErrorEvent
	readData(t, rdb, w.ErrorStream(), &e)
	assert.Equal(t, "8-0", e.MessageID)
	assert.Empty(t, e.Request)
	assert.Contains(t, e.Error, "data")
}

func TestParseWorkRequest(t *testing.T) {
	_, err := parseWorkRequest(map[string]interface{}{})
	assert.Error(t, err)

	_, err = parseWorkRequest(map[string]interface{}{"data": "{not json"})
	assert.Error(t, err)

	req, err := parseWorkRequest(map[string]interface{}{"data": `{"request_id":"a","request":"b"}`})
	require.NoError(t, err)
	assert.Equal(t, "a", req.RequestID)
	assert.Equal(t, "b", req.Request)
}

func TestEnsureConsumerGroup_Idempotent(t *testing.T) {
	w, _, _ := setup(t, llmtest.Reply("info"))
	assert.NoError(t, w.ensureConsumerGroup())
}

func TestWorker_EndToEnd(t *testing.T) {
	w, rdb, metrics := setup(t, llmtest.Reply("info"))
	ctx := context.Background()

	require.NoError(t, w.Start())
	assert.Eventually(t, w.Running, time.Second, 10*time.Millisecond)

	for _, req := range []WorkRequest{
		{RequestID: "a", Request: "What is the capital of France?"},
		{RequestID: "b", Request: "What's the weather like in London?"},
	} {
		data, err := json.Marshal(req)
		require.NoError(t, err)
		require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: "router.work",
			Values: map[string]interface{}{"data": string(data)},
		}).Err())
	}
	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: "router.work",
		Values: map[string]interface{}{"data": "garbage"},
	}).Err())

	assert.Eventually(t, func() bool {
		n, err := rdb.XLen(ctx, "router.decided").Result()
		return err == nil && n == 2
	}, 5*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		n, err := rdb.XLen(ctx, w.ErrorStream()).Result()
		return err == nil && n == 1
	}, 5*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		pending, err := rdb.XPending(ctx, "router.work", "router-workers").Result()
		return err == nil && pending.Count == 0
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, w.Stop(5*time.Second))
	assert.False(t, w.Running())

	var e ErrorEvent
	readData(t, rdb, w.ErrorStream(), &e)
	assert.Equal(t, "garbage", e.Request)
	assert.NotEmpty(t, e.MessageID)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("info", router.PathModel)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failures.WithLabelValues(stageParse)))
}

func TestWorker_StopFinishesInFlightRequest(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	slow := llmtest.New(func(ctx context.Context, _ *llm.ChatRequest) (*llm.ChatResponse, error) {
		once.Do(func() { close(started) })
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(300 * time.Millisecond):
			return llmtest.Text("booker"), nil
		}
	})
	w, rdb, _ := setup(t, slow)
	ctx := context.Background()

	require.NoError(t, w.Start())

	data, err := json.Marshal(WorkRequest{RequestID: "slow-1", Request: "Book me a flight to London"})
	require.NoError(t, err)
	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: "router.work",
		Values: map[string]interface{}{"data": string(data)},
	}).Err())

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("model was never called")
	}

	require.NoError(t, w.Stop(5*time.Second))

	var d Decision
	readData(t, rdb, "router.decided", &d)
	assert.Equal(t, "slow-1", d.RequestID)
	assert.Equal(t, "booker", d.Decision)

	n, err := rdb.XLen(ctx, w.ErrorStream()).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	pending, err := rdb.XPending(ctx, "router.work", "router-workers").Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}
