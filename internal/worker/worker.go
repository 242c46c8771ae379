package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/dago-agent-patterns/internal/config"
	"github.com/aescanero/dago-agent-patterns/internal/router"
)

// messageGrace is added to the model timeout for the Redis writes that follow routing
const messageGrace = 5 * time.Second

// Failure stages recorded in metrics
const (
	stageParse   = "parse"
	stageRoute   = "route"
	stagePublish = "publish"
)

// Router classifies a request and runs its handler
type Router interface {
	Route(ctx context.Context, request string) (*router.Result, error)
}

// Worker consumes routing work from a Redis stream and publishes decisions
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	router        Router
	metrics       *Metrics
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
	running       atomic.Bool
	streamKey     string
	consumerGroup string
	resultStream  string
}

// NewWorker creates a new worker. A nil metrics value registers collectors on a private registry.
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	routerInstance Router,
	metrics *Metrics,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		router:        routerInstance,
		metrics:       metrics,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// Start creates the consumer group if needed and begins processing in the background
func (w *Worker) Start() error {
	w.logger.Info("starting router worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	go w.processWork()

	w.logger.Info("router worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop ends the read loop and waits up to timeout for the in-flight message to be routed and acknowledged
func (w *Worker) Stop(timeout time.Duration) error {
	w.logger.Info("stopping router worker", zap.String("worker_id", w.id))

	w.cancel()

	select {
	case <-w.done:
	case <-time.After(timeout):
		return fmt.Errorf("worker %s did not stop within %s", w.id, timeout)
	}

	w.logger.Info("router worker stopped", zap.String("worker_id", w.id))
	return nil
}

// Running reports whether the processing loop is active
func (w *Worker) Running() bool {
	return w.running.Load()
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork reads from the stream until the worker is stopped
func (w *Worker) processWork() {
	w.running.Store(true)
	defer func() {
		w.running.Store(false)
		close(w.done)
	}()
	w.logger.Info("starting work processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
		}

		streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
			Group:    w.consumerGroup,
			Consumer: w.id,
			Streams:  []string{w.streamKey, ">"},
			Count:    1,
			Block:    w.config.BlockTime,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) || w.ctx.Err() != nil {
				continue
			}
			w.logger.Error("failed to read from stream",
				zap.Error(err),
			)
			select {
			case <-w.ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				w.handleMessage(message)
			}
		}
	}
}

// WorkRequest is one routing request read from the work stream
type WorkRequest struct {
	RequestID string `json:"request_id"`
	Request   string `json:"request"`
}

// Decision is published to the result stream for every routed request
type Decision struct {
	RequestID string    `json:"request_id"`
	Decision  string    `json:"decision"`
	Handler   string    `json:"handler"`
	Output    string    `json:"output"`
	PathTaken string    `json:"path_taken"`
	Reasoning string    `json:"reasoning"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorEvent is published to the error stream when a message cannot be routed.
// For unparseable messages Request holds the raw data field.
type ErrorEvent struct {
	MessageID string    `json:"message_id"`
	RequestID string    `json:"request_id,omitempty"`
	Request   string    `json:"request"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorStream returns the name of the stream receiving routing failures
func (w *Worker) ErrorStream() string {
	return w.resultStream + ".errors"
}

// messageContext bounds the handling of one message. Stop does not cancel it.
func (w *Worker) messageContext() (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(w.ctx)
	if w.config.LLMTimeout > 0 {
		return context.WithTimeout(ctx, w.config.LLMTimeout+messageGrace)
	}
	return context.WithCancel(ctx)
}

// handleMessage routes a single message and always acknowledges it
func (w *Worker) handleMessage(message redis.XMessage) {
	ctx, cancel := w.messageContext()
	defer cancel()

	messageID := message.ID
	w.logger.Info("processing routing request",
		zap.String("message_id", messageID),
	)
	defer w.acknowledgeMessage(ctx, messageID)

	workRequest, err := parseWorkRequest(message.Values)
	if err != nil {
		w.metrics.Failures.WithLabelValues(stageParse).Inc()
		w.logger.Error("failed to parse work request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		raw, _ := message.Values["data"].(string)
		w.publishError(ctx, ErrorEvent{
			MessageID: messageID,
			Request:   raw,
			Error:     err.Error(),
		})
		return
	}

	if err := w.processRoutingRequest(ctx, workRequest); err != nil {
		w.logger.Error("failed to process routing request",
			zap.String("message_id", messageID),
			zap.String("request_id", workRequest.RequestID),
			zap.Error(err),
		)
		w.publishError(ctx, ErrorEvent{
			MessageID: messageID,
			RequestID: workRequest.RequestID,
			Request:   workRequest.Request,
			Error:     err.Error(),
		})
	}
}

// parseWorkRequest decodes the JSON "data" field of a stream message
func parseWorkRequest(values map[string]interface{}) (*WorkRequest, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request WorkRequest
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal work request: %w", err)
	}

	if request.RequestID == "" {
		request.RequestID = uuid.NewString()
	}

	return &request, nil
}

// processRoutingRequest routes the request and publishes the decision
func (w *Worker) processRoutingRequest(ctx context.Context, request *WorkRequest) error {
	start := time.Now()

	result, err := w.router.Route(ctx, request.Request)
	if err != nil {
		w.metrics.Failures.WithLabelValues(stageRoute).Inc()
		return fmt.Errorf("routing failed: %w", err)
	}

	w.metrics.Latency.WithLabelValues(result.PathTaken).Observe(time.Since(start).Seconds())
	w.metrics.Decisions.WithLabelValues(string(result.Decision), result.PathTaken).Inc()

	if err := w.publishDecision(ctx, request, result); err != nil {
		w.metrics.Failures.WithLabelValues(stagePublish).Inc()
		return fmt.Errorf("failed to publish decision: %w", err)
	}

	return nil
}

// publishDecision publishes the routing decision
func (w *Worker) publishDecision(ctx context.Context, request *WorkRequest, result *router.Result) error {
	data, err := json.Marshal(Decision{
		RequestID: request.RequestID,
		Decision:  string(result.Decision),
		Handler:   result.Handler,
		Output:    result.Output,
		PathTaken: result.PathTaken,
		Reasoning: result.Reasoning,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	_, err = w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: w.resultStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	w.logger.Info("published routing decision",
		zap.String("request_id", request.RequestID),
		zap.String("decision", string(result.Decision)),
		zap.String("handler", result.Handler),
	)

	return nil
}

// publishError publishes an error event
func (w *Worker) publishError(ctx context.Context, event ErrorEvent) {
	event.Timestamp = time.Now().UTC()

	data, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	_, publishErr := w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: w.ErrorStream(),
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(ctx context.Context, messageID string) {
	err := w.redisClient.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
