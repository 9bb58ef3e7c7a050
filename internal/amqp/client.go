// Package amqp carries dashboard refresh requests and computed reports over
// RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "finboard/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
)

var errConsumerClosed = errors.New("message channel closed")

type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *applog.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	// circuit breaker
	state        int32
	failureCount int64
	lastFailure  time.Time
}

// NewClient connects, declares a durable direct exchange and binds the
// request queue to it under its own name.
func NewClient(url, exchangeName, queueName string, logger *applog.Logger) (*Client, error) {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(applog.ComponentAMQP),
	}

	client.mu.Lock()
	err := client.connectLocked()
	client.mu.Unlock()
	if err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *Client) log() *applog.Logger {
	if c.logger == nil {
		return applog.FromContext(context.Background()).WithComponent(applog.ComponentAMQP)
	}
	return c.logger
}

// connectLocked dials and sets up topology. c.mu must be held.
func (c *Client) connectLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	// Declare exchange
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Declare queue
	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Bind queue to exchange
	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// ensureChannel returns an open channel, reconnecting when needed.
func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()
	if err := c.connectLocked(); err != nil {
		c.closeLocked()
		return nil, err
	}
	c.log().Info("Reconnected to AMQP broker", "exchange", c.exchangeName)
	return c.channel, nil
}

// Publish sends body to the exchange under routingKey.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, refusing to publish")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	channel, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent, // make message persistent
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.mu.Lock()
			c.closeLocked()
			c.mu.Unlock()
		}
		return fmt.Errorf("publish message: %w", err)
	}

	c.recordSuccess()
	return nil
}

// PublishRefreshRequest queues a dashboard refresh.
func (c *Client) PublishRefreshRequest(ctx context.Context, req *RefreshRequest) error {
	body, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.Publish(ctx, c.queueName, body); err != nil {
		return err
	}

	c.log().InfoContext(ctx, "Published refresh request",
		applog.FieldRequestID, req.RequestID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishReport sends a report message under routingKey.
func (c *Client) PublishReport(ctx context.Context, routingKey string, msg *ReportMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := c.Publish(ctx, routingKey, body); err != nil {
		return err
	}

	c.log().InfoContext(ctx, "Published report",
		applog.FieldRequestID, msg.RequestID,
		"status", msg.Status,
		"routing_key", routingKey)
	return nil
}

// ConsumeRefreshRequests consumes refresh requests until ctx is done,
// reconnecting with exponential backoff when the broker connection drops.
// Messages that fail twice are dropped.
func (c *Client) ConsumeRefreshRequests(ctx context.Context, handler func(context.Context, *RefreshRequest) error) error {
	for attempt := 0; ; attempt++ {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		c.log().WarnContext(ctx, "Consumer lost connection, retrying",
			applog.FieldError, err,
			"attempt", attempt+1,
			"backoff", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) consume(ctx context.Context, handler func(context.Context, *RefreshRequest) error) error {
	channel, err := c.ensureChannel()
	if err != nil {
		return err
	}
	if err := channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.log().InfoContext(ctx, "Started consuming refresh requests", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.log().InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errConsumerClosed
			}
			c.handleDelivery(ctx, delivery, handler)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler func(context.Context, *RefreshRequest) error) {
	msg, err := RefreshRequestFromJSON(delivery.Body)
	if err != nil {
		c.log().ErrorContext(ctx, "Failed to unmarshal message", applog.FieldError, err)
		delivery.Nack(false, false) // reject and don't requeue
		return
	}

	if err := handler(ctx, msg); err != nil {
		requeue := !delivery.Redelivered
		c.log().ErrorContext(ctx, "Failed to handle message",
			applog.FieldError, err,
			applog.FieldRequestID, msg.RequestID,
			"requeue", requeue)
		delivery.Nack(false, requeue)
		return
	}

	delivery.Ack(false) // acknowledge successful processing
}

// isCircuitOpen reports whether publishing is suspended. An open circuit
// becomes half-open once openTimeout has passed since the last failure.
func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		last := c.lastFailure
		c.mu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	n := atomic.AddInt64(&c.failureCount, 1)
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, errConsumerClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"connection reset",
		"eof",
		"broken pipe",
		"use of closed network connection",
		"channel/connection is not open",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// closeLocked drops the channel and connection. c.mu must be held.
func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
