package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Routing keys on the extraction exchange.
const (
	RequestRoutingKey = "extraction.request"
	StatusRoutingKey  = "extraction.status"
)

type MessageHandler func(ctx context.Context, body []byte) error

// HandlerFactory builds the handler one worker runs. Every worker gets its
// own handler instance so per-run state, like the ffmpeg cancel hook, is
// never shared between goroutines.
type HandlerFactory func(workerID int) MessageHandler

type Consumer struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	queue        string
	workerCount  int
	requeueDelay time.Duration
	factory      HandlerFactory
	logger       *zap.Logger
	wg           sync.WaitGroup
}

type ConsumerConfig struct {
	URL            string
	Queue          string
	Exchange       string
	DLQ            string
	StatusQueue    string
	Prefetch       int
	WorkerCount    int
	RequeueDelayMs int
}

func NewConsumer(cfg ConsumerConfig, factory HandlerFactory, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	for _, q := range []string{cfg.Queue, cfg.DLQ, cfg.StatusQueue} {
		_, err = ch.QueueDeclare(q, true, false, false, false, nil)
		if err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	err = ch.QueueBind(cfg.Queue, RequestRoutingKey, cfg.Exchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("bind request queue: %w", err)
	}

	err = ch.QueueBind(cfg.StatusQueue, StatusRoutingKey, cfg.Exchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("bind status queue: %w", err)
	}

	err = ch.Qos(cfg.Prefetch, 0, false)
	if err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		conn:         conn,
		channel:      ch,
		queue:        cfg.Queue,
		workerCount:  cfg.WorkerCount,
		requeueDelay: time.Duration(cfg.RequeueDelayMs) * time.Millisecond,
		factory:      factory,
		logger:       logger,
	}, nil
}

// Connection exposes the underlying AMQP connection so publishers can share
// it instead of dialing twice.
func (c *Consumer) Connection() *amqp.Connection {
	return c.conn
}

func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(
		ctx,
		c.queue,
		"",
		false, // autoAck=false
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("starting worker pool",
		zap.Int("workers", c.workerCount),
		zap.String("queue", c.queue),
	)

	for i := 0; i < c.workerCount; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, deliveries)
	}

	<-ctx.Done()
	c.logger.Info("context cancelled, waiting for workers to finish")
	c.wg.Wait()
	return nil
}

func (c *Consumer) worker(ctx context.Context, id int, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	log := c.logger.With(zap.Int("worker_id", id))
	log.Info("worker started")

	handler := c.factory(id)

	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Info("delivery channel closed")
				return
			}
			c.processDelivery(ctx, d, handler, log)
		}
	}
}

// processDelivery acks handled messages. The handler owns domain-level retry
// and DLQ policy, so an error here means the job could not run to a verdict
// at all (typically shutdown) and the message goes back to the queue.
func (c *Consumer) processDelivery(ctx context.Context, d amqp.Delivery, handler MessageHandler, log *zap.Logger) {
	err := handler(ctx, d.Body)
	if err != nil {
		log.Warn("message handed back for redelivery",
			zap.Error(err),
			zap.Uint64("delivery_tag", d.DeliveryTag),
		)

		select {
		case <-time.After(c.requeueDelay):
		case <-ctx.Done():
		}

		_ = d.Nack(false, true) // requeue=true
		return
	}

	_ = d.Ack(false)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
