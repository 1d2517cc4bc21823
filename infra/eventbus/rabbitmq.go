package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/eventbus"
	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the subset of *amqp.Channel used by the bus.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// RabbitMQEventBus publishes to a topic exchange routed by event type.
// Rejected deliveries are dead-lettered to "<exchange>.dlx".
type RabbitMQEventBus struct {
	conn      *amqp.Connection
	ch        amqpChannel
	exchange  string
	factories eventbus.Factories
	logger    *slog.Logger

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewWithRabbitMQ dials url and declares the exchanges.
func NewWithRabbitMQ(
	url, exchange string,
	factories eventbus.Factories,
	logger *slog.Logger,
) (*RabbitMQEventBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq event bus: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq event bus: channel failed: %w", err)
	}
	bus, err := newRabbitBus(ch, exchange, factories, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	bus.conn = conn
	return bus, nil
}

func newRabbitBus(
	ch amqpChannel,
	exchange string,
	factories eventbus.Factories,
	logger *slog.Logger,
) (*RabbitMQEventBus, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("rabbitmq event bus: exchange declare failed: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange+".dlx", amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("rabbitmq event bus: dlx declare failed: %w", err)
	}
	return &RabbitMQEventBus{
		ch:        ch,
		exchange:  exchange,
		factories: factories,
		logger:    logger.With("bus", "rabbitmq"),
	}, nil
}

// Emit publishes a persistent message routed by the event type.
func (b *RabbitMQEventBus) Emit(ctx context.Context, event domain.Event) error {
	raw, err := encode(event)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ch.PublishWithContext(ctx, b.exchange, event.Type(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         event.Type(),
		Timestamp:    time.Now().UTC(),
		Body:         raw,
	}); err != nil {
		return fmt.Errorf("rabbitmq event bus: publish failed: %w", err)
	}
	return nil
}

// Register declares a durable queue for eventType and consumes it.
func (b *RabbitMQEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	queue := b.queueFor(eventType)
	b.mu.Lock()
	deliveries, err := b.subscribe(queue, eventType)
	b.mu.Unlock()
	if err != nil {
		b.logger.Error("failed to register handler", "error", err, "event_type", eventType, "queue", queue)
		return
	}
	b.logger.Info("registering handler", "event_type", eventType, "queue", queue)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for d := range deliveries {
			b.handle(d, handler)
		}
	}()
}

func (b *RabbitMQEventBus) subscribe(queue, eventType string) (<-chan amqp.Delivery, error) {
	args := amqp.Table{"x-dead-letter-exchange": b.exchange + ".dlx"}
	if _, err := b.ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	if err := b.ch.QueueBind(queue, eventType, b.exchange, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}
	return b.ch.Consume(queue, "", false, false, false, false, nil)
}

func (b *RabbitMQEventBus) handle(d amqp.Delivery, handler eventbus.HandlerFunc) {
	evt, err := decode(d.Body, b.factories)
	if err != nil {
		b.logger.Error("failed to decode event", "error", err, "routing_key", d.RoutingKey)
		_ = d.Nack(false, false)
		return
	}
	if !dispatch(context.Background(), b.logger, evt, []eventbus.HandlerFunc{handler}) {
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (b *RabbitMQEventBus) queueFor(eventType string) string {
	return b.exchange + "." + strings.ToLower(eventType)
}

// Close closes the channel and connection and waits for consumers to drain.
func (b *RabbitMQEventBus) Close() error {
	err := b.ch.Close()
	if b.conn != nil {
		if cerr := b.conn.Close(); err == nil {
			err = cerr
		}
	}
	b.wg.Wait()
	return err
}

var _ eventbus.Bus = (*RabbitMQEventBus)(nil)
