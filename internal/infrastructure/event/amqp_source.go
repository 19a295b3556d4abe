package event

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// ErrConsumerClosed is returned when the broker closes the delivery channel
var ErrConsumerClosed = errors.New("amqp: delivery channel closed")

// AMQPSourceConfig configures the transition consumer
type AMQPSourceConfig struct {
	URL         string
	Exchange    string
	Queue       string
	RoutingKeys []string
	Prefetch    int
}

// AMQPTransitionSource consumes order state transition messages from RabbitMQ
// and publishes them on the event bus
type AMQPTransitionSource struct {
	config    AMQPSourceConfig
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewAMQPTransitionSource creates a new transition source
func NewAMQPTransitionSource(config AMQPSourceConfig, publisher shared.EventPublisher, logger *zap.Logger) *AMQPTransitionSource {
	if config.Prefetch <= 0 {
		config.Prefetch = 10
	}
	if len(config.RoutingKeys) == 0 {
		config.RoutingKeys = []string{"order.transition.#"}
	}
	return &AMQPTransitionSource{
		config:    config,
		publisher: publisher,
		logger:    logger.With(zap.String("queue", config.Queue)),
	}
}

// Run dials the broker, declares the topology and consumes until ctx is done.
// It returns ErrConsumerClosed if the broker closes the channel first.
func (s *AMQPTransitionSource) Run(ctx context.Context) error {
	conn, err := amqp.Dial(s.config.URL)
	if err != nil {
		return fmt.Errorf("amqp: dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp: open channel: %w", err)
	}
	defer ch.Close()

	deliveries, err := s.declare(ch)
	if err != nil {
		return err
	}

	s.logger.Info("AMQP transition consumer started",
		zap.String("exchange", s.config.Exchange),
		zap.Strings("routing_keys", s.config.RoutingKeys),
	)
	return s.Consume(ctx, deliveries)
}

func (s *AMQPTransitionSource) declare(ch *amqp.Channel) (<-chan amqp.Delivery, error) {
	if err := ch.ExchangeDeclare(s.config.Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("amqp: declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(s.config.Queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("amqp: declare queue: %w", err)
	}
	for _, rk := range s.config.RoutingKeys {
		if err := ch.QueueBind(q.Name, rk, s.config.Exchange, false, nil); err != nil {
			return nil, fmt.Errorf("amqp: bind %s: %w", rk, err)
		}
	}
	if err := ch.Qos(s.config.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("amqp: set qos: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("amqp: consume: %w", err)
	}
	return deliveries, nil
}

// Consume handles deliveries until ctx is done or the channel closes
func (s *AMQPTransitionSource) Consume(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("AMQP transition consumer stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				s.logger.Warn("AMQP delivery channel closed")
				return ErrConsumerClosed
			}
			s.HandleDelivery(ctx, d)
		}
	}
}

// HandleDelivery decodes one message and publishes it. Malformed messages are
// rejected without requeue; publish failures are requeued.
func (s *AMQPTransitionSource) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	msg, err := order.DecodeTransitionMessage(d.Body)
	var evt *order.StateTransitionEvent
	if err == nil {
		evt, err = msg.ToEvent()
	}
	if err != nil {
		s.logger.Error("rejecting malformed transition message",
			zap.String("routing_key", d.RoutingKey),
			zap.String("message_id", d.MessageId),
			zap.Error(err),
		)
		if rejectErr := d.Reject(false); rejectErr != nil {
			s.logger.Error("failed to reject message", zap.Error(rejectErr))
		}
		return
	}

	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error("failed to publish transition, requeueing",
			zap.String("order_code", evt.OrderCode()),
			zap.Error(err),
		)
		if nackErr := d.Nack(false, true); nackErr != nil {
			s.logger.Error("failed to nack message", zap.Error(nackErr))
		}
		return
	}

	s.logger.Debug("transition received",
		zap.String("order_code", evt.OrderCode()),
		zap.String("to_state", evt.ToState.String()),
	)
	if err := d.Ack(false); err != nil {
		s.logger.Error("failed to ack message", zap.Error(err))
	}
}
