// Package integration wires order state transitions to the fulfillment
// automation system: transitions arrive over HTTP or AMQP, are published on the
// event bus and pushed to the automation webhook.
package integration

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// TransitionService accepts order state transitions and publishes them
type TransitionService struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewTransitionService creates a new TransitionService
func NewTransitionService(publisher shared.EventPublisher, log *zap.Logger) *TransitionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TransitionService{publisher: publisher, logger: log.Named("transitions")}
}

// Accept validates a transition message and publishes it. Delivery to
// subscribers happens asynchronously; Accept never waits for the webhook.
func (s *TransitionService) Accept(ctx context.Context, msg *order.TransitionMessage) (*order.StateTransitionEvent, error) {
	if msg == nil {
		return nil, shared.ErrInvalidInput.WithMessage("transition message is required")
	}
	evt, err := msg.ToEvent()
	if err != nil {
		return nil, shared.ErrInvalidInput.Wrap(err).WithMessage(err.Error())
	}
	if err := s.Publish(ctx, evt); err != nil {
		return nil, err
	}
	return evt, nil
}

// Publish publishes an already built transition event
func (s *TransitionService) Publish(ctx context.Context, evt *order.StateTransitionEvent) error {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		return fmt.Errorf("failed to publish order transition: %w", err)
	}
	logger.WithTraceContext(ctx, s.logger).Info("Order transition accepted",
		zap.String("order_code", evt.OrderCode()),
		zap.String("from_state", evt.FromState.String()),
		zap.String("to_state", evt.ToState.String()),
		zap.String("event_id", evt.EventID().String()),
	)
	return nil
}
