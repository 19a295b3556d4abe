package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/webhook"
	"go.uber.org/zap"
)

// idempotencyScope prefixes webhook idempotency keys so other consumers of the
// same store do not collide
const idempotencyScope = "webhook:fulfill-orders"

// Pipeline is the in-process path from an accepted transition to the webhook
type Pipeline struct {
	Bus         *event.InMemoryEventBus
	Dispatcher  *webhook.Dispatcher
	Handler     *event.IdempotentHandler
	Transitions *TransitionService
	store       shared.IdempotencyStore
}

// WebhookConfig converts the automation settings to a dispatcher config
func WebhookConfig(cfg config.AutomationConfig) (webhook.Config, error) {
	triggers := make([]order.State, 0, len(cfg.TriggerStates))
	for _, raw := range cfg.TriggerStates {
		s, err := order.ParseState(raw)
		if err != nil {
			return webhook.Config{}, fmt.Errorf("automation trigger state: %w", err)
		}
		triggers = append(triggers, s)
	}
	return webhook.Config{
		BaseURL:       cfg.BaseURL,
		Secret:        cfg.SecretKey,
		TriggerStates: triggers,
		Timeout:       cfg.Timeout,
	}, nil
}

// NewPipeline builds the bus, the webhook dispatcher and its idempotency guard.
// The pipeline owns store and closes it on Stop.
func NewPipeline(cfg config.AutomationConfig, store shared.IdempotencyStore, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	whCfg, err := WebhookConfig(cfg)
	if err != nil {
		return nil, err
	}
	dispatcher, err := webhook.NewDispatcher(whCfg, logger)
	if err != nil {
		return nil, err
	}

	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	handler := event.NewIdempotentHandler(dispatcher, store, logger.Named("idempotency"),
		event.WithIdempotencyConfig(shared.IdempotencyConfig{TTL: ttl, Enabled: true}),
		event.WithIdempotencyScope(idempotencyScope),
	)

	bus := event.NewInMemoryEventBus(logger.Named("bus"), event.WithAsyncDispatch())
	bus.Subscribe(handler)

	return &Pipeline{
		Bus:         bus,
		Dispatcher:  dispatcher,
		Handler:     handler,
		Transitions: NewTransitionService(bus, logger),
		store:       store,
	}, nil
}

// Start starts the bus
func (p *Pipeline) Start(ctx context.Context) error {
	return p.Bus.Start(ctx)
}

// Stop waits up to timeout for in-flight deliveries, then closes the store
func (p *Pipeline) Stop(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stopErr := p.Bus.Stop(ctx)
	if err := p.store.Close(); err != nil && stopErr == nil {
		return fmt.Errorf("failed to close idempotency store: %w", err)
	}
	return stopErr
}
