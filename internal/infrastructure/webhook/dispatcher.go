// Package webhook pushes order state transitions to the fulfillment automation system.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// maxErrorBody bounds how much of a failed response body is kept
const maxErrorBody = 1024

// Body is the JSON payload sent to the automation system
type Body struct {
	OrderCode string `json:"orderCode"`
	Trigger   string `json:"trigger"`
}

// Notification is a single outbound webhook request
type Notification struct {
	URL  string
	Body Body
}

// DeliveryResult is the outcome of dispatching one transition event.
// Attempted is false when the target state is not a trigger.
type DeliveryResult struct {
	Attempted  bool
	Delivered  bool
	OrderCode  string
	Trigger    order.State
	StatusCode int
	Err        error
}

// Dispatcher posts a notification for every transition into a trigger state.
// Delivery is best effort: at most one attempt per event, failures are logged.
type Dispatcher struct {
	endpoint   string
	triggers   []order.State
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher for cfg. Unset fields take the defaults.
func NewDispatcher(cfg Config, logger *zap.Logger) (*Dispatcher, error) {
	cfg = cfg.withDefaults()
	endpoint, err := cfg.endpoint()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, cfg.BaseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		endpoint:   endpoint,
		triggers:   slices.Clone(cfg.TriggerStates),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With(zap.String("component", "order_webhook")),
	}, nil
}

// IsTrigger reports whether a transition into state sends a notification
func (d *Dispatcher) IsTrigger(state order.State) bool {
	return slices.Contains(d.triggers, state)
}

// Notification builds the request sent for evt
func (d *Dispatcher) Notification(evt *order.StateTransitionEvent) Notification {
	return Notification{
		URL: d.endpoint,
		Body: Body{
			OrderCode: evt.OrderCode(),
			Trigger:   evt.ToState.String(),
		},
	}
}

// Dispatch sends the notification for evt when its target state is a trigger.
// Errors are reported in the result, never returned or panicked.
func (d *Dispatcher) Dispatch(ctx context.Context, evt *order.StateTransitionEvent) DeliveryResult {
	if evt == nil {
		return DeliveryResult{}
	}
	result := DeliveryResult{OrderCode: evt.OrderCode(), Trigger: evt.ToState}
	if !d.IsTrigger(evt.ToState) {
		return result
	}
	result.Attempted = true

	ctx, span := telemetry.StartSpan(ctx, "webhook.dispatch",
		telemetry.WithAttribute(telemetry.SpanAttrOrderCode, result.OrderCode),
		telemetry.WithAttribute(telemetry.SpanAttrOrderState, evt.ToState.String()),
	)
	defer span.End()

	result.StatusCode, result.Err = d.post(ctx, d.Notification(evt))
	result.Delivered = result.Err == nil
	if result.StatusCode != 0 {
		telemetry.SetAttributes(span, telemetry.SpanAttrHTTPStatus, result.StatusCode)
	}
	if result.Err != nil {
		telemetry.RecordError(span, result.Err)
	} else {
		telemetry.SetOK(span)
	}
	return result
}

func (d *Dispatcher) post(ctx context.Context, n Notification) (int, error) {
	payload, err := json.Marshal(n.Body)
	if err != nil {
		return 0, fmt.Errorf("marshal webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, fmt.Errorf("webhook responded %d: %s", resp.StatusCode, body)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Handle implements shared.EventHandler. It always returns nil so a failed
// delivery never affects the publisher or other subscribers.
func (d *Dispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	evt, ok := event.(*order.StateTransitionEvent)
	if !ok {
		return nil
	}

	result := d.Dispatch(ctx, evt)
	switch {
	case !result.Attempted:
		d.logger.Debug("Transition is not a webhook trigger",
			zap.String("order_code", result.OrderCode),
			zap.String("to_state", evt.ToState.String()),
		)
	case result.Delivered:
		d.logger.Info("Pushed order to automation fulfill-orders",
			zap.String("order_code", result.OrderCode),
			zap.String("trigger", result.Trigger.String()),
		)
	default:
		d.logger.Error("Failed to push order webhook",
			zap.String("order_code", result.OrderCode),
			zap.String("trigger", result.Trigger.String()),
			zap.Int("status_code", result.StatusCode),
			zap.Error(result.Err),
		)
	}
	return nil
}

// EventTypes returns the event types this handler subscribes to
func (d *Dispatcher) EventTypes() []string {
	return []string{order.EventTypeOrderStateTransition}
}

var _ shared.EventHandler = (*Dispatcher)(nil)
