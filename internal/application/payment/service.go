package payment

import (
	"context"
	"sort"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service routes settlement requests to the enabled payment method handlers
type Service struct {
	handlers map[string]payment.MethodHandler
	logger   *zap.Logger
}

// NewService creates a Service over the given handlers. A later handler with the
// same code replaces an earlier one.
func NewService(handlers []payment.MethodHandler, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := make(map[string]payment.MethodHandler, len(handlers))
	for _, h := range handlers {
		registry[h.Code()] = h
	}
	return &Service{handlers: registry, logger: logger.Named("payment")}
}

// Methods returns the enabled method codes, sorted
func (s *Service) Methods() []string {
	codes := make([]string, 0, len(s.handlers))
	for code := range s.handlers {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Handler resolves the handler for a method code
func (s *Service) Handler(code string) (payment.MethodHandler, error) {
	h, ok := s.handlers[code]
	if !ok {
		return nil, payment.ErrPaymentMethodNotFound.WithMessage("payment method not found: " + code)
	}
	return h, nil
}

// Settle settles req with the named method. The only error is an unknown method;
// processor failures come back as a non-settled Outcome.
func (s *Service) Settle(ctx context.Context, method string, req *payment.Request) (*payment.Outcome, error) {
	h, err := s.Handler(method)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "settle",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentMethod, method),
	)
	defer span.End()

	outcome := h.Settle(ctx, req)

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("state", outcome.State().String()),
		zap.Int64("amount", outcome.Amount().Int64()),
	}
	if req.HasOrder() {
		fields = append(fields, zap.String("order_code", req.Order.Code))
		telemetry.SetAttributes(span, telemetry.SpanAttrOrderCode, req.Order.Code)
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentState, outcome.State().String(),
		telemetry.SpanAttrAmount, outcome.Amount().Int64(),
	)

	log := logger.WithTraceContext(ctx, s.logger)
	if outcome.IsSettled() {
		log.Info("Payment settled", append(fields, zap.String("transaction_id", outcome.TransactionID()))...)
		telemetry.SetOK(span)
	} else {
		log.Warn("Payment not settled", append(fields,
			zap.String("failure_kind", string(outcome.FailureKind())),
			zap.String("reason", outcome.Reason()),
		)...)
	}
	return outcome, nil
}

// ConfirmSettlement asks the named method to confirm a previous outcome
func (s *Service) ConfirmSettlement(ctx context.Context, method string, outcome *payment.Outcome) (payment.SettlementConfirmation, error) {
	h, err := s.Handler(method)
	if err != nil {
		return payment.SettlementConfirmation{}, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "confirm_settlement",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentMethod, method),
	)
	defer span.End()

	confirmation := h.ConfirmSettlement(ctx, outcome)
	telemetry.SetAttributes(span, "payment.confirmed", confirmation.Success)
	return confirmation, nil
}
