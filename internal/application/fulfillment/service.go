package fulfillment

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrHandlerNotFound is returned for an unknown fulfillment handler code
var ErrHandlerNotFound = shared.NewDomainError("FULFILLMENT_HANDLER_NOT_FOUND", "fulfillment handler not found")

// CreateRequest asks a handler to fulfill lines of one or more orders
type CreateRequest struct {
	Handler string
	Orders  []*order.Order
	Lines   []fulfillment.LineQuantity
	Args    fulfillment.Args
}

// Record is a created fulfillment
type Record struct {
	ID         uuid.UUID                  `json:"id"`
	Handler    string                     `json:"handler"`
	OrderCodes []string                   `json:"orderCodes"`
	Lines      []fulfillment.LineQuantity `json:"lines"`
	fulfillment.Result
	CreatedAt time.Time `json:"createdAt"`
}

// Service resolves fulfillment handlers by code and creates fulfillments
type Service struct {
	handlers map[string]fulfillment.Handler
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a Service over the given handlers. With no handlers the
// automation and manual handlers are registered.
func NewService(logger *zap.Logger, handlers ...fulfillment.Handler) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(handlers) == 0 {
		handlers = []fulfillment.Handler{fulfillment.NewAutomationHandler(), fulfillment.NewManualHandler()}
	}
	registry := make(map[string]fulfillment.Handler, len(handlers))
	for _, h := range handlers {
		registry[h.Code()] = h
	}
	return &Service{handlers: registry, logger: logger.Named("fulfillment"), now: time.Now}
}

// Handlers returns the registered handler codes, sorted
func (s *Service) Handlers() []string {
	codes := make([]string, 0, len(s.handlers))
	for code := range s.handlers {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Create runs the requested handler. An empty handler code selects the automation handler.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Record, error) {
	code := req.Handler
	if code == "" {
		code = fulfillment.CodeAutomation
	}
	h, ok := s.handlers[code]
	if !ok {
		return nil, ErrHandlerNotFound.WithMessage("fulfillment handler not found: " + code)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "fulfillment", "create",
		telemetry.WithAttribute("fulfillment.handler", code),
	)
	defer span.End()

	result, err := h.CreateFulfillment(ctx, req.Orders, req.Lines, req.Args)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.ErrInvalidInput.Wrap(err).WithMessage(err.Error())
	}

	codes := make([]string, 0, len(req.Orders))
	for _, o := range req.Orders {
		if o != nil {
			codes = append(codes, o.Code)
		}
	}

	record := &Record{
		ID:         uuid.New(),
		Handler:    code,
		OrderCodes: codes,
		Lines:      req.Lines,
		Result:     result,
		CreatedAt:  s.now(),
	}

	s.logger.Info("Fulfillment created",
		zap.String("fulfillment_id", record.ID.String()),
		zap.String("handler", code),
		zap.Strings("order_codes", codes),
		zap.String("method", result.Method),
		zap.Bool("has_tracking_code", result.TrackingCode != ""),
	)
	telemetry.SetOK(span)
	return record, nil
}
