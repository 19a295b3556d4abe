package fulfillment

import (
	"context"
	"errors"
	"strings"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Handler codes
const (
	CodeAutomation = "automation-fulfillment"
	CodeManual     = "manual-fulfillment"
)

// DefaultAutomationMethod is the method recorded when the automation system sends none
const DefaultAutomationMethod = "Automation"

// ErrMethodRequired is returned by handlers that need an explicit method
var ErrMethodRequired = errors.New("fulfillment: method is required")

// Args are the arguments supplied when a fulfillment is created
type Args struct {
	Method       string `json:"method,omitempty"`
	TrackingCode string `json:"trackingCode,omitempty"`
}

// Result is the fulfillment record returned to the platform.
// TrackingCode is omitted from JSON when absent.
type Result struct {
	Method       string `json:"method"`
	TrackingCode string `json:"trackingCode,omitempty"`
}

// LineQuantity identifies an order line and the quantity being fulfilled
type LineQuantity struct {
	OrderLineID string               `json:"orderLineId" binding:"required"`
	Quantity    valueobject.Quantity `json:"quantity" binding:"required,gt=0"`
}

// Handler creates fulfillment records for a set of orders and lines
type Handler interface {
	Code() string
	CreateFulfillment(ctx context.Context, orders []*order.Order, lines []LineQuantity, args Args) (Result, error)
}

// AutomationHandler records fulfillments reported by the print automation system.
// It never calls out and never fails.
type AutomationHandler struct{}

// NewAutomationHandler creates a new AutomationHandler
func NewAutomationHandler() *AutomationHandler {
	return &AutomationHandler{}
}

// Code returns the handler code
func (h *AutomationHandler) Code() string {
	return CodeAutomation
}

// CreateFulfillment builds the fulfillment record. The method defaults to
// "Automation"; the tracking code is copied only when non-empty.
func (h *AutomationHandler) CreateFulfillment(_ context.Context, _ []*order.Order, _ []LineQuantity, args Args) (Result, error) {
	method := args.Method
	if method == "" {
		method = DefaultAutomationMethod
	}
	result := Result{Method: method}
	if args.TrackingCode != "" {
		result.TrackingCode = args.TrackingCode
	}
	return result, nil
}

// ManualHandler records fulfillments entered by staff. Unlike the automation
// handler it requires an explicit method.
type ManualHandler struct{}

// NewManualHandler creates a new ManualHandler
func NewManualHandler() *ManualHandler {
	return &ManualHandler{}
}

// Code returns the handler code
func (h *ManualHandler) Code() string {
	return CodeManual
}

// CreateFulfillment builds the fulfillment record
func (h *ManualHandler) CreateFulfillment(_ context.Context, _ []*order.Order, _ []LineQuantity, args Args) (Result, error) {
	method := strings.TrimSpace(args.Method)
	if method == "" {
		return Result{}, ErrMethodRequired
	}
	return Result{Method: method, TrackingCode: strings.TrimSpace(args.TrackingCode)}, nil
}
