package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/integration"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// OrderTransitionHandler accepts order state transitions from the commerce platform
type OrderTransitionHandler struct {
	BaseHandler
	transitions *integration.TransitionService
}

// NewOrderTransitionHandler creates a new OrderTransitionHandler
func NewOrderTransitionHandler(transitions *integration.TransitionService) *OrderTransitionHandler {
	return &OrderTransitionHandler{transitions: transitions}
}

// TransitionAcceptedResponse acknowledges a published transition
type TransitionAcceptedResponse struct {
	EventID   string      `json:"eventId"`
	OrderCode string      `json:"orderCode"`
	FromState order.State `json:"fromState,omitempty"`
	ToState   order.State `json:"toState"`
}

// Routes returns the order route group
func (h *OrderTransitionHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("orders", "/orders")
	g.Handle(http.MethodPost, "/transitions", "publish an order state transition", h.Accept)
	return g
}

// Accept publishes the transition and answers 202 without waiting for the
// automation webhook.
func (h *OrderTransitionHandler) Accept(c *gin.Context) {
	var msg order.TransitionMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		h.BindError(c, err)
		return
	}

	evt, err := h.transitions.Accept(c.Request.Context(), &msg)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, TransitionAcceptedResponse{
		EventID:   evt.EventID().String(),
		OrderCode: evt.OrderCode(),
		FromState: evt.FromState,
		ToState:   evt.ToState,
	})
}
