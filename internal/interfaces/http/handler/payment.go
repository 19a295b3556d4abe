package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	paymentapp "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// PaymentHandler exposes the enabled payment methods
type PaymentHandler struct {
	BaseHandler
	service *paymentapp.Service
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *paymentapp.Service) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Routes returns the payment route group
func (h *PaymentHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("payments", "/payments")
	g.Handle(http.MethodPost, "", "settle a payment with an enabled method", h.Settle)
	g.Handle(http.MethodPost, "/confirm", "confirm a previous settlement", h.Confirm)
	g.Handle(http.MethodGet, "/methods", "list enabled payment methods", h.Methods)
	return g
}

// Settle settles a payment. Declines are not errors: the response is 200 with
// the outcome state. An unknown method is 404.
func (h *PaymentHandler) Settle(c *gin.Context) {
	var req SettlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	outcome, err := h.service.Settle(c.Request.Context(), req.Method, req.toDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newPaymentOutcomeResponse(req.Method, outcome))
}

// Confirm confirms a previous settlement outcome
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req ConfirmSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	confirmation, err := h.service.ConfirmSettlement(c.Request.Context(), req.Method, req.Outcome.toDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, confirmation)
}

// Methods lists the enabled payment methods
func (h *PaymentHandler) Methods(c *gin.Context) {
	h.Success(c, PaymentMethodsResponse{Methods: h.service.Methods()})
}
