package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	fulfillmentapp "github.com/storefront/backend/internal/application/fulfillment"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// FulfillmentHandler receives fulfillments reported by the automation system
type FulfillmentHandler struct {
	BaseHandler
	service *fulfillmentapp.Service
	secret  string
}

// NewFulfillmentHandler creates a new FulfillmentHandler. secret is the shared
// automation secret every request must present.
func NewFulfillmentHandler(service *fulfillmentapp.Service, secret string) *FulfillmentHandler {
	return &FulfillmentHandler{service: service, secret: secret}
}

// CreateFulfillmentRequest is the body of POST /fulfillments
type CreateFulfillmentRequest struct {
	// Handler is the fulfillment handler code, automation-fulfillment when empty
	Handler string                     `json:"handler"`
	Orders  []*order.Order             `json:"orders" binding:"required,min=1"`
	Lines   []fulfillment.LineQuantity `json:"lines" binding:"dive"`
	Args    fulfillment.Args           `json:"args"`
}

// Routes returns the fulfillment route group, guarded by the automation secret
func (h *FulfillmentHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("fulfillments", "/fulfillments")
	g.Use(middleware.AutomationAuth(h.secret))
	g.Handle(http.MethodPost, "", "record a fulfillment from the automation system", h.Create)
	g.Handle(http.MethodGet, "/handlers", "list fulfillment handler codes", h.Handlers)
	return g
}

// Create records a fulfillment and returns it with 201
func (h *FulfillmentHandler) Create(c *gin.Context) {
	var req CreateFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	record, err := h.service.Create(c.Request.Context(), fulfillmentapp.CreateRequest{
		Handler: req.Handler,
		Orders:  req.Orders,
		Lines:   req.Lines,
		Args:    req.Args,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, record)
}

// Handlers lists the registered fulfillment handler codes
func (h *FulfillmentHandler) Handlers(c *gin.Context) {
	h.Success(c, gin.H{"handlers": h.service.Handlers()})
}
