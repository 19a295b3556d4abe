package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	promotionapp "github.com/storefront/backend/internal/application/promotion"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// PromotionHandler evaluates the configured promotions against an order
type PromotionHandler struct {
	BaseHandler
	service *promotionapp.Service
}

// NewPromotionHandler creates a new PromotionHandler
func NewPromotionHandler(service *promotionapp.Service) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// EvaluatePromotionsRequest is the body of POST /promotions/evaluate
type EvaluatePromotionsRequest struct {
	// Promotion restricts evaluation to one named promotion
	Promotion string            `json:"promotion"`
	Channel   promotion.Channel `json:"channel"`
	Order     *order.Order      `json:"order" binding:"required"`
}

// PromotionSummary describes a configured promotion
type PromotionSummary struct {
	Name       string `json:"name"`
	Conditions int    `json:"conditions"`
	Actions    int    `json:"actions"`
}

// Routes returns the promotion route group
func (h *PromotionHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("promotions", "/promotions")
	g.Handle(http.MethodGet, "", "list active promotions", h.List)
	g.Handle(http.MethodPost, "/evaluate", "evaluate promotions against an order", h.Evaluate)
	return g
}

// List returns the active promotions
func (h *PromotionHandler) List(c *gin.Context) {
	promotions := h.service.Promotions()
	out := make([]PromotionSummary, 0, len(promotions))
	for _, p := range promotions {
		out = append(out, PromotionSummary{
			Name:       p.Name,
			Conditions: len(p.Conditions),
			Actions:    len(p.Actions),
		})
	}
	h.Success(c, out)
}

// Evaluate runs every active promotion, or only the named one, against the order
func (h *PromotionHandler) Evaluate(c *gin.Context) {
	var req EvaluatePromotionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if req.Promotion == "" {
		h.Success(c, h.service.Evaluate(c.Request.Context(), req.Channel, req.Order))
		return
	}

	result, err := h.service.EvaluateNamed(c.Request.Context(), req.Promotion, req.Channel, req.Order)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promotionapp.Evaluation{
		OrderCode: req.Order.Code,
		Results:   []promotion.Result{result},
		Discount:  result.Total,
	})
}
