package handler

import (
	"net/http"
	"testing"

	fulfillmentapp "github.com/storefront/backend/internal/application/fulfillment"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testAutomationSecret = "s3cret"

func newFulfillmentTestHandler(t *testing.T) *FulfillmentHandler {
	return NewFulfillmentHandler(fulfillmentapp.NewService(zaptest.NewLogger(t)), testAutomationSecret)
}

func authHeaders() map[string]string {
	return map[string]string{middleware.AutomationSecretHeader: testAutomationSecret}
}

func TestFulfillmentHandler_Create(t *testing.T) {
	body := map[string]any{
		"orders": []map[string]any{{"code": "ABC123"}},
		"lines":  []map[string]any{{"orderLineId": "line-1", "quantity": 2}},
	}

	t.Run("requires the automation secret", func(t *testing.T) {
		h := newFulfillmentTestHandler(t)

		w := serveGroup(t, h.Routes(), http.MethodPost, "/api/v1/fulfillments", body,
			map[string]string{middleware.AutomationSecretHeader: "wrong"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, w).Error.Code)
	})

	t.Run("automation fulfillment with tracking code", func(t *testing.T) {
		h := newFulfillmentTestHandler(t)

		withArgs := map[string]any{
			"orders": body["orders"],
			"lines":  body["lines"],
			"args":   map[string]any{"trackingCode": "TRACK1"},
		}
		w := serveGroup(t, h.Routes(), http.MethodPost, "/api/v1/fulfillments", withArgs, authHeaders())

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "automation-fulfillment", data["handler"])
		assert.Equal(t, "Automation", data["method"])
		assert.Equal(t, "TRACK1", data["trackingCode"])
		assert.Equal(t, []any{"ABC123"}, data["orderCodes"])
		assert.NotEmpty(t, data["id"])
	})

	t.Run("tracking code omitted when absent", func(t *testing.T) {
		h := newFulfillmentTestHandler(t)

		w := serveGroup(t, h.Routes(), http.MethodPost, "/api/v1/fulfillments?secret="+testAutomationSecret, body, nil)

		require.Equal(t, http.StatusCreated, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "Automation", data["method"])
		assert.NotContains(t, data, "trackingCode")
	})

	t.Run("manual handler requires a method", func(t *testing.T) {
		h := newFulfillmentTestHandler(t)

		manual := map[string]any{"handler": "manual-fulfillment", "orders": body["orders"]}
		w := serveGroup(t, h.Routes(), http.MethodPost, "/api/v1/fulfillments", manual, authHeaders())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
	})

	t.Run("unknown handler is 404", func(t *testing.T) {
		h := newFulfillmentTestHandler(t)

		unknown := map[string]any{"handler": "courier", "orders": body["orders"]}
		w := serveGroup(t, h.Routes(), http.MethodPost, "/api/v1/fulfillments", unknown, authHeaders())

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeFulfillmentHandlerNotFound, decodeResponse(t, w).Error.Code)
	})

	t.Run("validation errors", func(t *testing.T) {
		h := newFulfillmentTestHandler(t)

		tests := []struct {
			name  string
			body  map[string]any
			field string
		}{
			{"no orders", map[string]any{"orders": []any{}}, "orders"},
			{"zero quantity", map[string]any{
				"orders": body["orders"],
				"lines":  []map[string]any{{"orderLineId": "line-1", "quantity": 0}},
			}, "quantity"},
			{"missing line id", map[string]any{
				"orders": body["orders"],
				"lines":  []map[string]any{{"quantity": 1}},
			}, "orderLineId"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := serveGroup(t, h.Routes(), http.MethodPost, "/api/v1/fulfillments", tt.body, authHeaders())

				assert.Equal(t, http.StatusBadRequest, w.Code)
				resp := decodeResponse(t, w)
				require.NotEmpty(t, resp.Error.Details)
				assert.Equal(t, tt.field, resp.Error.Details[0].Field)
			})
		}
	})
}

func TestFulfillmentHandler_Handlers(t *testing.T) {
	h := newFulfillmentTestHandler(t)

	w := serveGroup(t, h.Routes(), http.MethodGet, "/api/v1/fulfillments/handlers", nil, authHeaders())

	require.Equal(t, http.StatusOK, w.Code)
	handlers := decodeResponse(t, w).Data.(map[string]any)["handlers"]
	assert.Equal(t, []any{"automation-fulfillment", "manual-fulfillment"}, handlers)
}
