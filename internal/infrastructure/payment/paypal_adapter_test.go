package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
)

func TestPayPalAdapter_Settle(t *testing.T) {
	adapter, err := NewPayPalAdapter(nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, PayPalCaptureImmediate, adapter.CaptureMode())

	ctx := context.Background()
	o := &order.Order{Code: "ABC123", TotalWithTax: 2500, CurrencyCode: "EUR"}

	t.Run("no order", func(t *testing.T) {
		outcome := adapter.Settle(ctx, &payment.Request{Metadata: map[string]string{"paypalOrderId": "o", "paypalCaptureId": "c"}})
		assert.Equal(t, payment.StateDeclined, outcome.State())
		assert.Equal(t, payment.ReasonNoActiveOrder, outcome.Reason())
	})

	t.Run("missing capture id", func(t *testing.T) {
		outcome := adapter.Settle(ctx, &payment.Request{Order: o, Metadata: map[string]string{"paypalOrderId": "o"}})
		assert.Equal(t, payment.StateDeclined, outcome.State())
		assert.Equal(t, payment.FailureValidation, outcome.FailureKind())
		assert.Equal(t, "missing paypalOrderId/paypalCaptureId", outcome.Reason())
	})

	t.Run("missing metadata", func(t *testing.T) {
		outcome := adapter.Settle(ctx, &payment.Request{Order: o})
		assert.Equal(t, payment.StateDeclined, outcome.State())
	})

	t.Run("settles with capture id", func(t *testing.T) {
		outcome := adapter.Settle(ctx, &payment.Request{Order: o, Metadata: map[string]string{
			"paypalOrderId":   "5O190127TN364715T",
			"paypalCaptureId": "3C679366HH908993F",
			"payerEmail":      "buyer@example.com",
		}})

		require.True(t, outcome.IsSettled())
		assert.Equal(t, "3C679366HH908993F", outcome.TransactionID())
		meta := outcome.Metadata()
		assert.Equal(t, "5O190127TN364715T", meta["paypalOrderId"])
		assert.Equal(t, "3C679366HH908993F", meta["paypalCaptureId"])
		assert.Equal(t, "buyer@example.com", meta["payerEmail"])
		assert.Equal(t, "EUR", meta["currency"])
		assert.Equal(t, "25.00", meta["amount"])
		assert.True(t, adapter.ConfirmSettlement(ctx, outcome).Success)
	})

	t.Run("partial payment keeps the requested amount", func(t *testing.T) {
		partial := &order.Order{Code: "ABC123", TotalWithTax: 1500, CurrencyCode: "EUR"}
		outcome := adapter.Settle(ctx, &payment.Request{Order: partial, Amount: 1000, Metadata: map[string]string{
			"paypalOrderId":   "o",
			"paypalCaptureId": "c",
		}})

		require.True(t, outcome.IsSettled())
		assert.Equal(t, int64(1000), outcome.Amount().Int64())
		assert.Equal(t, "15.00", outcome.Metadata()["amount"])
	})

	t.Run("payer email is optional", func(t *testing.T) {
		outcome := adapter.Settle(ctx, &payment.Request{Order: o, Metadata: map[string]string{
			"paypalOrderId":   "o",
			"paypalCaptureId": "c",
		}})
		require.True(t, outcome.IsSettled())
		_, ok := outcome.Metadata()["payerEmail"]
		assert.False(t, ok)
	})
}

func TestPayPalConfig_Validate(t *testing.T) {
	assert.NoError(t, (&PayPalConfig{}).Validate())
	assert.NoError(t, (&PayPalConfig{CaptureMode: PayPalCaptureDeferred}).Validate())
	assert.Error(t, (&PayPalConfig{CaptureMode: "later"}).Validate())

	_, err := NewPayPalAdapter(&PayPalConfig{CaptureMode: "later"}, nil)
	assert.Error(t, err)
}

func TestDummyAdapter_Settle(t *testing.T) {
	adapter := NewDummyAdapter()
	ctx := context.Background()

	outcome := adapter.Settle(ctx, nil)
	assert.Equal(t, payment.StateDeclined, outcome.State())

	outcome = adapter.Settle(ctx, &payment.Request{Order: &order.Order{Code: "D1"}, Amount: 100})
	require.True(t, outcome.IsSettled())
	assert.Contains(t, outcome.TransactionID(), "dummy-")
	assert.Equal(t, "1.00", outcome.Metadata()["amount"])
	assert.True(t, adapter.ConfirmSettlement(ctx, outcome).Success)
}
