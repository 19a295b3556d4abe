package payment

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// HandlerSettings selects and configures the enabled payment methods
type HandlerSettings struct {
	EnabledMethods []string
	Braintree      *BraintreeConfig
	PayPal         *PayPalConfig
}

// SettingsFromConfig maps the payment section of the application config
func SettingsFromConfig(cfg config.PaymentConfig) HandlerSettings {
	return HandlerSettings{
		EnabledMethods: cfg.EnabledMethods,
		Braintree: &BraintreeConfig{
			Environment:       cfg.Braintree.Environment,
			MerchantID:        cfg.Braintree.MerchantID,
			PublicKey:         cfg.Braintree.PublicKey,
			PrivateKey:        cfg.Braintree.PrivateKey,
			MerchantAccountID: cfg.Braintree.MerchantAccountID,
			Timeout:           cfg.Braintree.Timeout,
		},
		PayPal: &PayPalConfig{
			CaptureMode: cfg.PayPal.CaptureMode,
		},
	}
}

// NewHandlers builds the handlers of every enabled method. A configuration
// problem in any enabled method fails the whole set.
func NewHandlers(settings HandlerSettings, logger *zap.Logger) ([]payment.MethodHandler, error) {
	handlers := make([]payment.MethodHandler, 0, len(settings.EnabledMethods))
	seen := make(map[string]struct{}, len(settings.EnabledMethods))

	for _, raw := range settings.EnabledMethods {
		code := strings.ToLower(strings.TrimSpace(raw))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		switch code {
		case CodeBraintree:
			if settings.Braintree == nil {
				return nil, fmt.Errorf("%w: %s", payment.ErrMethodNotConfigured, code)
			}
			h, err := NewBraintreeAdapter(settings.Braintree, logger)
			if err != nil {
				return nil, err
			}
			handlers = append(handlers, h)
		case CodePayPal:
			h, err := NewPayPalAdapter(settings.PayPal, logger)
			if err != nil {
				return nil, err
			}
			handlers = append(handlers, h)
		case CodeDummy:
			handlers = append(handlers, NewDummyAdapter())
		default:
			return nil, fmt.Errorf("%w: unknown method %q", payment.ErrMethodNotConfigured, code)
		}
	}
	return handlers, nil
}
