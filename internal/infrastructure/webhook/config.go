package webhook

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/order"
)

// Defaults used when the automation system is not configured
const (
	DefaultBaseURL = "http://localhost:3002"
	DefaultSecret  = "change-me"
	DefaultTimeout = 10 * time.Second

	fulfillOrdersPath = "/api/fulfill-orders"
)

// ErrInvalidBaseURL is returned when the automation base URL cannot be parsed
var ErrInvalidBaseURL = errors.New("webhook: invalid automation base URL")

// Config configures the order webhook dispatcher
type Config struct {
	BaseURL       string
	Secret        string
	TriggerStates []order.State
	Timeout       time.Duration
}

// withDefaults fills unset fields
func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Secret == "" {
		c.Secret = DefaultSecret
	}
	if len(c.TriggerStates) == 0 {
		c.TriggerStates = []order.State{order.StatePaymentSettled}
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// endpoint resolves the fulfill-orders URL with the secret query parameter
func (c Config) endpoint() (string, error) {
	base, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", ErrInvalidBaseURL
	}
	u := base.ResolveReference(&url.URL{Path: fulfillOrdersPath})
	q := u.Query()
	q.Set("secret", c.Secret)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
