package payment

import (
	"errors"
	"strings"
	"time"
)

const (
	braintreeSandboxURL    = "https://payments.sandbox.braintree-api.com/graphql"
	braintreeProductionURL = "https://payments.braintree-api.com/graphql"
	braintreeAPIVersion    = "2019-01-01"

	defaultBraintreeTimeout = 15 * time.Second
)

// BraintreeConfig contains the merchant credentials for the Braintree GraphQL API
type BraintreeConfig struct {
	// Environment selects the endpoint; any value containing "prod" means production
	Environment string
	// MerchantID is the Braintree merchant ID
	MerchantID string
	// PublicKey and PrivateKey are the API key pair
	PublicKey  string
	PrivateKey string
	// MerchantAccountID optionally selects a merchant account for the charge currency
	MerchantAccountID string
	// Timeout bounds each processor call. Default: 15s.
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrBraintreeMissingCredentials = errors.New("braintree: missing credentials")
	ErrBraintreeMissingMerchantID  = errors.New("braintree: missing merchant ID")
	ErrBraintreeMissingPublicKey   = errors.New("braintree: missing public key")
	ErrBraintreeMissingPrivateKey  = errors.New("braintree: missing private key")
)

// Validate validates the configuration. Every missing credential error also
// matches ErrBraintreeMissingCredentials.
func (c *BraintreeConfig) Validate() error {
	if c == nil {
		return ErrBraintreeMissingCredentials
	}
	if c.MerchantID == "" {
		return errors.Join(ErrBraintreeMissingCredentials, ErrBraintreeMissingMerchantID)
	}
	if c.PublicKey == "" {
		return errors.Join(ErrBraintreeMissingCredentials, ErrBraintreeMissingPublicKey)
	}
	if c.PrivateKey == "" {
		return errors.Join(ErrBraintreeMissingCredentials, ErrBraintreeMissingPrivateKey)
	}
	return nil
}

// IsProduction reports whether the production endpoint is used
func (c *BraintreeConfig) IsProduction() bool {
	return strings.Contains(strings.ToLower(c.Environment), "prod")
}

// EndpointURL returns the GraphQL endpoint for the configured environment
func (c *BraintreeConfig) EndpointURL() string {
	if c.IsProduction() {
		return braintreeProductionURL
	}
	return braintreeSandboxURL
}

func (c *BraintreeConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultBraintreeTimeout
	}
	return c.Timeout
}
