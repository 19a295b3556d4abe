package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads. Viper ignores empty values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"STORE_APP_NAME", "STORE_APP_ENV", "STORE_APP_PORT",
		"STORE_DATABASE_PASSWORD", "STORE_DATABASE_MAX_OPEN_CONNS", "STORE_DATABASE_MAX_IDLE_CONNS",
		"STORE_REDIS_ENABLED", "STORE_AUTOMATION_TRIGGER_STATES", "STORE_PAYMENT_ENABLED_METHODS",
		"STORE_AUTOMATION_BASE_URL", "STORE_AUTOMATION_SECRET_KEY", "STORE_HTTP_CORS_ALLOW_ORIGINS",
		"STORE_TELEMETRY_SAMPLING_RATIO",
	} {
		t.Setenv(name, "")
	}
	for _, legacy := range legacyEnv {
		t.Setenv(legacy, "")
	}
}

// emptyDir returns a search path with no config.toml
func emptyDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(emptyDir(t))
	require.NoError(t, err)

	assert.Equal(t, "storefront-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "vendure", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr())
	assert.False(t, cfg.AMQP.Enabled)
	assert.Equal(t, []string{"order.transition.#"}, cfg.AMQP.RoutingKeys)

	assert.Equal(t, "http://localhost:3002", cfg.Automation.BaseURL)
	assert.Equal(t, "change-me", cfg.Automation.SecretKey)
	assert.Equal(t, []string{"PaymentSettled"}, cfg.Automation.TriggerStates)
	assert.Equal(t, 10*time.Second, cfg.Automation.Timeout)

	assert.Equal(t, []string{"dummy", "paypal"}, cfg.Payment.EnabledMethods)
	assert.Equal(t, "Sandbox", cfg.Payment.Braintree.Environment)
	assert.Equal(t, 15*time.Second, cfg.Payment.Braintree.Timeout)
	assert.Equal(t, "immediate", cfg.Payment.PayPal.CaptureMode)

	assert.True(t, cfg.Auth.RequireVerification)
	assert.Equal(t, "superadmin", cfg.Auth.SuperadminIdentifier)
	assert.Equal(t, "administrator", cfg.Bootstrap.CoreTable)
	assert.Equal(t, "storefront-backend", cfg.Telemetry.ServiceName)
	assert.Empty(t, cfg.Promotions)
}

func TestLoad_Environment(t *testing.T) {
	t.Run("prefixed variables", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_APP_PORT", "9000")
		t.Setenv("STORE_AUTOMATION_BASE_URL", "https://automations.example.com")
		t.Setenv("STORE_AUTOMATION_TRIGGER_STATES", "PaymentSettled, Shipped")
		t.Setenv("STORE_PAYMENT_ENABLED_METHODS", "braintree,dummy")
		t.Setenv("STORE_REDIS_ENABLED", "false")

		cfg, err := Load(emptyDir(t))
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "https://automations.example.com", cfg.Automation.BaseURL)
		assert.Equal(t, []string{"PaymentSettled", "Shipped"}, cfg.Automation.TriggerStates)
		assert.Equal(t, []string{"braintree", "dummy"}, cfg.Payment.EnabledMethods)
		assert.False(t, cfg.Redis.Enabled)
	})

	t.Run("legacy variables", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AUTOMATION_BASE_URL", "http://automation:3002")
		t.Setenv("AUTOMATION_SECRET_KEY", "legacy-secret")
		t.Setenv("BRAINTREE_MERCHANT_ID", "merchant")
		t.Setenv("BRAINTREE_ENVIRONMENT", "Production")
		t.Setenv("DATABASE_HOST", "db")
		t.Setenv("DATABASE_PORT", "5433")
		t.Setenv("DATABASE_NAME", "shop")
		t.Setenv("REDIS_HOST", "cache")

		cfg, err := Load(emptyDir(t))
		require.NoError(t, err)

		assert.Equal(t, "http://automation:3002", cfg.Automation.BaseURL)
		assert.Equal(t, "legacy-secret", cfg.Automation.SecretKey)
		assert.Equal(t, "merchant", cfg.Payment.Braintree.MerchantID)
		assert.Equal(t, "Production", cfg.Payment.Braintree.Environment)
		assert.Equal(t, "db", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "shop", cfg.Database.DBName)
		assert.Equal(t, "cache", cfg.Redis.Host)
	})

	t.Run("prefixed wins over legacy", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AUTOMATION_SECRET_KEY", "legacy")
		t.Setenv("STORE_AUTOMATION_SECRET_KEY", "prefixed")

		cfg, err := Load(emptyDir(t))
		require.NoError(t, err)
		assert.Equal(t, "prefixed", cfg.Automation.SecretKey)
	})
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, `
[app]
port = "8081"

[automation]
base_url = "http://automation.internal:3002"
trigger_states = ["PaymentSettled", "PartiallyShipped"]
timeout = "3s"

[payment]
enabled_methods = ["dummy"]

[[promotions]]
name = "Accessory upsell"

  [[promotions.conditions]]
  code = "has_anchor_sku"
  args = { anchorSku = "X", minQty = 2 }

  [[promotions.actions]]
  code = "accessory_percentage_discount"
  args = { discountPercent = 10, targetSkus = ["Y", "Z"] }

[[promotions]]
name = "Disabled"
enabled = false
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, "http://automation.internal:3002", cfg.Automation.BaseURL)
	assert.Equal(t, []string{"PaymentSettled", "PartiallyShipped"}, cfg.Automation.TriggerStates)
	assert.Equal(t, 3*time.Second, cfg.Automation.Timeout)
	assert.Equal(t, []string{"dummy"}, cfg.Payment.EnabledMethods)

	require.Len(t, cfg.Promotions, 2)
	upsell := cfg.Promotions[0]
	assert.Equal(t, "Accessory upsell", upsell.Name)
	assert.True(t, upsell.IsEnabled())
	require.Len(t, upsell.Conditions, 1)
	assert.Equal(t, "has_anchor_sku", upsell.Conditions[0].Code)
	assert.NotEmpty(t, upsell.Conditions[0].Args)
	require.Len(t, upsell.Actions, 1)
	assert.Equal(t, "accessory_percentage_discount", upsell.Actions[0].Code)
	assert.False(t, cfg.Promotions[1].IsEnabled())
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, "[app\nport=")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "idle conns exceed open conns",
			env:     map[string]string{"STORE_DATABASE_MAX_OPEN_CONNS": "10", "STORE_DATABASE_MAX_IDLE_CONNS": "20"},
			wantErr: "cannot exceed",
		},
		{
			name:    "negative idle conns",
			env:     map[string]string{"STORE_DATABASE_MAX_IDLE_CONNS": "-1"},
			wantErr: "max_idle_conns cannot be negative",
		},
		{
			name:    "relative automation url",
			env:     map[string]string{"STORE_AUTOMATION_BASE_URL": "automation:3002/path"},
			wantErr: "automation.base_url",
		},
		{
			name:    "unknown payment method",
			env:     map[string]string{"STORE_PAYMENT_ENABLED_METHODS": "stripe"},
			wantErr: "unknown method",
		},
		{
			name:    "sampling ratio out of range",
			env:     map[string]string{"STORE_TELEMETRY_SAMPLING_RATIO": "1.5"},
			wantErr: "sampling_ratio",
		},
		{
			name:    "default secret in production",
			env:     map[string]string{"STORE_APP_ENV": "production", "STORE_DATABASE_PASSWORD": "pw"},
			wantErr: "automation.secret_key",
		},
		{
			name:    "missing database password in production",
			env:     map[string]string{"STORE_APP_ENV": "production", "STORE_AUTOMATION_SECRET_KEY": "real"},
			wantErr: "database.password is required",
		},
		{
			name: "wildcard cors in production",
			env: map[string]string{
				"STORE_APP_ENV":                 "production",
				"STORE_AUTOMATION_SECRET_KEY":   "real",
				"STORE_DATABASE_PASSWORD":       "pw",
				"STORE_HTTP_CORS_ALLOW_ORIGINS": "*",
			},
			wantErr: "cors_allow_origins",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(emptyDir(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid production config", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_APP_ENV", "production")
		t.Setenv("STORE_AUTOMATION_SECRET_KEY", "real")
		t.Setenv("STORE_DATABASE_PASSWORD", "pw")

		cfg, err := Load(emptyDir(t))
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "shop", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/shop?sslmode=disable", d.DSN())
}
