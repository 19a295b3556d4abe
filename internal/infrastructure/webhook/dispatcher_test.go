package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/storefront/backend/internal/domain/order"
)

type recordedRequest struct {
	method      string
	path        string
	secret      string
	contentType string
	body        Body
}

// automationServer fakes the automation system and records every request
type automationServer struct {
	*httptest.Server
	calls    atomic.Int32
	requests chan recordedRequest
}

func newAutomationServer(t *testing.T, status int) *automationServer {
	t.Helper()
	s := &automationServer{requests: make(chan recordedRequest, 10)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		rec := recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			secret:      r.URL.Query().Get("secret"),
			contentType: r.Header.Get("Content-Type"),
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rec.body))
		s.requests <- rec
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":false,"error":"boom"}`))
	}))
	t.Cleanup(s.Close)
	return s
}

func transitionTo(code string, to order.State) *order.StateTransitionEvent {
	return order.NewStateTransitionEvent(&order.Order{Code: code}, order.StateArrangingPayment, to)
}

func newTestDispatcher(t *testing.T, cfg Config) (*Dispatcher, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	d, err := NewDispatcher(cfg, zap.New(core))
	require.NoError(t, err)
	return d, logs
}

func TestDispatcher_Dispatch_TriggerState(t *testing.T) {
	srv := newAutomationServer(t, http.StatusOK)
	d, _ := newTestDispatcher(t, Config{BaseURL: srv.URL, Secret: "s3cret"})

	result := d.Dispatch(context.Background(), transitionTo("ABC123", order.StatePaymentSettled))

	assert.True(t, result.Attempted)
	assert.True(t, result.Delivered)
	assert.NoError(t, result.Err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "ABC123", result.OrderCode)
	assert.Equal(t, order.StatePaymentSettled, result.Trigger)
	assert.Equal(t, int32(1), srv.calls.Load())

	rec := <-srv.requests
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/fulfill-orders", rec.path)
	assert.Equal(t, "s3cret", rec.secret)
	assert.Equal(t, "application/json", rec.contentType)
	assert.Equal(t, Body{OrderCode: "ABC123", Trigger: "PaymentSettled"}, rec.body)
}

func TestDispatcher_Dispatch_NonTriggerState(t *testing.T) {
	srv := newAutomationServer(t, http.StatusOK)
	d, _ := newTestDispatcher(t, Config{BaseURL: srv.URL})

	for _, state := range []order.State{order.StateShipped, order.StateArrangingPayment, order.StateCancelled} {
		result := d.Dispatch(context.Background(), transitionTo("ABC123", state))
		assert.False(t, result.Attempted, state)
		assert.False(t, result.Delivered, state)
	}

	assert.Equal(t, int32(0), srv.calls.Load())
}

func TestDispatcher_Dispatch_PlatformDefinedState(t *testing.T) {
	srv := newAutomationServer(t, http.StatusOK)
	d, _ := newTestDispatcher(t, Config{
		BaseURL:       srv.URL,
		TriggerStates: []order.State{"AwaitingPrintify"},
	})

	result := d.Dispatch(context.Background(), transitionTo("ABC123", "AwaitingPrintify"))
	assert.True(t, result.Delivered)
	assert.Equal(t, Body{OrderCode: "ABC123", Trigger: "AwaitingPrintify"}, (<-srv.requests).body)

	assert.False(t, d.Dispatch(context.Background(), transitionTo("ABC123", order.StatePaymentSettled)).Attempted)
}

func TestDispatcher_Dispatch_CustomTriggers(t *testing.T) {
	srv := newAutomationServer(t, http.StatusAccepted)
	d, _ := newTestDispatcher(t, Config{
		BaseURL:       srv.URL,
		TriggerStates: []order.State{order.StatePaymentSettled, order.StateShipped},
	})

	assert.True(t, d.Dispatch(context.Background(), transitionTo("A1", order.StateShipped)).Delivered)
	assert.True(t, d.Dispatch(context.Background(), transitionTo("A2", order.StatePaymentSettled)).Delivered)
	assert.False(t, d.Dispatch(context.Background(), transitionTo("A3", order.StateDelivered)).Attempted)
	assert.Equal(t, int32(2), srv.calls.Load())
}

func TestDispatcher_Dispatch_Non2xx(t *testing.T) {
	srv := newAutomationServer(t, http.StatusInternalServerError)
	d, _ := newTestDispatcher(t, Config{BaseURL: srv.URL})

	result := d.Dispatch(context.Background(), transitionTo("ABC123", order.StatePaymentSettled))

	assert.True(t, result.Attempted)
	assert.False(t, result.Delivered)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "webhook responded 500")
	assert.Contains(t, result.Err.Error(), "boom")
	assert.Equal(t, int32(1), srv.calls.Load(), "no retry")
}

func TestDispatcher_Dispatch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d, _ := newTestDispatcher(t, Config{BaseURL: url})
	result := d.Dispatch(context.Background(), transitionTo("ABC123", order.StatePaymentSettled))

	assert.True(t, result.Attempted)
	assert.False(t, result.Delivered)
	assert.Zero(t, result.StatusCode)
	assert.Error(t, result.Err)
}

func TestDispatcher_Dispatch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	d, _ := newTestDispatcher(t, Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	start := time.Now()
	result := d.Dispatch(context.Background(), transitionTo("ABC123", order.StatePaymentSettled))

	assert.False(t, result.Delivered)
	assert.Error(t, result.Err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDispatcher_Dispatch_NilEvent(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{})
	assert.Equal(t, DeliveryResult{}, d.Dispatch(context.Background(), nil))
}

func TestDispatcher_Handle(t *testing.T) {
	t.Run("logs success at info", func(t *testing.T) {
		srv := newAutomationServer(t, http.StatusOK)
		d, logs := newTestDispatcher(t, Config{BaseURL: srv.URL})

		err := d.Handle(context.Background(), transitionTo("ABC123", order.StatePaymentSettled))
		require.NoError(t, err)

		entries := logs.FilterMessage("Pushed order to automation fulfill-orders").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "ABC123", entries[0].ContextMap()["order_code"])
	})

	t.Run("logs failure at error and returns nil", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		d, logs := newTestDispatcher(t, Config{BaseURL: url})

		err := d.Handle(context.Background(), transitionTo("ABC123", order.StatePaymentSettled))
		require.NoError(t, err)

		entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
		require.Len(t, entries, 1)
		assert.Equal(t, "Failed to push order webhook", entries[0].Message)
		assert.Equal(t, "ABC123", entries[0].ContextMap()["order_code"])
		assert.Contains(t, entries[0].ContextMap(), "error")
	})

	t.Run("ignores other event types", func(t *testing.T) {
		d, logs := newTestDispatcher(t, Config{})
		require.NoError(t, d.Handle(context.Background(), nil))
		assert.Zero(t, logs.Len())
	})
}

func TestDispatcher_EventTypes(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{})
	assert.Equal(t, []string{order.EventTypeOrderStateTransition}, d.EventTypes())
}

func TestNewDispatcher_Config(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d, _ := newTestDispatcher(t, Config{})
		assert.Equal(t, "http://localhost:3002/api/fulfill-orders?secret=change-me", d.endpoint)
		assert.True(t, d.IsTrigger(order.StatePaymentSettled))
		assert.False(t, d.IsTrigger(order.StateShipped))
		assert.Equal(t, DefaultTimeout, d.httpClient.Timeout)
	})

	t.Run("replaces base path and escapes secret", func(t *testing.T) {
		d, _ := newTestDispatcher(t, Config{BaseURL: "https://automations.example.com/base/", Secret: "a&b c"})
		assert.Equal(t, "https://automations.example.com/api/fulfill-orders?secret=a%26b+c", d.endpoint)
	})

	t.Run("rejects invalid base URL", func(t *testing.T) {
		_, err := NewDispatcher(Config{BaseURL: "not a url"}, nil)
		assert.ErrorIs(t, err, ErrInvalidBaseURL)
	})
}

func TestDispatcher_Notification(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{BaseURL: "http://automation:3002", Secret: "x"})

	n := d.Notification(transitionTo("ABC123", order.StatePaymentSettled))
	assert.Equal(t, "http://automation:3002/api/fulfill-orders?secret=x", n.URL)

	data, err := json.Marshal(n.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"orderCode":"ABC123","trigger":"PaymentSettled"}`, string(data))
}
