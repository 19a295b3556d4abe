package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/payment"
)

// CodeBraintree is the payment method code of the Braintree adapter
const CodeBraintree = "braintree"

// Gateway errors
var (
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
)

// Metadata keys read from the storefront payment request
const (
	metaNonce      = "nonce"
	metaDeviceData = "deviceData"
)

// BraintreeAdapter settles payments synchronously through the Braintree GraphQL API.
// Each Settle performs at most one processor call and always submits for settlement.
type BraintreeAdapter struct {
	config     *BraintreeConfig
	endpoint   string
	authHeader string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewBraintreeAdapter creates a new Braintree adapter. Missing credentials are
// reported here so a misconfigured method fails at start-up, not per payment.
func NewBraintreeAdapter(config *BraintreeConfig, logger *zap.Logger) (*BraintreeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	credentials := config.PublicKey + ":" + config.PrivateKey
	return &BraintreeAdapter{
		config:     config,
		endpoint:   config.EndpointURL(),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials)),
		httpClient: &http.Client{
			Timeout: config.timeout(),
		},
		logger: logger.With(zap.String("payment_method", CodeBraintree)),
	}, nil
}

// Code returns the payment method code
func (a *BraintreeAdapter) Code() string {
	return CodeBraintree
}

// Settle charges the payment method nonce supplied by the storefront
func (a *BraintreeAdapter) Settle(ctx context.Context, req *payment.Request) *payment.Outcome {
	amount := req.RequestedAmount()
	if !req.HasOrder() {
		return payment.Declined(amount, payment.FailureValidation, payment.ReasonNoActiveOrder)
	}

	nonce := strings.TrimSpace(req.Meta(metaNonce))
	if nonce == "" {
		return payment.Declined(amount, payment.FailureValidation, "missing payment method nonce")
	}

	input := braintreeTransactionInput{
		Amount:            req.ChargeAmount().MajorString(),
		OrderID:           req.Order.Code,
		MerchantAccountID: a.config.MerchantAccountID,
	}
	if deviceData := req.Meta(metaDeviceData); deviceData != "" {
		input.RiskData = &braintreeRiskData{DeviceData: deviceData}
	}

	tx, err := a.charge(ctx, nonce, input)
	if err != nil {
		kind := payment.FailureProcessor
		if errors.Is(err, ErrGatewayUnavailable) {
			kind = payment.FailureTransport
		}
		a.logger.Error("Braintree charge failed",
			zap.String("order_code", req.Order.Code),
			zap.String("amount", input.Amount),
			zap.String("failure_kind", string(kind)),
			zap.Error(err),
		)
		return payment.Declined(amount, kind, err.Error())
	}

	a.logger.Info("Braintree charge settled",
		zap.String("order_code", req.Order.Code),
		zap.String("transaction_id", tx.ID),
		zap.String("status", tx.Status),
	)

	currency := tx.Amount.CurrencyIsoCode
	if currency == "" {
		currency = req.Order.Currency().String()
	}
	settledAmount := input.Amount
	if tx.Amount.Value != "" {
		settledAmount = tx.Amount.Value
	}

	return payment.Settled(amount, tx.ID, map[string]string{
		"processor":             CodeBraintree,
		"transactionId":         tx.ID,
		"legacyId":              tx.LegacyID,
		"type":                  "sale",
		"status":                tx.Status,
		"paymentInstrumentType": tx.PaymentMethodSnapshot.Typename,
		"currency":              currency,
		"amount":                settledAmount,
	})
}

// ConfirmSettlement always succeeds because Settle submits for settlement
func (a *BraintreeAdapter) ConfirmSettlement(_ context.Context, _ *payment.Outcome) payment.SettlementConfirmation {
	return payment.SettlementConfirmation{Success: true}
}

// charge runs the chargePaymentMethod mutation and returns the settled transaction
func (a *BraintreeAdapter) charge(ctx context.Context, nonce string, input braintreeTransactionInput) (*braintreeTransaction, error) {
	body, err := json.Marshal(braintreeGraphQLRequest{
		Query: braintreeChargeMutation,
		Variables: braintreeChargeVariables{
			Input: braintreeChargeInput{PaymentMethodID: nonce, Transaction: input},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("braintree: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	var resp braintreeChargeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayInvalidResponse, err)
	}
	if len(resp.Errors) > 0 {
		messages := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrGatewayRequestFailed, strings.Join(messages, "; "))
	}
	if resp.Data.ChargePaymentMethod == nil || resp.Data.ChargePaymentMethod.Transaction == nil {
		return nil, fmt.Errorf("%w: no transaction in response", ErrGatewayInvalidResponse)
	}

	tx := resp.Data.ChargePaymentMethod.Transaction
	if _, failed := braintreeFailedStatuses[tx.Status]; failed {
		return nil, fmt.Errorf("%w: transaction %s status %s", ErrGatewayRequestFailed, tx.ID, tx.Status)
	}
	return tx, nil
}

func (a *BraintreeAdapter) doRequest(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("braintree: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", a.authHeader)
	req.Header.Set("Braintree-Version", braintreeAPIVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		var errResp braintreeChargeResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && len(errResp.Errors) > 0 {
			return nil, fmt.Errorf("%w: HTTP %d - %s", ErrGatewayRequestFailed, resp.StatusCode, errResp.Errors[0].Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}
