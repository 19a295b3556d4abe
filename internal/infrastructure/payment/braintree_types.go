package payment

const braintreeChargeMutation = `mutation ChargePaymentMethod($input: ChargePaymentMethodInput!) {
  chargePaymentMethod(input: $input) {
    transaction {
      id
      legacyId
      status
      orderId
      amount { value currencyIsoCode }
      paymentMethodSnapshot { __typename }
    }
  }
}`

// braintreeGraphQLRequest is the GraphQL request envelope
type braintreeGraphQLRequest struct {
	Query     string                   `json:"query"`
	Variables braintreeChargeVariables `json:"variables"`
}

type braintreeChargeVariables struct {
	Input braintreeChargeInput `json:"input"`
}

// braintreeChargeInput is ChargePaymentMethodInput
type braintreeChargeInput struct {
	PaymentMethodID string                    `json:"paymentMethodId"`
	Transaction     braintreeTransactionInput `json:"transaction"`
}

type braintreeTransactionInput struct {
	Amount            string             `json:"amount"`
	OrderID           string             `json:"orderId,omitempty"`
	MerchantAccountID string             `json:"merchantAccountId,omitempty"`
	RiskData          *braintreeRiskData `json:"riskData,omitempty"`
}

type braintreeRiskData struct {
	DeviceData string `json:"deviceData"`
}

// braintreeChargeResponse is the GraphQL response of the charge mutation
type braintreeChargeResponse struct {
	Data struct {
		ChargePaymentMethod *struct {
			Transaction *braintreeTransaction `json:"transaction"`
		} `json:"chargePaymentMethod"`
	} `json:"data"`
	Errors []braintreeGraphQLError `json:"errors,omitempty"`
}

type braintreeTransaction struct {
	ID       string `json:"id"`
	LegacyID string `json:"legacyId"`
	Status   string `json:"status"`
	OrderID  string `json:"orderId"`
	Amount   struct {
		Value           string `json:"value"`
		CurrencyIsoCode string `json:"currencyIsoCode"`
	} `json:"amount"`
	PaymentMethodSnapshot struct {
		Typename string `json:"__typename"`
	} `json:"paymentMethodSnapshot"`
}

type braintreeGraphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		ErrorClass string `json:"errorClass,omitempty"`
		LegacyCode string `json:"legacyCode,omitempty"`
	} `json:"extensions"`
}

// braintreeFailedStatuses are transaction statuses that mean the charge did not go through
var braintreeFailedStatuses = map[string]struct{}{
	"FAILED":              {},
	"GATEWAY_REJECTED":    {},
	"PROCESSOR_DECLINED":  {},
	"SETTLEMENT_DECLINED": {},
	"VOIDED":              {},
}
