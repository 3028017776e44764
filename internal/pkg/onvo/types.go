package onvo

import (
	"errors"
	"fmt"
	"time"
)

// Payment intent statuses as reported by the provider.
const (
	IntentStatusCreated    = "created"
	IntentStatusProcessing = "processing"
	IntentStatusSucceeded  = "succeeded"
	IntentStatusFailed     = "failed"
	IntentStatusDeferred   = "deferred"
)

// Webhook event types delivered by the provider.
const (
	EventPaymentSucceeded = "payment-intent.succeeded"
	EventPaymentFailed    = "payment-intent.failed"
	EventPaymentDeferred  = "payment-intent.deferred"
)

// MinimumAmount is the provider's smallest accepted charge in minor units
// (the equivalent of $0.50).
const MinimumAmount = 50

// ErrAmountBelowMinimum rejects a charge before any request is issued.
var ErrAmountBelowMinimum = errors.New("amount is below the provider minimum of 50 minor units")

// GatewayError is a non-2xx or transport-level failure from the provider.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("onvo gateway error: status=%d body=%s", e.StatusCode, e.Body)
}

// PaymentIntent mirrors the provider-owned intent object. Only the provider
// mutates status and attempt fields; this system reads them.
type PaymentIntent struct {
	ID                   string            `json:"id"`
	Amount               int64             `json:"amount"`
	Currency             string            `json:"currency"`
	Status               string            `json:"status"`
	Description          string            `json:"description"`
	Metadata             map[string]string `json:"metadata,omitempty"`
	ConfirmationAttempts int               `json:"confirmationAttempts"`
	LastPaymentError     *PaymentError     `json:"lastPaymentError,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

// PaymentError is the provider's last-error detail on an intent.
type PaymentError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// CreateIntentInput carries everything needed to open an intent with the
// provider. ListingID/AdvertisementID, when set, are injected into the
// outgoing metadata so the webhook payload can be correlated back to the
// local domain object.
type CreateIntentInput struct {
	Amount          int64
	Currency        string
	Description     string
	CustomerID      string
	ListingID       *uint
	AdvertisementID *uint
	Metadata        map[string]string
}

type createIntentRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	CustomerID  string            `json:"customerId,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
