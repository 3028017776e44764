package payments

import "github.com/autoplazacr/autoplaza/internal/pkg/onvo"

// CreatePaymentInput is the normalized input for opening a payment intent for
// exactly one purchasable.
type CreatePaymentInput struct {
	Amount          int64
	Currency        string
	Description     string
	UserID          *uint
	ListingID       *uint
	AdvertisementID *uint
	Metadata        map[string]string
}

// WebhookEvent is the normalized inbound notification handed to the
// reconciler: the event type, the provider's intent snapshot, and the shared
// secret carried by the delivery.
type WebhookEvent struct {
	EventType string
	Secret    string
	Intent    onvo.PaymentIntent
}

// WebhookEventLogInput is the normalized input for webhook event persistence.
type WebhookEventLogInput struct {
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SecretValid     bool
}
