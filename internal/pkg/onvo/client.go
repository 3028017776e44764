package onvo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/autoplazacr/autoplaza/internal/pkg/env"
)

const defaultBaseURL = "https://api.onvopay.com"

// Client issues authenticated requests against the ONVO Pay REST API. It
// performs a single attempt per call; retrying is the caller's decision.
type Client struct {
	BaseURL        string
	SecretKey      string
	publishableKey string
	WebhookSecret  string
	Currency       string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from ONVO_* environment configuration.
func NewClientFromEnv() *Client {
	timeoutSeconds, err := strconv.Atoi(env.GetEnv("ONVO_TIMEOUT_SECONDS", "30"))
	if err != nil || timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}

	return &Client{
		BaseURL:        strings.TrimRight(env.GetEnv("ONVO_BASE_URL", defaultBaseURL), "/"),
		SecretKey:      strings.TrimSpace(env.GetEnv("ONVO_SECRET_KEY", "")),
		publishableKey: strings.TrimSpace(env.GetEnv("ONVO_PUBLISHABLE_KEY", "")),
		WebhookSecret:  strings.TrimSpace(env.GetEnv("ONVO_WEBHOOK_SECRET", "")),
		Currency:       strings.ToUpper(env.GetEnv("ONVO_CURRENCY", "CRC")),
		HTTPClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

// PublishableKey returns the key used to initialize the client-side checkout
// widget.
func (c *Client) PublishableKey() string {
	return c.publishableKey
}

// CreatePaymentIntent opens a payment intent with the provider. Amounts below
// MinimumAmount fail before any request is made.
func (c *Client) CreatePaymentIntent(ctx context.Context, in CreateIntentInput) (*PaymentIntent, error) {
	if in.Amount < MinimumAmount {
		return nil, ErrAmountBelowMinimum
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = c.Currency
	}

	metadata := make(map[string]string, len(in.Metadata)+2)
	for k, v := range in.Metadata {
		metadata[k] = v
	}
	if in.ListingID != nil {
		metadata["listingId"] = strconv.FormatUint(uint64(*in.ListingID), 10)
	}
	if in.AdvertisementID != nil {
		metadata["advertisementId"] = strconv.FormatUint(uint64(*in.AdvertisementID), 10)
	}

	body, err := json.Marshal(createIntentRequest{
		Amount:      in.Amount,
		Currency:    currency,
		Description: strings.TrimSpace(in.Description),
		CustomerID:  strings.TrimSpace(in.CustomerID),
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/payment-intents", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &GatewayError{StatusCode: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("onvo: create payment intent failed: status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var intent PaymentIntent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return nil, fmt.Errorf("onvo: decoding payment intent response: %w", err)
	}
	return &intent, nil
}

// GetPaymentIntent reads an intent from the provider. It is best effort:
// any failure is logged and reported as a nil intent rather than an error,
// for callers that only need a status hint.
func (c *Client) GetPaymentIntent(ctx context.Context, id string) *PaymentIntent {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/payment-intents/"+id, nil)
	if err != nil {
		log.Printf("onvo: building get payment intent request: %v", err)
		return nil
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("onvo: get payment intent %s: %v", id, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		log.Printf("onvo: get payment intent %s failed: status=%d body=%s", id, resp.StatusCode, string(respBody))
		return nil
	}

	var intent PaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		log.Printf("onvo: decoding payment intent %s: %v", id, err)
		return nil
	}
	return &intent
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
