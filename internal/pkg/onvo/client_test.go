package onvo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return &Client{
		BaseURL:        baseURL,
		SecretKey:      "sk_test",
		publishableKey: "pk_test",
		WebhookSecret:  "whsec_test",
		Currency:       "CRC",
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCreatePaymentIntentBelowMinimumMakesNoRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	for _, amount := range []int64{0, 1, 49} {
		_, err := client.CreatePaymentIntent(context.Background(), CreateIntentInput{Amount: amount})
		require.ErrorIs(t, err, ErrAmountBelowMinimum)
	}
	assert.Zero(t, requests, "no HTTP call may be issued for an invalid amount")
}

func TestCreatePaymentIntentSuccess(t *testing.T) {
	var gotAuth string
	var gotBody createIntentRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment-intents", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(PaymentIntent{
			ID:       "pi_abc",
			Amount:   gotBody.Amount,
			Currency: gotBody.Currency,
			Status:   IntentStatusCreated,
			Metadata: gotBody.Metadata,
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	listingID := uint(42)
	intent, err := client.CreatePaymentIntent(context.Background(), CreateIntentInput{
		Amount:      250000,
		Description: "Plan Básico",
		ListingID:   &listingID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, "CRC", gotBody.Currency, "client currency must be applied when the input omits one")
	assert.Equal(t, "42", gotBody.Metadata["listingId"], "purchasable id must travel in the metadata")

	assert.Equal(t, "pi_abc", intent.ID)
	assert.Equal(t, IntentStatusCreated, intent.Status)
	assert.Equal(t, int64(250000), intent.Amount)
}

func TestCreatePaymentIntentGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"message":"card declined"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreatePaymentIntent(context.Background(), CreateIntentInput{Amount: 250000})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusPaymentRequired, gwErr.StatusCode)
	assert.Contains(t, gwErr.Body, "card declined")
}

func TestCreatePaymentIntentTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestClient(srv.URL)
	_, err := client.CreatePaymentIntent(context.Background(), CreateIntentInput{Amount: 250000})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Zero(t, gwErr.StatusCode)
}

func TestGetPaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment-intents/pi_abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PaymentIntent{ID: "pi_abc", Status: IntentStatusSucceeded})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	intent := client.GetPaymentIntent(context.Background(), "pi_abc")
	require.NotNil(t, intent)
	assert.Equal(t, IntentStatusSucceeded, intent.Status)
}

func TestGetPaymentIntentIsBestEffort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	assert.Nil(t, client.GetPaymentIntent(context.Background(), "pi_missing"))
	assert.Nil(t, client.GetPaymentIntent(context.Background(), ""))
}

func TestPublishableKey(t *testing.T) {
	client := newTestClient("http://localhost")
	assert.Equal(t, "pk_test", client.PublishableKey())
}
