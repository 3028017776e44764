package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/autoplazacr/autoplaza/app/models"
	"github.com/autoplazacr/autoplaza/internal/pkg/onvo"
)

type fakeGateway struct {
	createCalls int
	createErr   error
	intent      *onvo.PaymentIntent
}

func (g *fakeGateway) CreatePaymentIntent(ctx context.Context, in onvo.CreateIntentInput) (*onvo.PaymentIntent, error) {
	g.createCalls++
	if in.Amount < onvo.MinimumAmount {
		return nil, onvo.ErrAmountBelowMinimum
	}
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.intent != nil {
		return g.intent, nil
	}
	return &onvo.PaymentIntent{
		ID:       "pi_test",
		Amount:   in.Amount,
		Currency: "CRC",
		Status:   onvo.IntentStatusCreated,
	}, nil
}

func (g *fakeGateway) GetPaymentIntent(ctx context.Context, id string) *onvo.PaymentIntent {
	return g.intent
}

func (g *fakeGateway) PublishableKey() string { return "pk_test" }

type fakeRepo struct {
	records     map[string]*models.PaymentRecord
	events      map[string]*models.PaymentWebhookEvent
	saveCalls   int
	saveErr     error
	nextEventID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records: make(map[string]*models.PaymentRecord),
		events:  make(map[string]*models.PaymentWebhookEvent),
	}
}

func (r *fakeRepo) CreateRecord(rec *models.PaymentRecord) error {
	if err := rec.BeforeSave(nil); err != nil {
		return err
	}
	r.records[rec.PaymentIntentID] = rec
	return nil
}

func (r *fakeRepo) FindByPaymentIntentID(paymentIntentID string) (*models.PaymentRecord, error) {
	rec, ok := r.records[paymentIntentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *fakeRepo) SaveReconciliation(rec *models.PaymentRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saveCalls++
	r.records[rec.PaymentIntentID] = rec
	return nil
}

func (r *fakeRepo) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	key := event.Provider + ":" + event.ProviderEventID
	if existing, ok := r.events[key]; ok {
		return false, existing, nil
	}
	r.nextEventID++
	event.ID = r.nextEventID
	r.events[key] = event
	return true, event, nil
}

func (r *fakeRepo) MarkWebhookProcessed(id uint, processingError string) error {
	for _, ev := range r.events {
		if ev.ID == id {
			now := time.Now()
			ev.ProcessedAt = &now
			ev.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

const testSecret = "whsec_test"

func newTestService(repo *fakeRepo, gw *fakeGateway) *Service {
	return NewService(gw, repo, testSecret)
}

func listingRecord(repo *fakeRepo, status string) *models.PaymentRecord {
	listingID := uint(42)
	rec := &models.PaymentRecord{
		PaymentIntentID: "pi_listing",
		Status:          status,
		Amount:          250000,
		Currency:        "CRC",
		ListingID:       &listingID,
		Listing:         &models.Listing{ID: listingID, UUID: "a6c1f1de-2f7a-4a37-8d0e-2f1f74f7a111"},
	}
	repo.records[rec.PaymentIntentID] = rec
	return rec
}

func succeededEvent(intentID string) WebhookEvent {
	return WebhookEvent{
		EventType: onvo.EventPaymentSucceeded,
		Secret:    testSecret,
		Intent:    onvo.PaymentIntent{ID: intentID, Status: onvo.IntentStatusSucceeded, ConfirmationAttempts: 1},
	}
}

func TestCreatePaymentIntentPersistsRecord(t *testing.T) {
	repo := newFakeRepo()
	gw := &fakeGateway{}
	svc := newTestService(repo, gw)

	listingID := uint(42)
	intent, err := svc.CreatePaymentIntent(context.Background(), CreatePaymentInput{
		Amount:      250000,
		Currency:    "CRC",
		Description: "Plan Básico",
		ListingID:   &listingID,
	})
	require.NoError(t, err)
	require.NotNil(t, intent)

	rec, ok := repo.records[intent.ID]
	require.True(t, ok, "expected a persisted record for the returned intent id")
	assert.Equal(t, models.PaymentStatusCreated, rec.Status)
	assert.Equal(t, int64(250000), rec.Amount)
	require.NotNil(t, rec.ListingID)
	assert.Equal(t, listingID, *rec.ListingID)
	assert.Nil(t, rec.AdvertisementID)
}

func TestCreatePaymentIntentBelowMinimumIssuesNoRecord(t *testing.T) {
	repo := newFakeRepo()
	gw := &fakeGateway{}
	svc := newTestService(repo, gw)

	_, err := svc.CreatePaymentIntent(context.Background(), CreatePaymentInput{Amount: 49})
	require.ErrorIs(t, err, onvo.ErrAmountBelowMinimum)
	assert.Empty(t, repo.records)
}

func TestCreatePaymentIntentRejectsBothPurchasables(t *testing.T) {
	repo := newFakeRepo()
	gw := &fakeGateway{}
	svc := newTestService(repo, gw)

	listingID, adID := uint(1), uint(2)
	_, err := svc.CreatePaymentIntent(context.Background(), CreatePaymentInput{
		Amount:          250000,
		ListingID:       &listingID,
		AdvertisementID: &adID,
	})
	require.ErrorIs(t, err, models.ErrAmbiguousPurchasable)
	assert.Zero(t, gw.createCalls, "gateway must not be called for an invalid purchase")
	assert.Empty(t, repo.records)
}

func TestCreatePaymentIntentGatewayFailureIssuesNoRecord(t *testing.T) {
	repo := newFakeRepo()
	gw := &fakeGateway{createErr: &onvo.GatewayError{StatusCode: 402, Body: "card declined"}}
	svc := newTestService(repo, gw)

	_, err := svc.CreatePaymentIntent(context.Background(), CreatePaymentInput{Amount: 250000})
	var gwErr *onvo.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, 402, gwErr.StatusCode)
	assert.Empty(t, repo.records)
}

func TestHandleWebhookSucceededActivatesListing(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})
	rec := listingRecord(repo, models.PaymentStatusCreated)

	ok := svc.HandleWebhook(context.Background(), succeededEvent(rec.PaymentIntentID))
	require.True(t, ok)

	assert.Equal(t, models.PaymentStatusSucceeded, rec.Status)
	assert.Equal(t, 1, rec.ConfirmationAttempts)
	require.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.Listing.IsActive)
	assert.NotNil(t, rec.Listing.ActivatedAt)
	assert.Equal(t, 1, repo.saveCalls)
}

func TestHandleWebhookSucceededActivatesAdvertisement(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})

	adID := uint(7)
	rec := &models.PaymentRecord{
		PaymentIntentID: "pi_ad",
		Status:          models.PaymentStatusCreated,
		AdvertisementID: &adID,
		Advertisement:   &models.Advertisement{ID: adID, CompanyName: "Llantas Tico"},
	}
	repo.records[rec.PaymentIntentID] = rec

	ok := svc.HandleWebhook(context.Background(), succeededEvent(rec.PaymentIntentID))
	require.True(t, ok)
	assert.True(t, rec.Advertisement.IsActive)
	require.NotNil(t, rec.Advertisement.PublishedAt)
}

func TestHandleWebhookIsIdempotentForDuplicateSucceeded(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})
	rec := listingRecord(repo, models.PaymentStatusCreated)

	require.True(t, svc.HandleWebhook(context.Background(), succeededEvent(rec.PaymentIntentID)))
	firstCompleted := rec.CompletedAt

	require.True(t, svc.HandleWebhook(context.Background(), succeededEvent(rec.PaymentIntentID)))
	assert.Equal(t, models.PaymentStatusSucceeded, rec.Status)
	assert.True(t, rec.Listing.IsActive)
	assert.Equal(t, firstCompleted, rec.CompletedAt, "completion time must not move on redelivery")
}

func TestHandleWebhookRejectsFailedAfterSucceeded(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})
	rec := listingRecord(repo, models.PaymentStatusCreated)

	require.True(t, svc.HandleWebhook(context.Background(), succeededEvent(rec.PaymentIntentID)))

	failed := WebhookEvent{
		EventType: onvo.EventPaymentFailed,
		Secret:    testSecret,
		Intent:    onvo.PaymentIntent{ID: rec.PaymentIntentID, Status: onvo.IntentStatusFailed, ConfirmationAttempts: 2},
	}
	ok := svc.HandleWebhook(context.Background(), failed)

	assert.False(t, ok, "terminal state must not be downgraded")
	assert.Equal(t, models.PaymentStatusSucceeded, rec.Status)
	assert.True(t, rec.Listing.IsActive)
}

func TestHandleWebhookFailedLeavesListingInactive(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})
	rec := listingRecord(repo, models.PaymentStatusCreated)

	ev := WebhookEvent{
		EventType: onvo.EventPaymentFailed,
		Secret:    testSecret,
		Intent: onvo.PaymentIntent{
			ID:                   rec.PaymentIntentID,
			Status:               onvo.IntentStatusFailed,
			ConfirmationAttempts: 3,
			LastPaymentError:     &onvo.PaymentError{Message: "insufficient funds"},
		},
	}
	require.True(t, svc.HandleWebhook(context.Background(), ev))

	assert.Equal(t, models.PaymentStatusFailed, rec.Status)
	assert.Equal(t, "insufficient funds", rec.LastError)
	assert.Equal(t, 3, rec.ConfirmationAttempts)
	assert.False(t, rec.Listing.IsActive)
	assert.Nil(t, rec.CompletedAt)
}

func TestHandleWebhookDeferredMovesToProcessing(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})
	rec := listingRecord(repo, models.PaymentStatusCreated)

	ev := WebhookEvent{
		EventType: onvo.EventPaymentDeferred,
		Secret:    testSecret,
		Intent:    onvo.PaymentIntent{ID: rec.PaymentIntentID, Status: onvo.IntentStatusDeferred},
	}
	require.True(t, svc.HandleWebhook(context.Background(), ev))
	assert.Equal(t, models.PaymentStatusProcessing, rec.Status)
	assert.False(t, rec.Listing.IsActive)
}

func TestHandleWebhookWrongSecret(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})
	rec := listingRecord(repo, models.PaymentStatusCreated)

	ev := succeededEvent(rec.PaymentIntentID)
	ev.Secret = "whsec_wrong"
	ok := svc.HandleWebhook(context.Background(), ev)

	assert.False(t, ok)
	assert.Equal(t, models.PaymentStatusCreated, rec.Status)
	assert.False(t, rec.Listing.IsActive)
	assert.Zero(t, repo.saveCalls)
}

func TestHandleWebhookUnknownIntent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})

	ok := svc.HandleWebhook(context.Background(), succeededEvent("pi_missing"))
	assert.False(t, ok)
	assert.Empty(t, repo.records)
}

func TestHandleWebhookUnhandledEventType(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})
	rec := listingRecord(repo, models.PaymentStatusCreated)

	ev := WebhookEvent{
		EventType: "payment-intent.created",
		Secret:    testSecret,
		Intent:    onvo.PaymentIntent{ID: rec.PaymentIntentID},
	}
	ok := svc.HandleWebhook(context.Background(), ev)

	assert.True(t, ok, "unhandled event types are acknowledged and dropped")
	assert.Equal(t, models.PaymentStatusCreated, rec.Status)
	assert.Zero(t, repo.saveCalls)
}

func TestHandleWebhookPersistenceFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = gorm.ErrInvalidTransaction
	svc := newTestService(repo, &fakeGateway{})
	rec := listingRecord(repo, models.PaymentStatusCreated)

	ok := svc.HandleWebhook(context.Background(), succeededEvent(rec.PaymentIntentID))
	assert.False(t, ok)
}

func TestRecordWebhookEventDeduplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})

	in := WebhookEventLogInput{
		ProviderEventID: "evt_1",
		EventType:       onvo.EventPaymentSucceeded,
		PayloadJSON:     `{"id":"evt_1"}`,
		SecretValid:     true,
	}
	created, first, err := svc.RecordWebhookEvent(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, created)

	created, second, err := svc.RecordWebhookEvent(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestRecordWebhookEventHashesMissingEventID(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeGateway{})

	created, stored, err := svc.RecordWebhookEvent(context.Background(), WebhookEventLogInput{
		PayloadJSON: `{"type":"payment-intent.succeeded"}`,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, stored.ProviderEventID, "hash:")
}
