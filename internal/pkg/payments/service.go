package payments

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/autoplazacr/autoplaza/app/models"
	"github.com/autoplazacr/autoplaza/internal/pkg/onvo"
)

// ProviderOnvo tags records and webhook events originating from ONVO Pay.
const ProviderOnvo = "onvo"

// Gateway is the provider client surface the service depends on.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, in onvo.CreateIntentInput) (*onvo.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) *onvo.PaymentIntent
	PublishableKey() string
}

// Service creates payment intents and reconciles provider webhook deliveries
// against local payment records and their purchasables.
type Service struct {
	gateway       Gateway
	repo          Repository
	webhookSecret string
}

// NewService creates a payment service from injected collaborators.
func NewService(gateway Gateway, repo Repository, webhookSecret string) *Service {
	return &Service{gateway: gateway, repo: repo, webhookSecret: webhookSecret}
}

// NewServiceFromDB creates a payment service from a GORM DB handle and an
// ONVO client.
func NewServiceFromDB(db *gorm.DB, client *onvo.Client) *Service {
	return NewService(client, NewRepository(db), client.WebhookSecret)
}

// CreatePaymentIntent opens an intent with the provider and synchronously
// mirrors it as a local payment record. No record is persisted when the
// provider call fails.
func (s *Service) CreatePaymentIntent(ctx context.Context, in CreatePaymentInput) (*onvo.PaymentIntent, error) {
	if in.ListingID != nil && in.AdvertisementID != nil {
		return nil, models.ErrAmbiguousPurchasable
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, onvo.CreateIntentInput{
		Amount:          in.Amount,
		Currency:        in.Currency,
		Description:     in.Description,
		ListingID:       in.ListingID,
		AdvertisementID: in.AdvertisementID,
		Metadata:        in.Metadata,
	})
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(intent.Status)
	if status == "" {
		status = models.PaymentStatusCreated
	}

	rec := &models.PaymentRecord{
		PaymentIntentID: intent.ID,
		Status:          status,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		Description:     intent.Description,
		UserID:          in.UserID,
		ListingID:       in.ListingID,
		AdvertisementID: in.AdvertisementID,
	}
	if err := s.repo.CreateRecord(rec); err != nil {
		return nil, err
	}
	return intent, nil
}

// GetPaymentIntent reads an intent from the provider, best effort.
func (s *Service) GetPaymentIntent(ctx context.Context, id string) *onvo.PaymentIntent {
	return s.gateway.GetPaymentIntent(ctx, id)
}

// PublishableKey exposes the provider key for checkout widget initialization.
func (s *Service) PublishableKey() string {
	return s.gateway.PublishableKey()
}

// VerifyWebhookSecret compares a delivered secret against the configured one
// in constant time.
func (s *Service) VerifyWebhookSecret(secret string) bool {
	if s.webhookSecret == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.webhookSecret)) == 1
}

// HandleWebhook applies an inbound provider event to the local payment record
// and its purchasable. Every failure path logs the reason and degrades to
// false; nothing escapes to the HTTP boundary.
func (s *Service) HandleWebhook(ctx context.Context, ev WebhookEvent) bool {
	_ = ctx
	if !s.VerifyWebhookSecret(ev.Secret) {
		log.Printf("payments: webhook rejected for intent %s: secret mismatch", ev.Intent.ID)
		return false
	}

	rec, err := s.repo.FindByPaymentIntentID(ev.Intent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("payments: webhook dropped: no record for intent %s", ev.Intent.ID)
		} else {
			log.Printf("payments: webhook lookup failed for intent %s: %v", ev.Intent.ID, err)
		}
		return false
	}

	rec.ConfirmationAttempts = ev.Intent.ConfirmationAttempts
	if ev.Intent.LastPaymentError != nil {
		rec.LastError = ev.Intent.LastPaymentError.Message
	}

	target := ""
	switch ev.EventType {
	case onvo.EventPaymentSucceeded:
		target = models.PaymentStatusSucceeded
	case onvo.EventPaymentFailed:
		target = models.PaymentStatusFailed
	case onvo.EventPaymentDeferred:
		target = models.PaymentStatusProcessing
	default:
		log.Printf("payments: unhandled webhook event type %q for intent %s", ev.EventType, ev.Intent.ID)
		return true
	}

	if !CanTransition(rec.Status, target) {
		log.Printf("payments: rejecting transition %s -> %s for intent %s", rec.Status, target, ev.Intent.ID)
		return false
	}

	now := time.Now()
	rec.Status = target
	if target == models.PaymentStatusSucceeded {
		if rec.CompletedAt == nil {
			rec.CompletedAt = &now
		}
		if p := rec.Purchasable(); p != nil {
			p.Activate(now)
			log.Printf("payments: intent %s succeeded, activated %s", ev.Intent.ID, p.Label())
		}
	}

	if err := s.repo.SaveReconciliation(rec); err != nil {
		log.Printf("payments: persisting reconciliation for intent %s: %v", ev.Intent.ID, err)
		return false
	}
	return true
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventLogInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        ProviderOnvo,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SecretValid:     in.SecretValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
