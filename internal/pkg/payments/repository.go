package payments

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/autoplazacr/autoplaza/app/models"
)

// Repository provides DB operations used by the payment service.
type Repository interface {
	CreateRecord(rec *models.PaymentRecord) error
	FindByPaymentIntentID(paymentIntentID string) (*models.PaymentRecord, error)
	SaveReconciliation(rec *models.PaymentRecord) error
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateRecord(rec *models.PaymentRecord) error {
	return r.db.Create(rec).Error
}

// FindByPaymentIntentID eager-loads the referenced listing/advertisement so
// the reconciler can mutate them in the same transaction.
func (r *gormRepository) FindByPaymentIntentID(paymentIntentID string) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	err := r.db.
		Preload("Listing").
		Preload("Advertisement").
		Where("payment_intent_id = ?", paymentIntentID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveReconciliation persists the record plus any mutated purchasable as a
// single unit.
func (r *gormRepository) SaveReconciliation(rec *models.PaymentRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(rec).Error; err != nil {
			return err
		}
		if rec.Listing != nil {
			if err := tx.Save(rec.Listing).Error; err != nil {
				return err
			}
		}
		if rec.Advertisement != nil {
			if err := tx.Save(rec.Advertisement).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
