package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Payment statuses mirror the provider's payment-intent lifecycle.
const (
	PaymentStatusCreated    = "created"
	PaymentStatusProcessing = "processing"
	PaymentStatusSucceeded  = "succeeded"
	PaymentStatusFailed     = "failed"
)

var ErrAmbiguousPurchasable = errors.New("payment record must reference at most one of listing or advertisement")

// PaymentRecord is the local mirror of a provider payment intent, keyed by the
// provider's intent id so webhook deliveries correlate without an extra lookup
// table. It references at most one purchasable (listing or advertisement) and
// optionally the paying user.
type PaymentRecord struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	PaymentIntentID      string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"payment_intent_id"`
	Status               string         `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	Amount               int64          `gorm:"type:bigint;not null" json:"amount"`
	Currency             string         `gorm:"type:varchar(3);not null;default:'CRC'" json:"currency"`
	Description          string         `gorm:"type:varchar(255)" json:"description"`
	ConfirmationAttempts int            `gorm:"type:int;not null;default:0" json:"confirmation_attempts"`
	LastError            string         `gorm:"type:text" json:"last_error,omitempty"`
	CompletedAt          *time.Time     `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	UserID               *uint          `gorm:"index" json:"user_id,omitempty"`
	User                 *User          `gorm:"foreignKey:UserID" json:"-"`
	ListingID            *uint          `gorm:"index" json:"listing_id,omitempty"`
	Listing              *Listing       `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
	AdvertisementID      *uint          `gorm:"index" json:"advertisement_id,omitempty"`
	Advertisement        *Advertisement `gorm:"foreignKey:AdvertisementID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeSave enforces that a payment funds exactly one kind of purchasable.
func (p *PaymentRecord) BeforeSave(tx *gorm.DB) error {
	if p.ListingID != nil && p.AdvertisementID != nil {
		return ErrAmbiguousPurchasable
	}
	return nil
}

// Purchasable returns the referenced listing or advertisement, or nil when the
// record is not linked to either (an anonymous standalone payment).
func (p *PaymentRecord) Purchasable() Purchasable {
	if p.ListingID != nil && p.Listing != nil {
		return p.Listing
	}
	if p.AdvertisementID != nil && p.Advertisement != nil {
		return p.Advertisement
	}
	return nil
}
