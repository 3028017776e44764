package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ListingModerationPending  = "pending"
	ListingModerationApproved = "approved"
	ListingModerationRejected = "rejected"
)

// Listing is a car classified ad. A new listing starts unmoderated and
// invisible; it becomes publicly visible once a payment for it succeeds.
type Listing struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UUID             string         `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	User             User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title            string         `gorm:"type:varchar(255);not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	Make             string         `gorm:"type:varchar(80);not null;index" json:"make"`
	Model            string         `gorm:"type:varchar(80);not null;index" json:"model"`
	Year             int            `gorm:"type:int;not null;index" json:"year"`
	Mileage          int            `gorm:"type:int" json:"mileage"`
	Price            int64          `gorm:"type:bigint;not null;index" json:"price"`
	Currency         string         `gorm:"type:varchar(3);not null;default:'CRC'" json:"currency"`
	Province         string         `gorm:"type:varchar(80)" json:"province"`
	Plan             string         `gorm:"type:varchar(30);not null;default:'basico'" json:"plan"`
	ModerationStatus string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"moderation_status"`
	ModerationNote   string         `gorm:"type:text" json:"moderation_note,omitempty"`
	IsActive         bool           `gorm:"default:false;index" json:"is_active"`
	ActivatedAt      *time.Time     `gorm:"type:timestamp;default:null" json:"activated_at,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == "" {
		l.UUID = uuid.New().String()
	}
	return nil
}

// Activate makes the listing publicly visible. Called by the payment
// reconciler when the intent funding this listing succeeds.
func (l *Listing) Activate(now time.Time) {
	l.IsActive = true
	l.ActivatedAt = &now
}

func (l *Listing) Label() string {
	return fmt.Sprintf("listing %s", l.UUID)
}
