package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Advertisement slot identifiers used by partner company banners.
const (
	AdSlotHomeTop     = "home_top"
	AdSlotHomeSide    = "home_side"
	AdSlotListingPage = "listing_page"
)

// Advertisement is a paid partner banner. It stays inactive until a payment
// for it succeeds, at which point it is published for its scheduled window.
type Advertisement struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CompanyName string         `gorm:"type:varchar(150);not null" json:"company_name"`
	ContactMail string         `gorm:"type:varchar(200)" json:"contact_mail"`
	ImageURL    string         `gorm:"type:varchar(255);not null" json:"image_url"`
	TargetURL   string         `gorm:"type:varchar(255)" json:"target_url"`
	Slot        string         `gorm:"type:varchar(30);not null;default:'home_side';index" json:"slot"`
	StartsAt    *time.Time     `gorm:"type:timestamp;default:null" json:"starts_at,omitempty"`
	EndsAt      *time.Time     `gorm:"type:timestamp;default:null" json:"ends_at,omitempty"`
	IsActive    bool           `gorm:"default:false;index" json:"is_active"`
	PublishedAt *time.Time     `gorm:"type:timestamp;default:null" json:"published_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Activate publishes the advertisement and stamps its publication time.
func (a *Advertisement) Activate(now time.Time) {
	a.IsActive = true
	a.PublishedAt = &now
}

func (a *Advertisement) Label() string {
	return fmt.Sprintf("advertisement %d (%s)", a.ID, a.CompanyName)
}

// IsValidAdSlot reports whether the given slot name is a known banner slot.
func IsValidAdSlot(slot string) bool {
	switch slot {
	case AdSlotHomeTop, AdSlotHomeSide, AdSlotListingPage:
		return true
	default:
		return false
	}
}
