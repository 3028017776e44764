package repository

import (
	"github.com/autoplazacr/autoplaza/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	Count() (int64, error)
}

// ListingFilter narrows public listing queries. Zero values mean "no filter".
type ListingFilter struct {
	Make     string
	YearMin  int
	YearMax  int
	PriceMin int64
	PriceMax int64
	Province string
}

// ListingRepository defines the interface for listing-related database operations
type ListingRepository interface {
	Create(listing *models.Listing) error
	GetByID(id uint) (*models.Listing, error)
	GetByUUID(uuid string) (*models.Listing, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Listing, error)
	Update(listing *models.Listing) error
	Delete(id uint) error
	ListActive(filter ListingFilter, offset, limit int) ([]models.Listing, int64, error)
	ListPendingModeration(offset, limit int) ([]models.Listing, error)
	Count() (int64, error)
}

// AdvertisementRepository defines the interface for advertisement-related database operations
type AdvertisementRepository interface {
	Create(ad *models.Advertisement) error
	GetByID(id uint) (*models.Advertisement, error)
	Update(ad *models.Advertisement) error
	Delete(id uint) error
	ListActiveBySlot(slot string) ([]models.Advertisement, error)
	Count() (int64, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	User          UserRepository
	Listing       ListingRepository
	Advertisement AdvertisementRepository
}
