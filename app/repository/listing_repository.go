package repository

import (
	"github.com/autoplazacr/autoplaza/app/models"
	"gorm.io/gorm"
)

// listingRepository implements the ListingRepository interface
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository instance
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create creates a new listing in the database
func (r *listingRepository) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

// GetByID retrieves a listing by its ID
func (r *listingRepository) GetByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetByUUID retrieves a listing by its public UUID
func (r *listingRepository) GetByUUID(uuid string) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Where("uuid = ?", uuid).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetByUserID retrieves a page of a user's listings, newest first
func (r *listingRepository) GetByUserID(userID uint, offset, limit int) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&listings).Error
	return listings, err
}

// Update updates an existing listing
func (r *listingRepository) Update(listing *models.Listing) error {
	return r.db.Save(listing).Error
}

// Delete soft-deletes a listing by ID
func (r *listingRepository) Delete(id uint) error {
	return r.db.Delete(&models.Listing{}, id).Error
}

// ListActive returns a filtered page of publicly visible listings plus the
// total match count for pagination.
func (r *listingRepository) ListActive(filter ListingFilter, offset, limit int) ([]models.Listing, int64, error) {
	q := r.db.Model(&models.Listing{}).
		Where("is_active = ? AND moderation_status = ?", true, models.ListingModerationApproved)

	if filter.Make != "" {
		q = q.Where("make = ?", filter.Make)
	}
	if filter.YearMin > 0 {
		q = q.Where("year >= ?", filter.YearMin)
	}
	if filter.YearMax > 0 {
		q = q.Where("year <= ?", filter.YearMax)
	}
	if filter.PriceMin > 0 {
		q = q.Where("price >= ?", filter.PriceMin)
	}
	if filter.PriceMax > 0 {
		q = q.Where("price <= ?", filter.PriceMax)
	}
	if filter.Province != "" {
		q = q.Where("province = ?", filter.Province)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.Listing
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&listings).Error
	return listings, total, err
}

// ListPendingModeration returns listings awaiting an admin decision
func (r *listingRepository) ListPendingModeration(offset, limit int) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.Where("moderation_status = ?", models.ListingModerationPending).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&listings).Error
	return listings, err
}

// Count returns the total number of listings
func (r *listingRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Listing{}).Count(&count).Error
	return count, err
}
