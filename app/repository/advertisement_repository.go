package repository

import (
	"time"

	"github.com/autoplazacr/autoplaza/app/models"
	"gorm.io/gorm"
)

// advertisementRepository implements the AdvertisementRepository interface
type advertisementRepository struct {
	db *gorm.DB
}

// NewAdvertisementRepository creates a new advertisement repository instance
func NewAdvertisementRepository(db *gorm.DB) AdvertisementRepository {
	return &advertisementRepository{db: db}
}

// Create creates a new advertisement in the database
func (r *advertisementRepository) Create(ad *models.Advertisement) error {
	return r.db.Create(ad).Error
}

// GetByID retrieves an advertisement by its ID
func (r *advertisementRepository) GetByID(id uint) (*models.Advertisement, error) {
	var ad models.Advertisement
	err := r.db.First(&ad, id).Error
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// Update updates an existing advertisement
func (r *advertisementRepository) Update(ad *models.Advertisement) error {
	return r.db.Save(ad).Error
}

// Delete soft-deletes an advertisement by ID
func (r *advertisementRepository) Delete(id uint) error {
	return r.db.Delete(&models.Advertisement{}, id).Error
}

// ListActiveBySlot returns published advertisements for a banner slot whose
// schedule window covers the current time.
func (r *advertisementRepository) ListActiveBySlot(slot string) ([]models.Advertisement, error) {
	now := time.Now()
	var ads []models.Advertisement
	err := r.db.Where("slot = ? AND is_active = ?", slot, true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("published_at DESC").
		Find(&ads).Error
	return ads, err
}

// Count returns the total number of advertisements
func (r *advertisementRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Advertisement{}).Count(&count).Error
	return count, err
}
