package repository

import (
	"leisuretimez/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(rv *models.Review) error {
	return r.db.Omit("User").Create(rv).Error
}

func (r *ReviewRepository) GetByID(id uint) (*models.Review, error) {
	var rv models.Review
	if err := r.db.First(&rv, id).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) Exists(userID, packageID uint) bool {
	var n int64
	r.db.Model(&models.Review{}).Where("user_id = ? AND package_id = ?", userID, packageID).Count(&n)
	return n > 0
}

func (r *ReviewRepository) ListByPackage(packageID uint) ([]models.Review, error) {
	var list []models.Review
	err := r.db.Preload("User").Where("package_id = ?", packageID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *ReviewRepository) Update(rv *models.Review) error {
	return r.db.Omit("User").Save(rv).Error
}

func (r *ReviewRepository) Delete(id uint) error {
	return r.db.Delete(&models.Review{}, id).Error
}
