package repository

import (
	"leisuretimez/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

func (r *PromoRepository) WithTx(tx *gorm.DB) *PromoRepository {
	return &PromoRepository{db: tx}
}

func (r *PromoRepository) Create(p *models.PromoCode) error {
	return r.db.Create(p).Error
}

func (r *PromoRepository) List() ([]models.PromoCode, error) {
	var list []models.PromoCode
	err := r.db.Order("created_at DESC").Find(&list).Error
	return list, err
}

// LockByCode finds a code case-insensitively and locks the row.
func (r *PromoRepository) LockByCode(code string) (*models.PromoCode, error) {
	var p models.PromoCode
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("UPPER(code) = UPPER(?)", code).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PromoRepository) LockByID(id uint) (*models.PromoCode, error) {
	var p models.PromoCode
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PromoRepository) SetUses(id uint, uses int) error {
	return r.db.Model(&models.PromoCode{}).Where("id = ?", id).Update("current_uses", uses).Error
}

func (r *PromoRepository) SetActive(id uint, active bool) error {
	return r.db.Model(&models.PromoCode{}).Where("id = ?", id).Update("is_active", active).Error
}
