package repository

import (
	"leisuretimez/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByGoogleID(googleID string) (*models.User, error) {
	var u models.User
	err := r.db.Where("google_id = ?", googleID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

func (r *UserRepository) Delete(u *models.User) error {
	return r.db.Delete(u).Error
}

// ActiveIDs returns IDs of active accounts, leaving out exclude.
func (r *UserRepository) ActiveIDs(exclude uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.User{}).Where("is_active = ? AND id <> ?", true, exclude).Pluck("id", &ids).Error
	return ids, err
}

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUserID(userID uint) (*models.CustomerProfile, error) {
	var p models.CustomerProfile
	err := r.db.Preload("User").Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetOrCreate(userID uint) (*models.CustomerProfile, error) {
	p := models.CustomerProfile{UserID: userID}
	if err := r.db.Where("user_id = ?", userID).FirstOrCreate(&p).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(userID)
}

func (r *ProfileRepository) Update(p *models.CustomerProfile) error {
	return r.db.Omit("User").Save(p).Error
}

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(log *models.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *AuditLogRepository) CreateDeletionLog(entry *models.AccountDeletionLog) error {
	return r.db.Create(entry).Error
}
