package repository

import (
	"strings"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"

	"gorm.io/gorm"
)

// PackageFilter holds the optional /packages query filters. Nil pointers are unset.
type PackageFilter struct {
	Search      string
	Continent   string
	Country     string
	Category    string
	MinPrice    *int64 // cents
	MaxPrice    *int64
	MinDuration *int
	MaxDuration *int
	SortBy      string
}

var packageSorts = map[string]string{
	"price":     "fixed_price_cents ASC",
	"-price":    "fixed_price_cents DESC",
	"duration":  "duration ASC",
	"-duration": "duration DESC",
	"name":      "name ASC",
	"-name":     "name DESC",
	"newest":    "created_at DESC",
}

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) WithTx(tx *gorm.DB) *PackageRepository {
	return &PackageRepository{db: tx}
}

func (r *PackageRepository) Create(p *models.Package) error {
	return r.db.Create(p).Error
}

// List returns active packages matching f.
func (r *PackageRepository) List(f PackageFilter) ([]models.Package, error) {
	q := r.db.Model(&models.Package{}).Where("status = ?", domain.StatusActive)
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Continent != "" {
		q = q.Where("LOWER(continent) = LOWER(?)", f.Continent)
	}
	if f.Country != "" {
		q = q.Where("LOWER(country) = LOWER(?)", f.Country)
	}
	if f.Category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("fixed_price_cents >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("fixed_price_cents <= ?", *f.MaxPrice)
	}
	if f.MinDuration != nil {
		q = q.Where("duration >= ?", *f.MinDuration)
	}
	if f.MaxDuration != nil {
		q = q.Where("duration <= ?", *f.MaxDuration)
	}
	if order, ok := packageSorts[f.SortBy]; ok {
		q = q.Order(order)
	} else {
		q = q.Order("id DESC").Order("category")
	}
	var list []models.Package
	err := q.Find(&list).Error
	return list, err
}

func (r *PackageRepository) ListActive() ([]models.Package, error) {
	var list []models.Package
	err := r.db.Where("status = ?", domain.StatusActive).Order("id DESC").Find(&list).Error
	return list, err
}

func (r *PackageRepository) GetByPackageID(pid string) (*models.Package, error) {
	var p models.Package
	err := r.db.Where("package_id = ?", pid).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PackageRepository) Images(packageID uint) ([]models.PackageImage, []models.GuestImage, error) {
	var imgs []models.PackageImage
	if err := r.db.Where("package_id = ?", packageID).Find(&imgs).Error; err != nil {
		return nil, nil, err
	}
	var guests []models.GuestImage
	if err := r.db.Where("package_id = ?", packageID).Find(&guests).Error; err != nil {
		return nil, nil, err
	}
	return imgs, guests, nil
}

func (r *PackageRepository) IncrementApplications(id uint) error {
	return r.db.Model(&models.Package{}).Where("id = ?", id).
		UpdateColumn("applications", gorm.Expr("applications + 1")).Error
}

func (r *PackageRepository) IncrementSubmissions(id uint) error {
	return r.db.Model(&models.Package{}).Where("id = ?", id).
		UpdateColumn("submissions", gorm.Expr("submissions + 1")).Error
}

type SavedPackageRepository struct {
	db *gorm.DB
}

func NewSavedPackageRepository(db *gorm.DB) *SavedPackageRepository {
	return &SavedPackageRepository{db: db}
}

func (r *SavedPackageRepository) Exists(userID, packageID uint) bool {
	var n int64
	r.db.Model(&models.SavedPackage{}).Where("user_id = ? AND package_id = ?", userID, packageID).Count(&n)
	return n > 0
}

func (r *SavedPackageRepository) Add(userID, packageID uint) error {
	return r.db.Create(&models.SavedPackage{UserID: userID, PackageID: packageID}).Error
}

func (r *SavedPackageRepository) Remove(userID, packageID uint) error {
	return r.db.Where("user_id = ? AND package_id = ?", userID, packageID).Delete(&models.SavedPackage{}).Error
}

// PackageIDs returns the set of package IDs the user has saved.
func (r *SavedPackageRepository) PackageIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	if err := r.db.Model(&models.SavedPackage{}).Where("user_id = ?", userID).Pluck("package_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *SavedPackageRepository) Packages(userID uint) ([]models.Package, error) {
	var list []models.Package
	err := r.db.Joins("JOIN saved_packages ON saved_packages.package_id = packages.id").
		Where("saved_packages.user_id = ?", userID).
		Order("saved_packages.created_at DESC").
		Find(&list).Error
	return list, err
}

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ActiveDestinations() ([]models.Destination, error) {
	var list []models.Destination
	err := r.db.Where("status = ?", domain.StatusActive).Order("id DESC").Find(&list).Error
	return list, err
}

func (r *CatalogRepository) Events(country string, activeOnly bool) ([]models.Event, error) {
	q := r.db.Model(&models.Event{})
	if activeOnly {
		q = q.Where("status = ?", domain.StatusActive)
	}
	if country != "" {
		q = q.Where("LOWER(country) = LOWER(?)", country)
	}
	var list []models.Event
	err := q.Order("id DESC").Find(&list).Error
	return list, err
}

func (r *CatalogRepository) GetEvent(id uint) (*models.Event, error) {
	var e models.Event
	if err := r.db.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// Carousel returns active slides ordered by position, newest first within a position.
func (r *CatalogRepository) Carousel(category string) ([]models.Carousel, error) {
	q := r.db.Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var list []models.Carousel
	err := q.Order("position ASC").Order("created_at DESC").Find(&list).Error
	return list, err
}

// SearchLocations matches country and type exactly (case-insensitive) and any of states as
// a substring.
func (r *CatalogRepository) SearchLocations(country string, states []string, locType string) ([]models.Location, error) {
	q := r.db.Model(&models.Location{}).
		Where("LOWER(country) = LOWER(?)", country).
		Where("LOWER(type) = LOWER(?)", locType)
	if len(states) > 0 {
		or := r.db.Where("LOWER(state) LIKE ?", "%"+strings.ToLower(states[0])+"%")
		for _, st := range states[1:] {
			or = or.Or("LOWER(state) LIKE ?", "%"+strings.ToLower(st)+"%")
		}
		q = q.Where(or)
	}
	var list []models.Location
	err := q.Order("title").Find(&list).Error
	return list, err
}

func (r *CatalogRepository) LocationsByTypes(country string, types []string) ([]models.Location, error) {
	var list []models.Location
	err := r.db.Where("LOWER(country) = LOWER(?) AND type IN ?", country, types).Order("title").Find(&list).Error
	return list, err
}
