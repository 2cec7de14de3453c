package service

import (
	"errors"
	"strings"
	"time"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrPromoExists    = errors.New("promo code already exists")
	ErrPromoBadInput  = errors.New("code, discount_type and a positive discount are required")
	ErrPromoBadPeriod = errors.New("valid_to must be after valid_from")
)

// PromoInput is the staff form for a new promo code. Amounts are cents.
type PromoInput struct {
	Code           string
	DiscountType   string
	PercentOff     float64
	AmountOffCents int64
	MinOrderCents  int64
	MaxUses        int
	ValidFrom      time.Time
	ValidTo        time.Time
	IsActive       *bool
}

type AdminService struct {
	admin  *repository.AdminRepository
	promos *repository.PromoRepository
}

func NewAdminService(admin *repository.AdminRepository, promos *repository.PromoRepository) *AdminService {
	return &AdminService{admin: admin, promos: promos}
}

func (s *AdminService) Dashboard() (*repository.DashboardStats, error) {
	return s.admin.GetDashboardStats()
}

func (s *AdminService) Users(search string, page, limit int) ([]models.User, int64, error) {
	return s.admin.ListUsers(search, page, limit)
}

func (s *AdminService) Promos() ([]models.PromoCode, error) {
	return s.promos.List()
}

// CreatePromo stores a code in upper case.
func (s *AdminService) CreatePromo(in PromoInput) (*models.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, ErrPromoBadInput
	}
	switch in.DiscountType {
	case domain.DiscountPercentage:
		if in.PercentOff <= 0 || in.PercentOff > 100 {
			return nil, ErrPromoBadInput
		}
	case domain.DiscountFixed:
		if in.AmountOffCents <= 0 {
			return nil, ErrPromoBadInput
		}
	default:
		return nil, ErrPromoBadInput
	}
	if !in.ValidTo.After(in.ValidFrom) {
		return nil, ErrPromoBadPeriod
	}
	p := &models.PromoCode{
		Code:           code,
		DiscountType:   in.DiscountType,
		PercentOff:     in.PercentOff,
		AmountOffCents: in.AmountOffCents,
		MinOrderCents:  max(in.MinOrderCents, 0),
		MaxUses:        max(in.MaxUses, 0),
		ValidFrom:      in.ValidFrom,
		ValidTo:        in.ValidTo,
		IsActive:       in.IsActive == nil || *in.IsActive,
	}
	active := p.IsActive
	if err := s.promos.Create(p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPromoExists
		}
		return nil, err
	}
	// is_active defaults to true in the schema, so a false value is not written on insert.
	if !active {
		if err := s.promos.SetActive(p.ID, false); err != nil {
			return nil, err
		}
		p.IsActive = false
	}
	return p, nil
}
