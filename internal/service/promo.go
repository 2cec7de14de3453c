package service

import (
	"time"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
)

// PromoValid reports whether the code can be redeemed at now.
func PromoValid(p *models.PromoCode, now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if now.Before(p.ValidFrom) || now.After(p.ValidTo) {
		return false
	}
	if p.MaxUses > 0 && p.CurrentUses >= p.MaxUses {
		return false
	}
	return true
}

// PromoDiscount is the amount taken off amountCents. Orders below the minimum get nothing
// and a fixed discount never exceeds the order.
func PromoDiscount(p *models.PromoCode, amountCents int64) int64 {
	if amountCents < p.MinOrderCents {
		return 0
	}
	switch p.DiscountType {
	case domain.DiscountPercentage:
		return PercentOf(amountCents, p.PercentOff)
	case domain.DiscountFixed:
		if p.AmountOffCents > amountCents {
			return amountCents
		}
		return p.AmountOffCents
	}
	return 0
}
