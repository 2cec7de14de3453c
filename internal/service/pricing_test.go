package service

import (
	"testing"
	"time"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOffersSkipsMalformedTiers(t *testing.T) {
	offers := ParseOffers("1,0,500- 2 , 1 ,750.50-bad-3,x,10-4,4")
	require.Len(t, offers, 2)
	assert.Equal(t, Offer{Adult: 1, Children: 0, PriceCents: 50000}, offers[0])
	assert.Equal(t, Offer{Adult: 2, Children: 1, PriceCents: 75050}, offers[1])
}

func TestPrice(t *testing.T) {
	fixed := &models.Package{PriceOption: domain.PriceOptionFixed, FixedPriceCents: 12345}
	offer := &models.Package{PriceOption: domain.PriceOptionOffer, DiscountPrice: "2,0,800-4,2,1500"}
	empty := &models.Package{PriceOption: domain.PriceOptionOffer}

	assert.Equal(t, int64(12345), Price(fixed, 9, 9))
	assert.Equal(t, int64(80000), Price(offer, 1, 0))
	assert.Equal(t, int64(150000), Price(offer, 3, 0))
	assert.Equal(t, int64(0), Price(offer, 5, 0))
	assert.Equal(t, int64(0), Price(empty, 1, 0))
}

func TestRefundCents(t *testing.T) {
	tests := []struct {
		days int
		want int64
	}{
		{30, 10000},
		{domain.FullRefundDays, 10000},
		{domain.FullRefundDays - 1, 5000},
		{domain.HalfRefundDays, 5000},
		{domain.HalfRefundDays - 1, 0},
		{-2, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RefundCents(10000, tt.days), "days=%d", tt.days)
	}
	assert.Equal(t, int64(5000), RefundCents(10001, domain.HalfRefundDays))
	assert.Equal(t, int64(50), RefundCents(101, domain.HalfRefundDays))
	assert.Equal(t, int64(52), RefundCents(103, domain.HalfRefundDays))
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	start := time.Date(2026, 3, 8, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 7, DaysUntil(start, now))
	assert.Equal(t, -7, DaysUntil(now, start))
}

func TestTaxAndPercentRounding(t *testing.T) {
	assert.Equal(t, int64(750), TaxCents(7.5, 10000))
	assert.Equal(t, int64(1), TaxCents(7.5, 10))
	assert.Equal(t, int64(333), PercentOf(1000, 33.33))
}

func TestParseAndFormatAmount(t *testing.T) {
	c, err := ParseAmount(" 12.5 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), c)

	c, err = ParseAmount("7")
	require.NoError(t, err)
	assert.Equal(t, int64(700), c)

	for _, bad := range []string{"", "abc", "NaN", "Inf"} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrBadAmount, bad)
	}

	assert.Equal(t, "1234.50", FormatCents(123450))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-3.20", FormatCents(-320))
}

func TestPromoRules(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &models.PromoCode{
		DiscountType:   domain.DiscountFixed,
		AmountOffCents: 5000,
		MinOrderCents:  10000,
		MaxUses:        2,
		CurrentUses:    1,
		ValidFrom:      now.Add(-time.Hour),
		ValidTo:        now.Add(time.Hour),
		IsActive:       true,
	}
	assert.True(t, PromoValid(p, now))
	assert.Equal(t, int64(5000), PromoDiscount(p, 20000))
	assert.Equal(t, int64(0), PromoDiscount(p, 9999))

	p.MinOrderCents = 0
	assert.Equal(t, int64(3000), PromoDiscount(p, 3000))

	p.CurrentUses = 2
	assert.False(t, PromoValid(p, now))
	p.CurrentUses = 0
	assert.False(t, PromoValid(p, now.Add(2*time.Hour)))
	p.IsActive = false
	assert.False(t, PromoValid(p, now))

	pct := &models.PromoCode{DiscountType: domain.DiscountPercentage, PercentOff: 15}
	assert.Equal(t, int64(1500), PromoDiscount(pct, 10000))
}
