package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
)

var ErrBadAmount = errors.New("invalid amount")

// Offer is one "adult,children,price" tier of a package's offer pricing.
type Offer struct {
	Adult      int   `json:"adult"`
	Children   int   `json:"children"`
	PriceCents int64 `json:"price_cents"`
}

// ParseOffers reads "a,c,price-a,c,price". Malformed tiers are skipped.
func ParseOffers(discountPrice string) []Offer {
	var offers []Offer
	for _, part := range strings.Split(discountPrice, "-") {
		fields := strings.Split(part, ",")
		if len(fields) < 3 {
			continue
		}
		adult, err1 := strconv.Atoi(strings.TrimSpace(fields[0]))
		children, err2 := strconv.Atoi(strings.TrimSpace(fields[1]))
		price, err3 := ParseAmount(fields[2])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		offers = append(offers, Offer{Adult: adult, Children: children, PriceCents: price})
	}
	return offers
}

// MatchOffer returns the first tier that accommodates the party.
func MatchOffer(offers []Offer, adult, children int) (Offer, bool) {
	for _, o := range offers {
		if o.Adult >= adult && o.Children >= children {
			return o, true
		}
	}
	return Offer{}, false
}

// Price returns the package price for the party, or 0 when no offer tier fits.
func Price(pkg *models.Package, adult, children int) int64 {
	if pkg.PriceOption == domain.PriceOptionFixed {
		return pkg.FixedPriceCents
	}
	if pkg.DiscountPrice == "" {
		return 0
	}
	if o, ok := MatchOffer(ParseOffers(pkg.DiscountPrice), adult, children); ok {
		return o.PriceCents
	}
	return 0
}

// TaxCents is vat percent of amount, rounded half away from zero to the cent.
func TaxCents(vatPercent float64, amountCents int64) int64 {
	return int64(math.Round(vatPercent * float64(amountCents) / 100))
}

// PercentOf is used for percentage discounts.
func PercentOf(amountCents int64, percent float64) int64 {
	return int64(math.Round(float64(amountCents) * percent / 100))
}

// RefundCents applies the cancellation tiers to what was paid. Half refunds round
// half to even.
func RefundCents(paidCents int64, daysUntilTrip int) int64 {
	switch {
	case daysUntilTrip >= domain.FullRefundDays:
		return paidCents
	case daysUntilTrip >= domain.HalfRefundDays:
		return int64(math.RoundToEven(float64(paidCents) / 2))
	default:
		return 0
	}
}

// DaysUntil counts calendar days from now's date to start's date.
func DaysUntil(start, now time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(s.Sub(n).Hours() / 24)
}

// ParseAmount converts a decimal string such as "12.5" to cents.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrBadAmount
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrBadAmount
	}
	return CentsFromFloat(f), nil
}

func CentsFromFloat(f float64) int64 {
	return int64(math.Round(f * 100))
}

// FormatCents renders cents as "1234.50".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
