package service

import (
	"errors"
	"math"

	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrReviewNotBooked = errors.New("You can only review packages you have booked")
	ErrReviewExists    = errors.New("You have already reviewed this package")
	ErrReviewNotFound  = errors.New("Review not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

type ReviewList struct {
	Reviews       []models.Review `json:"reviews"`
	Count         int             `json:"count"`
	AverageRating *float64        `json:"average_rating"`
}

type ReviewService struct {
	reviews  *repository.ReviewRepository
	packages *repository.PackageRepository
	bookings *repository.BookingRepository
}

func NewReviewService(reviews *repository.ReviewRepository, packages *repository.PackageRepository, bookings *repository.BookingRepository) *ReviewService {
	return &ReviewService{reviews: reviews, packages: packages, bookings: bookings}
}

func (s *ReviewService) pkg(pid string) (*models.Package, error) {
	p, err := s.packages.GetByPackageID(pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns a package's reviews with the average rounded to two places, nil when
// there are none.
func (s *ReviewService) List(pid string) (*ReviewList, error) {
	p, err := s.pkg(pid)
	if err != nil {
		return nil, err
	}
	list, err := s.reviews.ListByPackage(p.ID)
	if err != nil {
		return nil, err
	}
	out := &ReviewList{Reviews: list, Count: len(list)}
	if len(list) > 0 {
		sum := 0
		for _, r := range list {
			sum += r.Rating
		}
		avg := math.Round(float64(sum)/float64(len(list))*100) / 100
		out.AverageRating = &avg
	}
	return out, nil
}

func validRating(r int) bool { return r >= 1 && r <= 5 }

// Create stores a review from a customer with a paid booking for the package.
func (s *ReviewService) Create(userID uint, pid string, rating int, comment string) (*models.Review, error) {
	p, err := s.pkg(pid)
	if err != nil {
		return nil, err
	}
	if !s.bookings.HasPaidBooking(userID, p.PackageID) {
		return nil, ErrReviewNotBooked
	}
	if s.reviews.Exists(userID, p.ID) {
		return nil, ErrReviewExists
	}
	if !validRating(rating) {
		return nil, ErrInvalidRating
	}
	rv := &models.Review{UserID: userID, PackageID: p.ID, Rating: rating, Comment: comment}
	if err := s.reviews.Create(rv); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrReviewExists
		}
		return nil, err
	}
	return rv, nil
}

func (s *ReviewService) own(id, userID uint) (*models.Review, error) {
	rv, err := s.reviews.GetByID(id)
	if err != nil || rv.UserID != userID {
		return nil, ErrReviewNotFound
	}
	return rv, nil
}

func (s *ReviewService) Update(id, userID uint, rating int, comment string) (*models.Review, error) {
	rv, err := s.own(id, userID)
	if err != nil {
		return nil, err
	}
	if !validRating(rating) {
		return nil, ErrInvalidRating
	}
	rv.Rating = rating
	rv.Comment = comment
	if err := s.reviews.Update(rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *ReviewService) Delete(id, userID uint) error {
	rv, err := s.own(id, userID)
	if err != nil {
		return err
	}
	return s.reviews.Delete(rv.ID)
}
