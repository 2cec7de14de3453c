package service

import (
	"context"
	"errors"
	"io"
	"time"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"
	"leisuretimez/pkg/cloudinary"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrImageType     = errors.New("Invalid image type. Allowed: JPEG, PNG, GIF, WebP")
	ErrImageTooLarge = errors.New("Image too large. Maximum size is 5MB")
	ErrNoUploader    = errors.New("image upload is not configured")
)

// ProfileInput holds profile fields; nil pointers are left unchanged.
type ProfileInput struct {
	Address       *string
	City          *string
	State         *string
	Country       *string
	Phone         *string
	DateOfBirth   *time.Time
	MaritalStatus *string
	Profession    *string
	Gender        *string
}

type ProfileService struct {
	profiles *repository.ProfileRepository
	bookings *repository.BookingRepository
	images   cloudinary.Client
}

func NewProfileService(profiles *repository.ProfileRepository, bookings *repository.BookingRepository, images cloudinary.Client) *ProfileService {
	return &ProfileService{profiles: profiles, bookings: bookings, images: images}
}

func (s *ProfileService) Get(userID uint) (*models.CustomerProfile, error) {
	return s.profiles.GetOrCreate(userID)
}

func (s *ProfileService) Update(userID uint, in ProfileInput) (*models.CustomerProfile, error) {
	p, err := s.profiles.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Address, in.Address)
	set(&p.City, in.City)
	set(&p.State, in.State)
	set(&p.Country, in.Country)
	set(&p.Phone, in.Phone)
	set(&p.MaritalStatus, in.MaritalStatus)
	set(&p.Profession, in.Profession)
	set(&p.Gender, in.Gender)
	if in.DateOfBirth != nil {
		p.DateOfBirth = in.DateOfBirth
	}
	if err := s.profiles.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// CheckImage enforces the accepted content types and the 5MB limit.
func CheckImage(contentType string, size int64) error {
	if !domain.AllowedImageTypes[contentType] {
		return ErrImageType
	}
	if size > domain.MaxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}

// UploadImage stores a new profile picture and removes the previous upload.
func (s *ProfileService) UploadImage(ctx context.Context, userID uint, file io.Reader, contentType string, size int64) (*models.CustomerProfile, error) {
	if err := CheckImage(contentType, size); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, ErrNoUploader
	}
	p, err := s.profiles.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	url, err := s.images.UploadImage(ctx, file, cloudinary.FolderProfiles, uuid.NewString())
	if err != nil {
		return nil, err
	}
	old := p.ImageURL
	p.ImageURL = url
	if err := s.profiles.Update(p); err != nil {
		return nil, err
	}
	if old != "" {
		if err := s.images.DeleteByURL(ctx, old); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("delete old profile image")
		}
	}
	return p, nil
}

func (s *ProfileService) BookingHistory(userID uint) ([]models.Booking, error) {
	return s.bookings.ListByUser(userID)
}
