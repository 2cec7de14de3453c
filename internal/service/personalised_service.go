package service

import (
	"errors"
	"slices"
	"time"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"
)

var (
	ErrRequestNotFound   = errors.New("Request not found")
	ErrInvalidEventType  = errors.New("invalid event_type")
	ErrInvalidCruiseType = errors.New("invalid cruise_type")
	ErrInvalidRequestSt  = errors.New("invalid status")
	ErrRequestDates      = errors.New("date_to cannot be before date_from")
)

// RequestInput carries the customer-editable fields of a personalised request. Status
// and AdminNotes are honoured for staff only.
type RequestInput struct {
	EventType            string
	DateFrom             time.Time
	DateTo               time.Time
	DurationHours        *int
	DurationDays         *int
	CruiseType           string
	Continent            string
	Country              string
	State                string
	PreferredDestination string
	Guests               int
	Adults               int
	Children             int
	Catering             bool
	BarAttendance        bool
	Decoration           bool
	SpecialSecurity      bool
	Photography          bool
	Entertainment        bool
	AdditionalComments   string

	Status     *string
	AdminNotes *string
}

// PersonalisedService manages custom event requests. With cruise set every request is
// forced to the cruise event type and only cruise requests are visible.
type PersonalisedService struct {
	repo   *repository.PersonalisedBookingRepository
	cruise bool
}

func NewPersonalisedService(repo *repository.PersonalisedBookingRepository) *PersonalisedService {
	return &PersonalisedService{repo: repo}
}

func NewCruiseService(repo *repository.PersonalisedBookingRepository) *PersonalisedService {
	return &PersonalisedService{repo: repo, cruise: true}
}

func (s *PersonalisedService) validate(in *RequestInput) error {
	if s.cruise {
		in.EventType = domain.EventCruise
	}
	if !slices.Contains(domain.EventTypes, in.EventType) {
		return ErrInvalidEventType
	}
	if in.CruiseType != "" && !slices.Contains(domain.CruiseTypes, in.CruiseType) {
		return ErrInvalidCruiseType
	}
	if in.DateTo.Before(in.DateFrom) {
		return ErrRequestDates
	}
	if in.Adults < 1 {
		in.Adults = 1
	}
	in.Children = max(in.Children, 0)
	in.Guests = max(in.Guests, 0)
	return nil
}

func (s *PersonalisedService) Create(userID uint, in RequestInput) (*models.PersonalisedBooking, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	b := &models.PersonalisedBooking{UserID: userID, Status: domain.RequestPending}
	fillRequest(b, in)
	if err := s.repo.Create(b); err != nil {
		return nil, err
	}
	return b, nil
}

func fillRequest(b *models.PersonalisedBooking, in RequestInput) {
	b.EventType = in.EventType
	b.DateFrom = in.DateFrom
	b.DateTo = in.DateTo
	b.DurationHours = in.DurationHours
	b.DurationDays = in.DurationDays
	b.CruiseType = in.CruiseType
	b.Continent = in.Continent
	b.Country = in.Country
	b.State = in.State
	b.PreferredDestination = in.PreferredDestination
	b.Guests = in.Guests
	b.Adults = in.Adults
	b.Children = in.Children
	b.Catering = in.Catering
	b.BarAttendance = in.BarAttendance
	b.Decoration = in.Decoration
	b.SpecialSecurity = in.SpecialSecurity
	b.Photography = in.Photography
	b.Entertainment = in.Entertainment
	b.AdditionalComments = in.AdditionalComments
}

func (s *PersonalisedService) eventFilter() string {
	if s.cruise {
		return domain.EventCruise
	}
	return ""
}

func (s *PersonalisedService) List(userID uint, staff bool) ([]models.PersonalisedBooking, error) {
	if staff {
		userID = 0
	}
	return s.repo.List(userID, s.eventFilter())
}

func (s *PersonalisedService) Get(id, userID uint, staff bool) (*models.PersonalisedBooking, error) {
	b, err := s.repo.GetByID(id)
	if err != nil || (!staff && b.UserID != userID) || (s.cruise && b.EventType != domain.EventCruise) {
		return nil, ErrRequestNotFound
	}
	return b, nil
}

// Update replaces the request fields. Staff may also move the status and leave notes.
func (s *PersonalisedService) Update(id, userID uint, staff bool, in RequestInput) (*models.PersonalisedBooking, error) {
	b, err := s.Get(id, userID, staff)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	fillRequest(b, in)
	if staff {
		if in.Status != nil {
			switch *in.Status {
			case domain.RequestPending, domain.RequestReviewed, domain.RequestApproved, domain.RequestRejected, domain.RequestCompleted:
				b.Status = *in.Status
			default:
				return nil, ErrInvalidRequestSt
			}
		}
		if in.AdminNotes != nil {
			b.AdminNotes = *in.AdminNotes
		}
	}
	if err := s.repo.Update(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *PersonalisedService) Delete(id, userID uint, staff bool) error {
	b, err := s.Get(id, userID, staff)
	if err != nil {
		return err
	}
	return s.repo.Delete(b.ID)
}
