package service

import (
	"errors"
	"strings"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrAlreadySaved    = errors.New("package already saved")
	ErrLocationParams  = errors.New("country and places parameters are required")
	ErrCountryCode     = errors.New("Invalid country code")
	ErrEventNotFound   = errors.New("Event not found")
	ErrInvalidCarousel = errors.New("category must be personalise, cruise or packages")
)

type HomePage struct {
	Packages     []models.Package     `json:"packages"`
	Destinations []models.Destination `json:"destinations"`
	Events       []models.Event       `json:"events"`
	Carousel     []models.Carousel    `json:"carousel"`
}

type PackageDetail struct {
	Package       *models.Package       `json:"package"`
	PackageImages []models.PackageImage `json:"package_images"`
	GuestImages   []models.GuestImage   `json:"guest_images"`
}

// PlaceResult is one row of a country-code location search.
type PlaceResult struct {
	Title string `json:"title"`
	State string `json:"state"`
}

type CatalogService struct {
	packages *repository.PackageRepository
	saved    *repository.SavedPackageRepository
	catalog  *repository.CatalogRepository
}

func NewCatalogService(packages *repository.PackageRepository, saved *repository.SavedPackageRepository, catalog *repository.CatalogRepository) *CatalogService {
	return &CatalogService{packages: packages, saved: saved, catalog: catalog}
}

// markSaved sets IsSaved on each package for userID. Anonymous callers (0) see none saved.
func (s *CatalogService) markSaved(list []models.Package, userID uint) error {
	if userID == 0 || len(list) == 0 {
		return nil
	}
	ids, err := s.saved.PackageIDs(userID)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].IsSaved = ids[list[i].ID]
	}
	return nil
}

func (s *CatalogService) Home(userID uint) (*HomePage, error) {
	pkgs, err := s.packages.ListActive()
	if err != nil {
		return nil, err
	}
	if err := s.markSaved(pkgs, userID); err != nil {
		return nil, err
	}
	dests, err := s.catalog.ActiveDestinations()
	if err != nil {
		return nil, err
	}
	events, err := s.catalog.Events("", true)
	if err != nil {
		return nil, err
	}
	slides, err := s.catalog.Carousel("")
	if err != nil {
		return nil, err
	}
	return &HomePage{Packages: pkgs, Destinations: dests, Events: events, Carousel: slides}, nil
}

func (s *CatalogService) Packages(userID uint, f repository.PackageFilter) ([]models.Package, error) {
	list, err := s.packages.List(f)
	if err != nil {
		return nil, err
	}
	return list, s.markSaved(list, userID)
}

func (s *CatalogService) pkg(pid string) (*models.Package, error) {
	p, err := s.packages.GetByPackageID(pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) Package(pid string, userID uint) (*PackageDetail, error) {
	p, err := s.pkg(pid)
	if err != nil {
		return nil, err
	}
	imgs, guests, err := s.packages.Images(p.ID)
	if err != nil {
		return nil, err
	}
	if userID != 0 {
		p.IsSaved = s.saved.Exists(userID, p.ID)
	}
	return &PackageDetail{Package: p, PackageImages: imgs, GuestImages: guests}, nil
}

// Save bookmarks a package. ErrAlreadySaved is returned along with the package when it
// was already saved.
func (s *CatalogService) Save(userID uint, pid string) (*models.Package, error) {
	p, err := s.pkg(pid)
	if err != nil {
		return nil, err
	}
	if s.saved.Exists(userID, p.ID) {
		return p, ErrAlreadySaved
	}
	if err := s.saved.Add(userID, p.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return p, ErrAlreadySaved
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) Unsave(userID uint, pid string) (*models.Package, error) {
	p, err := s.pkg(pid)
	if err != nil {
		return nil, err
	}
	return p, s.saved.Remove(userID, p.ID)
}

func (s *CatalogService) SavedPackages(userID uint) ([]models.Package, error) {
	list, err := s.saved.Packages(userID)
	for i := range list {
		list[i].IsSaved = true
	}
	return list, err
}

func (s *CatalogService) SearchLocations(country string, states []string, locType string) ([]models.Location, error) {
	return s.catalog.SearchLocations(country, states, locType)
}

// SearchCountryPlaces resolves an ISO alpha-2 code and returns locations of the given
// comma-separated types.
func (s *CatalogService) SearchCountryPlaces(code, places string) ([]PlaceResult, error) {
	if code == "" || places == "" {
		return nil, ErrLocationParams
	}
	name, ok := domain.CountryName(code)
	if !ok {
		return nil, ErrCountryCode
	}
	types := strings.Split(places, ",")
	for i := range types {
		types[i] = strings.TrimSpace(types[i])
	}
	locs, err := s.catalog.LocationsByTypes(name, types)
	if err != nil {
		return nil, err
	}
	out := make([]PlaceResult, 0, len(locs))
	for _, l := range locs {
		out = append(out, PlaceResult{Title: l.Title, State: l.State})
	}
	return out, nil
}

func (s *CatalogService) Events(country string) ([]models.Event, error) {
	return s.catalog.Events(country, true)
}

func (s *CatalogService) Event(id uint) (*models.Event, error) {
	e, err := s.catalog.GetEvent(id)
	if err != nil || e.Status != domain.StatusActive {
		return nil, ErrEventNotFound
	}
	return e, nil
}

func (s *CatalogService) Destinations() ([]models.Destination, error) {
	return s.catalog.ActiveDestinations()
}

func (s *CatalogService) Carousel(category string) ([]models.Carousel, error) {
	switch category {
	case "", domain.CarouselPersonalise, domain.CarouselCruise, domain.CarouselPackages:
	default:
		return nil, ErrInvalidCarousel
	}
	return s.catalog.Carousel(category)
}
