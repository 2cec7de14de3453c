package handler

import (
	"errors"
	"net/http"
	"strconv"

	"leisuretimez/internal/middleware"
	"leisuretimez/internal/repository"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) Index(c *gin.Context) {
	home, err := h.svc.Home(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, home)
}

// packageFilter reads the list filters. Numbers that do not parse are ignored.
func packageFilter(c *gin.Context) repository.PackageFilter {
	f := repository.PackageFilter{
		Search:    c.Query("search"),
		Continent: c.Query("continent"),
		Country:   c.Query("country"),
		Category:  c.Query("category"),
		SortBy:    c.Query("sort_by"),
	}
	if v, err := service.ParseAmount(c.Query("min_price")); err == nil {
		f.MinPrice = &v
	}
	if v, err := service.ParseAmount(c.Query("max_price")); err == nil {
		f.MaxPrice = &v
	}
	if v, err := strconv.Atoi(c.Query("min_duration")); err == nil {
		f.MinDuration = &v
	}
	if v, err := strconv.Atoi(c.Query("max_duration")); err == nil {
		f.MaxDuration = &v
	}
	return f
}

func (h *CatalogHandler) Packages(c *gin.Context) {
	list, err := h.svc.Packages(middleware.GetUserID(c), packageFilter(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) Package(c *gin.Context) {
	d, err := h.svc.Package(c.Param("pid"), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Save answers 208 when the package was already saved.
func (h *CatalogHandler) Save(c *gin.Context) {
	p, err := h.svc.Save(middleware.GetUserID(c), c.Param("pid"))
	if errors.Is(err, service.ErrAlreadySaved) {
		c.JSON(http.StatusAlreadyReported, gin.H{"message": `Package "` + p.Name + `" is already saved`})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": `Package "` + p.Name + `" saved successfully`})
}

func (h *CatalogHandler) Unsave(c *gin.Context) {
	p, err := h.svc.Unsave(middleware.GetUserID(c), c.Param("pid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": `Package "` + p.Name + `" unsaved successfully`})
}

func (h *CatalogHandler) Saved(c *gin.Context) {
	list, err := h.svc.SavedPackages(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SearchLocations takes ?country=&state=&state=&type=.
func (h *CatalogHandler) SearchLocations(c *gin.Context) {
	list, err := h.svc.SearchLocations(c.Query("country"), c.QueryArray("state"), c.Query("type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) SearchCountryLocations(c *gin.Context) {
	list, err := h.svc.SearchCountryPlaces(c.Query("country"), c.Query("places"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": list})
}

func (h *CatalogHandler) Events(c *gin.Context) {
	list, err := h.svc.Events(c.Query("country"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) Event(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	e, err := h.svc.Event(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *CatalogHandler) Destinations(c *gin.Context) {
	list, err := h.svc.Destinations()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) Carousel(c *gin.Context) {
	list, err := h.svc.Carousel(c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
