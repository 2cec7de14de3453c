package handler

import (
	"net/http"

	"leisuretimez/internal/middleware"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	svc  *service.BlogService
	auth *service.AuthService
}

func NewBlogHandler(svc *service.BlogService, auth *service.AuthService) *BlogHandler {
	return &BlogHandler{svc: svc, auth: auth}
}

type postRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Excerpt    *string `json:"excerpt"`
	CoverImage *string `json:"cover_image"`
	Tags       *string `json:"tags"`
	Status     *string `json:"status"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{
		Title:      r.Title,
		Content:    r.Content,
		Excerpt:    r.Excerpt,
		CoverImage: r.CoverImage,
		Tags:       r.Tags,
		Status:     r.Status,
	}
}

// List shows published posts; staff also see drafts and archived posts.
func (h *BlogHandler) List(c *gin.Context) {
	list, err := h.svc.ListPosts(middleware.IsStaff(c), c.Query("status"), c.Query("tag"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BlogHandler) Get(c *gin.Context) {
	p, err := h.svc.GetPost(c.Param("slug"), middleware.IsStaff(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *BlogHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.svc.CreatePost(u, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *BlogHandler) Update(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.UpdatePost(c.Param("slug"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.svc.DeletePost(c.Param("slug")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadCover stores a multipart "image" and returns its URL for use as cover_image.
func (h *BlogHandler) UploadCover(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	defer f.Close()
	url, err := h.svc.UploadCover(c.Request.Context(), f, fh.Header.Get("Content-Type"), fh.Size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

func (h *BlogHandler) Comments(c *gin.Context) {
	list, err := h.svc.Comments(c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BlogHandler) AddComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
		Parent  *uint  `json:"parent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	cm, err := h.svc.AddComment(c.Param("slug"), u, req.Parent, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (h *BlogHandler) UpdateComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cm, err := h.svc.UpdateComment(id, middleware.GetUserID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cm)
}

func (h *BlogHandler) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(id, middleware.GetUserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BlogHandler) React(c *gin.Context) {
	var req struct {
		ReactionType string `json:"reaction_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.React(c.Param("slug"), u, req.ReactionType)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if res.Action == "created" {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"status": res.Action, "reaction_type": res.ReactionType})
}

func (h *BlogHandler) Reactions(c *gin.Context) {
	sum, err := h.svc.Reactions(c.Param("slug"), middleware.IsStaff(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
