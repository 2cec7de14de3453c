package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
	"unicode"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"
	"leisuretimez/pkg/cloudinary"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound     = errors.New("Blog post not found")
	ErrCommentNotFound  = errors.New("Comment not found")
	ErrParentMismatch   = errors.New("Parent comment does not belong to this post")
	ErrInvalidPostState = errors.New("status must be draft, published or archived")
	ErrInvalidReaction  = errors.New("reaction_type must be like, love, insightful or celebrate")
	ErrEmptyTitle       = errors.New("title is required")
)

// PostInput holds post fields; nil pointers are left unchanged on update.
type PostInput struct {
	Title      *string
	Content    *string
	Excerpt    *string
	CoverImage *string
	Tags       *string
	Status     *string
}

type ReactionResult struct {
	Action       string // created | updated | removed
	ReactionType string
}

type ReactionSummary struct {
	Total     int                   `json:"total"`
	Summary   map[string]int        `json:"summary"`
	Reactions []models.BlogReaction `json:"reactions"`
}

type BlogService struct {
	repo   *repository.BlogRepository
	notify *NotificationService
	images cloudinary.Client
	now    func() time.Time
}

func NewBlogService(repo *repository.BlogRepository, notify *NotificationService, images cloudinary.Client) *BlogService {
	return &BlogService{repo: repo, notify: notify, images: images, now: time.Now}
}

// UploadCover stores a cover image and returns its URL.
func (s *BlogService) UploadCover(ctx context.Context, file io.Reader, contentType string, size int64) (string, error) {
	if err := CheckImage(contentType, size); err != nil {
		return "", err
	}
	if s.images == nil {
		return "", ErrNoUploader
	}
	return s.images.UploadImage(ctx, file, cloudinary.FolderBlog, uuid.NewString())
}

var slugFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases, strips accents and joins words with single hyphens.
func Slugify(title string) string {
	folded, _, err := transform.String(slugFold, title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// uniqueSlug appends -1, -2, ... until no other post has the slug.
func (s *BlogService) uniqueSlug(title string, excludeID uint) string {
	base := Slugify(title)
	if base == "" {
		base = "post"
	}
	slug := base
	for n := 1; s.repo.SlugExists(slug, excludeID); n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	return slug
}

func validPostStatus(st string) bool {
	return st == domain.PostDraft || st == domain.PostPublished || st == domain.PostArchived
}

func (s *BlogService) CreatePost(author *models.User, in PostInput) (*models.BlogPost, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, ErrEmptyTitle
	}
	p := &models.BlogPost{AuthorID: author.ID, Status: domain.PostDraft, Author: author}
	if in.Status != nil {
		if !validPostStatus(*in.Status) {
			return nil, ErrInvalidPostState
		}
		p.Status = *in.Status
	}
	applyPost(p, in)
	p.Slug = s.uniqueSlug(p.Title, 0)
	if p.Status == domain.PostPublished {
		now := s.now()
		p.PublishedAt = &now
	}
	if err := s.repo.CreatePost(p); err != nil {
		return nil, err
	}
	if p.Status == domain.PostPublished {
		s.announce(p)
	}
	return p, nil
}

func applyPost(p *models.BlogPost, in PostInput) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if in.CoverImage != nil {
		p.CoverImage = *in.CoverImage
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
}

// UpdatePost edits a post. The first transition to published stamps published_at and
// tells active users.
func (s *BlogService) UpdatePost(slug string, in PostInput) (*models.BlogPost, error) {
	p, err := s.getPost(slug, true)
	if err != nil {
		return nil, err
	}
	wasPublished := p.Status == domain.PostPublished
	if in.Status != nil {
		if !validPostStatus(*in.Status) {
			return nil, ErrInvalidPostState
		}
		p.Status = *in.Status
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, ErrEmptyTitle
		}
		applyPost(p, PostInput{Title: in.Title})
		p.Slug = s.uniqueSlug(p.Title, p.ID)
	}
	applyPost(p, PostInput{Content: in.Content, Excerpt: in.Excerpt, CoverImage: in.CoverImage, Tags: in.Tags})
	first := !wasPublished && p.Status == domain.PostPublished && p.PublishedAt == nil
	if first {
		now := s.now()
		p.PublishedAt = &now
	}
	if err := s.repo.UpdatePost(p); err != nil {
		return nil, err
	}
	if first {
		s.announce(p)
	}
	return p, nil
}

func (s *BlogService) announce(p *models.BlogPost) {
	if s.notify == nil {
		return
	}
	teaser := p.Excerpt
	if teaser == "" {
		teaser = p.Content
	}
	if r := []rune(teaser); len(r) > 100 {
		teaser = string(r[:100])
	}
	n := s.notify.NotifyAllActive(p.AuthorID, domain.NotifyNewBlogPost, "New Blog Post",
		fmt.Sprintf("New post: %q %s...", p.Title, teaser))
	log.WithFields(log.Fields{"slug": p.Slug, "recipients": n}).Info("announced blog post")
}

func (s *BlogService) DeletePost(slug string) error {
	p, err := s.getPost(slug, true)
	if err != nil {
		return err
	}
	return s.repo.DeletePost(p.ID)
}

// getPost finds a post by slug. Unless staff is set, only published posts are visible.
func (s *BlogService) getPost(slug string, staff bool) (*models.BlogPost, error) {
	p, err := s.repo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !staff && p.Status != domain.PostPublished {
		return nil, ErrPostNotFound
	}
	return p, nil
}

func (s *BlogService) GetPost(slug string, staff bool) (*models.BlogPost, error) {
	return s.getPost(slug, staff)
}

func (s *BlogService) ListPosts(staff bool, status, tag string) ([]models.BlogPost, error) {
	if !staff {
		status = domain.PostPublished
	}
	return s.repo.ListPosts(status, tag)
}

func (s *BlogService) Comments(slug string) ([]models.BlogComment, error) {
	p, err := s.getPost(slug, false)
	if err != nil {
		return nil, err
	}
	return s.repo.TopLevelComments(p.ID)
}

// AddComment comments on a published post, optionally as a reply, and tells the author.
func (s *BlogService) AddComment(slug string, u *models.User, parentID *uint, content string) (*models.BlogComment, error) {
	p, err := s.getPost(slug, false)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.repo.GetComment(*parentID)
		if err != nil || parent.PostID != p.ID {
			return nil, ErrParentMismatch
		}
	}
	c := &models.BlogComment{PostID: p.ID, UserID: u.ID, ParentID: parentID, Content: content}
	if err := s.repo.CreateComment(c); err != nil {
		return nil, err
	}
	if s.notify != nil && p.AuthorID != u.ID {
		s.notify.Notify(p.AuthorID, domain.NotifyBlogComment, "New Comment on Your Post",
			fmt.Sprintf("%s commented on %q: %q", u.FullName(), p.Title, truncate(content, 80)), nil)
	}
	return c, nil
}

func (s *BlogService) ownComment(id, userID uint) (*models.BlogComment, error) {
	c, err := s.repo.GetComment(id)
	if err != nil || c.UserID != userID {
		return nil, ErrCommentNotFound
	}
	return c, nil
}

func (s *BlogService) UpdateComment(id, userID uint, content string) (*models.BlogComment, error) {
	c, err := s.ownComment(id, userID)
	if err != nil {
		return nil, err
	}
	c.Content = content
	if err := s.repo.UpdateComment(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *BlogService) DeleteComment(id, userID uint) error {
	c, err := s.ownComment(id, userID)
	if err != nil {
		return err
	}
	return s.repo.DeleteComment(c.ID)
}

// React toggles the user's reaction: the same type removes it, another type replaces
// it, and a first reaction is stored and reported to the author.
func (s *BlogService) React(slug string, u *models.User, reactionType string) (*ReactionResult, error) {
	if !slices.Contains(domain.ReactionTypes, reactionType) {
		return nil, ErrInvalidReaction
	}
	p, err := s.getPost(slug, false)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetReaction(p.ID, u.ID)
	if err == nil {
		if existing.ReactionType == reactionType {
			if err := s.repo.DeleteReaction(existing.ID); err != nil {
				return nil, err
			}
			return &ReactionResult{Action: "removed"}, nil
		}
		existing.ReactionType = reactionType
		if err := s.repo.SaveReaction(existing); err != nil {
			return nil, err
		}
		return &ReactionResult{Action: "updated", ReactionType: reactionType}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	re := &models.BlogReaction{PostID: p.ID, UserID: u.ID, ReactionType: reactionType}
	if err := s.repo.SaveReaction(re); err != nil {
		return nil, err
	}
	if s.notify != nil && p.AuthorID != u.ID {
		s.notify.Notify(p.AuthorID, domain.NotifyBlogReaction, "New Reaction on Your Post",
			fmt.Sprintf("%s reacted %s to your post %q.", u.FullName(), reactionType, p.Title), nil)
	}
	return &ReactionResult{Action: "created", ReactionType: reactionType}, nil
}

func (s *BlogService) Reactions(slug string, staff bool) (*ReactionSummary, error) {
	p, err := s.getPost(slug, staff)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.Reactions(p.ID)
	if err != nil {
		return nil, err
	}
	sum := &ReactionSummary{Total: len(list), Summary: map[string]int{}, Reactions: list}
	for _, r := range list {
		sum.Summary[r.ReactionType]++
	}
	return sum, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
