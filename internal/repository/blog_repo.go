package repository

import (
	"leisuretimez/internal/models"

	"gorm.io/gorm"
)

type BlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) CreatePost(p *models.BlogPost) error {
	return r.db.Omit("Author").Create(p).Error
}

func (r *BlogRepository) UpdatePost(p *models.BlogPost) error {
	return r.db.Omit("Author").Save(p).Error
}

func (r *BlogRepository) DeletePost(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.BlogReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.BlogComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.BlogPost{}, id).Error
	})
}

func (r *BlogRepository) SlugExists(slug string, excludeID uint) bool {
	var n int64
	r.db.Model(&models.BlogPost{}).Where("slug = ? AND id <> ?", slug, excludeID).Count(&n)
	return n > 0
}

func (r *BlogRepository) GetBySlug(slug string) (*models.BlogPost, error) {
	var p models.BlogPost
	if err := r.db.Preload("Author").Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPosts returns posts newest first. status "" returns every status; tag filters by
// substring of the comma-separated tags.
func (r *BlogRepository) ListPosts(status, tag string) ([]models.BlogPost, error) {
	q := r.db.Model(&models.BlogPost{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if tag != "" {
		q = q.Where("tags LIKE ?", "%"+tag+"%")
	}
	var list []models.BlogPost
	err := q.Preload("Author").Order("published_at DESC").Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *BlogRepository) CreateComment(c *models.BlogComment) error {
	return r.db.Omit("User", "Replies").Create(c).Error
}

func (r *BlogRepository) GetComment(id uint) (*models.BlogComment, error) {
	var c models.BlogComment
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BlogRepository) UpdateComment(c *models.BlogComment) error {
	return r.db.Omit("User", "Replies").Save(c).Error
}

func (r *BlogRepository) DeleteComment(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.BlogComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.BlogComment{}, id).Error
	})
}

// TopLevelComments returns the post's root comments with their direct replies.
func (r *BlogRepository) TopLevelComments(postID uint) ([]models.BlogComment, error) {
	var list []models.BlogComment
	err := r.db.Where("post_id = ? AND parent_id IS NULL", postID).
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *BlogRepository) GetReaction(postID, userID uint) (*models.BlogReaction, error) {
	var re models.BlogReaction
	if err := r.db.Where("post_id = ? AND user_id = ?", postID, userID).First(&re).Error; err != nil {
		return nil, err
	}
	return &re, nil
}

func (r *BlogRepository) SaveReaction(re *models.BlogReaction) error {
	return r.db.Save(re).Error
}

func (r *BlogRepository) DeleteReaction(id uint) error {
	return r.db.Delete(&models.BlogReaction{}, id).Error
}

func (r *BlogRepository) Reactions(postID uint) ([]models.BlogReaction, error) {
	var list []models.BlogReaction
	err := r.db.Where("post_id = ?", postID).Order("created_at DESC").Find(&list).Error
	return list, err
}
