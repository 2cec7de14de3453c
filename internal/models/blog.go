package models

import (
	"time"
)

type BlogPost struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AuthorID    uint       `gorm:"not null;index" json:"-"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Content     string     `gorm:"type:text" json:"content"`
	Excerpt     string     `gorm:"type:text" json:"excerpt"`
	CoverImage  string     `gorm:"size:512" json:"cover_image"`
	Status      string     `gorm:"size:10;default:'draft';index" json:"status"`
	Tags        string     `gorm:"size:500" json:"tags"` // comma-separated
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

type BlogComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	ParentID  *uint     `gorm:"index" json:"parent"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    *User         `gorm:"foreignKey:UserID" json:"-"`
	Replies []BlogComment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

func (BlogComment) TableName() string {
	return "blog_comments"
}

type BlogReaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PostID       uint      `gorm:"not null;index:idx_reaction_post_user,unique" json:"post"`
	UserID       uint      `gorm:"not null;index:idx_reaction_post_user,unique" json:"user"`
	ReactionType string    `gorm:"size:15;default:'like'" json:"reaction_type"`
	CreatedAt    time.Time `json:"created_at"`
}

func (BlogReaction) TableName() string {
	return "blog_reactions"
}
