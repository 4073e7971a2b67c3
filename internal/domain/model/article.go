package model

import (
	"time"

	"github.com/elkast/blog/internal/domain/enums"
)

type Article struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	Slug            string            `json:"slug"`
	Body            string            `json:"body"`
	Excerpt         string            `json:"excerpt"`
	Kind            enums.ArticleKind `json:"kind"`
	ImageURL        string            `json:"image_url"`
	BannerURL       string            `json:"banner_url"`
	Author          string            `json:"author"`
	ReadingMinutes  int               `json:"reading_minutes"`
	IsFeatured      bool              `json:"is_featured"`
	IsPopular       bool              `json:"is_popular"`
	IsNew           bool              `json:"is_new"`
	IsPublished     bool              `json:"is_published"`
	Position        int               `json:"position"`
	MetaKeywords    string            `json:"meta_keywords,omitempty"`
	MetaDescription string            `json:"meta_description,omitempty"`
	PublishedAt     *time.Time        `json:"published_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	CategoryNames   []string          `json:"category_names,omitempty"`

	// Summed view_stats rows, populated by list queries.
	TotalViews int64 `json:"total_views,omitempty"`
}
