package dto

import "time"

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MarkReadResponse struct {
	OK bool `json:"ok"`
}

type ConfigUpdateRequest struct {
	Values map[string]string `json:"values"`
}

type ArticleUpsertRequest struct {
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	Body            string  `json:"body"`
	Excerpt         string  `json:"excerpt,omitempty"`
	Kind            string  `json:"kind"`
	ImageURL        string  `json:"image_url,omitempty"`
	BannerURL       string  `json:"banner_url,omitempty"`
	Author          string  `json:"author"`
	ReadingMinutes  int     `json:"reading_minutes,omitempty"`
	IsFeatured      bool    `json:"is_featured,omitempty"`
	IsPopular       bool    `json:"is_popular,omitempty"`
	IsNew           bool    `json:"is_new,omitempty"`
	IsPublished     bool    `json:"is_published,omitempty"`
	Position        int     `json:"position,omitempty"`
	MetaKeywords    string  `json:"meta_keywords,omitempty"`
	MetaDescription string  `json:"meta_description,omitempty"`
	CategoryIDs     []int64 `json:"category_ids,omitempty"`
}

type BookUpsertRequest struct {
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	Description     string  `json:"description"`
	Excerpt         string  `json:"excerpt,omitempty"`
	Author          string  `json:"author"`
	CoAuthors       string  `json:"co_authors,omitempty"`
	ISBN            string  `json:"isbn,omitempty"`
	Publisher       string  `json:"publisher,omitempty"`
	YearPublished   int     `json:"year_published,omitempty"`
	PageCount       int     `json:"page_count,omitempty"`
	Language        string  `json:"language,omitempty"`
	CoverURL        string  `json:"cover_url,omitempty"`
	FileKey         string  `json:"file_key,omitempty"`
	PreviewKey      string  `json:"preview_key,omitempty"`
	Price           int64   `json:"price"`
	Currency        string  `json:"currency,omitempty"`
	IsFree          bool    `json:"is_free,omitempty"`
	IsFeatured      bool    `json:"is_featured,omitempty"`
	IsNew           bool    `json:"is_new,omitempty"`
	IsPublished     bool    `json:"is_published,omitempty"`
	Position        int     `json:"position,omitempty"`
	MetaKeywords    string  `json:"meta_keywords,omitempty"`
	MetaDescription string  `json:"meta_description,omitempty"`
	CategoryIDs     []int64 `json:"category_ids,omitempty"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Position    int    `json:"position,omitempty"`
}

type DeleteResponse struct {
	OK bool `json:"ok"`
}
