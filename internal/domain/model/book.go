package model

import "time"

type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	Excerpt         string    `json:"excerpt"`
	Author          string    `json:"author"`
	CoAuthors       string    `json:"co_authors,omitempty"`
	ISBN            string    `json:"isbn,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	YearPublished   int       `json:"year_published,omitempty"`
	PageCount       int       `json:"page_count,omitempty"`
	Language        string    `json:"language,omitempty"`
	CoverURL        string    `json:"cover_url,omitempty"`
	FileKey         string    `json:"-"`
	PreviewKey      string    `json:"-"`
	Price           int64     `json:"price"`
	Currency        string    `json:"currency"`
	IsFree          bool      `json:"is_free"`
	IsFeatured      bool      `json:"is_featured"`
	IsNew           bool      `json:"is_new"`
	IsPublished     bool      `json:"is_published"`
	Position        int       `json:"position"`
	DownloadCount   int64     `json:"download_count"`
	MetaKeywords    string    `json:"meta_keywords,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	CategoryNames   []string  `json:"category_names,omitempty"`
}
