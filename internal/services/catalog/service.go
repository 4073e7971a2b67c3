package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elkast/blog/internal/domain/model"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrArticleNotFound  = errors.New("article not found")
	ErrBookNotFound     = errors.New("book not found")
	ErrCategoryNotFound = errors.New("category not found")
)

type ArticleStore interface {
	ListPublished(ctx context.Context, filter pgrepo.ArticleFilter) ([]model.Article, error)
	FindBySlug(ctx context.Context, slug string) (model.Article, error)
}

type BookStore interface {
	ListPublished(ctx context.Context, filter pgrepo.BookFilter) ([]model.Book, error)
	FindBySlug(ctx context.Context, slug string) (model.Book, error)
}

type CategoryStore interface {
	ListActive(ctx context.Context) ([]model.Category, error)
	FindBySlug(ctx context.Context, slug string) (model.Category, error)
}

type ViewRecorder interface {
	RecordArticleView(ctx context.Context, articleID int64, at time.Time) error
	RecordBookView(ctx context.Context, bookID int64, at time.Time) error
}

type Service struct {
	articles   ArticleStore
	books      BookStore
	categories CategoryStore
	views      ViewRecorder
	now        func() time.Time
}

type SearchResult struct {
	Articles []model.Article `json:"articles"`
	Books    []model.Book    `json:"books"`
}

func NewService(articles ArticleStore, books BookStore, categories CategoryStore, views ViewRecorder) *Service {
	return &Service{
		articles:   articles,
		books:      books,
		categories: categories,
		views:      views,
		now:        time.Now,
	}
}

func (s *Service) ListArticles(ctx context.Context, filter pgrepo.ArticleFilter) ([]model.Article, error) {
	if s.articles == nil {
		return nil, fmt.Errorf("article store is nil")
	}
	return s.articles.ListPublished(ctx, filter)
}

// GetArticle also bumps today's view counter; a failed bump never
// blocks the read.
func (s *Service) GetArticle(ctx context.Context, slug string) (model.Article, error) {
	if s.articles == nil {
		return model.Article{}, fmt.Errorf("article store is nil")
	}

	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgrepo.ErrArticleNotFound) {
			return model.Article{}, ErrArticleNotFound
		}
		return model.Article{}, err
	}

	if s.views != nil {
		_ = s.views.RecordArticleView(ctx, article.ID, s.now().UTC())
	}

	return article, nil
}

func (s *Service) ListBooks(ctx context.Context, filter pgrepo.BookFilter) ([]model.Book, error) {
	if s.books == nil {
		return nil, fmt.Errorf("book store is nil")
	}
	return s.books.ListPublished(ctx, filter)
}

func (s *Service) GetBook(ctx context.Context, slug string) (model.Book, error) {
	if s.books == nil {
		return model.Book{}, fmt.Errorf("book store is nil")
	}

	book, err := s.books.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBookNotFound) {
			return model.Book{}, ErrBookNotFound
		}
		return model.Book{}, err
	}

	if s.views != nil {
		_ = s.views.RecordBookView(ctx, book.ID, s.now().UTC())
	}

	return book, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	if s.categories == nil {
		return nil, fmt.Errorf("category store is nil")
	}
	return s.categories.ListActive(ctx)
}

func (s *Service) CategoryArticles(ctx context.Context, categorySlug string, limit int) (model.Category, []model.Article, error) {
	if s.categories == nil || s.articles == nil {
		return model.Category{}, nil, fmt.Errorf("catalog dependencies are not configured")
	}

	category, err := s.categories.FindBySlug(ctx, strings.TrimSpace(categorySlug))
	if err != nil {
		if errors.Is(err, pgrepo.ErrCategoryNotFound) {
			return model.Category{}, nil, ErrCategoryNotFound
		}
		return model.Category{}, nil, err
	}

	articles, err := s.articles.ListPublished(ctx, pgrepo.ArticleFilter{
		CategorySlug: category.Slug,
		Limit:        limit,
	})
	if err != nil {
		return model.Category{}, nil, err
	}

	return category, articles, nil
}

func (s *Service) Search(ctx context.Context, query string, limit int) (SearchResult, error) {
	if s.articles == nil || s.books == nil {
		return SearchResult{}, fmt.Errorf("catalog dependencies are not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, ErrValidation
	}

	articles, err := s.articles.ListPublished(ctx, pgrepo.ArticleFilter{Search: query, Limit: limit})
	if err != nil {
		return SearchResult{}, err
	}
	books, err := s.books.ListPublished(ctx, pgrepo.BookFilter{Search: query, Limit: limit})
	if err != nil {
		return SearchResult{}, err
	}

	return SearchResult{Articles: articles, Books: books}, nil
}

// MostReadArticles orders by summed daily views.
func (s *Service) MostReadArticles(ctx context.Context, limit int) ([]model.Article, error) {
	if s.articles == nil {
		return nil, fmt.Errorf("article store is nil")
	}
	return s.articles.ListPublished(ctx, pgrepo.ArticleFilter{MostRead: true, Limit: limit})
}
