package editorial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

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
	Create(ctx context.Context, input pgrepo.ArticleInput) (model.Article, error)
	Update(ctx context.Context, articleID int64, input pgrepo.ArticleInput) (model.Article, error)
	Delete(ctx context.Context, articleID int64) error
	FindByID(ctx context.Context, articleID int64) (model.Article, error)
}

type BookStore interface {
	Create(ctx context.Context, input pgrepo.BookInput) (model.Book, error)
	Update(ctx context.Context, bookID int64, input pgrepo.BookInput) (model.Book, error)
	Delete(ctx context.Context, bookID int64) error
	FindByID(ctx context.Context, bookID int64) (model.Book, error)
	SetFileKey(ctx context.Context, bookID int64, key string, preview bool) error
}

type FileStorage interface {
	EnsureBucket(ctx context.Context) error
	PutFile(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

type CategoryStore interface {
	Create(ctx context.Context, name, slug, description, icon string, position int) (model.Category, error)
}

// Service is the back-office editing surface for the catalog. The
// public read path lives in the catalog service.
type Service struct {
	articles   ArticleStore
	books      BookStore
	categories CategoryStore
	storage    FileStorage
}

func NewService(articles ArticleStore, books BookStore, categories CategoryStore) *Service {
	return &Service{
		articles:   articles,
		books:      books,
		categories: categories,
	}
}

// AttachStorage enables book file uploads and file cleanup on delete.
func (s *Service) AttachStorage(storage FileStorage) {
	s.storage = storage
}

func (s *Service) CreateArticle(ctx context.Context, input pgrepo.ArticleInput) (model.Article, error) {
	if err := checkArticleInput(input); err != nil {
		return model.Article{}, err
	}
	return s.articles.Create(ctx, input)
}

func (s *Service) UpdateArticle(ctx context.Context, articleID int64, input pgrepo.ArticleInput) (model.Article, error) {
	if articleID <= 0 {
		return model.Article{}, ErrValidation
	}
	if err := checkArticleInput(input); err != nil {
		return model.Article{}, err
	}

	article, err := s.articles.Update(ctx, articleID, input)
	if errors.Is(err, pgrepo.ErrArticleNotFound) {
		return model.Article{}, ErrArticleNotFound
	}
	return article, err
}

func (s *Service) DeleteArticle(ctx context.Context, articleID int64) error {
	if articleID <= 0 {
		return ErrValidation
	}

	if err := s.articles.Delete(ctx, articleID); err != nil {
		if errors.Is(err, pgrepo.ErrArticleNotFound) {
			return ErrArticleNotFound
		}
		return err
	}
	return nil
}

func (s *Service) GetArticle(ctx context.Context, articleID int64) (model.Article, error) {
	if articleID <= 0 {
		return model.Article{}, ErrValidation
	}

	article, err := s.articles.FindByID(ctx, articleID)
	if errors.Is(err, pgrepo.ErrArticleNotFound) {
		return model.Article{}, ErrArticleNotFound
	}
	return article, err
}

func (s *Service) CreateBook(ctx context.Context, input pgrepo.BookInput) (model.Book, error) {
	if err := checkBookInput(input); err != nil {
		return model.Book{}, err
	}
	return s.books.Create(ctx, input)
}

func (s *Service) UpdateBook(ctx context.Context, bookID int64, input pgrepo.BookInput) (model.Book, error) {
	if bookID <= 0 {
		return model.Book{}, ErrValidation
	}
	if err := checkBookInput(input); err != nil {
		return model.Book{}, err
	}

	book, err := s.books.Update(ctx, bookID, input)
	if errors.Is(err, pgrepo.ErrBookNotFound) {
		return model.Book{}, ErrBookNotFound
	}
	return book, err
}

// DeleteBook drops the row first; stored objects are cleaned up best
// effort afterwards so a storage outage never blocks the delete.
func (s *Service) DeleteBook(ctx context.Context, bookID int64) error {
	if bookID <= 0 {
		return ErrValidation
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	if err := s.books.Delete(ctx, bookID); err != nil {
		if errors.Is(err, pgrepo.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	if s.storage != nil {
		_ = s.storage.Delete(ctx, book.FileKey)
		_ = s.storage.Delete(ctx, book.PreviewKey)
	}
	return nil
}

// UploadBookFile stores a PDF under books/{id}/ and points the book at
// it. kind selects the main file or the preview.
func (s *Service) UploadBookFile(ctx context.Context, bookID int64, kind, filename string, body io.Reader, size int64, contentType string) (model.Book, error) {
	if s.storage == nil {
		return model.Book{}, fmt.Errorf("file storage is not configured")
	}
	if bookID <= 0 || body == nil || size <= 0 {
		return model.Book{}, ErrValidation
	}

	preview := false
	switch kind {
	case "", "file":
	case "preview":
		preview = true
	default:
		return model.Book{}, ErrValidation
	}

	filename = path.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == "/" {
		return model.Book{}, ErrValidation
	}

	if _, err := s.GetBook(ctx, bookID); err != nil {
		return model.Book{}, err
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return model.Book{}, err
	}

	key := fmt.Sprintf("books/%d/%s", bookID, filename)
	if err := s.storage.PutFile(ctx, key, body, size, contentType); err != nil {
		return model.Book{}, err
	}
	if err := s.books.SetFileKey(ctx, bookID, key, preview); err != nil {
		return model.Book{}, err
	}

	return s.GetBook(ctx, bookID)
}

func (s *Service) GetBook(ctx context.Context, bookID int64) (model.Book, error) {
	if bookID <= 0 {
		return model.Book{}, ErrValidation
	}

	book, err := s.books.FindByID(ctx, bookID)
	if errors.Is(err, pgrepo.ErrBookNotFound) {
		return model.Book{}, ErrBookNotFound
	}
	return book, err
}

func (s *Service) CreateCategory(ctx context.Context, name, slug, description, icon string, position int) (model.Category, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(slug) == "" {
		return model.Category{}, ErrValidation
	}
	return s.categories.Create(ctx, name, slug, description, icon, position)
}

func checkArticleInput(input pgrepo.ArticleInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Slug) == "" {
		return ErrValidation
	}
	if !input.Kind.Valid() {
		return ErrValidation
	}
	return nil
}

func checkBookInput(input pgrepo.BookInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Slug) == "" {
		return ErrValidation
	}
	// A priced book needs a price; a free one ignores it.
	if !input.IsFree && input.Price <= 0 {
		return ErrValidation
	}
	return nil
}
