package editorial

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/elkast/blog/internal/domain/enums"
	"github.com/elkast/blog/internal/domain/model"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
)

type articleStoreStub struct {
	byID   map[int64]model.Article
	nextID int64
}

func (s *articleStoreStub) Create(_ context.Context, input pgrepo.ArticleInput) (model.Article, error) {
	s.nextID++
	article := model.Article{ID: s.nextID, Title: input.Title, Slug: input.Slug, Kind: input.Kind}
	s.byID[article.ID] = article
	return article, nil
}

func (s *articleStoreStub) Update(_ context.Context, articleID int64, input pgrepo.ArticleInput) (model.Article, error) {
	if _, ok := s.byID[articleID]; !ok {
		return model.Article{}, pgrepo.ErrArticleNotFound
	}
	article := model.Article{ID: articleID, Title: input.Title, Slug: input.Slug, Kind: input.Kind}
	s.byID[articleID] = article
	return article, nil
}

func (s *articleStoreStub) Delete(_ context.Context, articleID int64) error {
	if _, ok := s.byID[articleID]; !ok {
		return pgrepo.ErrArticleNotFound
	}
	delete(s.byID, articleID)
	return nil
}

func (s *articleStoreStub) FindByID(_ context.Context, articleID int64) (model.Article, error) {
	article, ok := s.byID[articleID]
	if !ok {
		return model.Article{}, pgrepo.ErrArticleNotFound
	}
	return article, nil
}

type bookStoreStub struct {
	byID   map[int64]*model.Book
	nextID int64
}

func (s *bookStoreStub) Create(_ context.Context, input pgrepo.BookInput) (model.Book, error) {
	s.nextID++
	book := model.Book{ID: s.nextID, Title: input.Title, Slug: input.Slug, Price: input.Price, IsFree: input.IsFree}
	s.byID[book.ID] = &book
	return book, nil
}

func (s *bookStoreStub) Update(_ context.Context, bookID int64, input pgrepo.BookInput) (model.Book, error) {
	book, ok := s.byID[bookID]
	if !ok {
		return model.Book{}, pgrepo.ErrBookNotFound
	}
	book.Title = input.Title
	book.Slug = input.Slug
	book.Price = input.Price
	book.IsFree = input.IsFree
	return *book, nil
}

func (s *bookStoreStub) Delete(_ context.Context, bookID int64) error {
	if _, ok := s.byID[bookID]; !ok {
		return pgrepo.ErrBookNotFound
	}
	delete(s.byID, bookID)
	return nil
}

func (s *bookStoreStub) FindByID(_ context.Context, bookID int64) (model.Book, error) {
	book, ok := s.byID[bookID]
	if !ok {
		return model.Book{}, pgrepo.ErrBookNotFound
	}
	return *book, nil
}

func (s *bookStoreStub) SetFileKey(_ context.Context, bookID int64, key string, preview bool) error {
	book, ok := s.byID[bookID]
	if !ok {
		return pgrepo.ErrBookNotFound
	}
	if preview {
		book.PreviewKey = key
	} else {
		book.FileKey = key
	}
	return nil
}

type categoryStoreStub struct{}

func (categoryStoreStub) Create(_ context.Context, name, slug, description, icon string, position int) (model.Category, error) {
	return model.Category{ID: 1, Name: name, Slug: slug, Description: description, Icon: icon, Position: position}, nil
}

type storageStub struct {
	objects map[string][]byte
	deleted []string
}

func (s *storageStub) EnsureBucket(context.Context) error { return nil }

func (s *storageStub) PutFile(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *storageStub) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.objects, key)
	return nil
}

func newTestEditorial() (*Service, *bookStoreStub, *storageStub) {
	books := &bookStoreStub{byID: map[int64]*model.Book{}}
	storage := &storageStub{objects: map[string][]byte{}}
	svc := NewService(&articleStoreStub{byID: map[int64]model.Article{}}, books, categoryStoreStub{})
	svc.AttachStorage(storage)
	return svc, books, storage
}

func TestCreateArticleValidatesKind(t *testing.T) {
	svc, _, _ := newTestEditorial()

	_, err := svc.CreateArticle(context.Background(), pgrepo.ArticleInput{
		Title: "T", Slug: "t", Kind: enums.ArticleKind("poem"),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	article, err := svc.CreateArticle(context.Background(), pgrepo.ArticleInput{
		Title: "T", Slug: "t", Kind: enums.ArticleKindArticle,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	if article.ID == 0 {
		t.Fatalf("article id not assigned")
	}
}

func TestCreateBookRequiresPriceUnlessFree(t *testing.T) {
	svc, _, _ := newTestEditorial()

	if _, err := svc.CreateBook(context.Background(), pgrepo.BookInput{Title: "B", Slug: "b"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for priced book without price, got %v", err)
	}
	if _, err := svc.CreateBook(context.Background(), pgrepo.BookInput{Title: "B", Slug: "b", IsFree: true}); err != nil {
		t.Fatalf("free book without price: %v", err)
	}
	if _, err := svc.CreateBook(context.Background(), pgrepo.BookInput{Title: "B", Slug: "b2", Price: 5000}); err != nil {
		t.Fatalf("priced book: %v", err)
	}
}

func TestUploadBookFileSetsKey(t *testing.T) {
	svc, books, storage := newTestEditorial()
	book, err := svc.CreateBook(context.Background(), pgrepo.BookInput{Title: "B", Slug: "b", Price: 5000})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	updated, err := svc.UploadBookFile(context.Background(), book.ID, "", "My Book.pdf", bytes.NewReader([]byte("pdf")), 3, "application/pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	wantKey := "books/1/My Book.pdf"
	if updated.FileKey != wantKey {
		t.Fatalf("unexpected file key: %q", updated.FileKey)
	}
	if _, ok := storage.objects[wantKey]; !ok {
		t.Fatalf("object not stored: %v", storage.objects)
	}
	if books.byID[book.ID].FileKey != wantKey {
		t.Fatalf("file key not persisted")
	}
}

func TestUploadBookFilePreviewKind(t *testing.T) {
	svc, books, _ := newTestEditorial()
	book, _ := svc.CreateBook(context.Background(), pgrepo.BookInput{Title: "B", Slug: "b", Price: 5000})

	if _, err := svc.UploadBookFile(context.Background(), book.ID, "preview", "extract.pdf", bytes.NewReader([]byte("pdf")), 3, "application/pdf"); err != nil {
		t.Fatalf("upload preview: %v", err)
	}
	if books.byID[book.ID].PreviewKey != "books/1/extract.pdf" {
		t.Fatalf("preview key not set: %q", books.byID[book.ID].PreviewKey)
	}
	if books.byID[book.ID].FileKey != "" {
		t.Fatalf("main file key must stay empty")
	}

	if _, err := svc.UploadBookFile(context.Background(), book.ID, "thumbnail", "x.pdf", bytes.NewReader([]byte("pdf")), 3, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown kind, got %v", err)
	}
}

func TestDeleteBookCleansUpObjects(t *testing.T) {
	svc, books, storage := newTestEditorial()
	book, _ := svc.CreateBook(context.Background(), pgrepo.BookInput{Title: "B", Slug: "b", Price: 5000})
	books.byID[book.ID].FileKey = "books/1/full.pdf"
	books.byID[book.ID].PreviewKey = "books/1/preview.pdf"

	if err := svc.DeleteBook(context.Background(), book.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if len(storage.deleted) != 2 {
		t.Fatalf("expected both objects deleted, got %v", storage.deleted)
	}

	if err := svc.DeleteBook(context.Background(), book.ID); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}
