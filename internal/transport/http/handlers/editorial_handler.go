package handlers

import (
	"errors"
	"net/http"

	"github.com/elkast/blog/internal/domain/enums"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
	editorialsvc "github.com/elkast/blog/internal/services/editorial"
	"github.com/elkast/blog/internal/transport/http/dto"
	httperrors "github.com/elkast/blog/internal/transport/http/errors"
)

// EditorialHandler is the authenticated catalog editing surface.
type EditorialHandler struct {
	editorial *editorialsvc.Service
}

func NewEditorialHandler(editorial *editorialsvc.Service) *EditorialHandler {
	return &EditorialHandler{editorial: editorial}
}

func (h *EditorialHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	if h.editorial == nil {
		writeInternal(w, "EDITORIAL_SERVICE_UNAVAILABLE", "editorial service is unavailable")
		return
	}

	var req dto.ArticleUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	article, err := h.editorial.CreateArticle(r.Context(), articleInputFrom(req))
	if err != nil {
		handleEditorialError(w, err, "failed to create article")
		return
	}

	httperrors.Write(w, http.StatusCreated, article)
}

func (h *EditorialHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	if h.editorial == nil {
		writeInternal(w, "EDITORIAL_SERVICE_UNAVAILABLE", "editorial service is unavailable")
		return
	}

	articleID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid article id")
		return
	}

	var req dto.ArticleUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	article, err := h.editorial.UpdateArticle(r.Context(), articleID, articleInputFrom(req))
	if err != nil {
		handleEditorialError(w, err, "failed to update article")
		return
	}

	httperrors.Write(w, http.StatusOK, article)
}

func (h *EditorialHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if h.editorial == nil {
		writeInternal(w, "EDITORIAL_SERVICE_UNAVAILABLE", "editorial service is unavailable")
		return
	}

	articleID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid article id")
		return
	}

	if err := h.editorial.DeleteArticle(r.Context(), articleID); err != nil {
		handleEditorialError(w, err, "failed to delete article")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DeleteResponse{OK: true})
}

func (h *EditorialHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	if h.editorial == nil {
		writeInternal(w, "EDITORIAL_SERVICE_UNAVAILABLE", "editorial service is unavailable")
		return
	}

	articleID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid article id")
		return
	}

	article, err := h.editorial.GetArticle(r.Context(), articleID)
	if err != nil {
		handleEditorialError(w, err, "failed to load article")
		return
	}

	httperrors.Write(w, http.StatusOK, article)
}

func (h *EditorialHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	if h.editorial == nil {
		writeInternal(w, "EDITORIAL_SERVICE_UNAVAILABLE", "editorial service is unavailable")
		return
	}

	var req dto.BookUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	book, err := h.editorial.CreateBook(r.Context(), bookInputFrom(req))
	if err != nil {
		handleEditorialError(w, err, "failed to create book")
		return
	}

	httperrors.Write(w, http.StatusCreated, book)
}

func (h *EditorialHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	if h.editorial == nil {
		writeInternal(w, "EDITORIAL_SERVICE_UNAVAILABLE", "editorial service is unavailable")
		return
	}

	bookID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid book id")
		return
	}

	var req dto.BookUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	book, err := h.editorial.UpdateBook(r.Context(), bookID, bookInputFrom(req))
	if err != nil {
		handleEditorialError(w, err, "failed to update book")
		return
	}

	httperrors.Write(w, http.StatusOK, book)
}

func (h *EditorialHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if h.editorial == nil {
		writeInternal(w, "EDITORIAL_SERVICE_UNAVAILABLE", "editorial service is unavailable")
		return
	}

	bookID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid book id")
		return
	}

	if err := h.editorial.DeleteBook(r.Context(), bookID); err != nil {
		handleEditorialError(w, err, "failed to delete book")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DeleteResponse{OK: true})
}

// UploadBookFile accepts a multipart "file" field. The kind query
// parameter picks the main file (default) or the preview.
func (h *EditorialHandler) UploadBookFile(w http.ResponseWriter, r *http.Request) {
	if h.editorial == nil {
		writeInternal(w, "EDITORIAL_SERVICE_UNAVAILABLE", "editorial service is unavailable")
		return
	}

	bookID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid book id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "a multipart file field is required")
		return
	}
	defer file.Close()

	book, err := h.editorial.UploadBookFile(
		r.Context(),
		bookID,
		r.URL.Query().Get("kind"),
		header.Filename,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		handleEditorialError(w, err, "failed to store book file")
		return
	}

	httperrors.Write(w, http.StatusOK, book)
}

func (h *EditorialHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	if h.editorial == nil {
		writeInternal(w, "EDITORIAL_SERVICE_UNAVAILABLE", "editorial service is unavailable")
		return
	}

	bookID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid book id")
		return
	}

	book, err := h.editorial.GetBook(r.Context(), bookID)
	if err != nil {
		handleEditorialError(w, err, "failed to load book")
		return
	}

	httperrors.Write(w, http.StatusOK, book)
}

func (h *EditorialHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if h.editorial == nil {
		writeInternal(w, "EDITORIAL_SERVICE_UNAVAILABLE", "editorial service is unavailable")
		return
	}

	var req dto.CategoryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	category, err := h.editorial.CreateCategory(r.Context(), req.Name, req.Slug, req.Description, req.Icon, req.Position)
	if err != nil {
		handleEditorialError(w, err, "failed to create category")
		return
	}

	httperrors.Write(w, http.StatusCreated, category)
}

func handleEditorialError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, editorialsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid payload")
	case errors.Is(err, editorialsvc.ErrArticleNotFound):
		writeNotFound(w, "ARTICLE_NOT_FOUND", "article not found")
	case errors.Is(err, editorialsvc.ErrBookNotFound):
		writeNotFound(w, "BOOK_NOT_FOUND", "book not found")
	case errors.Is(err, editorialsvc.ErrCategoryNotFound):
		writeNotFound(w, "CATEGORY_NOT_FOUND", "category not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}

func articleInputFrom(req dto.ArticleUpsertRequest) pgrepo.ArticleInput {
	return pgrepo.ArticleInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Body:            req.Body,
		Excerpt:         req.Excerpt,
		Kind:            enums.ArticleKind(req.Kind),
		ImageURL:        req.ImageURL,
		BannerURL:       req.BannerURL,
		Author:          req.Author,
		ReadingMinutes:  req.ReadingMinutes,
		IsFeatured:      req.IsFeatured,
		IsPopular:       req.IsPopular,
		IsNew:           req.IsNew,
		IsPublished:     req.IsPublished,
		Position:        req.Position,
		MetaKeywords:    req.MetaKeywords,
		MetaDescription: req.MetaDescription,
		CategoryIDs:     req.CategoryIDs,
	}
}

func bookInputFrom(req dto.BookUpsertRequest) pgrepo.BookInput {
	return pgrepo.BookInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Description:     req.Description,
		Excerpt:         req.Excerpt,
		Author:          req.Author,
		CoAuthors:       req.CoAuthors,
		ISBN:            req.ISBN,
		Publisher:       req.Publisher,
		YearPublished:   req.YearPublished,
		PageCount:       req.PageCount,
		Language:        req.Language,
		CoverURL:        req.CoverURL,
		FileKey:         req.FileKey,
		PreviewKey:      req.PreviewKey,
		Price:           req.Price,
		Currency:        req.Currency,
		IsFree:          req.IsFree,
		IsFeatured:      req.IsFeatured,
		IsNew:           req.IsNew,
		IsPublished:     req.IsPublished,
		Position:        req.Position,
		MetaKeywords:    req.MetaKeywords,
		MetaDescription: req.MetaDescription,
		CategoryIDs:     req.CategoryIDs,
	}
}
