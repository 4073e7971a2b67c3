package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/elkast/blog/internal/domain/enums"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
	catalogsvc "github.com/elkast/blog/internal/services/catalog"
	httperrors "github.com/elkast/blog/internal/transport/http/errors"
)

type CatalogHandler struct {
	catalog *catalogsvc.Service
}

func NewCatalogHandler(catalog *catalogsvc.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	query := r.URL.Query()
	filter := pgrepo.ArticleFilter{
		Kind:         enums.ArticleKind(query.Get("kind")),
		CategorySlug: query.Get("category"),
		OnlyFeatured: query.Get("featured") == "true",
		OnlyPopular:  query.Get("popular") == "true",
		OnlyNew:      query.Get("new") == "true",
		Search:       query.Get("q"),
		Limit:        queryLimit(r, 50),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown article kind")
		return
	}

	articles, err := h.catalog.ListArticles(r.Context(), filter)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list articles")
		return
	}

	httperrors.Write(w, http.StatusOK, articles)
}

func (h *CatalogHandler) FeaturedArticles(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	articles, err := h.catalog.ListArticles(r.Context(), pgrepo.ArticleFilter{
		OnlyFeatured: true,
		Limit:        queryLimit(r, 10),
	})
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list featured articles")
		return
	}

	httperrors.Write(w, http.StatusOK, articles)
}

func (h *CatalogHandler) LatestArticles(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	articles, err := h.catalog.ListArticles(r.Context(), pgrepo.ArticleFilter{
		Limit: queryLimit(r, 10),
	})
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list latest articles")
		return
	}

	httperrors.Write(w, http.StatusOK, articles)
}

func (h *CatalogHandler) MostReadArticles(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	articles, err := h.catalog.MostReadArticles(r.Context(), queryLimit(r, 10))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list most read articles")
		return
	}

	httperrors.Write(w, http.StatusOK, articles)
}

func (h *CatalogHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	article, err := h.catalog.GetArticle(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, catalogsvc.ErrArticleNotFound) {
			writeNotFound(w, "ARTICLE_NOT_FOUND", "article not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load article")
		return
	}

	httperrors.Write(w, http.StatusOK, article)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list categories")
		return
	}

	httperrors.Write(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CategoryArticles(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	category, articles, err := h.catalog.CategoryArticles(r.Context(), chi.URLParam(r, "slug"), queryLimit(r, 50))
	if err != nil {
		if errors.Is(err, catalogsvc.ErrCategoryNotFound) {
			writeNotFound(w, "CATEGORY_NOT_FOUND", "category not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load category articles")
		return
	}

	httperrors.Write(w, http.StatusOK, map[string]any{
		"category": category,
		"articles": articles,
	})
}

func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	query := r.URL.Query()
	books, err := h.catalog.ListBooks(r.Context(), pgrepo.BookFilter{
		CategorySlug: query.Get("category"),
		OnlyFree:     query.Get("free") == "true",
		OnlyPaid:     query.Get("paid") == "true",
		OnlyFeatured: query.Get("featured") == "true",
		OnlyNew:      query.Get("new") == "true",
		Search:       query.Get("q"),
		Limit:        queryLimit(r, 50),
	})
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list books")
		return
	}

	httperrors.Write(w, http.StatusOK, books)
}

func (h *CatalogHandler) FreeBooks(w http.ResponseWriter, r *http.Request) {
	h.listBooksWith(w, r, pgrepo.BookFilter{OnlyFree: true, Limit: queryLimit(r, 50)})
}

func (h *CatalogHandler) FeaturedBooks(w http.ResponseWriter, r *http.Request) {
	h.listBooksWith(w, r, pgrepo.BookFilter{OnlyFeatured: true, Limit: queryLimit(r, 10)})
}

func (h *CatalogHandler) NewBooks(w http.ResponseWriter, r *http.Request) {
	h.listBooksWith(w, r, pgrepo.BookFilter{OnlyNew: true, Limit: queryLimit(r, 10)})
}

func (h *CatalogHandler) listBooksWith(w http.ResponseWriter, r *http.Request, filter pgrepo.BookFilter) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	books, err := h.catalog.ListBooks(r.Context(), filter)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list books")
		return
	}

	httperrors.Write(w, http.StatusOK, books)
}

func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	book, err := h.catalog.GetBook(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, catalogsvc.ErrBookNotFound) {
			writeNotFound(w, "BOOK_NOT_FOUND", "book not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load book")
		return
	}

	httperrors.Write(w, http.StatusOK, book)
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	result, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"), queryLimit(r, 20))
	if err != nil {
		if errors.Is(err, catalogsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "query parameter q is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "search failed")
		return
	}

	httperrors.Write(w, http.StatusOK, result)
}
