package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/elkast/blog/internal/config"
	adminauthsvc "github.com/elkast/blog/internal/services/adminauth"
	catalogsvc "github.com/elkast/blog/internal/services/catalog"
	contactsvc "github.com/elkast/blog/internal/services/contact"
	downloadsvc "github.com/elkast/blog/internal/services/downloads"
	editorialsvc "github.com/elkast/blog/internal/services/editorial"
	newslettersvc "github.com/elkast/blog/internal/services/newsletter"
	purchasesvc "github.com/elkast/blog/internal/services/purchases"
	ratesvc "github.com/elkast/blog/internal/services/rate"
	siteconfigsvc "github.com/elkast/blog/internal/services/siteconfig"
	statssvc "github.com/elkast/blog/internal/services/stats"
	"github.com/elkast/blog/internal/transport/http/handlers"
)

type Dependencies struct {
	AdminAuthService  *adminauthsvc.Service
	CatalogService    *catalogsvc.Service
	ContactService    *contactsvc.Service
	DownloadService   *downloadsvc.Service
	EditorialService  *editorialsvc.Service
	NewsletterService *newslettersvc.Service
	PurchaseService   *purchasesvc.Service
	RateLimiter       *ratesvc.Limiter
	SiteConfigService *siteconfigsvc.Service
	StatsService      *statssvc.Service
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	catalogHandler := handlers.NewCatalogHandler(deps.CatalogService)
	purchaseHandler := handlers.NewPurchaseHandler(deps.PurchaseService)
	downloadHandler := handlers.NewDownloadHandler(deps.DownloadService, deps.RateLimiter, deps.Logger)
	newsletterHandler := handlers.NewNewsletterHandler(deps.NewsletterService)
	contactHandler := handlers.NewContactHandler(deps.ContactService)
	adminHandler := handlers.NewAdminHandler(deps.AdminAuthService, deps.StatsService, deps.SiteConfigService)
	editorialHandler := handlers.NewEditorialHandler(deps.EditorialService)
	adminMW := AdminAuthMiddleware(deps.AdminAuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/articles", func(r chi.Router) {
		r.Get("/", catalogHandler.ListArticles)
		r.Get("/featured", catalogHandler.FeaturedArticles)
		r.Get("/latest", catalogHandler.LatestArticles)
		r.Get("/most-read", catalogHandler.MostReadArticles)
		r.Get("/{slug}", catalogHandler.GetArticle)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", catalogHandler.ListCategories)
		r.Get("/{slug}/articles", catalogHandler.CategoryArticles)
	})

	r.Route("/books", func(r chi.Router) {
		r.Get("/", catalogHandler.ListBooks)
		r.Get("/free", catalogHandler.FreeBooks)
		r.Get("/featured", catalogHandler.FeaturedBooks)
		r.Get("/new", catalogHandler.NewBooks)
		r.Get("/{slug}", catalogHandler.GetBook)
		r.Post("/{slug}/purchase", purchaseHandler.Begin)
		r.Get("/{slug}/download", downloadHandler.Free)
	})

	r.Get("/search", catalogHandler.Search)
	r.Post("/newsletter/subscribe", newsletterHandler.Subscribe)
	r.Post("/contact", contactHandler.Submit)

	r.Route("/purchases", func(r chi.Router) {
		r.Post("/{id}/pay", purchaseHandler.Pay)
		r.Get("/token/{token}", purchaseHandler.ByToken)
	})

	r.Get("/download/{token}", downloadHandler.Gated)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", adminHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(adminMW)
			r.Get("/stats", adminHandler.Stats)
			r.Get("/config", adminHandler.GetConfig)
			r.Put("/config", adminHandler.UpdateConfig)

			r.Route("/articles", func(r chi.Router) {
				r.Post("/", editorialHandler.CreateArticle)
				r.Get("/{id}", editorialHandler.GetArticle)
				r.Put("/{id}", editorialHandler.UpdateArticle)
				r.Delete("/{id}", editorialHandler.DeleteArticle)
			})

			r.Route("/books", func(r chi.Router) {
				r.Post("/", editorialHandler.CreateBook)
				r.Get("/{id}", editorialHandler.GetBook)
				r.Put("/{id}", editorialHandler.UpdateBook)
				r.Delete("/{id}", editorialHandler.DeleteBook)
				r.Post("/{id}/file", editorialHandler.UploadBookFile)
			})

			r.Post("/categories", editorialHandler.CreateCategory)

			r.Route("/purchases", func(r chi.Router) {
				r.Get("/", purchaseHandler.AdminList)
				r.Post("/{id}/status", purchaseHandler.AdminSetStatus)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", contactHandler.AdminList)
				r.Post("/{id}/read", contactHandler.AdminMarkRead)
			})

			r.Get("/subscribers", newsletterHandler.AdminList)
		})
	})
}
