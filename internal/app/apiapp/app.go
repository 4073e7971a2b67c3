package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/elkast/blog/internal/config"
	s3infra "github.com/elkast/blog/internal/infra/s3"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
	redrepo "github.com/elkast/blog/internal/repo/redis"
	adminauthsvc "github.com/elkast/blog/internal/services/adminauth"
	catalogsvc "github.com/elkast/blog/internal/services/catalog"
	contactsvc "github.com/elkast/blog/internal/services/contact"
	downloadsvc "github.com/elkast/blog/internal/services/downloads"
	editorialsvc "github.com/elkast/blog/internal/services/editorial"
	filessvc "github.com/elkast/blog/internal/services/files"
	newslettersvc "github.com/elkast/blog/internal/services/newsletter"
	purchasesvc "github.com/elkast/blog/internal/services/purchases"
	ratesvc "github.com/elkast/blog/internal/services/rate"
	siteconfigsvc "github.com/elkast/blog/internal/services/siteconfig"
	statssvc "github.com/elkast/blog/internal/services/stats"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	configCacheRepo := redrepo.NewConfigCacheRepo(redisClient)

	articleRepo := pgrepo.NewArticleRepo(pool)
	bookRepo := pgrepo.NewBookRepo(pool)
	categoryRepo := pgrepo.NewCategoryRepo(pool)
	purchaseRepo := pgrepo.NewPurchaseRepo(pool)
	downloadRepo := pgrepo.NewDownloadRepo(pool)
	contactRepo := pgrepo.NewContactRepo(pool)
	newsletterRepo := pgrepo.NewNewsletterRepo(pool)
	siteConfigRepo := pgrepo.NewSiteConfigRepo(pool)
	viewStatsRepo := pgrepo.NewViewStatsRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}
	bookStorage := filessvc.NewS3Storage(s3Client, cfg.S3.Bucket)

	catalogService := catalogsvc.NewService(articleRepo, bookRepo, categoryRepo, viewStatsRepo)
	purchaseService := purchasesvc.NewService(bookRepo, purchaseRepo, purchasesvc.Config{
		DownloadLimit:   cfg.Store.DownloadLimit,
		DownloadLinkTTL: cfg.Store.DownloadLinkTTL,
		DefaultCurrency: cfg.Store.DefaultCurrency,
	})
	downloadService := downloadsvc.NewService(purchaseRepo, bookRepo, downloadRepo, bookStorage, downloadsvc.Config{
		PresignTTL: cfg.Store.PresignTTL,
	})
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Store.DownloadsPerMinute)
	newsletterService := newslettersvc.NewService(newsletterRepo)
	contactService := contactsvc.NewService(contactRepo)
	siteConfigService := siteconfigsvc.NewService(siteConfigRepo, configCacheRepo, cfg.Store.ConfigCacheTTL)
	adminAuthService := adminauthsvc.NewService(cfg.Admin.Email, cfg.Admin.PasswordHash, cfg.Admin.JWTSecret, cfg.Admin.JWTTTL)
	editorialService := editorialsvc.NewService(articleRepo, bookRepo, categoryRepo)
	editorialService.AttachStorage(bookStorage)
	statsService := statssvc.NewService(statssvc.Dependencies{
		Articles:    articleRepo,
		Books:       bookRepo,
		Categories:  categoryRepo,
		Purchases:   purchaseRepo,
		Downloads:   downloadRepo,
		Messages:    contactRepo,
		Subscribers: newsletterRepo,
		Views:       viewStatsRepo,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AdminAuthService:  adminAuthService,
		CatalogService:    catalogService,
		ContactService:    contactService,
		DownloadService:   downloadService,
		EditorialService:  editorialService,
		NewsletterService: newsletterService,
		PurchaseService:   purchaseService,
		RateLimiter:       rateLimiter,
		SiteConfigService: siteConfigService,
		StatsService:      statsService,
		Logger:            log,
		Config:            cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
