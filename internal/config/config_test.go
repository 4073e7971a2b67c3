package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
store:
  download_limit: 5
  download_link_ttl: 48h
  default_currency: EUR
admin:
  email: owner@example.org
  jwt_ttl: 2h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Store.DownloadLimit != 5 {
		t.Fatalf("unexpected download limit: %d", cfg.Store.DownloadLimit)
	}
	if cfg.Store.DownloadLinkTTL != 48*time.Hour {
		t.Fatalf("unexpected download link ttl: %s", cfg.Store.DownloadLinkTTL)
	}
	if cfg.Store.DefaultCurrency != "EUR" {
		t.Fatalf("unexpected currency: %s", cfg.Store.DefaultCurrency)
	}
	if cfg.Admin.Email != "owner@example.org" {
		t.Fatalf("unexpected admin email: %s", cfg.Admin.Email)
	}
	if cfg.Admin.JWTTTL != 2*time.Hour {
		t.Fatalf("unexpected admin jwt ttl: %s", cfg.Admin.JWTTTL)
	}

	if cfg.Store.DownloadsPerMinute != 30 {
		t.Fatalf("downloads_per_minute default should stay 30, got %d", cfg.Store.DownloadsPerMinute)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr default should stay localhost:6379, got %s", cfg.Redis.Addr)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Store.DownloadLimit != 3 {
		t.Fatalf("unexpected default download limit: %d", cfg.Store.DownloadLimit)
	}
	if cfg.Store.DownloadLinkTTL != 7*24*time.Hour {
		t.Fatalf("unexpected default download link ttl: %s", cfg.Store.DownloadLinkTTL)
	}
	if cfg.Store.DefaultCurrency != "CFA" {
		t.Fatalf("unexpected default currency: %s", cfg.Store.DefaultCurrency)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Admin.JWTTTL != 12*time.Hour {
		t.Fatalf("unexpected default admin jwt ttl: %s", cfg.Admin.JWTTTL)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORE_DOWNLOAD_LIMIT", "9")
	t.Setenv("POSTGRES_DSN", "postgres://env:env@db:5432/blog")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Store.DownloadLimit != 9 {
		t.Fatalf("env override for download limit not applied: %d", cfg.Store.DownloadLimit)
	}
	if cfg.Postgres.DSN != "postgres://env:env@db:5432/blog" {
		t.Fatalf("env override for postgres dsn not applied: %s", cfg.Postgres.DSN)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"ADMIN_EMAIL",
		"ADMIN_PASSWORD_HASH",
		"ADMIN_JWT_SECRET",
		"ADMIN_JWT_TTL",
		"STORE_DOWNLOAD_LIMIT",
		"STORE_DOWNLOAD_LINK_TTL",
		"STORE_PRESIGN_TTL",
		"STORE_DEFAULT_CURRENCY",
		"STORE_DOWNLOADS_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}
}
