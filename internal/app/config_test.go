package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("PDF_RENDERER", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, PDFRendererGotenberg, cfg.PDFRenderer)
	assert.Equal(t, "SAR", cfg.ReportCurrencyUnit)
	assert.Equal(t, "en", cfg.ReportLocale)
	assert.Equal(t, 5, cfg.ReportDefaultTopN)
	assert.Equal(t, 10*time.Minute, cfg.ReportCacheTTL)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, int32(10), cfg.Database().MaxConns)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis().Asynq().Addr)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PDF_RENDERER", " Local ")
	t.Setenv("PDF_RTL_RENDERER", "Gotenberg")
	t.Setenv("REPORT_DEFAULT_TOP_N", "10")
	t.Setenv("REPORT_CACHE_TTL", "1m")
	t.Setenv("PG_MAX_CONNS", "20")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, PDFRendererLocal, cfg.PDFRenderer)
	assert.Equal(t, PDFRendererGotenberg, cfg.PDFRTLRenderer)
	assert.Equal(t, 10, cfg.ReportDefaultTopN)
	assert.Equal(t, time.Minute, cfg.ReportCacheTTL)
	assert.Equal(t, int32(20), cfg.Database().MaxConns)
	assert.Equal(t, 4, cfg.Redis().DB)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {"SESSION_SECRET": ""},
		"renderer":       {"SESSION_SECRET": "s", "PDF_RENDERER": "wkhtml"},
		"rtl renderer":   {"SESSION_SECRET": "s", "PDF_RTL_RENDERER": "chromedp"},
		"top n":          {"SESSION_SECRET": "s", "REPORT_DEFAULT_TOP_N": "0"},
		"negative ttl":   {"SESSION_SECRET": "s", "REPORT_CACHE_TTL": "-1m"},
		"pool size":      {"SESSION_SECRET": "s", "PG_MIN_CONNS": "20", "PG_MAX_CONNS": "5"},
		"log level":      {"SESSION_SECRET": "s", "LOG_LEVEL": "chatty"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("PDF_RENDERER", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestNilConfigIsNotProduction(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.IsProduction())
}
