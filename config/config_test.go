package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, EngineTesseract, cfg.OCR.Engine)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, int64(1), cfg.Server.DefaultUserID)
	assert.False(t, cfg.Queue.Enabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  shutdownTimeout: 3s
store:
  backend: redis
  ttl: 1h
redis:
  addr: "redis:6379"
queue:
  enabled: true
minio:
  endpoint: "minio:9000"
  bucketName: "staging"
`)
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("OCR_LANGUAGES", "eng, deu")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, []string{"eng", "deu"}, cfg.OCR.Languages)
	assert.True(t, cfg.Queue.Enabled)
	assert.Equal(t, "staging", cfg.Minio.BucketName)
	assert.True(t, cfg.Minio.UseSSL)
	// untouched defaults survive a partial file
	assert.Equal(t, 24*time.Hour, cfg.Queue.StatusTTL)
}

func TestLoadRejectsBadInput(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)

	t.Setenv("QUEUE_ENABLED", "maybe")
	_, err = Load("")
	assert.ErrorContains(t, err, "QUEUE_ENABLED")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"queue with memory store", func(c *Config) { c.Queue.Enabled = true }, "queue.enabled requires store.backend redis"},
		{"queue with redis store", func(c *Config) {
			c.Queue.Enabled = true
			c.Store.Backend = StoreRedis
		}, ""},
		{"unknown storage", func(c *Config) {
			c.Queue.Enabled = true
			c.Store.Backend = StoreRedis
			c.Storage.Backend = "ftp"
		}, `unknown storage.backend "ftp"`},
		{"textract without region", func(c *Config) { c.OCR.Engine = EngineTextract }, "textract engine requires textract.region"},
		{"textract with region", func(c *Config) {
			c.OCR.Engine = EngineTextract
			c.Textract.Region = "us-east-1"
		}, ""},
		{"unknown engine", func(c *Config) { c.OCR.Engine = "easyocr" }, `unknown ocr.engine "easyocr"`},
		{"unknown store", func(c *Config) { c.Store.Backend = "postgres" }, `unknown store.backend "postgres"`},
		{"zero upload limit", func(c *Config) { c.Upload.MaxBytes = 0 }, "upload.maxBytes must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
