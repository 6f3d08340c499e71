package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the server and the worker.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upload   UploadConfig   `yaml:"upload"`
	Log      LogConfig      `yaml:"log"`
	OCR      OCRConfig      `yaml:"ocr"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Queue    QueueConfig    `yaml:"queue"`
	Storage  StorageConfig  `yaml:"storage"`
	Minio    MinioConfig    `yaml:"minio"`
	S3       S3Config       `yaml:"s3"`
	Textract TextractConfig `yaml:"textract"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"`
	AllowOrigins    []string      `yaml:"allowOrigins"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// DefaultUserID owns every upload until authentication exists.
	DefaultUserID int64 `yaml:"defaultUserId"`
}

type UploadConfig struct {
	MaxBytes int64 `yaml:"maxBytes"`
}

type LogConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"outputPaths"`
	Development bool     `yaml:"development"`
}

const (
	EngineTesseract = "tesseract"
	EngineTextract  = "textract"
)

type OCRConfig struct {
	Engine    string   `yaml:"engine"`
	Languages []string `yaml:"languages"`
	MinWidth  int      `yaml:"minWidth"`
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type StoreConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type QueueConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Concurrency int           `yaml:"concurrency"`
	MaxRetry    int           `yaml:"maxRetry"`
	Timeout     time.Duration `yaml:"timeout"`
	StatusTTL   time.Duration `yaml:"statusTTL"`
	// Retention is how long staged uploads may stay in blob storage.
	Retention time.Duration `yaml:"retention"`
}

const (
	StorageMinio = "minio"
	StorageS3    = "s3"
)

type StorageConfig struct {
	Backend string `yaml:"backend"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			AllowOrigins:    []string{"*"},
			ShutdownTimeout: 10 * time.Second,
			DefaultUserID:   1,
		},
		Upload: UploadConfig{MaxBytes: 10 << 20},
		Log: LogConfig{
			Level:       "info",
			Encoding:    "json",
			OutputPaths: []string{"stdout"},
		},
		OCR: OCRConfig{
			Engine:    EngineTesseract,
			Languages: []string{"eng"},
			MinWidth:  1000,
		},
		Store: StoreConfig{Backend: StoreMemory},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Queue: QueueConfig{
			Concurrency: 4,
			MaxRetry:    3,
			Timeout:     5 * time.Minute,
			StatusTTL:   24 * time.Hour,
			Retention:   24 * time.Hour,
		},
		Storage: StorageConfig{Backend: StorageMinio},
		Minio:   MinioConfig{Endpoint: "localhost:9000", BucketName: "resumes"},
	}
}

// Load builds the configuration from defaults, a .env file, an optional
// YAML file at path and finally the process environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Server.Mode, "GIN_MODE")
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		c.Server.AllowOrigins = splitList(v)
	}
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Encoding, "LOG_ENCODING")
	setString(&c.OCR.Engine, "OCR_ENGINE")
	if v := os.Getenv("OCR_LANGUAGES"); v != "" {
		c.OCR.Languages = splitList(v)
	}
	setString(&c.Store.Backend, "STORE_BACKEND")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Storage.Backend, "STORAGE_BACKEND")

	if err := setInt64(&c.Upload.MaxBytes, "UPLOAD_MAX_BYTES"); err != nil {
		return err
	}
	if err := setInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&c.Queue.Concurrency, "QUEUE_CONCURRENCY"); err != nil {
		return err
	}
	if err := setBool(&c.Queue.Enabled, "QUEUE_ENABLED"); err != nil {
		return err
	}

	c.Minio.applyEnv()
	c.S3.applyEnv()
	c.Textract.applyEnv()
	return nil
}

// Validate rejects settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("upload.maxBytes must be positive"))
	}
	switch c.OCR.Engine {
	case EngineTesseract:
	case EngineTextract:
		if c.Textract.Region == "" {
			errs = append(errs, errors.New("textract engine requires textract.region"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ocr.engine %q", c.OCR.Engine))
	}
	switch c.Store.Backend {
	case StoreMemory, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}
	if c.Queue.Enabled {
		// the worker runs in another process and cannot see an in-memory store
		if c.Store.Backend != StoreRedis {
			errs = append(errs, errors.New("queue.enabled requires store.backend redis"))
		}
		switch c.Storage.Backend {
		case StorageMinio, StorageS3:
		default:
			errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
