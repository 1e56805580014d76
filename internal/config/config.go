// Package config loads parkentry settings from defaults, an optional YAML
// file and PARKENTRY_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PARKENTRY_"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Submission SubmissionConfig `yaml:"submission"`
	Store      StoreConfig      `yaml:"store"`
	Uploads    UploadsConfig    `yaml:"uploads"`
	Receipt    ReceiptConfig    `yaml:"receipt"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	// TemplatesDir holds page templates that replace the bundled ones.
	TemplatesDir   string        `yaml:"templatesDir"`
}

type CatalogConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SubmissionConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Timeout      time.Duration `yaml:"timeout"`
	Print        bool          `yaml:"print"`
	PrintCommand []string      `yaml:"printCommand"`
	PrintDelay   time.Duration `yaml:"printDelay"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type UploadsConfig struct {
	Driver string   `yaml:"driver"`
	Dir    string   `yaml:"dir"`
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UsePathStyle    bool   `yaml:"usePathStyle"`
}

type ReceiptConfig struct {
	Authority string `yaml:"authority"`
	Park      string `yaml:"park"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Upload drivers.
const (
	DriverDisk = "disk"
	DriverS3   = "s3"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":5000",
			MaxUploadBytes: 32 << 20,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Catalog: CatalogConfig{
			URL:     "https://restcountries.com/v3.1/all?fields=name",
			Timeout: 10 * time.Second,
		},
		Submission: SubmissionConfig{
			Endpoint:   "http://localhost:5000/submit",
			Timeout:    30 * time.Second,
			Print:      true,
			PrintDelay: time.Second,
		},
		Store:   StoreConfig{Path: "park_entry.db"},
		Uploads: UploadsConfig{Driver: DriverDisk, Dir: "uploads"},
		Receipt: ReceiptConfig{
			Authority: "Uganda Wildlife Authority",
			Park:      "Murchison Falls National Park",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (when non-empty) over the defaults and applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from PARKENTRY_* variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	str("ADDR", &c.Server.Addr)
	str("TEMPLATES_DIR", &c.Server.TemplatesDir)
	str("CATALOG_URL", &c.Catalog.URL)
	str("ENDPOINT", &c.Submission.Endpoint)
	str("DB", &c.Store.Path)
	str("UPLOAD_DRIVER", &c.Uploads.Driver)
	str("UPLOAD_DIR", &c.Uploads.Dir)
	str("S3_BUCKET", &c.Uploads.S3.Bucket)
	str("S3_REGION", &c.Uploads.S3.Region)
	str("S3_ENDPOINT", &c.Uploads.S3.Endpoint)
	str("S3_PREFIX", &c.Uploads.S3.Prefix)
	str("S3_ACCESS_KEY_ID", &c.Uploads.S3.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &c.Uploads.S3.SecretAccessKey)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup(EnvPrefix + "PRINT"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sPRINT: %w", EnvPrefix, err)
		}
		c.Submission.Print = enabled
	}
	if v, ok := lookup(EnvPrefix + "PRINT_COMMAND"); ok {
		c.Submission.PrintCommand = strings.Fields(v)
	}
	if v, ok := lookup(EnvPrefix + "MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %sMAX_UPLOAD_BYTES: %w", EnvPrefix, err)
		}
		c.Server.MaxUploadBytes = n
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	switch c.Uploads.Driver {
	case DriverDisk:
		if strings.TrimSpace(c.Uploads.Dir) == "" {
			errs = append(errs, errors.New("uploads.dir is required for the disk driver"))
		}
	case DriverS3:
		if strings.TrimSpace(c.Uploads.S3.Bucket) == "" {
			errs = append(errs, errors.New("uploads.s3.bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("uploads.driver %q is not one of disk, s3", c.Uploads.Driver))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.maxUploadBytes must be positive"))
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
