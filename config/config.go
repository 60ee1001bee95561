// Package config defines the typed pipeline configuration and loads it from JSON or
// YAML files. Configurations are validated when they are loaded so that unknown source
// types, duplicate source names and incomplete source descriptors are rejected before
// any data is fetched.
package config

import (
	"time"
)

type SourceType string

const (
	API           SourceType = "api"
	ObjectStorage SourceType = "object-storage"
	GCS           SourceType = "gcs"
	Database      SourceType = "database"
)

const DefaultTimestampFormat = "%Y%m%d_%H%M%S"

type Config struct {
	Sources []Source `json:"sources" yaml:"sources" validate:"unique=Name,dive"`
	Output  Output   `json:"output" yaml:"output"`
	Storage Storage  `json:"storage" yaml:"storage"`
	API     Client   `json:"api" yaml:"api"`
}

// Source describes a single dataset. Which fields are required depends on the source
// type: 'api' needs url, 'object-storage' (or 'gcs') needs bucket and file and
// 'database' needs driver, dsn and query.
type Source struct {
	Name            string          `json:"name" yaml:"name" validate:"required,sheetname"`
	Type            SourceType      `json:"type" yaml:"type" validate:"required,oneof=api object-storage gcs database"`
	URL             string          `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	Params          map[string]any  `json:"params,omitempty" yaml:"params,omitempty"`
	DataKey         string          `json:"data_key,omitempty" yaml:"data_key,omitempty"`
	Bucket          string          `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	File            string          `json:"file,omitempty" yaml:"file,omitempty"`
	Driver          string          `json:"driver,omitempty" yaml:"driver,omitempty" validate:"omitempty,oneof=postgres pgx sqlite3"`
	DSN             string          `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Query           string          `json:"query,omitempty" yaml:"query,omitempty"`
	Transformations Transformations `json:"transformations,omitempty" yaml:"transformations,omitempty"`
}

// Kind returns the canonical source type, i.e. 'gcs' is reported as 'object-storage'.
func (s Source) Kind() SourceType {
	if s.Type == GCS {
		return ObjectStorage
	}

	return s.Type
}

type Transformations struct {
	RenameColumns map[string]string `json:"rename_columns,omitempty" yaml:"rename_columns,omitempty" validate:"dive,keys,required,endkeys,required"`
	DateColumns   []string          `json:"date_columns,omitempty" yaml:"date_columns,omitempty" validate:"dive,required"`
}

// IsEmpty returns true if the transformations are the identity.
func (t Transformations) IsEmpty() bool {
	return len(t.RenameColumns) == 0 && len(t.DateColumns) == 0
}

type Output struct {
	BaseName        string        `json:"base_name" yaml:"base_name" validate:"required,excludesall=/\\"`
	Directory       string        `json:"directory,omitempty" yaml:"directory,omitempty"`
	TimestampFormat string        `json:"timestamp_format,omitempty" yaml:"timestamp_format,omitempty"`
	GCSUpload       *Upload       `json:"gcs_upload,omitempty" yaml:"gcs_upload,omitempty"`
	DriveUpload     *DriveUpload  `json:"drive_upload,omitempty" yaml:"drive_upload,omitempty"`
	SheetsUpload    *SheetsUpload `json:"sheets_upload,omitempty" yaml:"sheets_upload,omitempty"`
}

type Upload struct {
	Bucket string `json:"bucket" yaml:"bucket" validate:"required"`
	Path   string `json:"path" yaml:"path"`
}

type DriveUpload struct {
	Folder string `json:"folder" yaml:"folder" validate:"required"`
}

type SheetsUpload struct {
	URL string `json:"url" yaml:"url" validate:"required,spreadsheet"`
}

// Storage selects the object storage backend used for 'object-storage' sources and for
// the gcs_upload output.
type Storage struct {
	Backend   string `json:"backend,omitempty" yaml:"backend,omitempty" validate:"omitempty,oneof=gcs s3 minio local"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	UseSSL    bool   `json:"use_ssl,omitempty" yaml:"use_ssl,omitempty"`
	Root      string `json:"root,omitempty" yaml:"root,omitempty"`
}

// Client configures the HTTP client used for 'api' sources.
type Client struct {
	Timeout   string  `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"omitempty,duration"`
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" validate:"gte=0"`
	UserAgent string  `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// RequestTimeout returns the configured per-request timeout, defaulting to 30s.
func (c Client) RequestTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}

	return 30 * time.Second
}

// Lookup returns the source with the given name.
func (c *Config) Lookup(name string) (Source, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}

	return Source{}, false
}

// UsesGoogle returns true if any part of the configuration needs Google credentials.
func (c *Config) UsesGoogle() bool {
	if c.Output.DriveUpload != nil || c.Output.SheetsUpload != nil {
		return true
	}

	return c.Storage.Backend == "gcs" && c.UsesStorage()
}

// UsesStorage returns true if the configuration reads from or writes to object storage.
func (c *Config) UsesStorage() bool {
	if c.Output.GCSUpload != nil {
		return true
	}

	for _, s := range c.Sources {
		if s.Kind() == ObjectStorage {
			return true
		}
	}

	return false
}
