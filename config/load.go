package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// Load reads, decodes and validates a pipeline configuration file. Files with a .yaml
// or .yml extension are decoded as YAML, everything else as JSON.
func Load(file string) (*Config, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	format := "json"
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		format = "yaml"
	}

	return Parse(b, format)
}

// Parse decodes and validates a configuration. Unknown fields are rejected.
func Parse(b []byte, format string) (*Config, error) {
	c := Config{}

	switch format {
	case "yaml":
		decoder := yaml.NewDecoder(bytes.NewReader(b))
		decoder.KnownFields(true)
		if err := decoder.Decode(&c); err != nil {
			return nil, fmt.Errorf("invalid YAML configuration (%w)", err)
		}

	case "json":
		decoder := json.NewDecoder(bytes.NewReader(b))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&c); err != nil {
			return nil, fmt.Errorf("invalid JSON configuration (%w)", err)
		}

	default:
		return nil, fmt.Errorf("unsupported configuration format '%s'", format)
	}

	c.defaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) defaults() {
	if c.Sources == nil {
		c.Sources = []Source{}
	}

	if c.Output.Directory == "" {
		c.Output.Directory = "."
	}

	if c.Output.TimestampFormat == "" {
		c.Output.TimestampFormat = DefaultTimestampFormat
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = "gcs"
	}
}

// Validate checks the configuration against the field rules and the per source type
// requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			messages := []string{}
			for _, e := range errs {
				messages = append(messages, describe(e))
			}

			return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
		}

		return fmt.Errorf("invalid configuration (%w)", err)
	}

	if (c.Storage.Backend == "s3" || c.Storage.Backend == "minio") && c.Storage.Endpoint == "" && c.UsesStorage() {
		return fmt.Errorf("invalid configuration: storage.endpoint is required for the %s backend", c.Storage.Backend)
	}

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	v.RegisterValidation("sheetname", func(fl validator.FieldLevel) bool {
		return isSheetName(fl.Field().String())
	})

	v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})

	v.RegisterValidation("spreadsheet", func(fl validator.FieldLevel) bool {
		return spreadsheetURL.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	v.RegisterStructValidation(validateSource, Source{})
	v.RegisterStructValidation(validateConfig, Config{})

	return v
}

// validateConfig rejects source names that differ only by case. Worksheet names are
// case insensitive so such sources would be written to the same worksheet.
func validateConfig(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)

	for i, s := range c.Sources {
		for _, other := range c.Sources[:i] {
			if s.Name != other.Name && strings.EqualFold(s.Name, other.Name) {
				sl.ReportError(c.Sources, "sources", "Sources", "unique_ci", s.Name+"' and '"+other.Name)
			}
		}
	}
}

// validateSource checks the fields required by each source type.
func validateSource(sl validator.StructLevel) {
	s := sl.Current().Interface().(Source)

	require := func(value, field, name string) {
		if strings.TrimSpace(value) == "" {
			sl.ReportError(value, field, name, "required_for_type", string(s.Type))
		}
	}

	switch s.Kind() {
	case API:
		require(s.URL, "url", "URL")

	case ObjectStorage:
		require(s.Bucket, "bucket", "Bucket")
		require(s.File, "file", "File")

	case Database:
		require(s.Driver, "driver", "Driver")
		require(s.DSN, "dsn", "DSN")
		require(s.Query, "query", "Query")
	}
}

// isSheetName checks the worksheet naming rules: 1-31 characters, none of : \ / ? * [ ]
// and not starting or ending with an apostrophe.
func isSheetName(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > 31 {
		return false
	}

	if strings.ContainsAny(name, `:\/?*[]`) {
		return false
	}

	return !strings.HasPrefix(name, "'") && !strings.HasSuffix(name, "'")
}

func describe(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Config.")

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_for_type":
		return fmt.Sprintf("%s is required for '%s' sources", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s '%v' is not one of [%s]", field, e.Value(), e.Param())
	case "unique":
		return fmt.Sprintf("%s must have unique %s values", field, strings.ToLower(e.Param()))
	case "unique_ci":
		return fmt.Sprintf("%s names '%s' differ only by case", field, e.Param())
	case "sheetname":
		return fmt.Sprintf("%s '%v' is not a valid worksheet name", field, e.Value())
	default:
		return fmt.Sprintf("%s failed '%s' check", field, e.Tag())
	}
}

// SpreadsheetID extracts the spreadsheet ID from a Google Sheets URL.
func (s SheetsUpload) SpreadsheetID() (string, error) {
	match := spreadsheetURL.FindStringSubmatch(strings.TrimSpace(s.URL))
	if len(match) < 2 || match[1] == "" {
		return "", fmt.Errorf("invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'")
	}

	return match[1], nil
}
