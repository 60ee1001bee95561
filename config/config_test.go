package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseJSON(t *testing.T) {
	data := `{
	  "sources": [
	    {
	      "name": "users",
	      "type": "api",
	      "url": "https://api.example.com/users",
	      "params": { "page": 1, "active": true },
	      "data_key": "data",
	      "transformations": {
	        "rename_columns": { "created": "Created At" },
	        "date_columns": [ "Created At" ]
	      }
	    },
	    { "name": "sales", "type": "gcs", "bucket": "raw", "file": "sales/2024.csv" }
	  ],
	  "output": {
	    "base_name": "report",
	    "gcs_upload": { "bucket": "reports", "path": "monthly" }
	  }
	}`

	expected := Config{
		Sources: []Source{
			{
				Name:    "users",
				Type:    API,
				URL:     "https://api.example.com/users",
				Params:  map[string]any{"page": 1.0, "active": true},
				DataKey: "data",
				Transformations: Transformations{
					RenameColumns: map[string]string{"created": "Created At"},
					DateColumns:   []string{"Created At"},
				},
			},
			{
				Name:   "sales",
				Type:   GCS,
				Bucket: "raw",
				File:   "sales/2024.csv",
			},
		},
		Output: Output{
			BaseName:        "report",
			Directory:       ".",
			TimestampFormat: DefaultTimestampFormat,
			GCSUpload:       &Upload{Bucket: "reports", Path: "monthly"},
		},
		Storage: Storage{Backend: "gcs"},
	}

	c, err := Parse([]byte(data), "json")
	if err != nil {
		t.Fatalf("Unexpected error parsing configuration (%v)", err)
	}

	if diff := cmp.Diff(expected, *c); diff != "" {
		t.Errorf("Incorrect configuration (-expected +got):\n%s", diff)
	}

	if c.Sources[1].Kind() != ObjectStorage {
		t.Errorf("Incorrect source kind - expected:%v, got:%v", ObjectStorage, c.Sources[1].Kind())
	}

	if !c.UsesGoogle() {
		t.Errorf("Expected configuration to require Google credentials")
	}
}

func TestLoadYAML(t *testing.T) {
	data := `
sources:
  - name: orders
    type: database
    driver: sqlite3
    dsn: "file:orders.db"
    query: SELECT * FROM orders
output:
  base_name: orders
  directory: out
  timestamp_format: "%Y-%m-%d"
storage:
  backend: local
  root: /tmp/objects
api:
  timeout: 5s
`

	file := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(file, []byte(data), 0600); err != nil {
		t.Fatalf("Error writing test configuration (%v)", err)
	}

	c, err := Load(file)
	if err != nil {
		t.Fatalf("Unexpected error loading configuration (%v)", err)
	}

	if c.Sources[0].Query != "SELECT * FROM orders" {
		t.Errorf("Incorrect query - expected:%q, got:%q", "SELECT * FROM orders", c.Sources[0].Query)
	}

	if c.Output.TimestampFormat != "%Y-%m-%d" {
		t.Errorf("Incorrect timestamp format - expected:%q, got:%q", "%Y-%m-%d", c.Output.TimestampFormat)
	}

	if c.API.RequestTimeout().String() != "5s" {
		t.Errorf("Incorrect request timeout - expected:%v, got:%v", "5s", c.API.RequestTimeout())
	}

	if c.UsesGoogle() {
		t.Errorf("Configuration does not require Google credentials")
	}
}

func TestParseEmptySources(t *testing.T) {
	c, err := Parse([]byte(`{"sources":[],"output":{"base_name":"empty"}}`), "json")
	if err != nil {
		t.Fatalf("Unexpected error parsing configuration (%v)", err)
	}

	if len(c.Sources) != 0 {
		t.Errorf("Expected no sources, got %v", c.Sources)
	}
}

func TestParseInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		expected string
	}{
		{
			name:     "unknown source type",
			config:   `{"sources":[{"name":"x","type":"ftp","url":"ftp://example.com"}],"output":{"base_name":"r"}}`,
			expected: "sources[0].type 'ftp' is not one of",
		},
		{
			name:     "duplicate names",
			config:   `{"sources":[{"name":"x","type":"api","url":"https://a.example.com"},{"name":"x","type":"api","url":"https://b.example.com"}],"output":{"base_name":"r"}}`,
			expected: "unique",
		},
		{
			name:     "names differing only by case",
			config:   `{"sources":[{"name":"Sales","type":"api","url":"https://a.example.com"},{"name":"sales","type":"api","url":"https://b.example.com"}],"output":{"base_name":"r"}}`,
			expected: "'sales' and 'Sales' differ only by case",
		},
		{
			name:     "missing url",
			config:   `{"sources":[{"name":"x","type":"api"}],"output":{"base_name":"r"}}`,
			expected: "sources[0].url is required for 'api' sources",
		},
		{
			name:     "missing file",
			config:   `{"sources":[{"name":"x","type":"object-storage","bucket":"b"}],"output":{"base_name":"r"}}`,
			expected: "sources[0].file is required",
		},
		{
			name:     "invalid sheet name",
			config:   `{"sources":[{"name":"a/b","type":"api","url":"https://example.com"}],"output":{"base_name":"r"}}`,
			expected: "not a valid worksheet name",
		},
		{
			name:     "missing base name",
			config:   `{"sources":[],"output":{}}`,
			expected: "output.base_name is required",
		},
		{
			name:     "missing upload bucket",
			config:   `{"sources":[],"output":{"base_name":"r","gcs_upload":{"path":"x"}}}`,
			expected: "output.gcs_upload.bucket is required",
		},
		{
			name:     "unknown field",
			config:   `{"sources":[],"output":{"base_name":"r"},"extra":true}`,
			expected: "unknown field",
		},
		{
			name:     "invalid spreadsheet URL",
			config:   `{"sources":[],"output":{"base_name":"r","sheets_upload":{"url":"https://example.com/sheet"}}}`,
			expected: "output.sheets_upload.url",
		},
		{
			name:     "s3 without endpoint",
			config:   `{"sources":[],"output":{"base_name":"r","gcs_upload":{"bucket":"b"}},"storage":{"backend":"s3"}}`,
			expected: "storage.endpoint is required",
		},
	}

	for _, test := range tests {
		_, err := Parse([]byte(test.config), "json")
		if err == nil {
			t.Errorf("%s: expected error, got nil", test.name)
			continue
		}

		if !strings.Contains(err.Error(), test.expected) {
			t.Errorf("%s: incorrect error\n   expected: ...%s...\n   got:      %v", test.name, test.expected, err)
		}
	}
}

func TestSheetNames(t *testing.T) {
	valid := []string{"Sales", "Q1 2024 (draft)", "users_v2"}
	invalid := []string{"", "a:b", "[x]", "'quoted'", "this-name-is-far-too-long-for-a-sheet"}

	for _, name := range valid {
		if !isSheetName(name) {
			t.Errorf("Expected %q to be a valid worksheet name", name)
		}
	}

	for _, name := range invalid {
		if isSheetName(name) {
			t.Errorf("Expected %q to be an invalid worksheet name", name)
		}
	}
}
