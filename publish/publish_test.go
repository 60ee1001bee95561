package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"

	"github.com/tabulate/excel-pipeline/storage"
	"github.com/tabulate/excel-pipeline/table"
)

func workbook(t *testing.T) string {
	file := filepath.Join(t.TempDir(), "report_20240102_030405.xlsx")
	if err := os.WriteFile(file, []byte("PK-workbook"), 0600); err != nil {
		t.Fatalf("Error creating test workbook (%v)", err)
	}

	return file
}

func TestObjectUploader(t *testing.T) {
	store := storage.NewLocalStore(t.TempDir())
	uploader := NewObjectUploader(store)
	file := workbook(t)

	if err := store.MakeBucket("reports"); err != nil {
		t.Fatalf("Error creating bucket (%v)", err)
	}

	location, err := uploader.Upload(context.Background(), file, "reports", "monthly/report_20240102_030405.xlsx")
	if err != nil {
		t.Fatalf("Unexpected error returned from Upload (%v)", err)
	}

	if expected := store.URL("reports", "monthly/report_20240102_030405.xlsx"); location != expected {
		t.Errorf("Incorrect upload location - expected:%v, got:%v", expected, location)
	}

	b, err := store.Get(context.Background(), "reports", "monthly/report_20240102_030405.xlsx")
	if err != nil {
		t.Fatalf("Unexpected error retrieving uploaded object (%v)", err)
	}

	if string(b) != "PK-workbook" {
		t.Errorf("Incorrect uploaded object - expected:%q, got:%q", "PK-workbook", b)
	}
}

func TestObjectUploaderWithMissingBucket(t *testing.T) {
	uploader := NewObjectUploader(storage.NewLocalStore(t.TempDir()))

	_, err := uploader.Upload(context.Background(), workbook(t), "reports", "monthly/report.xlsx")
	if !storage.IsCode(err, storage.CodeBucketNotFound) {
		t.Errorf("Expected %v error, got %v", storage.CodeBucketNotFound, err)
	}
}

func TestObjectUploaderWithMissingFile(t *testing.T) {
	uploader := NewObjectUploader(storage.NewLocalStore(t.TempDir()))

	if _, err := uploader.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"), "reports", "x.xlsx"); err == nil {
		t.Errorf("Expected error uploading missing file")
	}
}

func TestDriveUpload(t *testing.T) {
	var body []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload/drive/v3/files" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"file-1","webViewLink":"https://drive.google.com/file/d/file-1/view"}`))
	}))

	defer srv.Close()

	d, err := NewDrive(context.Background(), option.WithEndpoint(srv.URL+"/drive/v3/"), option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("Unexpected error creating Drive client (%v)", err)
	}

	location, err := d.Upload(context.Background(), workbook(t), "folder-1")
	if err != nil {
		t.Fatalf("Unexpected error returned from Upload (%v)", err)
	}

	if location != "https://drive.google.com/file/d/file-1/view" {
		t.Errorf("Incorrect Drive location (%v)", location)
	}

	for _, expected := range []string{"folder-1", "report_20240102_030405.xlsx", "PK-workbook"} {
		if !bytes.Contains(body, []byte(expected)) {
			t.Errorf("Expected upload request to contain %q", expected)
		}
	}
}

func TestSheetsPublish(t *testing.T) {
	var guard sync.Mutex
	requests := map[string][]byte{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guard.Lock()
		defer guard.Unlock()

		b, _ := io.ReadAll(r.Body)
		requests[r.Method+" "+r.URL.Path] = b

		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v4/spreadsheets/sheet-1":
			w.Write([]byte(`{"spreadsheetId":"sheet-1","sheets":[{"properties":{"sheetId":1,"title":"Users"}}]}`))

		default:
			w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
		}
	}))

	defer srv.Close()

	s, err := NewSheets(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("Unexpected error creating Sheets client (%v)", err)
	}

	users, _ := table.New([]string{"id", "name"}, [][]any{{1.0, "alpha"}})
	sales, _ := table.New([]string{"region"}, [][]any{{"north"}})

	c := table.NewCollection()
	c.Put("users", users)
	c.Put("sales", sales)

	if err := s.Publish(context.Background(), "sheet-1", c); err != nil {
		t.Fatalf("Unexpected error returned from Publish (%v)", err)
	}

	// 'users' matches the existing 'Users' worksheet so only 'sales' is added
	var add struct {
		Requests []struct {
			AddSheet struct {
				Properties struct {
					Title string `json:"title"`
				} `json:"properties"`
			} `json:"addSheet"`
		} `json:"requests"`
	}

	if err := json.Unmarshal(requests["POST /v4/spreadsheets/sheet-1:batchUpdate"], &add); err != nil {
		t.Fatalf("Invalid batchUpdate request (%v)", err)
	}

	if len(add.Requests) != 1 || add.Requests[0].AddSheet.Properties.Title != "sales" {
		t.Errorf("Incorrect worksheets added (%+v)", add.Requests)
	}

	var clear struct {
		Ranges []string `json:"ranges"`
	}

	if err := json.Unmarshal(requests["POST /v4/spreadsheets/sheet-1/values:batchClear"], &clear); err != nil {
		t.Fatalf("Invalid batchClear request (%v)", err)
	}

	if !reflect.DeepEqual(clear.Ranges, []string{"'users'", "'sales'"}) {
		t.Errorf("Incorrect cleared ranges - expected:%v, got:%v", []string{"'users'", "'sales'"}, clear.Ranges)
	}

	update := string(requests["POST /v4/spreadsheets/sheet-1/values:batchUpdate"])
	if !strings.Contains(update, `"values":[["id","name"],["1","alpha"]]`) {
		t.Errorf("Incorrect worksheet values (%v)", update)
	}
}

func TestQuote(t *testing.T) {
	if q := quote("Bob's data"); q != "'Bob''s data'" {
		t.Errorf("Incorrect sheet reference - expected:%v, got:%v", "'Bob''s data'", q)
	}
}
