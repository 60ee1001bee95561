package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Drive uploads files to a Google Drive folder.
type Drive struct {
	service *drive.Service
}

func NewDrive(ctx context.Context, opts ...option.ClientOption) (*Drive, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Drive client (%w)", err)
	}

	return &Drive{
		service: service,
	}, nil
}

// Upload creates a new Drive file in folder and returns its web link.
func (d *Drive) Upload(ctx context.Context, file string, folder string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}

	defer f.Close()

	metadata := drive.File{
		Name:    filepath.Base(file),
		Parents: []string{folder},
	}

	created, err := d.service.Files.Create(&metadata).
		Media(f, googleapi.ContentType(XLSX)).
		SupportsAllDrives(true).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to upload %v to Google Drive (%w)", file, err)
	}

	if created.WebViewLink != "" {
		return created.WebViewLink, nil
	}

	return fmt.Sprintf("https://drive.google.com/file/d/%s", created.Id), nil
}
