package commands

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/tabulate/excel-pipeline/config"
	"github.com/tabulate/excel-pipeline/pipeline"
	"github.com/tabulate/excel-pipeline/publish"
	"github.com/tabulate/excel-pipeline/source"
	"github.com/tabulate/excel-pipeline/storage"
)

// newRunner creates the readers and publishers needed by the configuration. Google
// credentials are only loaded if a Google backend is configured.
func (cmd *command) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	opts, err := cmd.googleOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	api := source.NewAPI(cfg.API)
	api.Debug = cmd.debug

	db := source.NewDatabase()
	db.Debug = cmd.debug

	runner := pipeline.Runner{
		Readers: map[config.SourceType]source.Reader{
			config.API:      api,
			config.Database: db,
		},
		Debug: cmd.debug,
	}

	if cfg.UsesStorage() {
		store, err := storage.New(ctx, cfg.Storage, opts...)
		if err != nil {
			return nil, err
		}

		objects := source.NewObjectStorage(store)
		objects.Debug = cmd.debug

		runner.Readers[config.ObjectStorage] = objects
		runner.Uploader = publish.NewObjectUploader(store)
	}

	if cfg.Output.DriveUpload != nil {
		if runner.Drive, err = publish.NewDrive(ctx, opts...); err != nil {
			return nil, err
		}
	}

	if cfg.Output.SheetsUpload != nil {
		if runner.Sheets, err = publish.NewSheets(ctx, opts...); err != nil {
			return nil, err
		}
	}

	return &runner, nil
}

func (cmd *command) googleOptions(ctx context.Context, cfg *config.Config) ([]option.ClientOption, error) {
	if !cfg.UsesGoogle() {
		return nil, nil
	}

	scopes := []string{}
	if cfg.Storage.Backend == "gcs" && cfg.UsesStorage() {
		scopes = append(scopes, STORAGE)
	}

	if cfg.Output.DriveUpload != nil {
		scopes = append(scopes, DRIVE)
	}

	if cfg.Output.SheetsUpload != nil {
		scopes = append(scopes, SHEETS)
	}

	credentials := credentialsFile(cmd.credentials)
	if cmd.debug {
		debugf("using Google credentials %v (scopes %v)", credentials, scopes)
	}

	client, err := authorize(ctx, credentials, workdirPath(cmd.workdir), scopes...)
	if err != nil {
		return nil, fmt.Errorf("authentication/authorization error (%w)", err)
	}

	return []option.ClientOption{option.WithHTTPClient(client)}, nil
}
