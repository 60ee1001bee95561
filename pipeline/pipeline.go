// Package pipeline runs the configured sources through the extract, transform, render
// and publish stages and produces a single workbook.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lestrrat-go/strftime"

	"github.com/tabulate/excel-pipeline/config"
	"github.com/tabulate/excel-pipeline/publish"
	"github.com/tabulate/excel-pipeline/source"
	"github.com/tabulate/excel-pipeline/table"
	"github.com/tabulate/excel-pipeline/transform"
	"github.com/tabulate/excel-pipeline/xlsx"
)

type DriveUploader interface {
	Upload(ctx context.Context, file string, folder string) (string, error)
}

type SheetsPublisher interface {
	Publish(ctx context.Context, spreadsheetID string, c *table.Collection) error
}

// Runner holds the readers and publishers for a pipeline run. Readers are selected by
// the canonical source type. Publishers are only required for the outputs that are
// configured.
type Runner struct {
	Clock    clockwork.Clock
	Readers  map[config.SourceType]source.Reader
	Uploader publish.Uploader
	Drive    DriveUploader
	Sheets   SheetsPublisher
	Strict   bool
	Debug    bool
}

// Run executes the pipeline and returns the path of the rendered workbook. Sources
// that fail to extract or transform are dropped from the workbook and recorded in the
// report unless the runner is strict. Render and publish errors are always fatal but
// the rendered workbook is not removed.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) (string, *Report, error) {
	clock := r.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	report := Report{
		RunID:   uuid.NewString(),
		Started: clock.Now(),
		Results: []Result{},
	}

	infof("%v: starting pipeline with %d sources", report.RunID, len(cfg.Sources))

	// ... extract
	c := r.extract(ctx, cfg, &report)
	if err := r.check(&report); err != nil {
		return "", &report, err
	}

	// ... transform
	r.transform(cfg, c, &report)
	if err := r.check(&report); err != nil {
		return "", &report, err
	}

	// ... render
	file, err := filename(cfg.Output, clock)
	if err != nil {
		return "", &report, err
	}

	if dir := cfg.Output.Directory; dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", &report, fmt.Errorf("error rendering workbook (%w)", err)
		}
	}

	if err := xlsx.Render(c, file); err != nil {
		return "", &report, fmt.Errorf("error rendering workbook (%w)", err)
	}

	report.File = file
	infof("%v: rendered %d worksheets to %v", report.RunID, c.Len(), file)

	// ... publish
	if err := r.publish(ctx, cfg.Output, file, c, &report); err != nil {
		return file, &report, err
	}

	summarise(&report)

	return file, &report, nil
}

func (r *Runner) extract(ctx context.Context, cfg *config.Config, report *Report) *table.Collection {
	c := table.NewCollection()

	for _, src := range cfg.Sources {
		result := Result{
			Source: src.Name,
			Stage:  Extract,
		}

		reader, ok := r.Readers[src.Kind()]
		if !ok || reader == nil {
			result.Err = &source.FetchError{Source: src.Name, Err: fmt.Errorf("unsupported source type '%s'", src.Type)}
		} else if t, err := reader.Read(ctx, src); err != nil {
			result.Err = err
		} else {
			result.Rows = t.Rows()
			c.Put(src.Name, t)
		}

		if result.Err != nil {
			warnf("%v: %v", report.RunID, result.Err)
		} else if r.Debug {
			debugf("%v: fetched %d rows from %v", report.RunID, result.Rows, src.Name)
		}

		report.Results = append(report.Results, result)
	}

	return c
}

func (r *Runner) transform(cfg *config.Config, c *table.Collection, report *Report) {
	for _, name := range c.Names() {
		t, _ := c.Get(name)

		spec := config.Transformations{}
		if src, ok := cfg.Lookup(name); ok {
			spec = src.Transformations
		}

		result := report.result(name)
		if result != nil {
			result.Stage = Transform
		}

		if err := transform.Apply(t, spec); err != nil {
			c.Delete(name)
			warnf("%v: %v: %v", report.RunID, name, err)

			if result != nil {
				result.Err = fmt.Errorf("unable to transform source '%s' (%w)", name, err)
			}
		}
	}
}

func (r *Runner) check(report *Report) error {
	if !r.Strict {
		return nil
	}

	errs := []error{}
	for _, result := range report.Failed() {
		errs = append(errs, result.Err)
	}

	return errors.Join(errs...)
}

func (r *Runner) publish(ctx context.Context, output config.Output, file string, c *table.Collection, report *Report) error {
	if output.GCSUpload != nil {
		if r.Uploader == nil {
			return fmt.Errorf("no uploader for %v", output.GCSUpload.Bucket)
		}

		key := path.Join(output.GCSUpload.Path, filepath.Base(file))
		location, err := r.Uploader.Upload(ctx, file, output.GCSUpload.Bucket, key)
		if err != nil {
			return fmt.Errorf("error uploading workbook (%w)", err)
		}

		report.Locations = append(report.Locations, location)
		infof("%v: uploaded %v to %v", report.RunID, file, location)
	}

	if output.DriveUpload != nil {
		if r.Drive == nil {
			return fmt.Errorf("no Google Drive client")
		}

		location, err := r.Drive.Upload(ctx, file, output.DriveUpload.Folder)
		if err != nil {
			return fmt.Errorf("error uploading workbook to Google Drive (%w)", err)
		}

		report.Locations = append(report.Locations, location)
		infof("%v: uploaded %v to %v", report.RunID, file, location)
	}

	if output.SheetsUpload != nil {
		if r.Sheets == nil {
			return fmt.Errorf("no Google Sheets client")
		}

		id, err := output.SheetsUpload.SpreadsheetID()
		if err != nil {
			return err
		}

		if err := r.Sheets.Publish(ctx, id, c); err != nil {
			return fmt.Errorf("error publishing to Google Sheets (%w)", err)
		}

		report.Locations = append(report.Locations, output.SheetsUpload.URL)
		infof("%v: published %d worksheets to %v", report.RunID, c.Len(), output.SheetsUpload.URL)
	}

	return nil
}

// filename returns {directory}/{base_name}_{timestamp}.xlsx.
func filename(output config.Output, clock clockwork.Clock) (string, error) {
	format := output.TimestampFormat
	if format == "" {
		format = config.DefaultTimestampFormat
	}

	timestamp, err := strftime.Format(format, clock.Now())
	if err != nil {
		return "", fmt.Errorf("invalid timestamp format '%s' (%w)", format, err)
	}

	name := fmt.Sprintf("%s_%s.xlsx", output.BaseName, timestamp)

	return filepath.Join(output.Directory, name), nil
}

func summarise(report *Report) {
	for _, result := range report.Results {
		if result.Err != nil {
			warnf("%v: %-16s FAILED (%v)", report.RunID, result.Source, result.Err)
		} else {
			infof("%v: %-16s %d rows", report.RunID, result.Source, result.Rows)
		}
	}
}

func debugf(format string, args ...any) {
	log.Printf("%-5s %s", "DEBUG", fmt.Sprintf(format, args...))
}

func infof(format string, args ...any) {
	log.Printf("%-5s %s", "INFO", fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Printf("%-5s %s", "WARN", fmt.Sprintf(format, args...))
}
