package commands

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tabulate/excel-pipeline/table"
	"github.com/tabulate/excel-pipeline/transform"
)

var ExtractCmd = Extract{
	command: command{
		workdir:     "",
		credentials: "",
		config:      "",
		debug:       false,
	},
	source: "",
	file:   "",
}

type Extract struct {
	command
	source string
	file   string
}

func (cmd *Extract) Name() string {
	return "extract"
}

func (cmd *Extract) Description() string {
	return "Fetches a single configured source and stores it to a local TSV file"
}

func (cmd *Extract) Usage() string {
	return "--config <file> --source <name> [--file <file>]"
}

func (cmd *Extract) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] extract [options] --config <file> --source <name> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Fetches a single source, applies the source transformations and writes the dataset")
	fmt.Println("  to a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s --debug extract --config pipeline.yaml --source users --file users.tsv\n", APP)
	fmt.Println()
}

func (cmd *Extract) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("extract")

	flagset.StringVar(&cmd.source, "source", cmd.source, "Name of the source to extract")
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to '<source> - <yyyy-mm-ddTHHmmss>.tsv'")

	return flagset
}

func (cmd *Extract) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	// ... check parameters
	if strings.TrimSpace(cmd.source) == "" {
		return fmt.Errorf("--source is a required option")
	}

	cfg, err := cmd.load()
	if err != nil {
		return err
	}

	src, ok := cfg.Lookup(cmd.source)
	if !ok {
		return fmt.Errorf("no source named '%s' in %v", cmd.source, cmd.config)
	}

	file := cmd.file
	if strings.TrimSpace(file) == "" {
		file = fmt.Sprintf("%s - %s.tsv", src.Name, time.Now().Format("2006-01-02T150405"))
	}

	// ... fetch and transform
	ctx, cancel := interruptible()
	defer cancel()

	runner, err := cmd.newRunner(ctx, cfg)
	if err != nil {
		return err
	}

	reader, ok := runner.Readers[src.Kind()]
	if !ok {
		return fmt.Errorf("unsupported source type '%s'", src.Type)
	}

	t, err := reader.Read(ctx, src)
	if err != nil {
		return err
	}

	if err := transform.Apply(t, src.Transformations); err != nil {
		return fmt.Errorf("unable to transform source '%s' (%w)", src.Name, err)
	}

	// ... write to file
	if err := store(t, file); err != nil {
		return fmt.Errorf("error creating TSV file (%w)", err)
	}

	infof("extracted %d rows from %s to file %s", t.Rows(), src.Name, file)

	return nil
}

// store writes the table to a temporary file and then moves it to the destination file
// so that a failed extract does not leave a partial file behind.
func store(t *table.Table, file string) error {
	tmp, err := os.CreateTemp(os.TempDir(), "excel-pipeline-*.tsv")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := table.WriteTSV(tmp, t); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0770); err != nil {
			return err
		}
	}

	return move(tmp.Name(), file)
}

// move renames a file, falling back to copying when source and destination are on
// different filesystems.
func move(from, to string) error {
	if err := os.Rename(from, to); err == nil {
		return nil
	}

	b, err := os.ReadFile(from)
	if err != nil {
		return err
	}

	return os.WriteFile(to, b, 0660)
}
