package commands

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/tabulate/excel-pipeline/config"
)

var ValidateCmd = Validate{
	command: command{
		config: "",
		debug:  false,
	},
}

type Validate struct {
	command
}

func (cmd *Validate) Name() string {
	return "validate"
}

func (cmd *Validate) Description() string {
	return "Validates a pipeline configuration file"
}

func (cmd *Validate) Usage() string {
	return "--config <file>"
}

func (cmd *Validate) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] validate --config <file>\n", APP)
	fmt.Println()
	fmt.Println("  Loads and validates a pipeline configuration without fetching any data.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s validate --config pipeline.yaml\n", APP)
	fmt.Println()
}

func (cmd *Validate) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("validate", flag.ExitOnError)

	flagset.StringVar(&cmd.config, "config", cmd.config, "Pipeline configuration file (.json, .yaml or .yml)")

	return flagset
}

func (cmd *Validate) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	cfg, err := cmd.load()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w)
	for _, src := range cfg.Sources {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", src.Name, src.Kind(), location(src))
	}

	w.Flush()

	fmt.Println()
	fmt.Printf("  %s is valid\n", cmd.config)
	fmt.Println()

	return nil
}

func location(src config.Source) string {
	switch src.Kind() {
	case config.API:
		return src.URL

	case config.ObjectStorage:
		return src.Bucket + "/" + src.File

	case config.Database:
		return fmt.Sprintf("%s: %s", src.Driver, src.Query)

	default:
		return ""
	}
}
