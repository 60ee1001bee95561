package commands

import (
	"flag"
	"fmt"
)

var RunCmd = Run{
	command: command{
		workdir:     "",
		credentials: "",
		config:      "",
		debug:       false,
	},
	strict: false,
}

type Run struct {
	command
	strict bool
}

func (cmd *Run) Name() string {
	return "run"
}

func (cmd *Run) Description() string {
	return "Fetches the configured sources and renders them to an Excel workbook"
}

func (cmd *Run) Usage() string {
	return "--config <file>"
}

func (cmd *Run) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] run [options] --config <file>\n", APP)
	fmt.Println()
	fmt.Println("  Fetches every configured source, applies the source transformations, renders the")
	fmt.Println("  datasets to a single Excel workbook and publishes it to the configured targets.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s run --config pipeline.yaml\n", APP)
	fmt.Printf("    %s --debug run --strict --credentials \"service-account.json\" --config pipeline.json\n", APP)
	fmt.Println()
}

func (cmd *Run) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("run")

	flagset.BoolVar(&cmd.strict, "strict", cmd.strict, "Fails the run if any source cannot be fetched or transformed")

	return flagset
}

func (cmd *Run) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	cfg, err := cmd.load()
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	runner, err := cmd.newRunner(ctx, cfg)
	if err != nil {
		return err
	}

	runner.Strict = cmd.strict

	file, report, err := runner.Run(ctx, cfg)
	if err != nil {
		return err
	}

	if failed := report.Failed(); len(failed) > 0 {
		warnf("%d of %d sources failed", len(failed), len(report.Results))
	}

	fmt.Printf("Pipeline completed. Output file: %s\n", file)

	return nil
}
