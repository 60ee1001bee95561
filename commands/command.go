package commands

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/tabulate/excel-pipeline/config"
)

const APP = "excel-pipeline"

const VERSION = "v0.1.0"

type Options struct {
	Debug bool
}

// command holds the options shared by the commands that load a pipeline configuration
// or need Google credentials.
type command struct {
	workdir     string
	credentials string
	config      string
	debug       bool
}

func (cmd *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&cmd.config, "config", cmd.config, "Pipeline configuration file (.json, .yaml or .yml)")
	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, etc)")
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Google service account or OAuth2 client credentials file")

	return flagset
}

func (cmd *command) load() (*config.Config, error) {
	if strings.TrimSpace(cmd.config) == "" {
		return nil, fmt.Errorf("--config is a required option")
	}

	cfg, err := config.Load(cmd.config)
	if err != nil {
		return nil, err
	}

	if cmd.debug {
		debugf("loaded configuration %v (%d sources)", cmd.config, len(cfg.Sources))
	}

	return cfg, nil
}

// credentialsFile returns the --credentials option, falling back to the
// EXCEL_PIPELINE_CREDENTIALS environment variable and then to the default path.
func credentialsFile(v string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}

	if env := os.Getenv("EXCEL_PIPELINE_CREDENTIALS"); env != "" {
		return env
	}

	return DEFAULT_CREDENTIALS
}

func workdirPath(v string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}

	if env := os.Getenv("EXCEL_PIPELINE_WORKDIR"); env != "" {
		return env
	}

	return DEFAULT_WORKDIR
}

func helpOptions(flagset *flag.FlagSet) {
	count := 0
	flag.VisitAll(func(f *flag.Flag) {
		count++
	})

	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	if count > 0 {
		fmt.Println()
		fmt.Println("  Options:")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
		})
	}
}

// interruptible returns a context that is cancelled on CTRL-C.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
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
