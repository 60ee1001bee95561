package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/uhppoted/uhppoted-lib/command"

	"github.com/tabulate/excel-pipeline/commands"
)

var cli = []uhppoted.Command{
	&commands.VersionCmd,
	&commands.RunCmd,
	&commands.ValidateCmd,
	&commands.ExtractCmd,
	&commands.InspectCmd,
	&commands.AuthoriseCmd,
}

var options = commands.Options{
	Debug: false,
}

var help = uhppoted.NewHelp(commands.APP, cli, nil)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("\nError loading .env file: %v\n\n", err)
		os.Exit(1)
	}

	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	cmd, err := uhppoted.Parse(cli, nil, help)
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	if cmd == nil {
		help.Execute()
		os.Exit(1)
	}

	if err = cmd.Execute(&options); err != nil {
		log.Printf("%-5s %v", "ERROR", err)
		os.Exit(1)
	}
}
