package commands

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/tabulate/excel-pipeline/table"
	"github.com/tabulate/excel-pipeline/xlsx"
)

var InspectCmd = Inspect{
	file:  "",
	sheet: "",
}

type Inspect struct {
	file  string
	sheet string
}

func (cmd *Inspect) Name() string {
	return "inspect"
}

func (cmd *Inspect) Description() string {
	return "Lists the worksheets of a rendered workbook"
}

func (cmd *Inspect) Usage() string {
	return "--file <file> [--sheet <name>]"
}

func (cmd *Inspect) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s inspect --file <file> [--sheet <name>]\n", APP)
	fmt.Println()
	fmt.Println("  Lists the worksheets, columns and row counts of a workbook. With --sheet, writes the")
	fmt.Println("  worksheet to the console as TSV.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s inspect --file report_20240102_030405.xlsx\n", APP)
	fmt.Printf("    %s inspect --file report_20240102_030405.xlsx --sheet users\n", APP)
	fmt.Println()
}

func (cmd *Inspect) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("inspect", flag.ExitOnError)

	flagset.StringVar(&cmd.file, "file", cmd.file, "Workbook file")
	flagset.StringVar(&cmd.sheet, "sheet", cmd.sheet, "Worksheet to print as TSV")

	return flagset
}

func (cmd *Inspect) Execute(args ...any) error {
	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	c, err := xlsx.Read(cmd.file)
	if err != nil {
		return err
	}

	if cmd.sheet != "" {
		t, ok := c.Get(cmd.sheet)
		if !ok {
			return fmt.Errorf("no worksheet named '%s' in %v", cmd.sheet, cmd.file)
		}

		return table.WriteTSV(os.Stdout, t)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\t%s\t%s\n", "WORKSHEET", "ROWS", "COLUMNS")
	for _, name := range c.Names() {
		t, _ := c.Get(name)
		fmt.Fprintf(w, "  %s\t%d\t%s\n", name, t.Rows(), strings.Join(t.Header, ", "))
	}

	fmt.Fprintln(w)

	return w.Flush()
}
