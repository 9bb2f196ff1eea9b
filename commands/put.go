package commands

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/uhppoted/uhppoted-app-errors/recorder"
)

var PutCmd = Put{
	command: command{},
	errType: "",
	file:    "",
}

type Put struct {
	command
	errType string
	file    string
}

func (cmd *Put) Name() string {
	return "put"
}

func (cmd *Put) Description() string {
	return "Records the error reports in a TSV file"
}

func (cmd *Put) Usage() string {
	return "--url <url> --file <file> [--type <type>]"
}

func (cmd *Put) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] put [options] --url <URL> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Records each row of a TSV file as an error report. The first row is the list of field")
	fmt.Println("  names and rows are deduplicated exactly like individual reports")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    uhppoted-app-errors --debug put --credentials "credentials.json" \`)
	fmt.Println(`                                    --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                                    --type Network \`)
	fmt.Println(`                                    --file "network.tsv"`)
	fmt.Println()
}

func (cmd *Put) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("put")

	flagset.StringVar(&cmd.errType, "type", cmd.errType, "Error type for rows without a 'type' column")
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file")

	return flagset
}

func (cmd *Put) Execute(args ...any) error {
	ctx := cmd.options(args...)

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	f, err := os.Open(cmd.file)
	if err != nil {
		return err
	}

	defer f.Close()

	reports, err := tsvToReports(f, cmd.errType)
	if err != nil {
		return fmt.Errorf("invalid TSV file (%v)", err)
	}

	r, err := cmd.newRecorder(nil)
	if err != nil {
		return err
	}

	counts := map[recorder.Outcome]int{}
	for i, report := range reports {
		outcome, err := r.Reconcile(ctx, report)
		if err != nil {
			return fmt.Errorf("row %v: %w", i+2, err)
		}

		counts[outcome]++
	}

	infof("recorded TSV file %v (inserted:%v updated:%v unchanged:%v)",
		cmd.file,
		counts[recorder.Inserted],
		counts[recorder.Updated],
		counts[recorder.Unchanged])

	return nil
}
