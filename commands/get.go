package commands

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var GetCmd = Get{
	command: command{},
	errType: "",
	file:    time.Now().Format("2006-01-02T150405.tsv"),
}

type Get struct {
	command
	errType string
	file    string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves the recorded errors for an error type and stores them to a local file"
}

func (cmd *Get) Usage() string {
	return "--url <url> --type <type> --file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] get [options] --url <URL> --type <type> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the worksheet for an error type to a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    uhppoted-app-errors --debug get --credentials "credentials.json" \`)
	fmt.Println(`                                    --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                                    --type Network \`)
	fmt.Println(`                                    --file "network.tsv"`)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.errType, "type", cmd.errType, "Error type i.e. the worksheet title")
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to '<yyyy-mm-dd HHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(args ...any) error {
	ctx := cmd.options(args...)

	// ... check parameters
	if strings.TrimSpace(cmd.errType) == "" {
		return fmt.Errorf("--type is a required option")
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	r, err := cmd.newRecorder(nil)
	if err != nil {
		return err
	}

	headers, rows, err := r.Rows(ctx, cmd.errType)
	if err != nil {
		return fmt.Errorf("unable to retrieve data from worksheet (%w)", err)
	}

	tmp, err := os.CreateTemp(os.TempDir(), "errors")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := worksheetToTSV(tmp, headers, rows); err != nil {
		return fmt.Errorf("error creating TSV file (%v)", err)
	}

	tmp.Close()

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	infof("retrieved %v errors to file %s", cmd.errType, cmd.file)

	return nil
}
