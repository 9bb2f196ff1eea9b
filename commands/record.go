package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/uhppoted/uhppoted-app-errors/recorder"
)

var RecordCmd = Record{
	command: command{},
	errType: "",
	fields:  fields{},
	file:    "",
}

type Record struct {
	command
	errType string
	fields  fields
	file    string
}

// fields accumulates repeated --field key=value options.
type fields map[string]string

func (f fields) String() string {
	list := []string{}
	for k, v := range f {
		list = append(list, fmt.Sprintf("%v=%v", k, v))
	}

	return strings.Join(list, ",")
}

func (f fields) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("invalid field '%v' - expected key=value", v)
	}

	f[strings.TrimSpace(key)] = value

	return nil
}

func (cmd *Record) Name() string {
	return "record"
}

func (cmd *Record) Description() string {
	return "Records an error report in the worksheet for the error type"
}

func (cmd *Record) Usage() string {
	return "--url <url> --type <type> [--field <key=value>...] [--file <file>]"
}

func (cmd *Record) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] record [options] --url <URL> --type <type> --field <key=value> ...\n", APP)
	fmt.Println()
	fmt.Println("  Records an error report, adding a new row to the worksheet for the error type or updating")
	fmt.Println("  the 'date' of a matching row")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    uhppoted-app-errors record --credentials "credentials.json" \`)
	fmt.Println(`                               --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                               --type Network --field "message=timeout at host A" --field host=A`)
	fmt.Println()
}

func (cmd *Record) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("record")

	flagset.StringVar(&cmd.errType, "type", cmd.errType, "Error type i.e. the worksheet title")
	flagset.Var(cmd.fields, "field", "Error report field as key=value (may be repeated)")
	flagset.StringVar(&cmd.file, "file", cmd.file, "JSON file with the error report")

	return flagset
}

func (cmd *Record) Execute(args ...any) error {
	ctx := cmd.options(args...)

	report, err := cmd.report()
	if err != nil {
		return err
	}

	r, err := cmd.newRecorder(nil)
	if err != nil {
		return err
	}

	outcome, err := r.Reconcile(ctx, report)
	if err != nil {
		return err
	}

	infof("%v error %v", report.Type(), outcome)

	return nil
}

// report merges the JSON file (if any), the --field options and the --type option, in that
// order.
func (cmd *Record) report() (recorder.Report, error) {
	report := recorder.Report{}

	if strings.TrimSpace(cmd.file) != "" {
		bytes, err := os.ReadFile(cmd.file)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(bytes, &report); err != nil {
			return nil, fmt.Errorf("invalid error report file (%v)", err)
		} else if report == nil {
			report = recorder.Report{}
		}
	}

	for k, v := range cmd.fields {
		report[k] = v
	}

	if errType := strings.TrimSpace(cmd.errType); errType != "" {
		for _, k := range report.Fields() {
			if recorder.Normalise(k) == recorder.FieldType {
				delete(report, k)
			}
		}

		report[recorder.FieldType] = errType
	}

	return report, nil
}
