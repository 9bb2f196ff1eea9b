package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/uhppoted/uhppoted-app-errors/gsheets"
	"github.com/uhppoted/uhppoted-app-errors/recorder"
)

const APP = "uhppoted-app-errors"

// VERSION is overridden at build time with -ldflags "-X ...commands.VERSION=v<x.y.z>".
var VERSION = "v0.8.11"

const (
	ENV_CREDENTIALS = "SHEETS_CREDENTIALS"
	ENV_SPREADSHEET = "SHEETS_ID"
)

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)
var spreadsheetID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type Options struct {
	Debug bool
}

type command struct {
	credentials string
	url         string
	debug       bool
}

// LoadEnv loads the .env file in the working directory, if there is one. Variables already
// set in the environment are not overridden.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error loading .env file (%w)", err)
	}

	return nil
}

func (c *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&c.credentials, "credentials", c.credentials, "Service account credentials file (or inline JSON). Defaults to $"+ENV_CREDENTIALS+" or "+DEFAULT_CREDENTIALS)
	flagset.StringVar(&c.url, "url", c.url, "Spreadsheet URL or ID. Defaults to $"+ENV_SPREADSHEET)

	return flagset
}

// options unpacks the context and global options passed to Execute by the command line
// parser, applies the --debug flag and fills in unset options from the environment.
func (c *command) options(args ...any) context.Context {
	ctx := context.Background()

	for _, arg := range args {
		switch v := arg.(type) {
		case context.Context:
			ctx = v

		case *Options:
			c.debug = v.Debug
		}
	}

	if c.debug {
		log.SetLevel(log.DebugLevel)
	}

	if strings.TrimSpace(c.credentials) == "" {
		c.credentials = os.Getenv(ENV_CREDENTIALS)
	}

	if strings.TrimSpace(c.credentials) == "" {
		c.credentials = DEFAULT_CREDENTIALS
	}

	if strings.TrimSpace(c.url) == "" {
		c.url = os.Getenv(ENV_SPREADSHEET)
	}

	return ctx
}

// newRecorder builds a recorder for the spreadsheet on top of the Google Sheets backend.
// Missing or invalid credentials are not an error here: they are reported by the recorder
// on use, like any other recording failure.
func (c *command) newRecorder(registry prometheus.Registerer) (*recorder.Recorder, error) {
	id, err := getSpreadsheetID(c.url)
	if err != nil {
		return nil, err
	}

	credentials, err := readCredentials(c.credentials)
	if err != nil {
		return nil, err
	}

	debugf("spreadsheet - ID:%s", id)

	backend := gsheets.NewSheets(id, gsheets.WithLogger(log.WithField("spreadsheet", id)))
	options := []recorder.Option{
		recorder.WithLogger(log.StandardLogger()),
	}

	if registry != nil {
		metrics, err := recorder.NewMetrics(registry)
		if err != nil {
			return nil, err
		}

		options = append(options, recorder.WithMetrics(metrics))
	}

	return recorder.NewRecorder(credentials, backend, options...), nil
}

// getSpreadsheetID accepts either a full Google Sheets URL or a bare spreadsheet ID.
func getSpreadsheetID(url string) (string, error) {
	url = strings.TrimSpace(url)

	if url == "" {
		return "", fmt.Errorf("--url is a required option")
	}

	if match := spreadsheetURL.FindStringSubmatch(url); len(match) > 1 && match[1] != "" {
		return match[1], nil
	}

	if spreadsheetID.MatchString(url) {
		return url, nil
	}

	return "", fmt.Errorf("invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'")
}

// readCredentials returns inline JSON credentials as is and otherwise reads the named file.
// A default credentials file that does not exist is treated as 'no credentials'.
func readCredentials(v string) (string, error) {
	v = strings.TrimSpace(v)

	switch {
	case v == "":
		return "", nil

	case strings.HasPrefix(v, "{"):
		return v, nil
	}

	bytes, err := os.ReadFile(v)
	if errors.Is(err, os.ErrNotExist) && v == DEFAULT_CREDENTIALS {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("unable to read credentials file (%v)", err)
	}

	return string(bytes), nil
}

func helpOptions(flagset *flag.FlagSet) {
	fmt.Println("  Options:")
	fmt.Println()

	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	fmt.Println()
	fmt.Println("    --debug         Displays internal information for diagnosing errors")
}

func debugf(format string, args ...any) {
	log.Debugf(format, args...)
}

func infof(format string, args ...any) {
	log.Infof(format, args...)
}

func warnf(format string, args ...any) {
	log.Warnf(format, args...)
}
