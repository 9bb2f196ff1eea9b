package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	uhppoted "github.com/uhppoted/uhppoted-lib/command"

	"github.com/uhppoted/uhppoted-app-errors/commands"
)

var cli = []uhppoted.Command{
	&uhppoted.Version{
		Application: commands.APP,
		Version:     commands.VERSION,
	},
	&commands.RecordCmd,
	&commands.ServeCmd,
	&commands.GetCmd,
	&commands.PutCmd,
}

var options = commands.Options{
	Debug: false,
}

var help = uhppoted.NewHelp(commands.APP, cli, nil)

func main() {
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if options.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if err := commands.LoadEnv(); err != nil {
		log.Warnf("%v", err)
	}

	cmd, err := uhppoted.Parse(cli, nil, help)
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cmd == nil {
		help.Execute(ctx)
		os.Exit(1)
	}

	if err = cmd.Execute(ctx, &options); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}
