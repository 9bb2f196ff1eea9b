package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/uhppoted/uhppoted-app-errors/httpd"
)

var ServeCmd = Serve{
	command: command{},
	bind:    DEFAULT_BIND,
	metrics: true,
}

type Serve struct {
	command
	bind    string
	metrics bool
}

func (cmd *Serve) Name() string {
	return "serve"
}

func (cmd *Serve) Description() string {
	return "Runs an HTTP server that records POSTed error reports"
}

func (cmd *Serve) Usage() string {
	return "--url <url> [--bind <address>]"
}

func (cmd *Serve) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] serve [options] --url <URL>\n", APP)
	fmt.Println()
	fmt.Println("  Runs an HTTP server that records the JSON error reports POSTed to /errors. Prometheus")
	fmt.Println("  metrics are served on /metrics")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    uhppoted-app-errors serve --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" --bind 0.0.0.0:8765`)
	fmt.Println()
	fmt.Println(`    curl -X POST http://localhost:8765/errors -d '{"type":"Network","message":"timeout at host A"}'`)
	fmt.Println()
}

func (cmd *Serve) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("serve")

	flagset.StringVar(&cmd.bind, "bind", cmd.bind, "HTTP server bind address")
	flagset.BoolVar(&cmd.metrics, "metrics", cmd.metrics, "Serves Prometheus metrics on /metrics")

	return flagset
}

func (cmd *Serve) Execute(args ...any) error {
	ctx := cmd.options(args...)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	r, err := cmd.newRecorder(registry)
	if err != nil {
		return err
	}

	var gatherer prometheus.Gatherer
	if cmd.metrics {
		gatherer = registry
	}

	listener, err := net.Listen("tcp", cmd.bind)
	if err != nil {
		return fmt.Errorf("unable to bind to %v (%v)", cmd.bind, err)
	}

	srv := &http.Server{
		Handler:           httpd.GetRouter(r, gatherer, log.StandardLogger()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(ctx, srv, listener)
}

// serve runs the server until it fails, the context is cancelled or the process is
// interrupted, and then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, listener net.Listener) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errs := make(chan error, 1)

	go func() {
		infof("listening on %v", listener.Addr())

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}

		close(errs)
	}()

	select {
	case err := <-errs:
		return err

	case <-ctx.Done():
		infof("shutting down")
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdown); err != nil {
		warnf("%v", err)
		return err
	}

	return <-errs
}
