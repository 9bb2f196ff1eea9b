package httpd

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/uhppoted/uhppoted-app-errors/recorder"
)

// MaxReportSize caps the size of a POSTed error report.
const MaxReportSize = 1024 * 1024

type Recorder interface {
	Reconcile(ctx context.Context, report recorder.Report) (recorder.Outcome, error)
}

type handler struct {
	recorder Recorder
	log      logrus.FieldLogger
}

// GetRouter returns the HTTP ingest routes:
//
//	POST /errors   records the JSON error report in the request body
//	GET  /metrics  Prometheus metrics (only if gatherer is not nil)
func GetRouter(r Recorder, gatherer prometheus.Gatherer, log logrus.FieldLogger) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	h := handler{
		recorder: r,
		log:      log,
	}

	return applyRoutes(router, &h, gatherer)
}

func applyRoutes(r chi.Router, h *handler, gatherer prometheus.Gatherer) chi.Router {
	r.Route("/", func(r chi.Router) {
		r.Post("/errors", h.postError)

		if gatherer != nil {
			r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		}
	})

	return r
}
