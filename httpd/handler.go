package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/uhppoted/uhppoted-app-errors/recorder"
)

func (h *handler) postError(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	log := h.log.WithField("rq", id)

	w.Header().Set("X-Request-Id", id)

	var report recorder.Report

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxReportSize))
	decoder.UseNumber()

	if err := decoder.Decode(&report); err != nil {
		log.Warnf("invalid error report (%v)", err)
		reply(w, http.StatusBadRequest, "Invalid error report")
		return
	}

	outcome, err := h.recorder.Reconcile(r.Context(), report)
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			log.Errorf("%v", err)
		} else {
			log.Warnf("%v", err)
		}

		reply(w, status, err.Error())
		return
	}

	log.WithField("type", report.Type()).Infof("%v", outcome)

	w.WriteHeader(http.StatusNoContent)
}

// statusOf maps the recorder error codes (404, 401) to HTTP status codes. Unclassified
// errors are a 400 if the report itself was invalid and a 500 otherwise.
func statusOf(err error) int {
	switch code := recorder.Code(err); {
	case code == http.StatusNotFound || code == http.StatusUnauthorized:
		return code

	case errors.Is(err, recorder.ErrInvalidReport):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func reply(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{
		Error: message,
	})
}
