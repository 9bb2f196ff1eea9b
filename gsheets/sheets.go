package gsheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/uhppoted-app-errors/recorder"
)

const SCOPE = "https://www.googleapis.com/auth/spreadsheets"

const (
	DEFAULT_RATE_LIMIT  = rate.Limit(1)
	DEFAULT_RATE_BURST  = 10
	DEFAULT_RETRIES     = 3
	DEFAULT_BACKOFF     = 1 * time.Second
	DEFAULT_MAX_BACKOFF = 60 * time.Second
)

// Sheets implements recorder.Backend on the Google Sheets v4 API, authenticating with a
// service account.
type Sheets struct {
	id         string
	options    []option.ClientOption
	limiter    *rate.Limiter
	retries    int
	backoff    time.Duration
	maxBackoff time.Duration
	log        logrus.FieldLogger
	client     func(ctx context.Context, credentials []byte) (*http.Client, error)

	sync.RWMutex
	service *sheets.Service
}

type Option func(*Sheets)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Sheets) {
		s.log = log
	}
}

// WithRateLimit paces the API calls. The Sheets API quota is per minute per user, so the
// default is a modest 1 request/second with a burst of 10.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Sheets) {
		s.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithRetries sets the number of times a request rejected with 429 Too Many Requests is
// retried, and the initial backoff.
func WithRetries(retries int, backoff time.Duration) Option {
	return func(s *Sheets) {
		s.retries = retries
		s.backoff = backoff
	}
}

// WithClientOptions appends options (endpoint, user agent, etc) to the Sheets service.
func WithClientOptions(options ...option.ClientOption) Option {
	return func(s *Sheets) {
		s.options = append(s.options, options...)
	}
}

// NewSheets returns a backend for the spreadsheet with the given ID. Nothing is fetched until
// Authenticate.
func NewSheets(spreadsheet string, options ...Option) *Sheets {
	s := Sheets{
		id:         spreadsheet,
		limiter:    rate.NewLimiter(DEFAULT_RATE_LIMIT, DEFAULT_RATE_BURST),
		retries:    DEFAULT_RETRIES,
		backoff:    DEFAULT_BACKOFF,
		maxBackoff: DEFAULT_MAX_BACKOFF,
		log:        logrus.StandardLogger(),
		client:     serviceAccount,
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

func (s *Sheets) Authenticate(ctx context.Context, credentials recorder.Credentials) error {
	client, err := s.client(ctx, credentials)
	if err != nil {
		return err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.options...)

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	s.Lock()
	s.service = service
	s.Unlock()

	s.log.WithField("spreadsheet", s.id).Debugf("created Google Sheets client")

	return nil
}

func (s *Sheets) Spreadsheet(ctx context.Context) (*recorder.Spreadsheet, error) {
	google, err := s.sheets()
	if err != nil {
		return nil, err
	}

	var spreadsheet *sheets.Spreadsheet
	if err := s.call(ctx, "get spreadsheet", func() (err error) {
		spreadsheet, err = google.Spreadsheets.Get(s.id).Context(ctx).Do()
		return
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet (%w)", err)
	}

	info := recorder.Spreadsheet{
		ID: spreadsheet.SpreadsheetId,
	}

	if spreadsheet.Properties != nil {
		info.Title = spreadsheet.Properties.Title
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			info.Worksheets = append(info.Worksheets, &worksheet{
				sheets: s,
				title:  sheet.Properties.Title,
			})
		}
	}

	s.log.WithField("spreadsheet", s.id).Debugf("retrieved %v worksheets", len(info.Worksheets))

	return &info, nil
}

func (s *Sheets) sheets() (*sheets.Service, error) {
	s.RLock()
	defer s.RUnlock()

	if s.service == nil {
		return nil, fmt.Errorf("Google Sheets client not authenticated")
	}

	return s.service, nil
}

// call waits on the rate limiter and retries requests rejected with 429 Too Many Requests,
// backing off exponentially up to maxBackoff.
func (s *Sheets) call(ctx context.Context, op string, f func() error) error {
	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		err := f()
		if err == nil {
			return nil
		}

		var gerr *googleapi.Error
		if !errors.As(err, &gerr) || gerr.Code != http.StatusTooManyRequests || attempt >= s.retries {
			return err
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * s.backoff
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}

		s.log.Warnf("%v: rate limited by Google Sheets API, retrying in %v", op, backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func serviceAccount(ctx context.Context, credentials []byte) (*http.Client, error) {
	config, err := google.JWTConfigFromJSON(credentials, SCOPE)
	if err != nil {
		return nil, &recorder.Error{
			Kind:    recorder.CredentialsInvalid,
			Code:    401,
			Message: "Unable to parse Google sheets credentials",
			Err:     err,
		}
	}

	// The client outlives the request that triggered authentication.
	return config.Client(context.Background()), nil
}
