package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fortify-index/mfi/schema"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of an API response is read.
const maxBodyBytes = 64 << 20

// RESTOptions configures the REST source.
type RESTOptions struct {
	BaseURL   string
	Endpoint  string
	Token     string
	UserAgent string
	Timeout   time.Duration
	Limiter   *rate.Limiter
	Client    *http.Client // optional, mostly for tests
}

// RESTSource reads one cycle of raw metrics from the MFI REST API.
// Failures are returned as-is: there is no retry and no fallback data.
type RESTSource struct {
	client  *http.Client
	opts    RESTOptions
	limiter *rate.Limiter
}

// NewRESTSource creates a new RESTSource with the given options.
func NewRESTSource(opts RESTOptions) *RESTSource {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "mfi/1.0"
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &RESTSource{client: client, opts: opts, limiter: limiter}
}

// Name returns the endpoint URL without query.
func (s *RESTSource) Name() string {
	return s.opts.BaseURL + "/" + s.opts.Endpoint
}

// URL returns the request URL for a cycle.
func (s *RESTSource) URL(cycle string) (string, error) {
	u, err := url.Parse(s.Name())
	if err != nil {
		return "", eris.Wrapf(err, "parse api url %q", s.Name())
	}
	if cycle != "" {
		q := u.Query()
		q.Set("cycle", cycle)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Fetch implements contract.Source.
func (s *RESTSource) Fetch(ctx context.Context, cycle string) ([]schema.RawMetric, error) {
	target, err := s.URL(cycle)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.opts.UserAgent)
	if s.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.Token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch %s", target)
	}
	defer func() { _ = resp.Body.Close() }()

	zap.L().Debug("api response",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "read body of %s", target)
	}
	records, err := decodeRecords(body)
	if err != nil {
		return nil, eris.Wrapf(err, "decode %s", target)
	}
	return records, nil
}

// StatusError reports a non-2xx API response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s from %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}
