package form

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dshills/shellpad/internal/logging"
)

// MaxReplySize bounds how much of a reply body is read.
const MaxReplySize = 4 << 20

// Submitter sends the form to an endpoint and returns the reply body.
type Submitter interface {
	// Submit POSTs values as application/x-www-form-urlencoded.
	Submit(ctx context.Context, endpoint string, values url.Values) ([]byte, error)

	// Fetch GETs endpoint.
	Fetch(ctx context.Context, endpoint string) ([]byte, error)
}

// HTTPSubmitter is a Submitter over net/http. Endpoints are resolved
// against the base URL.
type HTTPSubmitter struct {
	base   *url.URL
	client *http.Client
	logger *logging.Logger
}

// NewHTTPSubmitter creates a submitter for baseURL.
func NewHTTPSubmitter(baseURL string, timeout time.Duration, logger *logging.Logger) (*HTTPSubmitter, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if logger == nil {
		logger = logging.Null()
	}
	return &HTTPSubmitter{
		base:   base,
		client: &http.Client{Timeout: timeout},
		logger: logger.WithComponent("submit"),
	}, nil
}

// Resolve returns the absolute URL of endpoint.
func (s *HTTPSubmitter) Resolve(endpoint string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	return s.base.ResolveReference(ref).String(), nil
}

// Submit POSTs values to endpoint.
func (s *HTTPSubmitter) Submit(ctx context.Context, endpoint string, values url.Values) ([]byte, error) {
	target, err := s.Resolve(endpoint)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, endpoint)
}

// Fetch GETs endpoint.
func (s *HTTPSubmitter) Fetch(ctx context.Context, endpoint string) ([]byte, error) {
	target, err := s.Resolve(endpoint)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	return s.do(req, endpoint)
}

func (s *HTTPSubmitter) do(req *http.Request, endpoint string) ([]byte, error) {
	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("%s %s: %v", req.Method, endpoint, err)
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxReplySize))
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	s.logger.Debug("%s %s: %d in %s", req.Method, endpoint, resp.StatusCode, time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Endpoint: endpoint, Status: resp.StatusCode}
	}
	return body, nil
}

// Expand substitutes {name} placeholders in an endpoint template with
// path-escaped values.
func Expand(template string, params map[string]string) string {
	for k, v := range params {
		template = strings.ReplaceAll(template, "{"+k+"}", url.PathEscape(v))
	}
	return template
}
