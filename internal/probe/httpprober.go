package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// HTTPProber checks reachability over HTTP(S). It issues a HEAD request and
// falls back to GET when the remote rejects the method.
type HTTPProber struct {
	Client *http.Client

	// Classify maps an HTTP status code to a probe Status. Nil means
	// DefaultClassify. The 4xx/5xx-as-unreachable rule is a default, not a
	// contract; override it here.
	Classify func(code int) Status

	// DiagnoseDNS appends a DNS resolution class to Detail when a probe
	// fails at the transport level. Costs one extra lookup per failure.
	DiagnoseDNS bool
}

// NewHTTPProber builds a prober whose client carries timeout as a backstop.
// The per-probe deadline normally arrives through the context.
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		Client: &http.Client{Timeout: timeout},
	}
}

// DefaultClassify treats 2xx and 3xx as reachable, everything else as
// unreachable.
func DefaultClassify(code int) Status {
	if code >= 200 && code < 400 {
		return StatusReachable
	}
	return StatusUnreachable
}

// Probe checks one location. It never returns an error: invalid URLs yield
// StatusMalformed without touching the network, transport failures yield
// StatusUnreachable, and deadline expiry yields StatusTimedOut.
func (p *HTTPProber) Probe(ctx context.Context, location string) Outcome {
	if err := validateLocation(location); err != nil {
		return Outcome{Location: location, Status: StatusMalformed, Detail: err.Error()}
	}

	start := time.Now()
	resp, err := p.do(ctx, http.MethodHead, location)
	if err == nil && methodRejected(resp.StatusCode) {
		resp.Body.Close()
		resp, err = p.do(ctx, http.MethodGet, location)
	}
	lat := time.Since(start).Seconds() * 1000

	if err != nil {
		st := StatusUnreachable
		if isTimeout(err) {
			st = StatusTimedOut
		}
		detail := err.Error()
		if p.DiagnoseDNS && st == StatusUnreachable {
			if class := DiagnoseDNS(ctx, hostOf(location)); class != "" {
				detail = detail + " dns=" + class
			}
		}
		return Outcome{Location: location, Status: st, Detail: detail, LatencyMS: lat}
	}
	defer resp.Body.Close()

	classify := p.Classify
	if classify == nil {
		classify = DefaultClassify
	}
	return Outcome{
		Location:  location,
		Status:    classify(resp.StatusCode),
		Detail:    resp.Status,
		LatencyMS: lat,
	}
}

func (p *HTTPProber) do(ctx context.Context, method, location string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, location, nil)
	if err != nil {
		return nil, err
	}
	return p.Client.Do(req)
}

// methodRejected reports whether the remote refused the request method
// itself, in which case a GET retry is worth one more round trip.
func methodRejected(code int) bool {
	return code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented
}

func validateLocation(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
