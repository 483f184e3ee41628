package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/core/proxy"

	"go.uber.org/zap"
)

// LoggingRoundTripper captures request details for debugging.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	// Log receives one entry per request.
	Log *zap.Logger
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := lrt.Log
	if log == nil {
		log = logger.Get()
	}

	log.Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", redact(req.URL)),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		log.Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", redact(req.URL)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", redact(req.URL)),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

func redact(u *url.URL) string {
	if u.User == nil {
		return u.String()
	}
	return u.Redacted()
}

// Option customises the client built by NewClient.
type Option func(*options)

type options struct {
	component string
	proxy     proxy.Settings
}

// WithComponent names the logger used for request logs, e.g. "webhook".
func WithComponent(name string) Option {
	return func(o *options) { o.component = name }
}

// WithProxy routes requests through the configured upstream proxy.
func WithProxy(settings proxy.Settings) Option {
	return func(o *options) { o.proxy = settings }
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration, opts ...Option) (*http.Client, error) {
	o := options{component: "http"}
	for _, opt := range opts {
		opt(&o)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if o.proxy.HasProxy() {
		proxyURL, err := url.Parse(o.proxy.FullURL())
		if err != nil {
			return nil, fmt.Errorf("invalid proxy settings: %w", err)
		}
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.Proxy = http.ProxyURL(proxyURL)
		transport = t
	}

	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: transport,
			Log:     logger.Named(o.component),
		},
		Timeout: timeout,
	}, nil
}
