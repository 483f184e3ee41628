package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cargo-tracker/internal/core/httpclient"
	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/core/proxy"
	"cargo-tracker/internal/features/carriers/domain"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// DefaultAPIPattern matches the carrier tracking page's XHR that returns the event list.
const DefaultAPIPattern = "*/track-and-trace/api/events*"

// BrowserFeed scrapes carrier milestones by loading the carrier's public tracking page in a
// headless browser and capturing the JSON its frontend fetches.
type BrowserFeed struct {
	pageURL    string
	apiPattern string
	proxy      proxy.Settings
	timeout    time.Duration
	logger     *zap.Logger
}

// BrowserFeedOption customises a BrowserFeed.
type BrowserFeedOption func(*BrowserFeed)

// WithAPIPattern overrides the hijack pattern for the events request.
func WithAPIPattern(pattern string) BrowserFeedOption {
	return func(f *BrowserFeed) { f.apiPattern = pattern }
}

// WithProxy routes browser traffic through an upstream proxy.
func WithProxy(settings proxy.Settings) BrowserFeedOption {
	return func(f *BrowserFeed) { f.proxy = settings }
}

// WithTimeout bounds one fetch, browser launch included.
func WithTimeout(d time.Duration) BrowserFeedOption {
	return func(f *BrowserFeed) { f.timeout = d }
}

// NewBrowserFeed creates a BrowserFeed for the tracking page at pageURL. The URL may hold a
// %s placeholder for the container number.
func NewBrowserFeed(pageURL string, opts ...BrowserFeedOption) *BrowserFeed {
	f := &BrowserFeed{
		pageURL:    pageURL,
		apiPattern: DefaultAPIPattern,
		timeout:    60 * time.Second,
		logger:     logger.Named("carrier-feed"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchMilestones implements ports.MilestoneFeed.
func (f *BrowserFeed) FetchMilestones(ctx context.Context, containerNumber string) (*domain.MilestoneFeed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	pageURL := buildPageURL(f.pageURL, containerNumber)
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid carrier page URL: %w", err)
	}

	// Chromium cannot authenticate against a proxy from the command line, so credentials go
	// through a local forwarder restricted to the carrier's host.
	var proxyAddr string
	if f.proxy.HasCredentials() {
		forwarder, err := proxy.NewForwardingProxy(f.proxy.FullURL(), parsed.Hostname())
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy forwarder: %w", err)
		}
		proxyAddr, err = forwarder.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to start proxy forwarder: %w", err)
		}
		defer forwarder.Stop()
	} else if f.proxy.HasProxy() {
		proxyAddr = f.proxy.HostPort()
	}

	f.logger.Debug("Launching browser...",
		zap.String("container_number", containerNumber),
		zap.Bool("proxy_enabled", f.proxy.HasProxy()),
		zap.String("proxy_addr", proxyAddr),
	)

	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)
	if proxyAddr != "" {
		l = l.Proxy(proxyAddr)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	client, err := httpclient.NewClient(30*time.Second,
		httpclient.WithComponent("carrier-feed"),
		httpclient.WithProxy(f.proxy),
	)
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	router := page.HijackRequests()
	defer router.MustStop()

	done := make(chan []byte, 1)
	router.MustAdd(f.apiPattern, func(h *rod.Hijack) {
		if err := h.LoadResponse(client, true); err != nil {
			f.logger.Error("Failed to load carrier response", zap.Error(err))
			return
		}
		select {
		case done <- []byte(h.Response.Body()):
		default:
		}
	})
	go router.Run()

	if err := page.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("failed to open carrier page: %w", err)
	}

	select {
	case body := <-done:
		feed, err := parseFeed(body, containerNumber)
		if err != nil {
			return nil, err
		}
		f.logger.Debug("Carrier feed captured",
			zap.String("container_number", containerNumber),
			zap.Int("milestones", len(feed.Milestones)),
		)
		return feed, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for carrier response: %w", ctx.Err())
	}
}

// buildPageURL fills the container number into the tracking page URL.
func buildPageURL(base, containerNumber string) string {
	switch {
	case strings.Contains(base, "%s"):
		return fmt.Sprintf(base, url.PathEscape(containerNumber))
	case strings.HasSuffix(base, "="):
		return base + url.QueryEscape(containerNumber)
	case strings.Contains(base, "?"):
		return base + "&container=" + url.QueryEscape(containerNumber)
	default:
		return base + "?container=" + url.QueryEscape(containerNumber)
	}
}

// carrierResponse is the event list the carrier's tracking page fetches.
type carrierResponse struct {
	ContainerNumber string `json:"containerNumber"`
	CarrierCode     string `json:"carrierCode"`
	Events          []struct {
		EventCode     string `json:"eventCode"`
		EventDateTime string `json:"eventDateTime"`
		Description   string `json:"description"`
		Location      struct {
			LocationName string `json:"locationName"`
			UNLocode     string `json:"UNLocationCode"`
		} `json:"location"`
	} `json:"events"`
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseEventTime(raw string) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised event time %q", raw)
}

// parseFeed decodes a carrier response. Events with unreadable timestamps are dropped.
func parseFeed(body []byte, containerNumber string) (*domain.MilestoneFeed, error) {
	var resp carrierResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse carrier response: %w", err)
	}
	if resp.ContainerNumber != "" && !strings.EqualFold(resp.ContainerNumber, containerNumber) {
		return nil, fmt.Errorf("carrier answered for container %s, wanted %s", resp.ContainerNumber, containerNumber)
	}

	feed := &domain.MilestoneFeed{
		ContainerNumber: containerNumber,
		Carrier:         resp.CarrierCode,
		Milestones:      make([]domain.Milestone, 0, len(resp.Events)),
	}
	for _, ev := range resp.Events {
		at, err := parseEventTime(ev.EventDateTime)
		if err != nil {
			logger.Named("carrier-feed").Warn("Skipping carrier event with bad time",
				zap.String("code", ev.EventCode),
				zap.Error(err),
			)
			continue
		}
		location := ev.Location.LocationName
		if location == "" {
			location = ev.Location.UNLocode
		}
		feed.Milestones = append(feed.Milestones, domain.Milestone{
			Code:        strings.ToUpper(strings.TrimSpace(ev.EventCode)),
			Description: ev.Description,
			Location:    location,
			EventTime:   at,
		})
	}
	return feed, nil
}
