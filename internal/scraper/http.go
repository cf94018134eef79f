package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// UserAgent is sent when no other agent is configured.
	UserAgent = "matchcentre/1.0 (github.com/pfrederiksen/matchcentre)"
	// Timeout bounds a single page load.
	Timeout = 30 * time.Second
)

// HTTPSession loads pages with plain GET requests. It sees the page as served,
// so it works only where the match data is rendered server-side.
type HTTPSession struct {
	client    *http.Client
	userAgent string
	body      string
	loaded    bool
}

// NewHTTPSession creates an HTTP session. Zero values select UserAgent and Timeout.
func NewHTTPSession(userAgent string, timeout time.Duration) *HTTPSession {
	if userAgent == "" {
		userAgent = UserAgent
	}
	if timeout <= 0 {
		timeout = Timeout
	}
	return &HTTPSession{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// HTTPOpener returns an Opener that creates HTTP sessions.
func HTTPOpener(userAgent string, timeout time.Duration) Opener {
	return func(ctx context.Context) (Session, error) {
		return NewHTTPSession(userAgent, timeout), nil
	}
}

// Navigate fetches url and keeps the body for Content.
func (s *HTTPSession) Navigate(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}

	s.body = string(data)
	s.loaded = true
	return nil
}

// Content returns the body of the last successful Navigate.
func (s *HTTPSession) Content(ctx context.Context) (string, error) {
	if !s.loaded {
		return "", errors.New("no page loaded")
	}
	return s.body, nil
}

// Close drops idle connections and the loaded page.
func (s *HTTPSession) Close() error {
	s.client.CloseIdleConnections()
	s.body = ""
	s.loaded = false
	return nil
}
