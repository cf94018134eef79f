package scraper

import (
	"context"
	"errors"
	"fmt"
)

// Session is an acquired page-loading resource: a browser window or an HTTP
// client. A Session is used by one goroutine at a time.
type Session interface {
	// Navigate loads url, replacing any previously loaded page.
	Navigate(ctx context.Context, url string) error
	// Content returns the source of the loaded page.
	Content(ctx context.Context) (string, error)
	// Close releases the session. It is safe to call more than once.
	Close() error
}

// Opener acquires a new Session.
type Opener func(ctx context.Context) (Session, error)

// WithSession opens a session, runs fn with it and closes it on every exit
// path, including a panic inside fn. A close failure is returned only when fn
// itself succeeded.
func WithSession(ctx context.Context, open Opener, fn func(Session) error) (err error) {
	if open == nil {
		return errors.New("no session opener configured")
	}

	session, err := open(ctx)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}

	defer func() {
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing session: %w", closeErr)
		}
	}()

	return fn(session)
}

// load navigates and returns the page source.
func load(ctx context.Context, session Session, url string) (string, error) {
	if err := session.Navigate(ctx, url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	content, err := session.Content(ctx)
	if err != nil {
		return "", fmt.Errorf("reading page content: %w", err)
	}
	return content, nil
}
