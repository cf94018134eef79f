package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// PlaywrightOptions configures the headless browser.
type PlaywrightOptions struct {
	// ExecutablePath points at a Chromium binary. Empty uses the driver's bundled browser.
	ExecutablePath string
	UserAgent      string
	Timeout        time.Duration
}

// PlaywrightSession drives one headless Chromium page. It is needed where the
// match-centre script is injected client-side.
type PlaywrightSession struct {
	pw      *pw.Playwright
	browser pw.Browser
	context pw.BrowserContext
	page    pw.Page
	closed  bool
}

// PlaywrightOpener returns an Opener that starts a fresh browser per session.
func PlaywrightOpener(opts PlaywrightOptions) Opener {
	return func(ctx context.Context) (Session, error) {
		return NewPlaywrightSession(opts)
	}
}

// NewPlaywrightSession starts the driver, launches Chromium and opens a page.
// Anything started before a failure is torn down before returning.
func NewPlaywrightSession(opts PlaywrightOptions) (session *PlaywrightSession, err error) {
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}

	s := &PlaywrightSession{}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	s.pw, err = pw.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	launch := pw.BrowserTypeLaunchOptions{Headless: pw.Bool(true)}
	if opts.ExecutablePath != "" {
		launch.ExecutablePath = pw.String(opts.ExecutablePath)
	}
	s.browser, err = s.pw.Chromium.Launch(launch)
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	s.context, err = s.browser.NewContext(pw.BrowserNewContextOptions{
		UserAgent: pw.String(opts.UserAgent),
	})
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	s.page, err = s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	s.page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	return s, nil
}

// Navigate loads url and waits for the DOM to be parsed.
func (s *PlaywrightSession) Navigate(ctx context.Context, url string) error {
	if s.closed {
		return errors.New("session closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	resp, err := s.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("loading page: %w", err)
	}
	if resp != nil && !resp.Ok() {
		return fmt.Errorf("unexpected status code: %d", resp.Status())
	}
	return nil
}

// Content returns the current DOM serialised as HTML.
func (s *PlaywrightSession) Content(ctx context.Context) (string, error) {
	if s.closed {
		return "", errors.New("session closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.Content()
}

// Close shuts the page, context and browser down and stops the driver.
func (s *PlaywrightSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.page != nil {
		errs = append(errs, s.page.Close())
	}
	if s.context != nil {
		errs = append(errs, s.context.Close())
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}
