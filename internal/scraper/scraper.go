package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/matchcentre/internal/logger"
	"github.com/pfrederiksen/matchcentre/internal/match"
)

// Page structure of a match-centre page.
const (
	ScriptSelector      = "#layout-wrapper > script"
	RegionSelector      = "#breadcrumb-nav > span"
	CompetitionSelector = "#breadcrumb-nav > a"
)

var (
	// ErrElementNotFound means a required page element is missing.
	ErrElementNotFound = errors.New("element not found")
	// ErrMalformedData means the embedded literal could not be decoded.
	ErrMalformedData = errors.New("malformed match data")
	// ErrNoMatchData means the page carries no match data object.
	ErrNoMatchData = errors.New("no match data")
)

// Extractor loads match-centre pages and decodes their embedded match data.
type Extractor struct {
	open    Opener
	display bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDisplay logs a one-line description of every extracted match at INFO.
func WithDisplay(display bool) Option {
	return func(e *Extractor) {
		e.display = display
	}
}

// New creates an Extractor that acquires sessions from open.
func New(open Opener, opts ...Option) *Extractor {
	e := &Extractor{open: open}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract opens a session, extracts the match at url and closes the session
// again, whatever the outcome.
func (e *Extractor) Extract(ctx context.Context, url string) (*match.MatchRecord, error) {
	var rec *match.MatchRecord
	err := WithSession(ctx, e.open, func(session Session) error {
		var err error
		rec, err = e.ExtractWith(ctx, session, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ExtractWith extracts the match at url using a session owned by the caller.
// The session is left open.
func (e *Extractor) ExtractWith(ctx context.Context, session Session, url string) (*match.MatchRecord, error) {
	start := time.Now()
	content, err := load(ctx, session, url)
	logger.RecordTiming("scrape.fetch", time.Since(start))
	if err != nil {
		logger.IncrCounter("scrape.failure")
		return nil, err
	}

	start = time.Now()
	rec, err := ParsePage(strings.NewReader(content))
	logger.RecordTiming("scrape.parse", time.Since(start))
	if err != nil {
		logger.IncrCounter("scrape.failure")
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	logger.IncrCounter("scrape.success")

	if e.display {
		logger.Info(fmt.Sprintf("Region: %s, League: %s, Season: %s, Match Id: %d",
			rec.Region, rec.League, rec.Season, rec.MatchID), logger.Fields{
			"match_id": rec.MatchID,
			"url":      url,
		})
	}
	return rec, nil
}

// ParsePage decodes the match data and breadcrumb metadata from a page source.
func ParsePage(r io.Reader) (*match.MatchRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	script, err := first(doc, ScriptSelector)
	if err != nil {
		return nil, err
	}
	region, err := first(doc, RegionSelector)
	if err != nil {
		return nil, err
	}
	link, err := first(doc, CompetitionSelector)
	if err != nil {
		return nil, err
	}

	data, err := decodeScript(script.Text())
	if err != nil {
		return nil, err
	}

	rec, err := match.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decoding match data: %w", err)
	}

	text := strings.TrimSpace(link.Text())
	competition, ok := ParseCompetition(text)
	if !ok {
		logger.Warn("Unexpected competition breadcrumb", logger.Fields{
			"text":     text,
			"parts":    competition.Parts,
			"match_id": rec.MatchID,
		})
	}
	competition.apply(rec, strings.TrimSpace(region.Text()))

	return rec, nil
}

// decodeScript turns the embedded script into a single JSON object.
func decodeScript(script string) ([]byte, error) {
	literal, err := extractLiteral(script)
	if err != nil {
		return nil, err
	}
	entries, err := splitEntries(literal)
	if err != nil {
		return nil, err
	}
	return mergeEntries(entries)
}

func first(doc *goquery.Document, selector string) (*goquery.Selection, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return sel, nil
}
