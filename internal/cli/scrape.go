package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/matchcentre/internal/config"
	"github.com/pfrederiksen/matchcentre/internal/filter"
	"github.com/pfrederiksen/matchcentre/internal/logger"
	"github.com/pfrederiksen/matchcentre/internal/match"
	"github.com/pfrederiksen/matchcentre/internal/scraper"
	"github.com/pfrederiksen/matchcentre/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagBrowser    string
	flagQuiet      bool
	flagSave       []string
	flagNoRecord   bool
	flagS3Bucket   string
	flagS3Prefix   string
	flagTypes      string
	flagSide       string
	flagMinutes    string
	flagShotsOnly  bool
	flagGoalsOnly  bool
	flagPlayer     string
	flagShowEvents bool
	flagNewOnly    bool
	flagCacheTTL   time.Duration
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Extract one match from its match-centre page",
		Long: `Loads a match-centre page, extracts the embedded match data and prints the
match summary and event tables. The extracted record is saved to the data
directory unless --no-record is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runScrape,
	}

	cmd.Flags().StringVar(&flagBrowser, "browser", "", "Page loader: http or playwright (default from MATCHCENTRE_BROWSER, else http)")
	cmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Do not log the region/league/season line")
	cmd.Flags().BoolVar(&flagNoRecord, "no-record", false, "Do not save the extracted record")
	cmd.Flags().StringVar(&flagS3Bucket, "s3-bucket", "", "Upload saved files to this S3 bucket")
	cmd.Flags().StringVar(&flagS3Prefix, "s3-prefix", "", "Key prefix for uploaded files")
	cmd.Flags().DurationVar(&flagCacheTTL, "cache-ttl", 0, "Reuse pages fetched within this duration, e.g. 10m (0 disables)")
	cmd.Flags().BoolVar(&flagNewOnly, "new-only", false, "Only show events added since the match was last saved")
	addTableFlags(cmd)

	return cmd
}

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events <record.json>",
		Short: "Rebuild the tables from a saved record",
		Args:  cobra.ExactArgs(1),
		RunE:  runEvents,
	}
	addTableFlags(cmd)
	return cmd
}

// addTableFlags registers the filter and export flags shared by scrape and events.
func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&flagSave, "save", nil, "Export tables: csv, json, parquet, sqlite (comma-separated)")
	cmd.Flags().StringVar(&flagTypes, "types", "", "Only events of these types, e.g. Pass,Goal or shotOnTarget (comma-separated)")
	cmd.Flags().StringVar(&flagSide, "side", "", "Only events of one side: h or a")
	cmd.Flags().StringVar(&flagMinutes, "minutes", "", "Only events in a minute range, e.g. 10-45, 80-, -15")
	cmd.Flags().BoolVar(&flagShotsOnly, "shots", false, "Only shots")
	cmd.Flags().BoolVar(&flagGoalsOnly, "goals", false, "Only goals")
	cmd.Flags().StringVar(&flagPlayer, "player", "", "Only events by players whose name contains this text (comma-separated)")
	cmd.Flags().BoolVar(&flagShowEvents, "events", true, "Print the event table")
}

func runScrape(cmd *cobra.Command, args []string) error {
	url := strings.TrimSpace(args[0])

	browser := cfg.Browser
	if flagChanged(cmd, "browser") {
		browser = strings.ToLower(flagBrowser)
	}
	open, err := opener(browser)
	if err != nil {
		return err
	}

	ttl := cfg.CacheTTL
	if flagChanged(cmd, "cache-ttl") {
		ttl = flagCacheTTL
	}
	if ttl > 0 {
		open, err = cachedOpener(open, ttl)
		if err != nil {
			return err
		}
	}

	if flagVerbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Fetching %s with %s session\n", url, browser)
	}

	extractor := scraper.New(open, scraper.WithDisplay(!flagQuiet))
	rec, err := extractor.Extract(cmd.Context(), url)
	if err != nil {
		return fmt.Errorf("extracting match: %w", err)
	}

	if flagVerbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Extracted match %d with %d events\n", rec.MatchID, len(rec.Events))
	}

	var previous *match.MatchRecord
	if flagNewOnly || !flagNoRecord {
		previous, err = previousRecord(rec.MatchID)
		if err != nil {
			return err
		}
	}

	return runPipeline(cmd, rec, previous, !flagNoRecord)
}

// previousRecord loads the saved record of a match, or nil if there is none.
func previousRecord(matchID int64) (*match.MatchRecord, error) {
	store, err := openStorage()
	if err != nil {
		return nil, err
	}
	rec, err := store.LoadRecord(matchID)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Warn("Ignoring unreadable saved record", logger.Fields{"match_id": matchID, "error": err.Error()})
		return nil, nil
	}
	return rec, nil
}

func runEvents(cmd *cobra.Command, args []string) error {
	rec, err := storage.LoadRecordFile(args[0])
	if err != nil {
		return fmt.Errorf("loading record: %w", err)
	}
	return runPipeline(cmd, rec, nil, false)
}

func opener(browser string) (scraper.Opener, error) {
	switch browser {
	case config.BrowserHTTP:
		return scraper.HTTPOpener(cfg.UserAgent, cfg.Timeout), nil
	case config.BrowserPlaywright:
		return scraper.PlaywrightOpener(scraper.PlaywrightOptions{
			ExecutablePath: cfg.ChromiumPath,
			UserAgent:      cfg.UserAgent,
			Timeout:        cfg.Timeout,
		}), nil
	}
	return nil, fmt.Errorf("invalid browser: %s (must be 'http' or 'playwright')", browser)
}

// cachedOpener serves pages from <data-dir>/cache while they are younger than ttl.
func cachedOpener(open scraper.Opener, ttl time.Duration) (scraper.Opener, error) {
	store, err := openStorage()
	if err != nil {
		return nil, err
	}
	cache, err := scraper.NewPageCache(filepath.Join(store.DataDir(), "cache"), ttl)
	if err != nil {
		return nil, err
	}
	if n, err := cache.CleanExpired(); err == nil && n > 0 {
		logger.Debug("Removed expired cached pages", logger.Fields{"count": n})
	}
	return scraper.Cached(open, cache), nil
}

// buildFilter turns the filter flags into a Filter.
func buildFilter() (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Types = filter.ParseList(flagTypes)
	f.Players = filter.ParseList(flagPlayer)
	f.ShotsOnly = flagShotsOnly
	f.GoalsOnly = flagGoalsOnly

	if flagSide != "" {
		side, err := filter.ParseSide(flagSide)
		if err != nil {
			return nil, err
		}
		f.Side = side
	}

	if flagMinutes != "" {
		from, to, err := filter.ParseMinuteRange(flagMinutes)
		if err != nil {
			return nil, err
		}
		f.MinuteFrom, f.MinuteTo = from, to
	}

	return f, nil
}

// runPipeline transforms a record, saves what was asked for and prints the result.
// Filters narrow both the printed and the exported event table; the saved
// record is always complete. previous is an earlier extraction of the same
// match, used to report what changed.
func runPipeline(cmd *cobra.Command, rec *match.MatchRecord, previous *match.MatchRecord, saveRecord bool) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	f, err := buildFilter()
	if err != nil {
		return err
	}
	formats, err := storage.ParseFormats(flagSave)
	if err != nil {
		return err
	}

	rows, err := match.BuildEvents(rec)
	if err != nil {
		return fmt.Errorf("building event table: %w", err)
	}
	logger.SetGauge("events.rows", float64(len(rows)))

	summary := match.Summaries(rec)

	var changes []match.Change
	var newCount *int
	candidates := rows
	if previous != nil || flagNewOnly {
		diff := diffPrevious(previous, rows)
		n := len(diff.NewEvents)
		newCount = &n
		logger.SetGauge("events.new", float64(n))
		if previous != nil {
			before, now := match.Summarize(previous), match.Summarize(rec)
			changes = match.DetectChanges(&before, &now)
		}
		if flagNewOnly {
			candidates = diff.NewEvents
		}
	}
	filtered := f.Apply(candidates)

	if flagVerbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Filter: %s (%d of %d events)\n", f, len(filtered), len(rows))
	}

	saved, err := save(cmd.Context(), rec, summary, filtered, formats, saveRecord)
	if err != nil {
		return err
	}

	uploaded, err := upload(cmd, rec.MatchID, saved)
	if err != nil {
		return err
	}

	result := &OutputResult{
		GeneratedAt: time.Now().UTC(),
		Competition: competitionOf(rec),
		Matches:     summary.Rows(),
		Filter:      filterText(f),
		Events:      filtered,
		EventCount:  len(filtered),
		TotalEvents: len(rows),
		ShowEvents:  flagShowEvents,
		Changes:     changes,
		NewEvents:   newCount,
		Saved:       append(saved, uploaded...),
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	logMetrics()
	return nil
}

// diffPrevious returns the rows missing from an earlier extraction. A previous
// record that no longer transforms is treated as absent.
func diffPrevious(previous *match.MatchRecord, rows []match.EventRow) *match.DiffResult {
	if previous == nil {
		return match.Diff(nil, rows)
	}
	before, err := match.BuildEvents(previous)
	if err != nil {
		logger.Warn("Ignoring saved record that cannot be transformed", logger.Fields{
			"match_id": previous.MatchID,
			"error":    err.Error(),
		})
		return match.Diff(nil, rows)
	}
	return match.Diff(before, rows)
}

func save(ctx context.Context, rec *match.MatchRecord, summary *match.SummaryTable, rows []match.EventRow, formats []storage.Format, saveRecord bool) ([]string, error) {
	if !saveRecord && len(formats) == 0 {
		return nil, nil
	}

	store, err := openStorage()
	if err != nil {
		return nil, err
	}

	var saved []string
	if saveRecord {
		path, err := store.SaveRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("saving record: %w", err)
		}
		saved = append(saved, path)
	}

	if len(formats) > 0 {
		paths, err := store.Export(ctx, summary, rows, formats)
		if err != nil {
			return nil, fmt.Errorf("exporting tables: %w", err)
		}
		saved = append(saved, paths...)
	}
	return saved, nil
}

// upload copies saved files to S3 when a bucket is configured by flag or environment.
func upload(cmd *cobra.Command, matchID int64, files []string) ([]string, error) {
	bucket, prefix := cfg.S3Bucket, cfg.S3Prefix
	if flagChanged(cmd, "s3-bucket") {
		bucket = flagS3Bucket
	}
	if flagChanged(cmd, "s3-prefix") {
		prefix = flagS3Prefix
	}
	if bucket == "" {
		return nil, nil
	}
	if len(files) == 0 {
		logger.Warn("S3 bucket configured but nothing was saved", logger.Fields{"bucket": bucket})
		return nil, nil
	}

	up, err := storage.NewS3Uploader(cmd.Context(), bucket, prefix)
	if err != nil {
		return nil, err
	}
	uris, err := up.Upload(cmd.Context(), matchID, files)
	if err != nil {
		return nil, fmt.Errorf("uploading to s3: %w", err)
	}
	return uris, nil
}

func competitionOf(rec *match.MatchRecord) *Competition {
	if rec.Region == "" && rec.League == "" && rec.Season == "" {
		return nil
	}
	return &Competition{
		Region: rec.Region,
		League: rec.League,
		Season: rec.Season,
		Type:   rec.CompetitionType,
		Stage:  rec.CompetitionStage,
	}
}

func filterText(f *filter.Filter) string {
	if f.IsEmpty() {
		return ""
	}
	return f.String()
}
