package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/matchcentre/internal/calendar"
	"github.com/pfrederiksen/matchcentre/internal/logger"
	"github.com/pfrederiksen/matchcentre/internal/match"
	"github.com/pfrederiksen/matchcentre/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagSort        string
	flagSummarySave []string
	flagICS         string
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the summary table of every saved match",
		Long: `Loads every record saved in the data directory and prints one summary row
per match. --save writes the combined table into the data directory.`,
		Args: cobra.NoArgs,
		RunE: runSummary,
	}

	cmd.Flags().StringVar(&flagSort, "sort", string(SortByDate), "Sort order: date, match or home")
	cmd.Flags().StringSliceVar(&flagSummarySave, "save", nil, "Export the summary table: csv, json, parquet (comma-separated)")
	cmd.Flags().StringVar(&flagICS, "ics", "", "Write an iCalendar file of kickoff times to this path")

	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	order, err := ParseSortOrder(flagSort)
	if err != nil {
		return err
	}
	formats, err := storage.ParseFormats(flagSummarySave)
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}

	records, err := store.ListRecords()
	if err != nil {
		return fmt.Errorf("listing records: %w", err)
	}
	if flagVerbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %d records from %s\n", len(records), store.DataDir())
	}

	table := match.Summaries(records...)
	rows := table.Rows()
	sortSummaries(rows, order)
	table.Reorder(rows)

	saved, err := store.ExportSummary(table, formats)
	if err != nil {
		return fmt.Errorf("exporting summary: %w", err)
	}

	if flagICS != "" {
		written, err := writeCalendar(flagICS, table.Rows())
		if err != nil {
			return err
		}
		if written {
			saved = append(saved, flagICS)
		}
	}

	result := &OutputResult{
		GeneratedAt: time.Now().UTC(),
		Matches:     table.Rows(),
		Saved:       saved,
	}
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	logMetrics()
	return nil
}

// writeCalendar writes the kickoff calendar. Nothing is written when no match
// has a known kickoff.
func writeCalendar(path string, rows []match.MatchSummaryRow) (bool, error) {
	ics := calendar.GenerateICS(rows, "matchcentre")
	if ics == "" {
		logger.Warn("No match has a kickoff time, calendar not written", logger.Fields{"path": path})
		return false, nil
	}
	if err := os.WriteFile(path, []byte(ics), 0644); err != nil {
		return false, fmt.Errorf("writing calendar: %w", err)
	}
	return true, nil
}
