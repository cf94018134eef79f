package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pfrederiksen/matchcentre/internal/match"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Competition is the breadcrumb metadata of a single extracted match.
type Competition struct {
	Region string `json:"region,omitempty"`
	League string `json:"league,omitempty"`
	Season string `json:"season,omitempty"`
	Type   string `json:"type,omitempty"`
	Stage  string `json:"stage,omitempty"`
}

// OutputResult contains data to be output
type OutputResult struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Competition *Competition            `json:"competition,omitempty"`
	Matches     []match.MatchSummaryRow `json:"matches"`
	Filter      string                  `json:"filter,omitempty"`
	Events      []match.EventRow        `json:"events,omitempty"`
	EventCount  int                     `json:"event_count"`
	TotalEvents int                     `json:"total_events"`
	NewEvents   *int                    `json:"new_events,omitempty"`
	Changes     []match.Change          `json:"changes,omitempty"`
	Saved       []string                `json:"saved,omitempty"`
	ShowEvents  bool                    `json:"-"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	out := *result
	if !out.ShowEvents {
		out.Events = nil
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if c := result.Competition; c != nil {
		fmt.Fprintln(w, competitionLine(c))
	}

	if len(result.Matches) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return nil
	}

	if err := writeMatches(w, result.Matches, verbose); err != nil {
		return err
	}

	for _, c := range result.Changes {
		fmt.Fprintf(w, "Changed %s: %q -> %q\n", c.ChangeType, c.OldValue, c.NewValue)
	}
	if result.NewEvents != nil {
		fmt.Fprintf(w, "New events since last extraction: %d\n", *result.NewEvents)
	}

	if result.ShowEvents && result.TotalEvents > 0 {
		fmt.Fprintln(w)
		if result.Filter != "" {
			fmt.Fprintf(w, "Filter: %s\n", result.Filter)
		}
		if result.EventCount == 0 {
			fmt.Fprintln(w, "No events found.")
		} else if err := writeEvents(w, result.Events, verbose); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nTotal: %d of %d events\n", result.EventCount, result.TotalEvents)
	} else if len(result.Matches) > 1 {
		fmt.Fprintf(w, "\nTotal: %d matches\n", len(result.Matches))
	}

	for _, path := range result.Saved {
		fmt.Fprintf(w, "Saved: %s\n", path)
	}
	return nil
}

func competitionLine(c *Competition) string {
	line := strings.Join(nonEmpty(c.Region, c.League, c.Season), " | ")
	switch {
	case c.Stage != "":
		line += fmt.Sprintf(" (%s: %s)", c.Type, c.Stage)
	case c.Type != "":
		line += fmt.Sprintf(" (%s)", c.Type)
	}
	return line
}

func writeMatches(w io.Writer, rows []match.MatchSummaryRow, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "MATCH\tKICKOFF\tHOME\tSCORE\tAWAY\tVENUE"
	if verbose {
		header += "\tATTENDANCE\tREFEREE"
	}
	fmt.Fprintln(tw, header)

	for i := range rows {
		row := &rows[i]
		line := fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s",
			row.MatchID, kickoffText(row), teamName(row.Home), deref(row.Score), teamName(row.Away), deref(row.VenueName))
		if verbose {
			attendance := ""
			if row.Attendance != nil {
				attendance = strconv.Itoa(*row.Attendance)
			}
			line += fmt.Sprintf("\t%s\t%s", attendance, officialName(row.Referee))
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func writeEvents(w io.Writer, rows []match.EventRow, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "MIN\tSIDE\tPLAYER\tTYPE\tOUTCOME\tDETAIL"
	if verbose {
		header += "\tX\tY\tQUALIFIERS"
	}
	fmt.Fprintln(tw, header)

	for i := range rows {
		row := &rows[i]
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s",
			clock(row), row.HA, row.PlayerName, row.Type, row.OutcomeType, eventDetail(row))
		if verbose {
			types := make([]string, 0, len(row.Qualifiers))
			for _, q := range row.Qualifiers {
				types = append(types, q.Type)
			}
			line += fmt.Sprintf("\t%g\t%g\t%s", row.X, row.Y, strings.Join(types, ","))
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

// clock renders minute and second as mm:ss, or the bare minute when the second is unknown.
func clock(row *match.EventRow) string {
	if row.Second == nil {
		return fmt.Sprintf("%d'", row.Minute)
	}
	return fmt.Sprintf("%d:%02d", row.Minute, *row.Second)
}

func eventDetail(row *match.EventRow) string {
	var parts []string
	if row.IsGoal {
		parts = append(parts, "GOAL")
	}
	if row.IsShot {
		parts = append(parts, nonEmpty(row.ShotBodyType, row.Situation)...)
	}
	if row.CardType != "" {
		parts = append(parts, row.CardType)
	}
	return strings.Join(parts, " ")
}

func kickoffText(row *match.MatchSummaryRow) string {
	if t := row.Kickoff(); !t.IsZero() {
		return t.Format("2006-01-02 15:04")
	}
	if row.StartDate != nil {
		return *row.StartDate
	}
	return "-"
}

func teamName(t *match.Team) string {
	if t == nil {
		return "-"
	}
	return t.Name
}

func officialName(o *match.Official) string {
	if o == nil {
		return ""
	}
	if o.Name != "" {
		return o.Name
	}
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
