package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/matchcentre/internal/match"
)

// MatchDuration is the calendar slot booked for a match.
const MatchDuration = 2 * time.Hour

// GenerateICS generates an iCalendar (.ics) file with one event per match.
// Matches without a parseable kickoff are skipped; an empty string is returned
// when none is left.
func GenerateICS(rows []match.MatchSummaryRow, calendarName string) string {
	var events strings.Builder
	now := time.Now().UTC()
	for i := range rows {
		writeEvent(&events, &rows[i], now)
	}
	if events.Len() == 0 {
		return ""
	}

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//matchcentre//matchcentre//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(calendarName)))
	}
	ics.WriteString(events.String())
	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, row *match.MatchSummaryRow, stamp time.Time) {
	kickoff := row.Kickoff()
	if kickoff.IsZero() {
		return
	}

	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%d@matchcentre\r\n", row.MatchID))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(stamp)))
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(kickoff)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(kickoff.Add(MatchDuration))))
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(title(row))))

	var description []string
	if row.Score != nil && *row.Score != "" {
		description = append(description, "Score: "+*row.Score)
	}
	if row.Referee != nil {
		name := row.Referee.Name
		if name == "" {
			name = strings.TrimSpace(row.Referee.FirstName + " " + row.Referee.LastName)
		}
		if name != "" {
			description = append(description, "Referee: "+name)
		}
	}
	if len(description) > 0 {
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(strings.Join(description, "\n"))))
	}

	if row.VenueName != nil && *row.VenueName != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(*row.VenueName)))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// title renders "Home vs Away", falling back to the match id.
func title(row *match.MatchSummaryRow) string {
	if row.Home == nil || row.Away == nil {
		return fmt.Sprintf("Match %d", row.MatchID)
	}
	return fmt.Sprintf("%s vs %s", row.Home.Name, row.Away.Name)
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// RFC 5545 text escaping
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
