package match

import (
	"sort"
	"strconv"
	"time"
)

// Change types reported by DetectChanges.
const (
	ChangeScore      = "score"
	ChangeStartTime  = "startTime"
	ChangeVenue      = "venueName"
	ChangeAttendance = "attendance"
)

// DiffResult contains the rows of a fresh extraction that an earlier one lacked
type DiffResult struct {
	NewEvents []EventRow
	ByPeriod  map[string][]EventRow // new rows grouped by period
}

// Diff compares current rows against an earlier extraction of the same match
// and returns rows whose id was not seen before. A nil previous makes every
// row new.
func Diff(previous, current []EventRow) *DiffResult {
	result := &DiffResult{
		NewEvents: make([]EventRow, 0),
		ByPeriod:  make(map[string][]EventRow),
	}

	seen := make(map[int64]bool, len(previous))
	for i := range previous {
		seen[previous[i].ID] = true
	}

	for _, row := range current {
		if seen[row.ID] {
			continue
		}
		result.NewEvents = append(result.NewEvents, row)
		result.ByPeriod[row.Period] = append(result.ByPeriod[row.Period], row)
	}

	// Match-clock order for consistent output
	sort.SliceStable(result.NewEvents, func(i, j int) bool {
		return clockBefore(&result.NewEvents[i], &result.NewEvents[j])
	})
	for period := range result.ByPeriod {
		rows := result.ByPeriod[period]
		sort.SliceStable(rows, func(i, j int) bool {
			return clockBefore(&rows[i], &rows[j])
		})
	}

	return result
}

func clockBefore(a, b *EventRow) bool {
	if a.ExpandedMinute != b.ExpandedMinute {
		return a.ExpandedMinute < b.ExpandedMinute
	}
	return secondOf(a) < secondOf(b)
}

func secondOf(r *EventRow) int {
	if r.Second == nil {
		return 0
	}
	return *r.Second
}

// Change represents a summary field that differs between two extractions
type Change struct {
	MatchID    int64     `json:"match_id"`
	ChangeType string    `json:"change_type"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	DetectedAt time.Time `json:"detected_at"`
}

// DetectChanges compares two summary rows of the same match
func DetectChanges(previous, current *MatchSummaryRow) []Change {
	if previous == nil || current == nil {
		return nil
	}

	now := time.Now().UTC()
	var changes []Change
	for _, field := range []struct {
		kind     string
		old, new string
	}{
		{ChangeScore, ptrText(previous.Score), ptrText(current.Score)},
		{ChangeStartTime, ptrText(previous.StartTime), ptrText(current.StartTime)},
		{ChangeVenue, ptrText(previous.VenueName), ptrText(current.VenueName)},
		{ChangeAttendance, intText(previous.Attendance), intText(current.Attendance)},
	} {
		if field.old == field.new {
			continue
		}
		changes = append(changes, Change{
			MatchID:    current.MatchID,
			ChangeType: field.kind,
			OldValue:   field.old,
			NewValue:   field.new,
			DetectedAt: now,
		})
	}
	return changes
}

func ptrText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intText(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
