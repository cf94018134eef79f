// Package filter narrows a match's event table to the rows a caller asks for.
//
// Criteria combine with AND; list criteria match if any entry matches:
//   - Types: event type display name ("Pass") or a satisfied event-type name ("shotOnTarget"), case-insensitive
//   - Side: "h" or "a"
//   - Minute range: inclusive bounds on the event minute
//   - Shots only / goals only
//   - Players: case-insensitive substring of the player name
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Side = "h"
//	f.ShotsOnly = true
//	shots := f.Apply(rows)
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/matchcentre/internal/match"
)

// Filter represents event filtering criteria
type Filter struct {
	// Event type names (case-insensitive exact match)
	Types []string `json:"types,omitempty"`

	// Team side: "h" or "a"
	Side string `json:"side,omitempty"`

	// Minute range, inclusive. Nil bounds are open.
	MinuteFrom *int `json:"minute_from,omitempty"`
	MinuteTo   *int `json:"minute_to,omitempty"`

	ShotsOnly bool `json:"shots_only,omitempty"`
	GoalsOnly bool `json:"goals_only,omitempty"`

	// Player name filtering (case-insensitive substring match)
	Players []string `json:"players,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all rows until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Types:   []string{},
		Players: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return len(f.Types) == 0 &&
		f.Side == "" &&
		f.MinuteFrom == nil &&
		f.MinuteTo == nil &&
		!f.ShotsOnly &&
		!f.GoalsOnly &&
		len(f.Players) == 0
}

// Matches checks if a row matches all active filter criteria.
// An empty filter matches all rows.
func (f *Filter) Matches(row *match.EventRow) bool {
	if f.IsEmpty() {
		return true
	}

	if f.Side != "" && !strings.EqualFold(row.HA, f.Side) {
		return false
	}

	if f.MinuteFrom != nil && row.Minute < *f.MinuteFrom {
		return false
	}
	if f.MinuteTo != nil && row.Minute > *f.MinuteTo {
		return false
	}

	if f.ShotsOnly && !row.IsShot {
		return false
	}
	if f.GoalsOnly && !row.IsGoal {
		return false
	}

	if len(f.Types) > 0 && !matchesType(row, f.Types) {
		return false
	}

	// Check player name (case-insensitive substring match)
	if len(f.Players) > 0 {
		matched := false
		nameLower := strings.ToLower(row.PlayerName)
		for _, player := range f.Players {
			if nameLower != "" && strings.Contains(nameLower, strings.ToLower(player)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func matchesType(row *match.EventRow, types []string) bool {
	for _, name := range types {
		if strings.EqualFold(row.Type, name) {
			return true
		}
		for _, satisfied := range row.SatisfiedTypes {
			if strings.EqualFold(satisfied, name) {
				return true
			}
		}
	}
	return false
}

// Apply returns the matching rows in their original order. If the filter is
// empty the input slice is returned unchanged.
func (f *Filter) Apply(rows []match.EventRow) []match.EventRow {
	if f.IsEmpty() {
		return rows
	}

	var filtered []match.EventRow
	for i := range rows {
		if f.Matches(&rows[i]) {
			filtered = append(filtered, rows[i])
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "Types: Pass, Goal | Side: h | Minutes: 10-45 | Shots only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if len(f.Types) > 0 {
		parts = append(parts, fmt.Sprintf("Types: %s", strings.Join(f.Types, ", ")))
	}

	if f.Side != "" {
		parts = append(parts, fmt.Sprintf("Side: %s", f.Side))
	}

	if f.MinuteFrom != nil || f.MinuteTo != nil {
		parts = append(parts, fmt.Sprintf("Minutes: %s", FormatMinuteRange(f.MinuteFrom, f.MinuteTo)))
	}

	if f.ShotsOnly {
		parts = append(parts, "Shots only")
	}

	if f.GoalsOnly {
		parts = append(parts, "Goals only")
	}

	if len(f.Players) > 0 {
		parts = append(parts, fmt.Sprintf("Players: %s", strings.Join(f.Players, ", ")))
	}

	return strings.Join(parts, " | ")
}
