package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/matchcentre/internal/match"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByMatch SortOrder = "match"
	SortByHome  SortOrder = "home"
)

// ParseSortOrder validates a --sort value.
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case SortByDate, SortByMatch, SortByHome:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'date', 'match' or 'home')", s)
}

// sortSummaries sorts summary rows based on the specified sort order
func sortSummaries(rows []match.MatchSummaryRow, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(rows, func(i, j int) bool {
			return compareByKickoff(&rows[i], &rows[j])
		})
	case SortByMatch:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].MatchID < rows[j].MatchID
		})
	case SortByHome:
		sort.SliceStable(rows, func(i, j int) bool {
			hi, hj := strings.ToLower(teamName(rows[i].Home)), strings.ToLower(teamName(rows[j].Home))
			if hi != hj {
				return hi < hj
			}
			// If home teams are equal, sort by kickoff
			return compareByKickoff(&rows[i], &rows[j])
		})
	}
}

// compareByKickoff compares two rows by kickoff time
// Returns true if row i should come before row j
func compareByKickoff(i, j *match.MatchSummaryRow) bool {
	ti, tj := i.Kickoff(), j.Kickoff()

	// If both dates are valid, compare them
	if !ti.IsZero() && !tj.IsZero() && !ti.Equal(tj) {
		return ti.Before(tj)
	}

	// If only one date is valid, put the valid one first
	if !ti.IsZero() && tj.IsZero() {
		return true
	}
	if ti.IsZero() && !tj.IsZero() {
		return false
	}

	return i.MatchID < j.MatchID
}
