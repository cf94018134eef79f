package match

import "time"

// startLayouts are the timestamp formats seen in startDate and startTime.
var startLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
}

// ParseStart parses a record's startDate or startTime value.
// Returns time.Time{} (zero value) if parsing fails.
func ParseStart(text string) time.Time {
	if text == "" {
		return time.Time{}
	}
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Kickoff returns the best known kick-off time of a summary row: startTime if
// it parses, then startDate.
func (r *MatchSummaryRow) Kickoff() time.Time {
	if r.StartTime != nil {
		if t := ParseStart(*r.StartTime); !t.IsZero() {
			return t
		}
	}
	if r.StartDate != nil {
		return ParseStart(*r.StartDate)
	}
	return time.Time{}
}
