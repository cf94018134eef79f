package match

// SummaryColumns are the record fields projected onto the match summary table.
var SummaryColumns = []string{
	"matchId", "attendance", "venueName", "startTime", "startDate",
	"score", "home", "away", "referee",
}

// MatchSummaryRow is one row of the match summary table. Fields absent from
// the source record stay nil.
type MatchSummaryRow struct {
	MatchID    int64     `json:"matchId"`
	Attendance *int      `json:"attendance,omitempty"`
	VenueName  *string   `json:"venueName,omitempty"`
	StartTime  *string   `json:"startTime,omitempty"`
	StartDate  *string   `json:"startDate,omitempty"`
	Score      *string   `json:"score,omitempty"`
	Home       *Team     `json:"home,omitempty"`
	Away       *Team     `json:"away,omitempty"`
	Referee    *Official `json:"referee,omitempty"`
}

// SummaryTable holds summary rows indexed by match id, in insertion order.
type SummaryTable struct {
	rows  []MatchSummaryRow
	index map[int64]int
}

// Summaries projects records onto the summary table. A record seen twice
// replaces its earlier row in place.
func Summaries(records ...*MatchRecord) *SummaryTable {
	t := &SummaryTable{index: make(map[int64]int, len(records))}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		t.Add(Summarize(rec))
	}
	return t
}

// Summarize projects a single record.
func Summarize(rec *MatchRecord) MatchSummaryRow {
	return MatchSummaryRow{
		MatchID:    rec.MatchID,
		Attendance: rec.Attendance,
		VenueName:  optional(rec.VenueName),
		StartTime:  optional(rec.StartTime),
		StartDate:  optional(rec.StartDate),
		Score:      optional(rec.Score),
		Home:       rec.Home,
		Away:       rec.Away,
		Referee:    rec.Referee,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Add inserts or replaces the row for row.MatchID.
func (t *SummaryTable) Add(row MatchSummaryRow) {
	if i, ok := t.index[row.MatchID]; ok {
		t.rows[i] = row
		return
	}
	t.index[row.MatchID] = len(t.rows)
	t.rows = append(t.rows, row)
}

// Get returns the row for a match id.
func (t *SummaryTable) Get(matchID int64) (MatchSummaryRow, bool) {
	i, ok := t.index[matchID]
	if !ok {
		return MatchSummaryRow{}, false
	}
	return t.rows[i], true
}

// Rows returns a copy of the rows in table order.
func (t *SummaryTable) Rows() []MatchSummaryRow {
	out := make([]MatchSummaryRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows.
func (t *SummaryTable) Len() int {
	return len(t.rows)
}

// Reorder replaces the row order. rows must hold the same match ids.
func (t *SummaryTable) Reorder(rows []MatchSummaryRow) {
	t.rows = rows
	t.index = make(map[int64]int, len(rows))
	for i, row := range rows {
		t.index[row.MatchID] = i
	}
}
