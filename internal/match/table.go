package match

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Table is a header plus row-major cells. Cells hold nil for unset values.
type Table struct {
	Header []string
	Rows   [][]any
}

// EventColumns is the fixed column order of the event table. Extra fields and
// one flag column per event-type name follow it.
var EventColumns = []string{
	"id", "eventId", "minute", "second", "teamId", "h_a", "playerId", "playerName",
	"x", "y", "expandedMinute", "period", "type", "outcomeType", "qualifiers",
	"satisfiedEventsTypes", "isTouch", "endX", "endY", "relatedEventId",
	"relatedPlayerId", "blockedX", "blockedY", "goalMouthZ", "goalMouthY",
	"isOwnGoal", "cardType",
	"matchId", "startDate", "startTime", "score", "ftScore", "htScore", "etScore",
	"venueName", "maxMinute",
	"isShot", "isGoal", "shotBodyType", "situation",
}

// EventTable lays rows out as a table. The flag columns come from the first row.
func EventTable(rows []EventRow) Table {
	extraSet := make(map[string]struct{})
	for i := range rows {
		for k := range rows[i].Extra {
			extraSet[k] = struct{}{}
		}
	}
	extras := make([]string, 0, len(extraSet))
	for k := range extraSet {
		extras = append(extras, k)
	}
	sort.Strings(extras)

	header := append([]string{}, EventColumns...)
	header = append(header, extras...)
	if len(rows) > 0 {
		for _, f := range rows[0].Flags {
			header = append(header, f.Name)
		}
	}

	t := Table{Header: header, Rows: make([][]any, len(rows))}
	for i := range rows {
		cells := make([]any, len(header))
		for j, col := range header {
			cells[j] = rows[i].Value(col)
		}
		t.Rows[i] = cells
	}
	return t
}

// Value returns the cell for col, or nil if the row has no such value.
func (r *EventRow) Value(col string) any {
	switch col {
	case "id":
		return r.ID
	case "eventId":
		return r.EventID
	case "minute":
		return r.Minute
	case "second":
		return intCell(r.Second)
	case "teamId":
		return r.TeamID
	case "h_a":
		return stringCell(r.HA)
	case "playerId":
		return stringCell(r.PlayerID)
	case "playerName":
		return stringCell(r.PlayerName)
	case "x":
		return r.X
	case "y":
		return r.Y
	case "expandedMinute":
		return r.ExpandedMinute
	case "period":
		return stringCell(r.Period)
	case "type":
		return stringCell(r.Type)
	case "outcomeType":
		return stringCell(r.OutcomeType)
	case "qualifiers":
		if r.Qualifiers != nil {
			return r.Qualifiers
		}
		return rawCell(r.RawQualifiers)
	case "satisfiedEventsTypes":
		return r.SatisfiedTypes
	case "isTouch":
		return r.IsTouch
	case "endX":
		return floatCell(r.EndX)
	case "endY":
		return floatCell(r.EndY)
	case "relatedEventId":
		return intCell(r.RelatedEventID)
	case "relatedPlayerId":
		if r.RelatedPlayerID == nil {
			return nil
		}
		return int64(*r.RelatedPlayerID)
	case "blockedX":
		return floatCell(r.BlockedX)
	case "blockedY":
		return floatCell(r.BlockedY)
	case "goalMouthZ":
		return floatCell(r.GoalMouthZ)
	case "goalMouthY":
		return floatCell(r.GoalMouthY)
	case "isOwnGoal":
		if r.IsOwnGoal == nil {
			return nil
		}
		return *r.IsOwnGoal
	case "cardType":
		if r.CardType == "" {
			return false
		}
		return r.CardType
	case "matchId":
		return r.MatchID
	case "startDate":
		return stringCell(r.StartDate)
	case "startTime":
		return stringCell(r.StartTime)
	case "score":
		return stringCell(r.Score)
	case "ftScore":
		return stringCell(r.FTScore)
	case "htScore":
		return stringCell(r.HTScore)
	case "etScore":
		return stringCell(r.ETScore)
	case "venueName":
		return stringCell(r.VenueName)
	case "maxMinute":
		return r.MaxMinute
	case "isShot":
		return r.IsShot
	case "isGoal":
		return r.IsGoal
	case "shotBodyType":
		return stringCell(r.ShotBodyType)
	case "situation":
		return stringCell(r.Situation)
	}

	if raw, ok := r.Extra[col]; ok {
		return rawCell(raw)
	}
	if set, ok := r.Flag(col); ok {
		return set
	}
	return nil
}

// MarshalJSON writes the row as one flat object in table column order.
func (r EventRow) MarshalJSON() ([]byte, error) {
	cols := append([]string{}, EventColumns...)
	extras := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	cols = append(cols, extras...)
	for _, f := range r.Flags {
		cols = append(cols, f.Name)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.Value(col))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table lays the summary rows out with SummaryColumns. Teams render as names.
func (t *SummaryTable) Table() Table {
	out := Table{Header: append([]string{}, SummaryColumns...), Rows: make([][]any, len(t.rows))}
	for i, row := range t.rows {
		out.Rows[i] = []any{
			row.MatchID,
			intCell(row.Attendance),
			stringPtrCell(row.VenueName),
			stringPtrCell(row.StartTime),
			stringPtrCell(row.StartDate),
			stringPtrCell(row.Score),
			teamCell(row.Home),
			teamCell(row.Away),
			refereeCell(row.Referee),
		}
	}
	return out
}

func stringCell(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringPtrCell(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intCell(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func floatCell(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func rawCell(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func teamCell(t *Team) any {
	if t == nil {
		return nil
	}
	return t.Name
}

func refereeCell(o *Official) any {
	if o == nil {
		return nil
	}
	if o.Name != "" {
		return o.Name
	}
	return stringCell(strings.TrimSpace(o.FirstName + " " + o.LastName))
}
