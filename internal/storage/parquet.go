package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/pfrederiksen/matchcentre/internal/match"
)

/* ---------- Parquet row types ---------- */

// SummaryParquetRow is one match summary row in Parquet form. Teams are split
// into id and name columns; the referee is stored by name.
type SummaryParquetRow struct {
	MatchID    int64   `parquet:"match_id"`
	Attendance *int64  `parquet:"attendance,optional"`
	VenueName  *string `parquet:"venue_name,optional"`
	StartTime  *string `parquet:"start_time,optional"`
	StartDate  *string `parquet:"start_date,optional"`
	Score      *string `parquet:"score,optional"`
	HomeTeamID *int64  `parquet:"home_team_id,optional"`
	HomeTeam   *string `parquet:"home_team,optional"`
	AwayTeamID *int64  `parquet:"away_team_id,optional"`
	AwayTeam   *string `parquet:"away_team,optional"`
	Referee    *string `parquet:"referee,optional"`
}

// EventParquetRow is one event row in Parquet form. The per-type flag columns
// are not part of the static schema; SatisfiedEventsTypes carries the same
// information as a list.
type EventParquetRow struct {
	ID                   int64    `parquet:"id"`
	EventID              int64    `parquet:"event_id"`
	Minute               int64    `parquet:"minute"`
	Second               *int64   `parquet:"second,optional"`
	TeamID               int64    `parquet:"team_id"`
	HA                   *string  `parquet:"h_a,optional"`
	PlayerID             *string  `parquet:"player_id,optional"`
	PlayerName           *string  `parquet:"player_name,optional"`
	X                    float64  `parquet:"x"`
	Y                    float64  `parquet:"y"`
	ExpandedMinute       int64    `parquet:"expanded_minute"`
	Period               *string  `parquet:"period,optional"`
	Type                 *string  `parquet:"type,optional"`
	OutcomeType          *string  `parquet:"outcome_type,optional"`
	Qualifiers           *string  `parquet:"qualifiers,optional"`
	SatisfiedEventsTypes []string `parquet:"satisfied_events_types,list"`
	IsTouch              bool     `parquet:"is_touch"`
	EndX                 *float64 `parquet:"end_x,optional"`
	EndY                 *float64 `parquet:"end_y,optional"`
	RelatedEventID       *int64   `parquet:"related_event_id,optional"`
	RelatedPlayerID      *int64   `parquet:"related_player_id,optional"`
	BlockedX             *float64 `parquet:"blocked_x,optional"`
	BlockedY             *float64 `parquet:"blocked_y,optional"`
	GoalMouthZ           *float64 `parquet:"goal_mouth_z,optional"`
	GoalMouthY           *float64 `parquet:"goal_mouth_y,optional"`
	IsOwnGoal            *bool    `parquet:"is_own_goal,optional"`
	CardType             *string  `parquet:"card_type,optional"`
	MatchID              int64    `parquet:"match_id"`
	StartDate            *string  `parquet:"start_date,optional"`
	StartTime            *string  `parquet:"start_time,optional"`
	Score                *string  `parquet:"score,optional"`
	FTScore              *string  `parquet:"ft_score,optional"`
	HTScore              *string  `parquet:"ht_score,optional"`
	ETScore              *string  `parquet:"et_score,optional"`
	VenueName            *string  `parquet:"venue_name,optional"`
	MaxMinute            int64    `parquet:"max_minute"`
	IsShot               bool     `parquet:"is_shot"`
	IsGoal               bool     `parquet:"is_goal"`
	ShotBodyType         *string  `parquet:"shot_body_type,optional"`
	Situation            *string  `parquet:"situation,optional"`
}

// SummaryParquetRows converts the summary table.
func SummaryParquetRows(t *match.SummaryTable) []SummaryParquetRow {
	rows := t.Rows()
	out := make([]SummaryParquetRow, len(rows))
	for i, row := range rows {
		p := SummaryParquetRow{
			MatchID:   row.MatchID,
			VenueName: row.VenueName,
			StartTime: row.StartTime,
			StartDate: row.StartDate,
			Score:     row.Score,
			Referee:   refereeName(row.Referee),
		}
		if row.Attendance != nil {
			p.Attendance = int64Ptr(int64(*row.Attendance))
		}
		if row.Home != nil {
			p.HomeTeamID = int64Ptr(int64(row.Home.TeamID))
			p.HomeTeam = strPtr(row.Home.Name)
		}
		if row.Away != nil {
			p.AwayTeamID = int64Ptr(int64(row.Away.TeamID))
			p.AwayTeam = strPtr(row.Away.Name)
		}
		out[i] = p
	}
	return out
}

// EventParquetRows converts event rows.
func EventParquetRows(events []match.EventRow) []EventParquetRow {
	out := make([]EventParquetRow, len(events))
	for i := range events {
		r := &events[i]
		p := EventParquetRow{
			ID:                   r.ID,
			EventID:              int64(r.EventID),
			Minute:               int64(r.Minute),
			TeamID:               int64(r.TeamID),
			HA:                   strPtr(r.HA),
			PlayerID:             strPtr(r.PlayerID),
			PlayerName:           strPtr(r.PlayerName),
			X:                    r.X,
			Y:                    r.Y,
			ExpandedMinute:       int64(r.ExpandedMinute),
			Period:               strPtr(r.Period),
			Type:                 strPtr(r.Type),
			OutcomeType:          strPtr(r.OutcomeType),
			Qualifiers:           qualifiersText(r),
			SatisfiedEventsTypes: r.SatisfiedTypes,
			IsTouch:              r.IsTouch,
			EndX:                 r.EndX,
			EndY:                 r.EndY,
			BlockedX:             r.BlockedX,
			BlockedY:             r.BlockedY,
			GoalMouthZ:           r.GoalMouthZ,
			GoalMouthY:           r.GoalMouthY,
			IsOwnGoal:            r.IsOwnGoal,
			CardType:             strPtr(r.CardType),
			MatchID:              r.MatchID,
			StartDate:            strPtr(r.StartDate),
			StartTime:            strPtr(r.StartTime),
			Score:                strPtr(r.Score),
			FTScore:              strPtr(r.FTScore),
			HTScore:              strPtr(r.HTScore),
			ETScore:              strPtr(r.ETScore),
			VenueName:            strPtr(r.VenueName),
			MaxMinute:            int64(r.MaxMinute),
			IsShot:               r.IsShot,
			IsGoal:               r.IsGoal,
			ShotBodyType:         strPtr(r.ShotBodyType),
			Situation:            strPtr(r.Situation),
		}
		if r.Second != nil {
			p.Second = int64Ptr(int64(*r.Second))
		}
		if r.RelatedEventID != nil {
			p.RelatedEventID = int64Ptr(int64(*r.RelatedEventID))
		}
		if r.RelatedPlayerID != nil {
			p.RelatedPlayerID = int64Ptr(int64(*r.RelatedPlayerID))
		}
		out[i] = p
	}
	return out
}

/* ---------- Parquet writer ---------- */

// WriteParquet writes rows as a Snappy-compressed Parquet file with the schema of T.
func WriteParquet[T any](w io.Writer, rows []T) error {
	pw := parquet.NewWriter(w, parquet.SchemaOf(new(T)), parquet.Compression(&parquet.Snappy))
	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			_ = pw.Close()
			return fmt.Errorf("writing parquet row: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// qualifiersText renders the qualifiers cell as JSON text.
func qualifiersText(r *match.EventRow) *string {
	switch {
	case r.Qualifiers != nil:
		data, err := json.Marshal(r.Qualifiers)
		if err != nil {
			return nil
		}
		return strPtr(string(data))
	case len(r.RawQualifiers) > 0:
		return strPtr(string(r.RawQualifiers))
	}
	return nil
}

func refereeName(o *match.Official) *string {
	if o == nil {
		return nil
	}
	if o.Name != "" {
		return &o.Name
	}
	return strPtr(strings.TrimSpace(o.FirstName + " " + o.LastName))
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func int64Ptr(n int64) *int64 {
	return &n
}
