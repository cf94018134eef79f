package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/matchcentre/internal/match"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS matches (
		match_id INTEGER PRIMARY KEY,
		attendance INTEGER,
		venue_name TEXT,
		start_time TEXT,
		start_date TEXT,
		score TEXT,
		home_team_id INTEGER,
		home_team TEXT,
		away_team_id INTEGER,
		away_team TEXT,
		referee TEXT
	);

	CREATE TABLE IF NOT EXISTS events (
		match_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		event_id INTEGER NOT NULL,
		minute INTEGER NOT NULL,
		second INTEGER,
		team_id INTEGER NOT NULL,
		h_a TEXT,
		player_id TEXT,
		player_name TEXT,
		x REAL NOT NULL,
		y REAL NOT NULL,
		expanded_minute INTEGER NOT NULL,
		period TEXT,
		type TEXT,
		outcome_type TEXT,
		satisfied_events_types TEXT NOT NULL,
		is_touch INTEGER NOT NULL,
		end_x REAL,
		end_y REAL,
		related_event_id INTEGER,
		related_player_id INTEGER,
		blocked_x REAL,
		blocked_y REAL,
		goal_mouth_z REAL,
		goal_mouth_y REAL,
		is_own_goal INTEGER,
		card_type TEXT,
		is_shot INTEGER NOT NULL,
		is_goal INTEGER NOT NULL,
		shot_body_type TEXT,
		situation TEXT,
		PRIMARY KEY (match_id, id)
	);

	CREATE TABLE IF NOT EXISTS event_qualifiers (
		match_id INTEGER NOT NULL,
		event_row_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		type TEXT NOT NULL,
		value TEXT,
		PRIMARY KEY (match_id, event_row_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_events_type ON events (match_id, type);
`

// OpenSQLite opens (creating if needed) the match database and ensures the schema.
func OpenSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, nil
}

// WriteSQLite stores the summary rows and event rows in the database at path.
// Rows of a match already present are replaced, so re-exporting is idempotent.
func WriteSQLite(ctx context.Context, path string, summary *match.SummaryTable, events []match.EventRow) error {
	db, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after Commit

	if err := insertMatches(ctx, tx, summary); err != nil {
		return err
	}
	if err := insertEvents(ctx, tx, summary, events); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertMatches(ctx context.Context, tx *sql.Tx, summary *match.SummaryTable) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO matches (
			match_id, attendance, venue_name, start_time, start_date, score,
			home_team_id, home_team, away_team_id, away_team, referee
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing matches statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, row := range SummaryParquetRows(summary) {
		if _, err := stmt.ExecContext(ctx,
			row.MatchID, row.Attendance, row.VenueName, row.StartTime, row.StartDate, row.Score,
			row.HomeTeamID, row.HomeTeam, row.AwayTeamID, row.AwayTeam, row.Referee,
		); err != nil {
			return fmt.Errorf("inserting match %d: %w", row.MatchID, err)
		}
	}
	return nil
}

func insertEvents(ctx context.Context, tx *sql.Tx, summary *match.SummaryTable, events []match.EventRow) error {
	// Clear every exported match first so dropped events do not linger, even
	// when the new event set for a match is empty
	cleared := make(map[int64]bool)
	var ids []int64
	for _, row := range summary.Rows() {
		ids = append(ids, row.MatchID)
	}
	for i := range events {
		ids = append(ids, events[i].MatchID)
	}
	for _, id := range ids {
		if cleared[id] {
			continue
		}
		cleared[id] = true
		for _, table := range []string{"events", "event_qualifiers"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE match_id = ?", id); err != nil {
				return fmt.Errorf("clearing %s for match %d: %w", table, id, err)
			}
		}
	}

	stmtEvents, err := tx.PrepareContext(ctx, `
		INSERT INTO events (
			match_id, id, event_id, minute, second, team_id, h_a, player_id, player_name,
			x, y, expanded_minute, period, type, outcome_type, satisfied_events_types,
			is_touch, end_x, end_y, related_event_id, related_player_id, blocked_x, blocked_y,
			goal_mouth_z, goal_mouth_y, is_own_goal, card_type, is_shot, is_goal,
			shot_body_type, situation
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing events statement: %w", err)
	}
	defer stmtEvents.Close() // nolint:errcheck

	stmtQualifiers, err := tx.PrepareContext(ctx, `
		INSERT INTO event_qualifiers (match_id, event_row_id, position, type, value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing event_qualifiers statement: %w", err)
	}
	defer stmtQualifiers.Close() // nolint:errcheck

	rows := EventParquetRows(events)
	for i, r := range rows {
		satisfied, err := json.Marshal(nonNil(r.SatisfiedEventsTypes))
		if err != nil {
			return fmt.Errorf("encoding satisfied types of event %d: %w", r.ID, err)
		}

		if _, err := stmtEvents.ExecContext(ctx,
			r.MatchID, r.ID, r.EventID, r.Minute, r.Second, r.TeamID, r.HA, r.PlayerID, r.PlayerName,
			r.X, r.Y, r.ExpandedMinute, r.Period, r.Type, r.OutcomeType, string(satisfied),
			r.IsTouch, r.EndX, r.EndY, r.RelatedEventID, r.RelatedPlayerID, r.BlockedX, r.BlockedY,
			r.GoalMouthZ, r.GoalMouthY, r.IsOwnGoal, r.CardType, r.IsShot, r.IsGoal,
			r.ShotBodyType, r.Situation,
		); err != nil {
			return fmt.Errorf("inserting event %d: %w", r.ID, err)
		}

		for pos, q := range events[i].Qualifiers {
			if _, err := stmtQualifiers.ExecContext(ctx, r.MatchID, r.ID, pos, q.Type, strPtr(q.Value)); err != nil {
				return fmt.Errorf("inserting qualifier %d of event %d: %w", pos, r.ID, err)
			}
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
