package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/matchcentre/internal/match"
)

func intp(n int) *int { return &n }

func testResult() *OutputResult {
	return &OutputResult{
		GeneratedAt: time.Date(2021, 2, 28, 9, 0, 0, 0, time.UTC),
		Competition: &Competition{Region: "England", League: "FA Cup", Season: "2020/2021", Type: match.CompetitionKnockOut, Stage: "Final Stage"},
		Matches: []match.MatchSummaryRow{{
			MatchID:    1515390,
			Attendance: intp(21000),
			VenueName:  strp("Wembley"),
			StartTime:  strp("2021-05-15T17:15:00"),
			Score:      strp("1 : 0"),
			Home:       &match.Team{TeamID: 26, Name: "Chelsea"},
			Away:       &match.Team{TeamID: 14, Name: "Leicester"},
			Referee:    &match.Official{FirstName: "Michael", LastName: "Oliver"},
		}},
		Events: []match.EventRow{
			{Minute: 63, Second: intp(5), HA: "a", PlayerName: "Youri Tielemans", Type: "Goal", OutcomeType: "Successful", IsShot: true, IsGoal: true, ShotBodyType: "RightFoot", Situation: "OpenPlay"},
			{Minute: 90, HA: "h", PlayerName: "Ben Chilwell", Type: "Card", OutcomeType: "Successful", CardType: "Yellow"},
		},
		EventCount:  2,
		TotalEvents: 1710,
		ShowEvents:  true,
		Saved:       []string{"/data/records/1515390.json"},
	}
}

func TestWriteOutput_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, testResult(), FormatText, true); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"England | FA Cup | 2020/2021 (Knock Out: Final Stage)",
		"2021-05-15 17:15",
		"Wembley",
		"21000",
		"Michael Oliver",
		"63:05",
		"GOAL RightFoot OpenPlay",
		"90'",
		"Yellow",
		"Total: 2 of 1710 events",
		"Saved: /data/records/1515390.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteOutput_TextNoMatches(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, &OutputResult{}, FormatText, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	if got := buf.String(); got != "No matches found.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWriteOutput_TextFilteredEmpty(t *testing.T) {
	result := testResult()
	result.Events = nil
	result.EventCount = 0
	result.Filter = "Side: h | Goals only"

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatText, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Filter: Side: h | Goals only", "No events found.", "Total: 0 of 1710 events"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ATTENDANCE") {
		t.Error("attendance column is verbose only")
	}
}

func TestWriteOutput_JSON(t *testing.T) {
	result := testResult()
	result.ShowEvents = false

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatJSON, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := decoded["events"]; ok {
		t.Error("events should be omitted when not shown")
	}
	if decoded["total_events"] != float64(1710) {
		t.Errorf("total_events = %v", decoded["total_events"])
	}
	if decoded["generated_at"] != "2021-02-28T09:00:00Z" {
		t.Errorf("generated_at = %v", decoded["generated_at"])
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	if err := WriteOutput(&bytes.Buffer{}, testResult(), OutputFormat("xml"), false); err == nil {
		t.Error("WriteOutput() with unknown format expected error")
	}
}
