package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pfrederiksen/matchcentre/internal/match"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []Format
		wantErr bool
	}{
		{name: "all", input: []string{"csv", "JSON", " parquet ", "sqlite"}, want: []Format{FormatCSV, FormatJSON, FormatParquet, FormatSQLite}},
		{name: "duplicates", input: []string{"csv", "csv"}, want: []Format{FormatCSV}},
		{name: "none", input: nil, want: nil},
		{name: "unknown", input: []string{"xlsx"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormats(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormats() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFormats() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	table := match.Table{
		Header: []string{"matchId", "venueName", "isShot", "x", "qualifiers", "cardType"},
		Rows: [][]any{
			{int64(1491995), "Estadio, Sevilla", true, 50.1, []match.Qualifier{{Type: "Angle", Value: "3.1"}}, false},
			{int64(1491995), nil, false, 88.0, nil, "Yellow"},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	want := [][]string{
		table.Header,
		{"1491995", "Estadio, Sevilla", "True", "50.1", `[{"type":"Angle","value":"3.1"}]`, "False"},
		{"1491995", "", "False", "88", "", "Yellow"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("CSV records =\n%v\nwant\n%v", records, want)
	}
}

func TestExport(t *testing.T) {
	s := newTestStorage(t)
	summary, events := testTables(t)

	paths, err := s.Export(context.Background(), summary, events, []Format{FormatCSV, FormatJSON, FormatParquet, FormatSQLite})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	dir := s.MatchDir(1491995)
	want := []string{
		filepath.Join(dir, "summary.csv"),
		filepath.Join(dir, "events.csv"),
		filepath.Join(dir, "summary.json"),
		filepath.Join(dir, "events.json"),
		filepath.Join(dir, "summary.parquet"),
		filepath.Join(dir, "events.parquet"),
		filepath.Join(s.DataDir(), DatabaseFile),
	}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("Export() paths =\n%v\nwant\n%v", paths, want)
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("exported file %s missing or empty (err=%v)", p, err)
		}
	}

	eventsCSV, err := os.ReadFile(filepath.Join(dir, "events.csv"))
	if err != nil {
		t.Fatalf("reading events.csv: %v", err)
	}
	header := strings.SplitN(string(eventsCSV), "\n", 2)[0]
	if !strings.Contains(header, "teamId,h_a,playerId,playerName") {
		t.Errorf("events.csv header should place h_a after teamId and playerName after playerId, got %q", header)
	}
	if !strings.HasSuffix(header, ",pass,goal") {
		t.Errorf("events.csv header should end with the event-type flag columns, got %q", header)
	}

	eventsJSON, err := os.ReadFile(filepath.Join(dir, "events.json"))
	if err != nil {
		t.Fatalf("reading events.json: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(eventsJSON, &decoded); err != nil {
		t.Fatalf("events.json is not a JSON array: %v", err)
	}
	if len(decoded) != 2 || decoded[1]["situation"] != "OpenPlay" {
		t.Errorf("events.json = %v, want 2 rows with OpenPlay situation on the goal", decoded)
	}
}

func TestExport_EmptySummary(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.Export(context.Background(), match.Summaries(), nil, []Format{FormatCSV}); err == nil {
		t.Error("Export() with an empty summary expected error")
	}
}

func TestExportSummary(t *testing.T) {
	s := newTestStorage(t)
	summary, _ := testTables(t)

	paths, err := s.ExportSummary(summary, []Format{FormatCSV, FormatParquet})
	if err != nil {
		t.Fatalf("ExportSummary() error: %v", err)
	}
	want := []string{
		filepath.Join(s.DataDir(), "summary.csv"),
		filepath.Join(s.DataDir(), "summary.parquet"),
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("ExportSummary() = %v, want %v", paths, want)
	}

	data, err := os.ReadFile(want[0])
	if err != nil {
		t.Fatalf("reading summary.csv: %v", err)
	}
	if !strings.HasPrefix(string(data), strings.Join(match.SummaryColumns, ",")) {
		t.Errorf("summary.csv header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}

	if _, err := s.ExportSummary(summary, []Format{FormatSQLite}); err == nil {
		t.Error("ExportSummary(sqlite) expected error")
	}
}
