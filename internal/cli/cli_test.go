package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pfrederiksen/matchcentre/internal/match"
	"github.com/pfrederiksen/matchcentre/internal/scraper"
	"github.com/pfrederiksen/matchcentre/internal/storage"
)

// isolateEnv clears MATCHCENTRE_* variables the host may carry.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MATCHCENTRE_BROWSER", "MATCHCENTRE_DATA_DIR", "MATCHCENTRE_LOG_LEVEL",
		"MATCHCENTRE_S3_BUCKET", "MATCHCENTRE_S3_PREFIX", "MATCHCENTRE_TIMEOUT", "MATCHCENTRE_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

// run executes the root command and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	isolateEnv(t)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func matchServer(t *testing.T) *httptest.Server {
	t.Helper()
	page, err := os.ReadFile(filepath.Join("testdata", "match_centre.html"))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Matches/1491995/Live" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	t.Cleanup(server.Close)
	return server
}

func decodeResult(t *testing.T, out string) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	return result
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "matchcentre" {
		t.Errorf("Use = %q, want matchcentre", cmd.Use)
	}
	for _, name := range []string{"data-dir", "format", "verbose"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag --%s", name)
		}
	}

	for _, name := range []string{"scrape", "events", "summary"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("missing subcommand %s (err=%v)", name, err)
		}
	}
}

func TestScrapeCmd(t *testing.T) {
	server := matchServer(t)
	dataDir := t.TempDir()

	out, stderr, err := run(t, "scrape", server.URL+"/Matches/1491995/Live",
		"--browser", "http", "--data-dir", dataDir, "--format", "json", "--save", "csv")
	if err != nil {
		t.Fatalf("scrape error: %v\nstderr: %s", err, stderr)
	}

	if !strings.Contains(stderr, "Region: Spain, League: LaLiga, Season: 2020/2021, Match Id: 1491995") {
		t.Errorf("stderr should carry the display line, got %q", stderr)
	}

	result := decodeResult(t, out)
	if got := result["event_count"]; got != float64(2) {
		t.Errorf("event_count = %v, want 2", got)
	}
	comp, _ := result["competition"].(map[string]any)
	if comp["league"] != "LaLiga" || comp["type"] != match.CompetitionLeague {
		t.Errorf("competition = %v", comp)
	}
	matches, _ := result["matches"].([]any)
	if len(matches) != 1 {
		t.Fatalf("matches = %v, want one row", matches)
	}
	if row := matches[0].(map[string]any); row["matchId"] != float64(1491995) {
		t.Errorf("matchId = %v", row["matchId"])
	}

	recordPath := filepath.Join(dataDir, "records", "1491995.json")
	csvPath := filepath.Join(dataDir, "1491995", "events.csv")
	for _, p := range []string{recordPath, csvPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to be saved: %v", p, err)
		}
	}
	saved, _ := result["saved"].([]any)
	if len(saved) != 3 || saved[0] != recordPath {
		t.Errorf("saved = %v, want record then summary.csv and events.csv", saved)
	}
}

func TestScrapeCmd_Filters(t *testing.T) {
	server := matchServer(t)
	url := server.URL + "/Matches/1491995/Live"

	tests := []struct {
		name string
		args []string
		want float64
	}{
		{"goals", []string{"--goals"}, 1},
		{"types by display name", []string{"--types", "pass"}, 1},
		{"types by satisfied type", []string{"--types", "goal"}, 1},
		{"home side", []string{"--side", "h"}, 0},
		{"minutes", []string{"--minutes", "20-"}, 1},
		{"player", []string{"--player", "messi"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"scrape", url, "--quiet", "--no-record", "--format", "json", "--data-dir", t.TempDir()}, tt.args...)
			out, stderr, err := run(t, args...)
			if err != nil {
				t.Fatalf("scrape error: %v\nstderr: %s", err, stderr)
			}
			result := decodeResult(t, out)
			if result["event_count"] != tt.want {
				t.Errorf("event_count = %v, want %v", result["event_count"], tt.want)
			}
			if result["total_events"] != float64(2) {
				t.Errorf("total_events = %v, want 2", result["total_events"])
			}
			if strings.Contains(stderr, "Region:") {
				t.Errorf("--quiet should suppress the display line, got %q", stderr)
			}
		})
	}
}

func TestScrapeCmd_Errors(t *testing.T) {
	server := matchServer(t)
	url := server.URL + "/Matches/1491995/Live"

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing url", []string{"scrape"}, "accepts 1 arg"},
		{"bad browser", []string{"scrape", url, "--browser", "lynx"}, "invalid browser"},
		{"bad format", []string{"scrape", url, "--format", "xml"}, "invalid format"},
		{"bad side", []string{"scrape", url, "--side", "x"}, "side"},
		{"bad minutes", []string{"scrape", url, "--minutes", "50-10"}, "minute"},
		{"bad save", []string{"scrape", url, "--save", "xlsx"}, "unknown format"},
		{"not found", []string{"scrape", server.URL + "/missing"}, "extracting match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--data-dir", t.TempDir())
			_, _, err := run(t, args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.wantErr)) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func saveFixtureRecord(t *testing.T, dataDir string, id int64, startTime, home string) string {
	t.Helper()
	page, err := os.Open(filepath.Join("testdata", "match_centre.html"))
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	defer page.Close() // nolint:errcheck

	rec, err := scraper.ParsePage(page)
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	rec.MatchID = id
	rec.StartTime = startTime
	if startTime == "" {
		rec.StartDate = ""
	}
	rec.Home.Name = home

	store, err := storage.New(dataDir)
	if err != nil {
		t.Fatalf("storage.New() error: %v", err)
	}
	path, err := store.SaveRecord(rec)
	if err != nil {
		t.Fatalf("SaveRecord() error: %v", err)
	}
	return path
}

func TestEventsCmd(t *testing.T) {
	dataDir := t.TempDir()
	path := saveFixtureRecord(t, dataDir, 1491995, "2021-02-27T21:00:00", "Sevilla")

	out, stderr, err := run(t, "events", path, "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("events error: %v\nstderr: %s", err, stderr)
	}

	for _, want := range []string{
		"Spain | LaLiga | 2020/2021 (League)",
		"Sevilla",
		"Ousmane Dembélé",
		"GOAL LeftFoot OpenPlay",
		"Total: 2 of 2 events",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Saved:") {
		t.Errorf("events should not save anything without --save:\n%s", out)
	}
}

func TestEventsCmd_MissingFile(t *testing.T) {
	_, _, err := run(t, "events", filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "loading record") {
		t.Errorf("error = %v, want loading record error", err)
	}
}

func TestSummaryCmd(t *testing.T) {
	dataDir := t.TempDir()
	saveFixtureRecord(t, dataDir, 3, "2021-03-01T18:00:00", "Valencia")
	saveFixtureRecord(t, dataDir, 1, "2021-05-01T18:00:00", "Atletico")
	saveFixtureRecord(t, dataDir, 2, "", "Betis")

	tests := []struct {
		sort string
		want []float64
	}{
		{"date", []float64{3, 1, 2}},
		{"match", []float64{1, 2, 3}},
		{"home", []float64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			out, stderr, err := run(t, "summary", "--data-dir", dataDir, "--format", "json", "--sort", tt.sort)
			if err != nil {
				t.Fatalf("summary error: %v\nstderr: %s", err, stderr)
			}
			result := decodeResult(t, out)
			matches, _ := result["matches"].([]any)
			if len(matches) != len(tt.want) {
				t.Fatalf("got %d matches, want %d", len(matches), len(tt.want))
			}
			for i, m := range matches {
				if id := m.(map[string]any)["matchId"]; id != tt.want[i] {
					t.Errorf("matches[%d] = %v, want %v", i, id, tt.want[i])
				}
			}
			if _, ok := result["events"]; ok {
				t.Error("summary output should not carry events")
			}
		})
	}
}

func TestSummaryCmd_Save(t *testing.T) {
	dataDir := t.TempDir()
	saveFixtureRecord(t, dataDir, 1491995, "2021-02-27T21:00:00", "Sevilla")

	out, _, err := run(t, "summary", "--data-dir", dataDir, "--save", "csv")
	if err != nil {
		t.Fatalf("summary error: %v", err)
	}
	if !strings.Contains(out, "Saved: "+filepath.Join(dataDir, "summary.csv")) {
		t.Errorf("output should list the saved summary:\n%s", out)
	}

	if _, _, err := run(t, "summary", "--data-dir", dataDir, "--sort", "venue"); err == nil {
		t.Error("summary --sort venue expected error")
	}
}

func TestSummaryCmd_Empty(t *testing.T) {
	out, _, err := run(t, "summary", "--data-dir", t.TempDir())
	if err != nil {
		t.Fatalf("summary error: %v", err)
	}
	if !strings.Contains(out, "No matches found.") {
		t.Errorf("output = %q, want No matches found.", out)
	}
}

func TestScrapeCmd_NewOnly(t *testing.T) {
	server := matchServer(t)
	url := server.URL + "/Matches/1491995/Live"
	dataDir := t.TempDir()

	out, _, err := run(t, "scrape", url, "--quiet", "--new-only", "--format", "json", "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("first scrape error: %v", err)
	}
	first := decodeResult(t, out)
	if first["new_events"] != float64(2) || first["event_count"] != float64(2) {
		t.Errorf("first scrape new_events/event_count = %v/%v, want 2/2", first["new_events"], first["event_count"])
	}

	out, _, err = run(t, "scrape", url, "--quiet", "--new-only", "--format", "json", "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("second scrape error: %v", err)
	}
	second := decodeResult(t, out)
	if second["new_events"] != float64(0) || second["event_count"] != float64(0) {
		t.Errorf("second scrape new_events/event_count = %v/%v, want 0/0", second["new_events"], second["event_count"])
	}
	if _, ok := second["changes"]; ok {
		t.Errorf("unchanged match should report no changes, got %v", second["changes"])
	}
}

func TestSummaryCmd_ICS(t *testing.T) {
	dataDir := t.TempDir()
	saveFixtureRecord(t, dataDir, 1491995, "2021-02-27T21:00:00", "Sevilla")
	icsPath := filepath.Join(t.TempDir(), "fixtures.ics")

	out, _, err := run(t, "summary", "--data-dir", dataDir, "--ics", icsPath)
	if err != nil {
		t.Fatalf("summary error: %v", err)
	}
	data, err := os.ReadFile(icsPath)
	if err != nil {
		t.Fatalf("reading ics: %v", err)
	}
	if !strings.Contains(string(data), "SUMMARY:Sevilla vs Barcelona") {
		t.Errorf("ics missing match event:\n%s", data)
	}
	if !strings.Contains(out, "Saved: "+icsPath) {
		t.Errorf("output should list the calendar:\n%s", out)
	}
}

func TestScrapeCmd_CacheTTL(t *testing.T) {
	page, err := os.ReadFile(filepath.Join("testdata", "match_centre.html"))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(page)
	}))
	t.Cleanup(server.Close)
	dataDir := t.TempDir()

	for i := 0; i < 2; i++ {
		if _, stderr, err := run(t, "scrape", server.URL+"/Matches/1491995/Live", "--quiet", "--no-record", "--cache-ttl", "10m", "--data-dir", dataDir); err != nil {
			t.Fatalf("scrape pass %d error: %v\nstderr: %s", i+1, err, stderr)
		}
	}

	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1 with the page cache enabled", n)
	}
	if entries, _ := os.ReadDir(filepath.Join(dataDir, "cache")); len(entries) != 1 {
		t.Errorf("cache holds %d entries, want 1", len(entries))
	}
}
