package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pfrederiksen/matchcentre/internal/match"
)

// Format is a table export format
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
	FormatSQLite  Format = "sqlite"
)

// DatabaseFile is the name of the shared SQLite database in the data directory.
const DatabaseFile = "matchcentre.db"

// ParseFormats validates a list of format names. Duplicates are dropped.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool)
	var formats []Format
	for _, name := range names {
		f := Format(strings.ToLower(strings.TrimSpace(name)))
		switch f {
		case FormatCSV, FormatJSON, FormatParquet, FormatSQLite:
		default:
			return nil, fmt.Errorf("unknown format: %s", name)
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// Export writes the summary and event tables of one match in every requested
// format and returns the written paths. Files go to MatchDir; SQLite rows go to
// the shared database.
func (s *Storage) Export(ctx context.Context, summary *match.SummaryTable, events []match.EventRow, formats []Format) ([]string, error) {
	if summary.Len() == 0 {
		return nil, fmt.Errorf("exporting tables: empty summary")
	}
	matchID := summary.Rows()[0].MatchID
	dir := s.MatchDir(matchID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating match directory: %w", err)
	}

	var written []string
	for _, f := range formats {
		switch f {
		case FormatCSV:
			paths, err := writePair(dir, "csv",
				func(w io.Writer) error { return WriteCSV(w, summary.Table()) },
				func(w io.Writer) error { return WriteCSV(w, match.EventTable(events)) })
			if err != nil {
				return written, err
			}
			written = append(written, paths...)
		case FormatJSON:
			paths, err := writePair(dir, "json",
				func(w io.Writer) error { return WriteJSON(w, summary.Rows()) },
				func(w io.Writer) error { return WriteJSON(w, events) })
			if err != nil {
				return written, err
			}
			written = append(written, paths...)
		case FormatParquet:
			paths, err := writePair(dir, "parquet",
				func(w io.Writer) error { return WriteParquet(w, SummaryParquetRows(summary)) },
				func(w io.Writer) error { return WriteParquet(w, EventParquetRows(events)) })
			if err != nil {
				return written, err
			}
			written = append(written, paths...)
		case FormatSQLite:
			path := filepath.Join(s.dataDir, DatabaseFile)
			if err := WriteSQLite(ctx, path, summary, events); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}

// ExportSummary writes a multi-match summary table as summary.<ext> in the
// data directory. SQLite is rejected: its rows are written together with the
// events of each match by Export.
func (s *Storage) ExportSummary(summary *match.SummaryTable, formats []Format) ([]string, error) {
	var written []string
	for _, f := range formats {
		path := filepath.Join(s.dataDir, "summary."+string(f))
		var write func(io.Writer) error
		switch f {
		case FormatCSV:
			write = func(w io.Writer) error { return WriteCSV(w, summary.Table()) }
		case FormatJSON:
			write = func(w io.Writer) error { return WriteJSON(w, summary.Rows()) }
		case FormatParquet:
			write = func(w io.Writer) error { return WriteParquet(w, SummaryParquetRows(summary)) }
		default:
			return written, fmt.Errorf("format %s is not supported for a summary export", f)
		}
		if err := writeFile(path, write); err != nil {
			return written, fmt.Errorf("writing %s: %w", filepath.Base(path), err)
		}
		written = append(written, path)
	}
	return written, nil
}

// writePair writes summary.<ext> and events.<ext> into dir.
func writePair(dir, ext string, summary, events func(io.Writer) error) ([]string, error) {
	var paths []string
	for _, file := range []struct {
		name  string
		write func(io.Writer) error
	}{
		{"summary." + ext, summary},
		{"events." + ext, events},
	} {
		path := filepath.Join(dir, file.name)
		if err := writeFile(path, file.write); err != nil {
			return paths, fmt.Errorf("writing %s: %w", file.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes a table with a header row. Unset cells are empty, booleans
// are True/False and list cells are JSON.
func WriteCSV(w io.Writer, t match.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}

	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, cell := range row {
			text, err := csvCell(cell)
			if err != nil {
				return fmt.Errorf("column %s: %w", t.Header[i], err)
			}
			record[i] = text
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvCell(cell any) (string, error) {
	switch v := cell.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	data, err := json.Marshal(cell)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
