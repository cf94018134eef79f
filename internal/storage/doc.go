// Package storage persists extracted matches and exports their tables.
//
// Records are saved as sorted-key JSON under <data-dir>/records/<matchId>.json
// and can be re-loaded for offline transformation. Tables are exported per
// match under <data-dir>/<matchId>/ as CSV, JSON or Parquet, and into a shared
// SQLite database at <data-dir>/matchcentre.db. Exported files can be copied to
// S3 with an Uploader. The default data directory is ~/.local/share/matchcentre/.
package storage
