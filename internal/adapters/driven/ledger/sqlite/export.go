package sqlite

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// csvHeader is the column order of the exported index.
var csvHeader = []string{
	"original_path", "extension", "size_bytes", "content_hash",
	"convert_status", "convert_artifact", "convert_detail",
	"summarise_status", "summarise_artifact",
	"classify_status",
	"topic", "usage", "client", "suggested_name",
}

// ExportCSV writes a flat snapshot of the ledger to path. The file is
// rewritten wholesale on every export so it always mirrors the database.
func (s *Store) ExportCSV(ctx context.Context, path string) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.original_path, e.extension, e.size_bytes, e.content_hash,
			e.convert_status, e.convert_artifact, e.convert_detail,
			e.summarise_status, e.summarise_artifact,
			e.classify_status,
			COALESCE(c.topic, ''), COALESCE(c.usage, ''), COALESCE(c.client, ''), COALESCE(c.suggested_name, '')
		FROM entries e
		LEFT JOIN classifications c ON c.content_hash = e.content_hash
		ORDER BY e.original_path
	`)
	if err != nil {
		return fmt.Errorf("querying ledger for export: %w", err)
	}
	defer rows.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing index header: %w", err)
	}

	for rows.Next() {
		var (
			originalPath, extension, contentHash              string
			sizeBytes                                         int64
			convertStatus, convertArtifact, convertDetail     string
			summariseStatus, summariseArtifact                string
			classifyStatus                                    string
			topic, usage, client, suggestedName               string
		)
		if err := rows.Scan(
			&originalPath, &extension, &sizeBytes, &contentHash,
			&convertStatus, &convertArtifact, &convertDetail,
			&summariseStatus, &summariseArtifact,
			&classifyStatus,
			&topic, &usage, &client, &suggestedName,
		); err != nil {
			return fmt.Errorf("scanning ledger row for export: %w", err)
		}

		record := []string{
			originalPath, extension, strconv.FormatInt(sizeBytes, 10), contentHash,
			convertStatus, convertArtifact, convertDetail,
			summariseStatus, summariseArtifact,
			classifyStatus,
			topic, usage, client, suggestedName,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing index row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating ledger rows for export: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing index file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing index file: %w", err)
	}
	return nil
}
