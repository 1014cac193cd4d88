package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docsmith-labs/docsort-cli/internal/adapters/driven/ledger/sqlite/migrations"
	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.LedgerStore = (*Store)(nil)

// LedgerFileName is the ledger database file inside the workspace.
const LedgerFileName = "ledger.db"

// entryColumns is the select list shared by all entry queries.
const entryColumns = `content_hash, original_path, extension, size_bytes,
	convert_status, convert_artifact, convert_detail, convert_at,
	summarise_status, summarise_artifact, summarise_detail, summarise_at,
	classify_status, classify_artifact, classify_detail, classify_at,
	created_at`

// Store is the SQLite-backed stage ledger.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the ledger database inside the workspace
// directory and applies pending migrations.
func NewStore(workspace string) (*Store, error) {
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	dbPath := filepath.Join(workspace, LedgerFileName)

	// WAL mode for concurrent stage writers, busy timeout to serialise
	// contended writes instead of erroring.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// stagePrefix maps a stage to its column prefix. Assembling column names
// from anything but this fixed set would open the door to injection, so
// unknown stages are rejected.
func stagePrefix(stage domain.Stage) (string, error) {
	switch stage {
	case domain.StageConvert, domain.StageSummarise, domain.StageClassify:
		return string(stage), nil
	default:
		return "", fmt.Errorf("%w: stage %q has no ledger columns", domain.ErrInvalidInput, stage)
	}
}

// RegisterEntry creates or refreshes the row for a canonical file.
// Existing stage statuses are preserved so re-runs stay resumable.
func (s *Store) RegisterEntry(ctx context.Context, rec domain.FileRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (content_hash, original_path, extension, size_bytes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			original_path = excluded.original_path,
			extension = excluded.extension,
			size_bytes = excluded.size_bytes
	`, rec.ContentHash, rec.Path, rec.Extension, rec.SizeBytes)
	if err != nil {
		return fmt.Errorf("registering entry: %w", err)
	}
	return nil
}

// RegisterDuplicate records a non-canonical path.
func (s *Store) RegisterDuplicate(ctx context.Context, ref domain.DuplicateRef) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO duplicates (path, content_hash)
		VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash
	`, ref.Path, ref.ContentHash)
	if err != nil {
		return fmt.Errorf("registering duplicate: %w", err)
	}
	return nil
}

// GetEntry retrieves one entry by content hash.
func (s *Store) GetEntry(ctx context.Context, contentHash string) (*domain.LedgerEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE content_hash = ?", contentHash)
	return scanEntryRow(row)
}

// GetStatus returns the latest state of one entry in one stage.
func (s *Store) GetStatus(ctx context.Context, contentHash string, stage domain.Stage) (*domain.StageState, error) {
	entry, err := s.GetEntry(ctx, contentHash)
	if err != nil {
		return nil, err
	}
	state := entry.State(stage)
	return &state, nil
}

// SetStatus records a stage outcome for one entry.
func (s *Store) SetStatus(ctx context.Context, contentHash string, stage domain.Stage,
	status domain.Status, artifactPath, detail string,
) error {
	prefix, err := stagePrefix(stage)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE entries SET
			%[1]s_status = ?,
			%[1]s_artifact = ?,
			%[1]s_detail = ?,
			%[1]s_at = ?
		WHERE content_hash = ?
	`, prefix)

	res, err := s.db.ExecContext(ctx, query,
		string(status), artifactPath, detail, time.Now().UTC(), contentHash)
	if err != nil {
		return fmt.Errorf("setting %s status: %w", stage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting %s status: %w", stage, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPending returns entries the given stage still has to process: the
// prerequisite stage succeeded and this stage has not succeeded yet.
func (s *Store) ListPending(ctx context.Context, stage domain.Stage) ([]domain.LedgerEntry, error) {
	prefix, err := stagePrefix(stage)
	if err != nil {
		return nil, err
	}

	var where string
	if prereq := stage.Prerequisite(); prereq != "" {
		prereqPrefix, err := stagePrefix(prereq)
		if err != nil {
			return nil, err
		}
		where = fmt.Sprintf("%s_status = 'success' AND %s_status != 'success'", prereqPrefix, prefix)
	} else {
		where = fmt.Sprintf("%s_status != 'success'", prefix)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE "+where+" ORDER BY size_bytes DESC, original_path")
	if err != nil {
		return nil, fmt.Errorf("querying pending entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByStatus returns entries with the given status in a stage.
func (s *Store) ListByStatus(ctx context.Context, stage domain.Stage, status domain.Status) ([]domain.LedgerEntry, error) {
	prefix, err := stagePrefix(stage)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE "+prefix+"_status = ? ORDER BY size_bytes DESC, original_path",
		string(status))
	if err != nil {
		return nil, fmt.Errorf("querying entries by status: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListEntries returns all canonical entries.
func (s *Store) ListEntries(ctx context.Context) ([]domain.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries ORDER BY original_path")
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListDuplicates returns all recorded duplicate references.
func (s *Store) ListDuplicates(ctx context.Context) ([]domain.DuplicateRef, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, content_hash FROM duplicates ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("querying duplicates: %w", err)
	}
	defer rows.Close()

	var refs []domain.DuplicateRef //nolint:prealloc // size unknown from query
	for rows.Next() {
		var ref domain.DuplicateRef
		if err := rows.Scan(&ref.Path, &ref.ContentHash); err != nil {
			return nil, fmt.Errorf("scanning duplicate: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicates: %w", err)
	}
	return refs, nil
}

// Counts returns entry counts per status for a stage.
func (s *Store) Counts(ctx context.Context, stage domain.Stage) (map[domain.Status]int, error) {
	prefix, err := stagePrefix(stage)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+prefix+"_status, COUNT(*) FROM entries GROUP BY "+prefix+"_status")
	if err != nil {
		return nil, fmt.Errorf("counting entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[domain.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

// SaveClassification stores or replaces a classification.
func (s *Store) SaveClassification(ctx context.Context, c domain.Classification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO classifications (content_hash, topic, usage, client, suggested_name, classified_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			topic = excluded.topic,
			usage = excluded.usage,
			client = excluded.client,
			suggested_name = excluded.suggested_name,
			classified_at = excluded.classified_at
	`, c.ContentHash, c.Topic, c.Usage, c.Client, c.SuggestedName, c.ClassifiedAt)
	if err != nil {
		return fmt.Errorf("saving classification: %w", err)
	}
	return nil
}

// GetClassification retrieves a classification by content hash.
func (s *Store) GetClassification(ctx context.Context, contentHash string) (*domain.Classification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT content_hash, topic, usage, client, suggested_name, classified_at
		FROM classifications WHERE content_hash = ?
	`, contentHash)

	var c domain.Classification
	var classifiedAt sql.NullTime
	if err := row.Scan(&c.ContentHash, &c.Topic, &c.Usage, &c.Client, &c.SuggestedName, &classifiedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning classification: %w", err)
	}
	if classifiedAt.Valid {
		c.ClassifiedAt = classifiedAt.Time
	}
	return &c, nil
}

// ListClassifications returns all stored classifications.
func (s *Store) ListClassifications(ctx context.Context) ([]domain.Classification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_hash, topic, usage, client, suggested_name, classified_at
		FROM classifications
	`)
	if err != nil {
		return nil, fmt.Errorf("querying classifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Classification //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Classification
		var classifiedAt sql.NullTime
		if err := rows.Scan(&c.ContentHash, &c.Topic, &c.Usage, &c.Client, &c.SuggestedName, &classifiedAt); err != nil {
			return nil, fmt.Errorf("scanning classification: %w", err)
		}
		if classifiedAt.Valid {
			c.ClassifiedAt = classifiedAt.Time
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating classifications: %w", err)
	}
	return out, nil
}

// RecordRun persists a stage run.
func (s *Store) RecordRun(ctx context.Context, run domain.StageRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, stage, started_at, finished_at, success_count, failed_count, skipped_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, string(run.Stage), run.StartedAt, run.FinishedAt, run.Success, run.Failed, run.Skipped)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// scanEntryRow scans a single entry row.
func scanEntryRow(row *sql.Row) (*domain.LedgerEntry, error) {
	entry, err := scanEntryFields(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return entry, err
}

// scanEntries scans all entry rows.
func scanEntries(rows *sql.Rows) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanEntryFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// scanEntryFields scans the shared entry column list.
func scanEntryFields(scan func(...any) error) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	var convertAt, summariseAt, classifyAt sql.NullTime
	var createdAt sql.NullTime
	var convertStatus, summariseStatus, classifyStatus string

	err := scan(
		&entry.ContentHash, &entry.OriginalPath, &entry.Extension, &entry.SizeBytes,
		&convertStatus, &entry.Convert.ArtifactPath, &entry.Convert.Detail, &convertAt,
		&summariseStatus, &entry.Summarise.ArtifactPath, &entry.Summarise.Detail, &summariseAt,
		&classifyStatus, &entry.Classify.ArtifactPath, &entry.Classify.Detail, &classifyAt,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning entry: %w", err)
	}

	entry.Convert.Status = domain.Status(convertStatus)
	entry.Summarise.Status = domain.Status(summariseStatus)
	entry.Classify.Status = domain.Status(classifyStatus)
	if convertAt.Valid {
		entry.Convert.UpdatedAt = convertAt.Time
	}
	if summariseAt.Valid {
		entry.Summarise.UpdatedAt = summariseAt.Time
	}
	if classifyAt.Valid {
		entry.Classify.UpdatedAt = classifyAt.Time
	}
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}
	return &entry, nil
}
