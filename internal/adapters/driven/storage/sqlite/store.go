// Package sqlite provides durable storage for knowledge documents and
// indexing actions backed by a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/forlandeivan/search-engine-sub011/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to the
// document and action store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.kbase/data/knowledge.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kbase", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "knowledge.db")

	// WAL mode so the watcher and an interactive command can share the file
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

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

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ActionStore returns an ActionStore interface backed by this store.
func (s *Store) ActionStore() driven.ActionStore {
	return &actionStore{store: s}
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
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
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

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.KnowledgeDocument) error {
	vectorizationJSON, err := json.Marshal(doc.Vectorization)
	if err != nil {
		return fmt.Errorf("marshalling vectorization: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, base_id, title, markup, source_path, vectorization, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			base_id = excluded.base_id,
			title = excluded.title,
			markup = excluded.markup,
			source_path = excluded.source_path,
			vectorization = excluded.vectorization,
			updated_at = excluded.updated_at
	`, doc.ID, doc.BaseID, doc.Title, doc.Markup,
		nullString(doc.SourcePath), string(vectorizationJSON), formatTime(doc.UpdatedAt))

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.KnowledgeDocument, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, base_id, title, markup, source_path, vectorization, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return doc, err
}

// ListDocumentsByBase returns the base's documents ordered by title.
func (s *documentStore) ListDocumentsByBase(ctx context.Context, baseID string) ([]*domain.KnowledgeDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, base_id, title, markup, source_path, vectorization, updated_at
		FROM documents WHERE base_id = ?
		ORDER BY title, id
	`, baseID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.KnowledgeDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// SetVectorization replaces the document's vectorization record.
func (s *documentStore) SetVectorization(ctx context.Context, documentID string, v *domain.KnowledgeDocumentVectorization) error {
	vectorizationJSON, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling vectorization: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET vectorization = ? WHERE id = ?
	`, string(vectorizationJSON), documentID)
	if err != nil {
		return fmt.Errorf("updating vectorization: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking vectorization update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
	}
	return nil
}

// DeleteDocument removes a document. Missing IDs are ignored.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ==================== Action Store ====================

// actionStore implements driven.ActionStore.
type actionStore struct {
	store *Store
}

var _ driven.ActionStore = (*actionStore)(nil)

// CreateAction stores a new action.
func (s *actionStore) CreateAction(ctx context.Context, action *domain.IndexingAction) error {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM indexing_actions WHERE id = ?", action.ID).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking action existence: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: action %s", domain.ErrAlreadyExists, action.ID)
	}

	progressJSON, err := json.Marshal(action.Progress)
	if err != nil {
		return fmt.Errorf("marshalling progress: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO indexing_actions (id, base_id, status, stage, progress, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, action.ID, action.BaseID, string(action.Status), string(action.Stage),
		string(progressJSON), formatTime(action.CreatedAt), formatTime(action.UpdatedAt))

	if err != nil {
		return fmt.Errorf("creating action: %w", err)
	}
	return nil
}

// GetAction retrieves an action by ID.
func (s *actionStore) GetAction(ctx context.Context, id string) (*domain.IndexingAction, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, base_id, status, stage, progress, created_at, updated_at
		FROM indexing_actions WHERE id = ?
	`, id)

	action, err := scanAction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: action %s", domain.ErrNotFound, id)
	}
	return action, err
}

// ListActionsByBase returns the base's actions, newest first.
func (s *actionStore) ListActionsByBase(ctx context.Context, baseID string) ([]*domain.IndexingAction, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, base_id, status, stage, progress, created_at, updated_at
		FROM indexing_actions WHERE base_id = ?
	`, baseID)
	if err != nil {
		return nil, fmt.Errorf("querying actions: %w", err)
	}
	defer rows.Close()

	var actions []*domain.IndexingAction //nolint:prealloc // size unknown from query
	for rows.Next() {
		action, err := scanAction(rows.Scan)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actions: %w", err)
	}

	sort.Slice(actions, func(i, j int) bool {
		return actions[i].CreatedAt.After(actions[j].CreatedAt)
	})
	return actions, nil
}

// UpdateAction replaces the stored action.
func (s *actionStore) UpdateAction(ctx context.Context, action *domain.IndexingAction) error {
	progressJSON, err := json.Marshal(action.Progress)
	if err != nil {
		return fmt.Errorf("marshalling progress: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE indexing_actions SET
			base_id = ?,
			status = ?,
			stage = ?,
			progress = ?,
			updated_at = ?
		WHERE id = ?
	`, action.BaseID, string(action.Status), string(action.Stage),
		string(progressJSON), formatTime(action.UpdatedAt), action.ID)
	if err != nil {
		return fmt.Errorf("updating action: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking action update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: action %s", domain.ErrNotFound, action.ID)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanDocument scans a document row through the given scan function.
func scanDocument(scan func(dest ...any) error) (*domain.KnowledgeDocument, error) {
	var doc domain.KnowledgeDocument
	var sourcePath, vectorizationJSON, updatedAt sql.NullString

	if err := scan(&doc.ID, &doc.BaseID, &doc.Title, &doc.Markup,
		&sourcePath, &vectorizationJSON, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.SourcePath = sourcePath.String
	doc.UpdatedAt = parseNullableTime(updatedAt)

	if vectorizationJSON.Valid && vectorizationJSON.String != "" && vectorizationJSON.String != jsonNull {
		var v domain.KnowledgeDocumentVectorization
		if err := json.Unmarshal([]byte(vectorizationJSON.String), &v); err != nil {
			return nil, fmt.Errorf("unmarshalling vectorization: %w", err)
		}
		doc.Vectorization = &v
	}

	return &doc, nil
}

// scanAction scans an action row through the given scan function.
func scanAction(scan func(dest ...any) error) (*domain.IndexingAction, error) {
	var action domain.IndexingAction
	var status, stage, progressJSON string
	var createdAt, updatedAt sql.NullString

	if err := scan(&action.ID, &action.BaseID, &status, &stage,
		&progressJSON, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning action: %w", err)
	}

	action.Status = domain.ActionStatus(status)
	action.Stage = domain.ActionStage(stage)
	action.CreatedAt = parseNullableTime(createdAt)
	action.UpdatedAt = parseNullableTime(updatedAt)

	if progressJSON != "" && progressJSON != jsonNull {
		if err := json.Unmarshal([]byte(progressJSON), &action.Progress); err != nil {
			return nil, fmt.Errorf("unmarshalling progress: %w", err)
		}
	}

	return &action, nil
}

// formatTime formats a time as RFC3339Nano, empty for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseNullableTime parses a nullable RFC3339Nano string to time.Time.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
