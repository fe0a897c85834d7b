package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"infragraph/internal/domain"
	"infragraph/internal/repository"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Repository implements repository.Repository using SQLite
type Repository struct {
	db   *sql.DB
	path string
}

// New opens an existing SQLite store
func New(dbPath string) (*Repository, error) {
	if dbPath != memoryPath {
		if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", repository.ErrStoreNotFound, dbPath)
		}
	}
	return open(dbPath)
}

// Create opens a SQLite store, creating the database file if needed
func Create(dbPath string) (*Repository, error) {
	return open(dbPath)
}

func open(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != memoryPath {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Runs are serialized; a single connection also keeps :memory: stable
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, path: dbPath}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT,
		type TEXT,
		body JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS relationships (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT,
		type TEXT,
		source_id TEXT,
		target_id TEXT,
		body JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS extras (
		key TEXT PRIMARY KEY,
		value JSON NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_id ON documents(id);
	CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(type);
	CREATE INDEX IF NOT EXISTS idx_relationships_id ON relationships(id);
	CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Location returns the database path
func (r *Repository) Location() string {
	return r.path
}

// Load reads the complete store in insertion order
func (r *Repository) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	docs, err := r.loadBodies(ctx, `SELECT body FROM documents ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	for _, body := range docs {
		snap.Documents = append(snap.Documents, domain.DocumentFromFields(body))
	}

	rels, err := r.loadBodies(ctx, `SELECT body FROM relationships ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationships: %w", err)
	}
	for _, body := range rels {
		snap.Relationships = append(snap.Relationships, domain.RawRelationship(body))
	}

	if snap.Metadata, err = r.loadKeyValues(ctx, `SELECT key, value FROM metadata`); err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	if snap.Extra, err = r.loadKeyValues(ctx, `SELECT key, value FROM extras`); err != nil {
		return nil, fmt.Errorf("failed to load extras: %w", err)
	}

	return snap, nil
}

func (r *Repository) loadBodies(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bodies []map[string]any
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		m, err := unmarshalObject(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", repository.ErrMalformedStore, err)
		}
		bodies = append(bodies, m)
	}
	return bodies, rows.Err()
}

func (r *Repository) loadKeyValues(ctx context.Context, query string) (map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		v, err := unmarshalValue(value)
		if err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", repository.ErrMalformedStore, key, err)
		}
		out[key] = v
	}
	return out, rows.Err()
}

// Save replaces the store contents inside one transaction
func (r *Repository) Save(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"documents", "relationships", "metadata", "extras"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	docStmt, err := tx.PrepareContext(ctx, `INSERT INTO documents (id, type, body) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare document statement: %w", err)
	}
	defer docStmt.Close()

	for i, doc := range snap.Documents {
		body, err := marshalJSON(doc.Fields())
		if err != nil {
			return fmt.Errorf("failed to marshal document %d: %w", i, err)
		}
		if _, err := docStmt.ExecContext(ctx, stringToNull(doc.ID), stringToNull(string(doc.Type)), body); err != nil {
			return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
		}
	}

	relStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relationships (id, type, source_id, target_id, body) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare relationship statement: %w", err)
	}
	defer relStmt.Close()

	for i, rel := range snap.Relationships {
		body, err := marshalJSON(map[string]any(rel))
		if err != nil {
			return fmt.Errorf("failed to marshal relationship %d: %w", i, err)
		}
		if _, err := relStmt.ExecContext(ctx, relationshipInsertArgs(rel, body)...); err != nil {
			return fmt.Errorf("failed to insert relationship %s: %w", rel.Label(i), err)
		}
	}

	if err := saveKeyValues(ctx, tx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	`, snap.Metadata); err != nil {
		return fmt.Errorf("failed to store metadata: %w", err)
	}
	if err := saveKeyValues(ctx, tx, `INSERT INTO extras (key, value) VALUES (?, ?)`, snap.Extra); err != nil {
		return fmt.Errorf("failed to store extras: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func saveKeyValues(ctx context.Context, tx *sql.Tx, query string, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range values {
		data, err := marshalJSON(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		if _, err := stmt.ExecContext(ctx, key, data); err != nil {
			return fmt.Errorf("insert %s: %w", key, err)
		}
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
