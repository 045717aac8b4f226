package props

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/aretw0/metro/pkg/core"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultSQLiteTable is the table created when none is configured.
const DefaultSQLiteTable = "metro_properties"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite is a PropertyStore kept in a table of (asset, name, value) rows, so a
// single database can hold the properties of many assets.
type SQLite struct {
	db    *sql.DB
	table string
	asset string
}

// SQLiteConfig holds SQLite store configuration.
type SQLiteConfig struct {
	// DB is the database connection.
	DB *sql.DB

	// TableName is the name of the properties table.
	TableName string

	// Asset scopes the rows of this store.
	Asset string
}

// OpenSQLite opens (or creates) the database at dsn with the sqlite3 driver.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

// NewSQLite creates a SQLite-backed store, creating its table if needed.
func NewSQLite(ctx context.Context, config SQLiteConfig) (*SQLite, error) {
	if config.TableName == "" {
		config.TableName = DefaultSQLiteTable
	}
	if !identifier.MatchString(config.TableName) {
		return nil, fmt.Errorf("invalid table name %q", config.TableName)
	}

	s := &SQLite{db: config.DB, table: config.TableName, asset: config.Asset}
	if err := s.createTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create properties table: %w", err)
	}
	return s, nil
}

func (s *SQLite) createTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			asset TEXT NOT NULL,
			name  TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (asset, name)
		)
	`, s.table)

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Load implements core.PropertyStore.
func (s *SQLite) Load(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT name, value FROM %s WHERE asset = ?`, s.table), s.asset)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	props := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		props[k] = v
	}
	return props, rows.Err()
}

// Save implements core.PropertyStore inside a single transaction.
func (s *SQLite) Save(ctx context.Context, namespace string, props map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.deleteNamespace(ctx, tx, namespace); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO %s (asset, name, value) VALUES (?, ?, ?)`, s.table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for k, v := range props {
		if _, err := stmt.ExecContext(ctx, s.asset, k, v); err != nil {
			return fmt.Errorf("failed to insert property %q: %w", k, err)
		}
	}
	return tx.Commit()
}

// Delete implements core.PropertyStore.
func (s *SQLite) Delete(ctx context.Context, namespace string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.deleteNamespace(ctx, tx, namespace); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) deleteNamespace(ctx context.Context, tx *sql.Tx, namespace string) error {
	prefix := namespace + "."
	query := fmt.Sprintf(`DELETE FROM %s WHERE asset = ? AND substr(name, 1, length(?)) = ?`, s.table)
	if _, err := tx.ExecContext(ctx, query, s.asset, prefix, prefix); err != nil {
		return fmt.Errorf("failed to clear namespace %q: %w", namespace, err)
	}
	return nil
}

var _ core.PropertyStore = (*SQLite)(nil)

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
