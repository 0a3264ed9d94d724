package registry

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteConfig holds emulated registry configuration.
type SQLiteConfig struct {
	Path string

	// ReadOnlyHives reject writes with ErrAccessDenied, like HKLM for a
	// non-elevated process.
	ReadOnlyHives []Hive

	// DeniedHives reject every operation with ErrAccessDenied.
	DeniedHives []Hive

	ConnMaxLifetime time.Duration
}

// SQLiteBackend implements Backend on top of SQLite.
type SQLiteBackend struct {
	db       *sql.DB
	cfg      SQLiteConfig
	readOnly map[Hive]bool
	denied   map[Hive]bool
}

// NewSQLiteBackend creates a backend instance. Call Init and Migrate before use.
func NewSQLiteBackend(cfg SQLiteConfig) (*SQLiteBackend, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	b := &SQLiteBackend{
		cfg:      cfg,
		readOnly: make(map[Hive]bool),
		denied:   make(map[Hive]bool),
	}
	for _, h := range cfg.ReadOnlyHives {
		b.readOnly[h] = true
	}
	for _, h := range cfg.DeniedHives {
		b.denied[h] = true
	}
	return b, nil
}

// OpenSQLiteBackend creates, initializes and migrates a backend.
func OpenSQLiteBackend(ctx context.Context, cfg SQLiteConfig) (*SQLiteBackend, error) {
	b, err := NewSQLiteBackend(cfg)
	if err != nil {
		return nil, err
	}
	if err := b.Init(ctx); err != nil {
		return nil, err
	}
	if err := b.Migrate(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

// Init opens the database connection.
func (b *SQLiteBackend) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", b.cfg.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	if b.cfg.Path == MemoryPath {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
	}
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(b.cfg.ConnMaxLifetime)

	b.db = db
	if err := b.HealthCheck(ctx); err != nil {
		_ = db.Close()
		b.db = nil
		return fmt.Errorf("failed to ping database: %w", classifySQLiteError(err))
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		b.db = nil
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if b.cfg.Path != MemoryPath {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			_ = db.Close()
			b.db = nil
			return fmt.Errorf("failed to enable WAL: %w", classifySQLiteError(err))
		}
	}

	return nil
}

// Migrate applies the embedded schema migrations.
func (b *SQLiteBackend) Migrate(_ context.Context) error {
	if b.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(b.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", classifySQLiteError(err))
	}

	return nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// HealthCheck verifies the database connection is healthy.
func (b *SQLiteBackend) HealthCheck(ctx context.Context) error {
	if b.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return b.db.PingContext(ctx)
}

// CreateKey creates path and any missing ancestors. Existing keys are left alone.
func (b *SQLiteBackend) CreateKey(ctx context.Context, hive Hive, path string) error {
	if err := b.checkWrite(hive); err != nil {
		return err
	}
	path = joinPath(path)
	if path == "" {
		return nil
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classifySQLiteError(err))
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO registry_keys (hive, path, parent, name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (hive, path) DO NOTHING
	`
	segments := strings.Split(path, `\`)
	for i := range segments {
		current := strings.Join(segments[:i+1], `\`)
		parent, name := splitPath(current)
		if _, err := tx.ExecContext(ctx, query, string(hive), current, parent, name); err != nil {
			return fmt.Errorf("failed to create key %s: %w", current, classifySQLiteError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit key creation: %w", classifySQLiteError(err))
	}
	return nil
}

// KeyExists reports whether path exists. The hive root always exists.
func (b *SQLiteBackend) KeyExists(ctx context.Context, hive Hive, path string) (bool, error) {
	if err := b.checkRead(hive); err != nil {
		return false, err
	}
	path = joinPath(path)
	if path == "" {
		return true, nil
	}

	var count int
	query := `SELECT COUNT(*) FROM registry_keys WHERE hive = ? AND path = ?`
	if err := b.db.QueryRowContext(ctx, query, string(hive), path).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up key: %w", classifySQLiteError(err))
	}
	return count > 0, nil
}

// ListSubkeys returns the immediate children of path sorted by name.
func (b *SQLiteBackend) ListSubkeys(ctx context.Context, hive Hive, path string) ([]string, error) {
	if err := b.requireKey(ctx, hive, path); err != nil {
		return nil, err
	}

	query := `
		SELECT name
		FROM registry_keys
		WHERE hive = ? AND parent = ?
		ORDER BY name COLLATE NOCASE
	`
	rows, err := b.db.QueryContext(ctx, query, string(hive), joinPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to list subkeys: %w", classifySQLiteError(err))
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan subkey: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subkeys: %w", err)
	}
	return names, nil
}

// ListValues returns every value under path sorted by name.
func (b *SQLiteBackend) ListValues(ctx context.Context, hive Hive, path string) ([]Value, error) {
	if err := b.requireKey(ctx, hive, path); err != nil {
		return nil, err
	}

	query := `
		SELECT name, kind, int_value, data
		FROM registry_values
		WHERE hive = ? AND path = ?
		ORDER BY name COLLATE NOCASE
	`
	rows, err := b.db.QueryContext(ctx, query, string(hive), joinPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to list values: %w", classifySQLiteError(err))
	}
	defer rows.Close()

	values := []Value{}
	for rows.Next() {
		var (
			name     string
			kind     int64
			intValue sql.NullInt64
			data     []byte
		)
		if err := rows.Scan(&name, &kind, &intValue, &data); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, decodeRow(name, Kind(kind), intValue, data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating values: %w", err)
	}
	return values, nil
}

// GetValue retrieves one value.
func (b *SQLiteBackend) GetValue(ctx context.Context, hive Hive, path, name string) (Value, error) {
	if err := b.requireKey(ctx, hive, path); err != nil {
		return Value{}, err
	}

	query := `
		SELECT name, kind, int_value, data
		FROM registry_values
		WHERE hive = ? AND path = ? AND name = ?
	`
	var (
		stored   string
		kind     int64
		intValue sql.NullInt64
		data     []byte
	)
	err := b.db.QueryRowContext(ctx, query, string(hive), joinPath(path), name).Scan(&stored, &kind, &intValue, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Value{}, fmt.Errorf("%w: %s", ErrValueNotFound, name)
	}
	if err != nil {
		return Value{}, fmt.Errorf("failed to get value: %w", classifySQLiteError(err))
	}
	return decodeRow(stored, Kind(kind), intValue, data), nil
}

// SetValue creates or replaces a value under an existing key.
func (b *SQLiteBackend) SetValue(ctx context.Context, hive Hive, path string, v Value) error {
	if err := b.checkWrite(hive); err != nil {
		return err
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if err := b.requireKey(ctx, hive, path); err != nil {
		return err
	}

	query := `
		INSERT INTO registry_values (hive, path, name, kind, int_value, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (hive, path, name) DO UPDATE SET
			kind = excluded.kind,
			int_value = excluded.int_value,
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	intValue, data := encodeRow(v)
	_, err := b.db.ExecContext(ctx, query,
		string(hive),
		joinPath(path),
		v.Name,
		int64(v.Kind),
		intValue,
		data,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set value %s: %w", v.Name, classifySQLiteError(err))
	}
	return nil
}

func (b *SQLiteBackend) requireKey(ctx context.Context, hive Hive, path string) error {
	exists, err := b.KeyExists(ctx, hive, path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s\\%s", ErrKeyNotFound, hive, joinPath(path))
	}
	return nil
}

func (b *SQLiteBackend) checkRead(hive Hive) error {
	if b.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if b.denied[hive] {
		return fmt.Errorf("%w: %s", ErrAccessDenied, hive)
	}
	return nil
}

func (b *SQLiteBackend) checkWrite(hive Hive) error {
	if err := b.checkRead(hive); err != nil {
		return err
	}
	if b.readOnly[hive] {
		return fmt.Errorf("%w: %s is read-only", ErrAccessDenied, hive)
	}
	return nil
}

func encodeRow(v Value) (sql.NullInt64, []byte) {
	switch v.Kind {
	case KindDWord, KindQWord:
		return sql.NullInt64{Int64: int64(v.Integer), Valid: true}, nil
	case KindString, KindExpandString:
		return sql.NullInt64{}, []byte(v.String)
	case KindMultiString:
		return sql.NullInt64{}, []byte(strings.Join(v.Strings, "\x00"))
	default:
		return sql.NullInt64{}, append([]byte{}, v.Binary...)
	}
}

func decodeRow(name string, kind Kind, intValue sql.NullInt64, data []byte) Value {
	v := Value{Name: name, Kind: kind}
	switch kind {
	case KindDWord, KindQWord:
		v.Integer = uint64(intValue.Int64)
	case KindString, KindExpandString:
		v.String = string(data)
	case KindMultiString:
		v.Strings = []string{}
		if len(data) > 0 {
			v.Strings = strings.Split(string(data), "\x00")
		}
	default:
		v.Binary = data
	}
	return v
}

// classifySQLiteError maps permission failures on the database file to ErrAccessDenied.
func classifySQLiteError(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
			return fmt.Errorf("%w: %w", ErrAccessDenied, err)
		}
	}
	return err
}
