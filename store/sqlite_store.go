package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/josephgoksu/chorepay/models"
	_ "modernc.org/sqlite"
)

const defaultSQLiteFile = "tasks.db"

// SQLiteTaskStore implements TaskStore on a SQLite database.
// Rows keep their document order in a position column; the document
// version lives in the meta table and is bumped with a compare-and-set.
type SQLiteTaskStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteTaskStore creates an uninitialized SQLite-backed store.
func NewSQLiteTaskStore() *SQLiteTaskStore {
	return &SQLiteTaskStore{}
}

// Initialize opens the database named by the 'dataFile' key.
// ":memory:" opens a private in-memory database.
func (s *SQLiteTaskStore) Initialize(config map[string]string) error {
	s.dbPath = config[dataFileKey]
	if s.dbPath == "" {
		s.dbPath = defaultSQLiteFile
	}

	if s.dbPath != ":memory:" {
		if dir := filepath.Dir(s.dbPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database, and writers serialize anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return fmt.Errorf("set busy timeout: %w", err)
	}

	s.db = db
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		s.db = nil
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *SQLiteTaskStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		size TEXT NOT NULL,
		value REAL NOT NULL DEFAULT 0,
		month TEXT NOT NULL,
		recurring TEXT NOT NULL DEFAULT 'none',
		due_date TEXT,
		completed INTEGER NOT NULL DEFAULT 0,
		completed_date TEXT,
		picture TEXT,
		user_name TEXT,
		generated INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_month ON tasks(month);
	CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO meta (key, value) VALUES ('version', '0');
	INSERT OR IGNORE INTO meta (key, value) VALUES ('updated_at', '');
	`
	_, err := s.db.Exec(schema)
	return err
}

// taskRowScanner abstracts row scanning for reuse between QueryRow and rows.Next()
type taskRowScanner interface {
	Scan(dest ...any) error
}

const taskColumns = `id, name, size, value, month, recurring, due_date, completed, completed_date, picture, user_name, generated`

func scanTaskRow(row taskRowScanner) (models.Task, error) {
	var t models.Task
	var dueDate, completedDate, picture, userName sql.NullString
	var completed, generated int

	err := row.Scan(
		&t.ID, &t.Name, &t.Size, &t.Value, &t.Month, &t.Recurring,
		&dueDate, &completed, &completedDate, &picture, &userName, &generated,
	)
	if err != nil {
		return t, err
	}

	t.DueDate = dueDate.String
	t.UserName = userName.String
	t.Completed = completed != 0
	t.Generated = generated != 0
	if completedDate.Valid && completedDate.String != "" {
		if ts, err := time.Parse(time.RFC3339Nano, completedDate.String); err == nil {
			t.CompletedDate = &ts
		}
	}
	if picture.Valid {
		p := picture.String
		t.Picture = &p
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Load returns the current document.
func (s *SQLiteTaskStore) Load() (models.Snapshot, error) {
	if s.db == nil {
		return models.Snapshot{}, errors.New("sqlite store not initialized")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("begin read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snap, err := loadSnapshot(tx)
	if err != nil {
		return models.Snapshot{}, err
	}
	return snap, tx.Commit()
}

func loadSnapshot(tx *sql.Tx) (models.Snapshot, error) {
	snap := models.Snapshot{Tasks: []models.Task{}}

	version, err := readVersion(tx)
	if err != nil {
		return snap, err
	}
	snap.Version = version

	var updatedAt string
	if err := tx.QueryRow(`SELECT value FROM meta WHERE key = 'updated_at'`).Scan(&updatedAt); err != nil && err != sql.ErrNoRows {
		return snap, fmt.Errorf("read updated_at: %w", err)
	}
	if updatedAt != "" {
		snap.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	}

	rows, err := tx.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return snap, fmt.Errorf("scan task: %w", err)
		}
		snap.Tasks = append(snap.Tasks, t)
	}
	return snap, rows.Err()
}

func readVersion(tx *sql.Tx) (int64, error) {
	var raw string
	if err := tx.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&raw); err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version %q: %w", raw, err)
	}
	return v, nil
}

// Save replaces every task row if snap.Version is still the stored version.
func (s *SQLiteTaskStore) Save(snap models.Snapshot) (models.Snapshot, error) {
	if s.db == nil {
		return models.Snapshot{}, errors.New("sqlite store not initialized")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE meta SET value = ? WHERE key = 'version' AND value = ?`,
		strconv.FormatInt(snap.Version+1, 10), strconv.FormatInt(snap.Version, 10))
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("bump version: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return models.Snapshot{}, fmt.Errorf("save at version %d: %w", snap.Version, ErrConflict)
	}

	next := models.Snapshot{
		Version:   snap.Version + 1,
		UpdatedAt: time.Now().UTC(),
		Tasks:     snap.Tasks,
	}
	if next.Tasks == nil {
		next.Tasks = []models.Task{}
	}
	if err := writeTasks(tx, next); err != nil {
		return models.Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Snapshot{}, fmt.Errorf("commit save: %w", err)
	}
	return next, nil
}

// writeTasks upserts every task of snap, deletes rows that are gone and stamps updated_at.
func writeTasks(tx *sql.Tx, snap models.Snapshot) error {
	keep := make(map[string]struct{}, len(snap.Tasks))
	stmt, err := tx.Prepare(`
		INSERT INTO tasks (id, position, name, size, value, month, recurring, due_date, completed, completed_date, picture, user_name, generated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			position = excluded.position, name = excluded.name, size = excluded.size, value = excluded.value,
			month = excluded.month, recurring = excluded.recurring, due_date = excluded.due_date,
			completed = excluded.completed, completed_date = excluded.completed_date,
			picture = excluded.picture, user_name = excluded.user_name, generated = excluded.generated`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, t := range snap.Tasks {
		keep[t.ID] = struct{}{}
		var completedDate, picture sql.NullString
		if t.CompletedDate != nil {
			completedDate = nullString(t.CompletedDate.UTC().Format(time.RFC3339Nano))
		}
		if t.Picture != nil {
			picture = sql.NullString{String: *t.Picture, Valid: true}
		}
		if _, err := stmt.Exec(
			t.ID, i, t.Name, string(t.Size), t.Value, t.Month, string(t.Recurring),
			nullString(t.DueDate), boolInt(t.Completed), completedDate, picture,
			nullString(t.UserName), boolInt(t.Generated),
		); err != nil {
			return fmt.Errorf("upsert task %s: %w", t.ID, err)
		}
	}

	rows, err := tx.Query(`SELECT id FROM tasks`)
	if err != nil {
		return fmt.Errorf("list task ids: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan task id: %w", err)
		}
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	_ = rows.Close()
	for _, id := range stale {
		if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete task %s: %w", id, err)
		}
	}

	if _, err := tx.Exec(`UPDATE meta SET value = ? WHERE key = 'updated_at'`,
		snap.UpdatedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("stamp updated_at: %w", err)
	}
	return nil
}

// Backup writes a consistent copy of the database to destinationPath.
func (s *SQLiteTaskStore) Backup(destinationPath string) error {
	if s.db == nil {
		return errors.New("sqlite store not initialized")
	}
	if dir := filepath.Dir(destinationPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create backup directory %s: %w", dir, err)
		}
	}
	// VACUUM INTO refuses to overwrite.
	if err := os.Remove(destinationPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old backup %s: %w", destinationPath, err)
	}
	if _, err := s.db.Exec(`VACUUM INTO ?`, destinationPath); err != nil {
		return fmt.Errorf("backup to %s: %w", destinationPath, err)
	}
	return nil
}

// Restore replaces all rows with the tasks of the database at sourcePath.
func (s *SQLiteTaskStore) Restore(sourcePath string) error {
	if s.db == nil {
		return errors.New("sqlite store not initialized")
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("failed to read source backup file %s: %w", sourcePath, err)
	}

	src := NewSQLiteTaskStore()
	if err := src.Initialize(map[string]string{dataFileKey: sourcePath}); err != nil {
		return fmt.Errorf("open backup %s: %w", sourcePath, err)
	}
	defer func() { _ = src.Close() }()

	restored, err := src.Load()
	if err != nil {
		return fmt.Errorf("read backup %s: %w", sourcePath, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := readVersion(tx)
	if err != nil {
		return err
	}
	if restored.Version > current {
		current = restored.Version
	}
	restored.Version = current + 1
	restored.UpdatedAt = time.Now().UTC()

	if _, err := tx.Exec(`UPDATE meta SET value = ? WHERE key = 'version'`,
		strconv.FormatInt(restored.Version, 10)); err != nil {
		return fmt.Errorf("bump version: %w", err)
	}
	if err := writeTasks(tx, restored); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteTaskStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
