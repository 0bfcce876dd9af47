package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/logging"
	"github.com/NathanEdg/pulse/internal/task"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists a document in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *logging.Logger
	mu     sync.Mutex
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, logger *logging.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_fk=1")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection so :memory: databases are shared.
	db.SetMaxOpenConns(1)

	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &SQLiteStore{db: db, logger: logger.WithComponent("sqlite")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			start_date TEXT,
			due_date TEXT,
			status TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT '',
			assignees TEXT NOT NULL DEFAULT '[]'
		);

		CREATE TABLE IF NOT EXISTS dependencies (
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (source_id, target_id),
			FOREIGN KEY (target_id) REFERENCES tasks(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS cycles (
			id TEXT PRIMARY KEY,
			number INTEGER NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_dependencies_target ON dependencies(target_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Import replaces the stored document.
func (s *SQLiteStore) Import(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM dependencies", "DELETE FROM tasks", "DELETE FROM cycles"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}

	for i, t := range doc.Tasks {
		assignees, _ := json.Marshal(t.AssigneeIDs)
		if _, err := tx.Exec(`
			INSERT INTO tasks (id, position, title, start_date, due_date, status, priority, assignees)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, i, t.Title, nullDate(t.StartDate), nullDate(t.DueDate), t.Status, t.Priority, string(assignees)); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	for _, t := range doc.Tasks {
		for pos, dep := range t.DependsOn {
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO dependencies (source_id, target_id, position) VALUES (?, ?, ?)
			`, dep, t.ID, pos); err != nil {
				return fmt.Errorf("insert dependency %s -> %s: %w", dep, t.ID, err)
			}
		}
	}
	for _, c := range doc.Cycles {
		if _, err := tx.Exec(`
			INSERT INTO cycles (id, number, start_date, end_date) VALUES (?, ?, ?, ?)
		`, c.ID, c.Number, c.StartDate.String(), c.EndDate.String()); err != nil {
			return fmt.Errorf("insert cycle %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	s.logger.Info("document imported", "tasks", len(doc.Tasks), "cycles", len(doc.Cycles))
	return nil
}

// Load reads the stored document in list order.
func (s *SQLiteStore) Load() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, title, start_date, due_date, status, priority, assignees
		FROM tasks ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	doc := &Document{Tasks: []task.Task{}}
	index := make(map[string]int)
	for rows.Next() {
		var t task.Task
		var start, due sql.NullString
		var assignees string
		if err := rows.Scan(&t.ID, &t.Title, &start, &due, &t.Status, &t.Priority, &assignees); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.StartDate = parseNullDate(start)
		t.DueDate = parseNullDate(due)
		json.Unmarshal([]byte(assignees), &t.AssigneeIDs)
		index[t.ID] = len(doc.Tasks)
		doc.Tasks = append(doc.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	deps, err := s.db.Query(`SELECT source_id, target_id FROM dependencies ORDER BY target_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer deps.Close()
	for deps.Next() {
		var src, tgt string
		if err := deps.Scan(&src, &tgt); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		if i, ok := index[tgt]; ok {
			doc.Tasks[i].DependsOn = append(doc.Tasks[i].DependsOn, src)
		}
	}
	if err := deps.Err(); err != nil {
		return nil, err
	}

	cycles, err := s.db.Query(`SELECT id, number, start_date, end_date FROM cycles ORDER BY number, id`)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer cycles.Close()
	for cycles.Next() {
		var c task.Cycle
		var start, end string
		if err := cycles.Scan(&c.ID, &c.Number, &start, &end); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		if c.StartDate, err = calendar.Parse(start); err != nil {
			return nil, fmt.Errorf("cycle %s: %w", c.ID, err)
		}
		if c.EndDate, err = calendar.Parse(end); err != nil {
			return nil, fmt.Errorf("cycle %s: %w", c.ID, err)
		}
		doc.Cycles = append(doc.Cycles, c)
	}
	return doc, cycles.Err()
}

// TaskMoved records new dates for a task.
func (s *SQLiteStore) TaskMoved(t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE tasks SET start_date = ?, due_date = ? WHERE id = ?`,
		nullDate(t.StartDate), nullDate(t.DueDate), t.ID)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", errors.ErrTaskNotFound, t.ID)
	}
	return nil
}

// DependencyAdded records targetID depending on sourceID.
func (s *SQLiteStore) DependencyAdded(sourceID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO dependencies (source_id, target_id, position)
		SELECT ?, ?, COALESCE(MAX(position) + 1, 0) FROM dependencies WHERE target_id = ?
	`, sourceID, targetID, targetID)
	if err != nil {
		return errors.NewDependencyError("add", sourceID, targetID, err)
	}
	return nil
}

// DependencyRemoved drops the edge sourceID -> targetID.
func (s *SQLiteStore) DependencyRemoved(sourceID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM dependencies WHERE source_id = ? AND target_id = ?`, sourceID, targetID); err != nil {
		return errors.NewDependencyError("remove", sourceID, targetID, err)
	}
	return nil
}

// Notice logs advisory errors.
func (s *SQLiteStore) Notice(err error) {
	s.logger.Info("notice", "error", err)
}

func nullDate(d *calendar.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(s sql.NullString) *calendar.Date {
	if !s.Valid {
		return nil
	}
	d, err := calendar.Parse(s.String)
	if err != nil {
		return nil
	}
	return &d
}
