// Package journal keeps a SQLite log of every command run against a project.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ivlev/sniprr/internal/engine"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Entry is one journaled command.
type Entry struct {
	ID        string
	Project   string
	Line      string
	Command   string
	Status    string
	Affected  int
	Warnings  []string
	Error     string
	CreatedAt time.Time
}

type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path and brings its schema
// up to date.
func Open(path string) (*Journal, error) {
	if err := runMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate journal %s: %w", path, err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func runMigrations(path string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores the outcome of a command run against project.
func (j *Journal) Record(ctx context.Context, project, line string, res engine.Result, cmdErr error) error {
	var errText string
	if cmdErr != nil {
		errText = cmdErr.Error()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO commands (id, project, line, command, status, affected, warnings, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), project, line, res.Command, res.Status.String(), res.Affected,
		strings.Join(res.Warnings, "\n"), errText, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("journal %q: %w", line, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. An empty project matches
// every project.
func (j *Journal) Recent(ctx context.Context, project string, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, project, line, command, status, affected, warnings, error, created_at
		 FROM commands
		 WHERE ? = '' OR project = ?
		 ORDER BY seq DESC
		 LIMIT ?`, project, project, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var warnings string
		if err := rows.Scan(&e.ID, &e.Project, &e.Line, &e.Command, &e.Status, &e.Affected, &warnings, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		if warnings != "" {
			e.Warnings = strings.Split(warnings, "\n")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Scope binds the journal to one project.
func (j *Journal) Scope(project string) *Scoped {
	return &Scoped{j: j, project: project}
}

// Scoped records commands for a single project.
type Scoped struct {
	j       *Journal
	project string
}

func (s *Scoped) Record(ctx context.Context, line string, res engine.Result, err error) error {
	return s.j.Record(ctx, s.project, line, res, err)
}
