package journal

import (
	"context"
	"database/sql"
	"fmt"
)

type dialect struct {
	driver      string
	createTable string
	insertSQL   string
	recentSQL   string
	returningID bool // the driver has no LastInsertId; the insert returns the id
	singleConn  bool // every connection would see a different database
}

var dialects = map[string]dialect{
	"sqlite3": {
		driver: "sqlite3",
		createTable: `CREATE TABLE IF NOT EXISTS lox_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			origin TEXT NOT NULL,
			source TEXT NOT NULL,
			statements INTEGER NOT NULL,
			had_error BOOLEAN NOT NULL,
			had_runtime_error BOOLEAN NOT NULL,
			diagnostics TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL
		)`,
		insertSQL: `INSERT INTO lox_runs (origin, source, statements, had_error, had_runtime_error, diagnostics, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		recentSQL: `SELECT id, origin, source, statements, had_error, had_runtime_error, diagnostics, started_at, finished_at
			FROM lox_runs ORDER BY id DESC LIMIT ?`,
		singleConn: true,
	},
	"mysql": {
		driver: "mysql",
		createTable: `CREATE TABLE IF NOT EXISTS lox_runs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			origin VARCHAR(1024) NOT NULL,
			source LONGTEXT NOT NULL,
			statements INT NOT NULL,
			had_error BOOLEAN NOT NULL,
			had_runtime_error BOOLEAN NOT NULL,
			diagnostics LONGTEXT NOT NULL,
			started_at DATETIME(6) NOT NULL,
			finished_at DATETIME(6) NOT NULL
		)`,
		insertSQL: `INSERT INTO lox_runs (origin, source, statements, had_error, had_runtime_error, diagnostics, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		recentSQL: `SELECT id, origin, source, statements, had_error, had_runtime_error, diagnostics, started_at, finished_at
			FROM lox_runs ORDER BY id DESC LIMIT ?`,
	},
	"postgres": {
		driver: "postgres",
		createTable: `CREATE TABLE IF NOT EXISTS lox_runs (
			id BIGSERIAL PRIMARY KEY,
			origin TEXT NOT NULL,
			source TEXT NOT NULL,
			statements INTEGER NOT NULL,
			had_error BOOLEAN NOT NULL,
			had_runtime_error BOOLEAN NOT NULL,
			diagnostics TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		)`,
		insertSQL: `INSERT INTO lox_runs (origin, source, statements, had_error, had_runtime_error, diagnostics, started_at, finished_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		recentSQL: `SELECT id, origin, source, statements, had_error, had_runtime_error, diagnostics, started_at, finished_at
			FROM lox_runs ORDER BY id DESC LIMIT $1`,
		returningID: true,
	},
}

func (d dialect) insert(ctx context.Context, db *sql.DB, e Entry) error {
	args := []any{e.Origin, e.Source, e.Statements, e.HadError, e.HadRuntimeError,
		e.Diagnostics, e.StartedAt.UTC(), e.FinishedAt.UTC()}

	if d.returningID {
		var id int64
		if err := db.QueryRowContext(ctx, d.insertSQL, args...).Scan(&id); err != nil {
			return fmt.Errorf("insert journal entry: %w", err)
		}
		return nil
	}

	if _, err := db.ExecContext(ctx, d.insertSQL, args...); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func (d dialect) recent(ctx context.Context, db *sql.DB, limit int) ([]Entry, error) {
	rows, err := db.QueryContext(ctx, d.recentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Origin, &e.Source, &e.Statements, &e.HadError,
			&e.HadRuntimeError, &e.Diagnostics, &e.StartedAt, &e.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
