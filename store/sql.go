package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS session_log (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    command TEXT,
    goals TEXT,
    return_format TEXT,
    warnings TEXT,
    model TEXT,
    provider TEXT,
    input TEXT,
    output TEXT,
    output_length INTEGER,
    recursion_wave INTEGER
)`,
	`CREATE INDEX IF NOT EXISTS idx_session_log_created ON session_log(created_at)`,
}

// SQLStore is the session log on a SQL database. SQLite and Postgres share
// the schema and queries; only placeholders differ.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

func newSQLStore(db *sql.DB, d dialect) (*SQLStore, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Append(ctx context.Context, e Entry) error {
	e = prepare(e)

	var wave sql.NullInt64
	if e.RecursionWave != nil {
		wave = sql.NullInt64{Int64: int64(*e.RecursionWave), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO session_log (id, created_at, command, goals, return_format, warnings, model, provider, input, output, output_length, recursion_wave)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.Timestamp, e.Command, e.Goals, e.ReturnFormat, e.Warnings, e.Model, e.Provider, e.Input, e.Output, e.OutputLength, wave,
	)
	if err != nil {
		return fmt.Errorf("append session entry: %w", err)
	}
	return nil
}

func (s *SQLStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, created_at, command, goals, return_format, warnings, model, provider, input, output, output_length, recursion_wave
FROM session_log ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query session log: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                                                           Entry
			createdAt                                                   time.Time
			command, goals, format, warnings, model, provider, in, out sql.NullString
			length, wave                                                sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &createdAt, &command, &goals, &format, &warnings, &model, &provider, &in, &out, &length, &wave); err != nil {
			return nil, err
		}
		e.Timestamp = createdAt.UTC()
		e.Command = command.String
		e.Goals = goals.String
		e.ReturnFormat = format.String
		e.Warnings = warnings.String
		e.Model = model.String
		e.Provider = provider.String
		e.Input = in.String
		e.Output = out.String
		e.OutputLength = int(length.Int64)
		if wave.Valid {
			w := int(wave.Int64)
			e.RecursionWave = &w
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
