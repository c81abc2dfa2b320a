// internal/writer/sqlsink.go
package writer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/tamzrod/rover-logger/internal/poller"
	"github.com/tamzrod/rover-logger/internal/rover"
)

// createdColumn holds the poll time as unix seconds so that range deletes
// compare the same way on every driver.
const createdColumn = "created_unix"

// sqlSink stores one row per snapshot in a table.
// Driver names are the registered database/sql names: "sqlite" or "mysql".
type sqlSink struct {
	driver string
	dsn    string
	table  string
	now    func() time.Time

	db     *sql.DB
	insert string
}

func newSQLSink(driver, dsn, table string) *sqlSink {
	return &sqlSink{driver: driver, dsn: dsn, table: table, now: time.Now}
}

func (s *sqlSink) Init(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("sql: open %s: %w", s.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("sql: ping %s: %w", s.driver, err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL(s.table)); err != nil {
		db.Close()
		return fmt.Errorf("sql: create table %s: %w", s.table, err)
	}

	s.db = db
	s.insert = insertSQL(s.table)
	return nil
}

func (s *sqlSink) Append(ctx context.Context, res poller.PollResult) error {
	if s.db == nil {
		return errors.New("sql: not initialized")
	}

	fs := snapshotFields(res.Snapshot)
	args := make([]any, 0, len(fs)+1)
	args = append(args, res.At.Unix())
	for _, f := range fs {
		args = append(args, f.Value)
	}

	if _, err := s.db.ExecContext(ctx, s.insert, args...); err != nil {
		return fmt.Errorf("sql: insert: %w", err)
	}
	return nil
}

func (s *sqlSink) DeleteRecordsOlderThan(ctx context.Context, days int) error {
	if s.db == nil {
		return errors.New("sql: not initialized")
	}

	limit := cutoff(s.now(), days).Unix()
	q := fmt.Sprintf("DELETE FROM %s WHERE %s < ?", s.table, createdColumn)
	if _, err := s.db.ExecContext(ctx, q, limit); err != nil {
		return fmt.Errorf("sql: delete: %w", err)
	}
	return nil
}

func (s *sqlSink) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// ---- statements ----
// Table names are validated as plain identifiers by config.

func createTableSQL(table string) string {
	cols := []string{createdColumn + " BIGINT NOT NULL"}
	for _, f := range snapshotFields(rover.Snapshot{}) {
		cols = append(cols, f.Name+" "+columnType(f.Value))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", "))
}

func insertSQL(table string) string {
	names := append([]string{createdColumn}, fieldNames()...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), marks)
}

func columnType(v any) string {
	switch v.(type) {
	case float64:
		return "DOUBLE"
	case int64:
		return "BIGINT"
	case bool:
		return "BOOLEAN"
	}
	return "VARCHAR(255)"
}
