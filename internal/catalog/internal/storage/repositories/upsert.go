package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// UpsertSpec renders the one idempotent upsert statement all entity kinds
// share: insert by natural key, overwrite mutable columns on conflict,
// except columns marked preserve-if-empty, which keep the stored value
// when the incoming one is blank.
type UpsertSpec struct {
	Schema          string
	Table           string
	Columns         []string
	KeyColumns      []string
	PreserveIfEmpty map[string]bool
	NoUpdate        bool // ON CONFLICT DO NOTHING (pure link tables)
}

func (s UpsertSpec) SQL() string {
	placeholders := make([]string, len(s.Columns))
	for i := range s.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s.%s AS t (%s) VALUES (%s) ON CONFLICT (%s)",
		s.Schema, s.Table,
		strings.Join(s.Columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(s.KeyColumns, ", "))

	if s.NoUpdate {
		sb.WriteString(" DO NOTHING")
		return sb.String()
	}

	keys := make(map[string]bool, len(s.KeyColumns))
	for _, k := range s.KeyColumns {
		keys[k] = true
	}

	var assignments []string
	for _, col := range s.Columns {
		if keys[col] {
			continue
		}
		if s.PreserveIfEmpty[col] {
			assignments = append(assignments, fmt.Sprintf("%s = COALESCE(NULLIF(EXCLUDED.%s, ''), t.%s)", col, col, col))
		} else {
			assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	assignments = append(assignments, "updated_at = NOW()")

	sb.WriteString(" DO UPDATE SET ")
	sb.WriteString(strings.Join(assignments, ", "))
	return sb.String()
}

// ExecuteBatch runs one upsert batch as a single transaction. The batch
// commits whole or rolls back whole.
func ExecuteBatch(ctx context.Context, db *sql.DB, spec UpsertSpec, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, spec.SQL())
	if err != nil {
		return fmt.Errorf("prepare %s.%s upsert: %w", spec.Schema, spec.Table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("upsert into %s.%s: %w", spec.Schema, spec.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s.%s batch: %w", spec.Schema, spec.Table, err)
	}
	return nil
}
