package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func validIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// StoreError is a failure reported by the store, carrying the driver's machine-readable code when there is one.
type StoreError struct {
	Message string
	Code    string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (code %s)", e.Message, e.Code)
	}
	return e.Message
}

func (e *StoreError) Unwrap() error { return e.Err }

// RowStore performs generic filtered lookups against any table.
//
// Only equality filters are supported and every filter is ANDed together.
type RowStore struct {
	db *sqlx.DB
}

// NewRowStore creates a [RowStore] over an open database handle.
func NewRowStore(db *sql.DB) *RowStore {
	return &RowStore{db: sqlx.NewDb(db, shared.DriverName)}
}

// LookupOne returns the single row matching filters.
//
// The boolean is false when nothing matched. Matching more than one row is an error.
func (s *RowStore) LookupOne(ctx context.Context, table string, filters ...models.Filter) (models.Row, bool, error) {
	rows, err := s.query(ctx, table, filters, 2)
	if err != nil {
		return nil, false, err
	}

	switch len(rows) {
	case 0:
		return nil, false, nil
	case 1:
		return rows[0], true, nil
	default:
		return nil, false, &StoreError{Message: fmt.Sprintf("lookup on %s matched more than one row", table), Code: "multiple_rows"}
	}
}

// LookupMany returns every row matching filters, which may be none.
func (s *RowStore) LookupMany(ctx context.Context, table string, filters ...models.Filter) ([]models.Row, error) {
	return s.query(ctx, table, filters, 0)
}

func (s *RowStore) query(ctx context.Context, table string, filters []models.Filter, limit int) ([]models.Row, error) {
	query, args, err := buildSelect(table, filters, limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, classifyDriverError(fmt.Sprintf("failed to query %s", table), err)
	}
	defer rows.Close()

	var out []models.Row
	for rows.Next() {
		row := models.Row{}
		if err := rows.MapScan(row); err != nil {
			return nil, classifyDriverError(fmt.Sprintf("failed to scan %s row", table), err)
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, classifyDriverError("row iteration error", err)
	}

	return out, nil
}

// buildSelect renders a parameterised SELECT, rejecting identifiers that could inject SQL.
func buildSelect(table string, filters []models.Filter, limit int) (string, []any, error) {
	if !validIdentifier(table) {
		return "", nil, &StoreError{Message: fmt.Sprintf("invalid table name %q", table), Code: "invalid_identifier"}
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(table)

	args := make([]any, 0, len(filters))
	for i, f := range filters {
		if !validIdentifier(f.Column) {
			return "", nil, &StoreError{Message: fmt.Sprintf("invalid column name %q", f.Column), Code: "invalid_identifier"}
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(f.Column)
		b.WriteString(" = ?")
		args = append(args, f.Value)
	}

	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}

	return b.String(), args, nil
}

// classifyDriverError maps permission failures to [shared.CodeUnauthorized] and wraps
// everything else in a [StoreError] carrying the SQLite result code.
func classifyDriverError(message string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrAuth, sqlite3.ErrPerm:
			return shared.NewError(shared.CodeUnauthorized, message, err)
		}
		return &StoreError{Message: message, Code: fmt.Sprintf("sqlite:%d", int(sqliteErr.ExtendedCode)), Err: err}
	}

	return &StoreError{Message: message, Err: err}
}
