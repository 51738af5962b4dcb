package core

// loader.go bulk loads reader rows into PostgreSQL.
//
// The target table is created on demand with one TEXT column per reader
// column, then filled with the COPY protocol. Column names come from the
// header (or column_N) normalized to lower snake case. Cells become
// pgtype.Text, with absent and empty cells stored as NULL.

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/csvsniff/internal/delim"
)

// contextCheckInterval is how many rows are copied between cancellation
// checks.
const contextCheckInterval = 1000

// maxIdentifierLen is PostgreSQL's NAMEDATALEN minus one.
const maxIdentifierLen = 63

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateTableName checks that name is a plain, unqualified identifier.
func ValidateTableName(name string) error {
	if !tableNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	return nil
}

// toDBColumnName converts a header cell to a database column name.
// "Transaction ID" -> "transaction_id"
// "2024 Total ($)" -> "c_2024_total"
func toDBColumnName(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	s := b.String()
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "c_" + s
	}
	if len(s) > maxIdentifierLen {
		s = s[:maxIdentifierLen]
	}
	return s
}

// ColumnNames returns unique database column names for width columns.
// Unusable header cells fall back to column_N; repeats get _2, _3 suffixes.
func ColumnNames(header []string, width int) []string {
	if len(header) > width {
		width = len(header)
	}
	names := make([]string, width)
	seen := make(map[string]bool, width)
	for i := range names {
		base := ""
		if i < len(header) {
			base = toDBColumnName(header[i])
		}
		if base == "" {
			base = fmt.Sprintf("column_%d", i+1)
		}
		name := base
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

// createTableSQL builds an idempotent CREATE TABLE for TEXT columns.
func createTableSQL(table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = pgx.Identifier{c}.Sanitize() + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(defs, ", "))
}

// toPgText converts a cell to pgtype.Text. Absent or empty cells are NULL.
func toPgText(c delim.Cell) pgtype.Text {
	if !c.Valid || c.Value == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: c.Value, Valid: true}
}

// rowSource adapts a Reader to pgx.CopyFromSource.
type rowSource struct {
	ctx       context.Context
	reader    *delim.Reader
	width     int
	values    []any
	rows      int64
	truncated int
	err       error
}

var _ pgx.CopyFromSource = (*rowSource)(nil)

func (s *rowSource) Next() bool {
	if s.err != nil {
		return false
	}
	if s.rows%contextCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return false
		}
	}

	row, err := s.reader.Next()
	if err == io.EOF {
		return false
	}
	if err != nil {
		s.err = err
		return false
	}

	// Cells past the last column have nowhere to go.
	if len(row) > s.width {
		s.truncated++
	}
	values := make([]any, s.width)
	for i := range values {
		values[i] = toPgText(row.Get(i))
	}
	s.values = values
	s.rows++
	return true
}

func (s *rowSource) Values() ([]any, error) {
	return s.values, nil
}

func (s *rowSource) Err() error {
	return s.err
}

// LoadResult reports what a load wrote.
type LoadResult struct {
	Columns   []string
	Inserted  int64
	Truncated int
}

// Load creates table if needed and copies every data row of r into it.
// With replace set the table is truncated first. Run it inside a
// transaction so a failed copy leaves the table untouched.
func Load(ctx context.Context, db DBTX, r *delim.Reader, table string, replace bool) (*LoadResult, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	header, err := r.Header()
	if err != nil {
		return nil, err
	}
	width, err := r.ColumnCount()
	if err != nil {
		return nil, err
	}
	columns := ColumnNames(header, width)

	if _, err := db.Exec(ctx, createTableSQL(table, columns)); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}
	if replace {
		if _, err := db.Exec(ctx, "TRUNCATE TABLE "+pgx.Identifier{table}.Sanitize()); err != nil {
			return nil, fmt.Errorf("truncate table %s: %w", table, err)
		}
	}

	if err := r.Open(); err != nil {
		return nil, err
	}
	defer r.Close()

	src := &rowSource{ctx: ctx, reader: r, width: len(columns)}
	n, err := db.CopyFrom(ctx, pgx.Identifier{table}, columns, src)
	if err != nil {
		return nil, fmt.Errorf("copy into %s: %w", table, err)
	}

	return &LoadResult{
		Columns:   columns,
		Inserted:  n,
		Truncated: src.truncated,
	}, nil
}
