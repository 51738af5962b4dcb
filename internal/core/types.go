package core

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/csvsniff/internal/delim"
)

var (
	// ErrNoDatabase is returned by Import when no database is configured.
	ErrNoDatabase = errors.New("imports are disabled: no database configured")

	// ErrUnknownProfile is returned when a request names a profile that is
	// not configured.
	ErrUnknownProfile = errors.New("unknown dialect profile")

	// ErrInvalidTableName is returned when an import target is not a plain
	// SQL identifier.
	ErrInvalidTableName = errors.New("invalid table name")

	// ErrNoFile is returned when a request carries no upload.
	ErrNoFile = errors.New("no file provided")

	// ErrEmptyFile is returned when an upload has no bytes.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidOption is returned when a request parameter cannot be parsed.
	ErrInvalidOption = errors.New("invalid option")
)

// DBTX is the interface for the loader's database operations.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Database is a DBTX that can start transactions, such as *pgxpool.Pool.
type Database interface {
	DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// Upload is a file received from a client.
type Upload struct {
	Name string
	Body io.Reader
	Size int64 // 0 if unknown
}

// DialectInfo is the JSON view of an inferred dialect.
type DialectInfo struct {
	Separator    string `json:"separator"`
	Collapse     bool   `json:"collapse"`
	StripQuotes  bool   `json:"stripQuotes"`
	Headers      bool   `json:"headers"`
	SkipLines    int    `json:"skipLines"`
	ContentStart int    `json:"contentStart"`
	Columns      int    `json:"columns"`
}

// NewDialectInfo converts a dialect for display.
func NewDialectInfo(d delim.Dialect) DialectInfo {
	return DialectInfo{
		Separator:    delim.SeparatorName(d.Separator),
		Collapse:     d.Collapse,
		StripQuotes:  d.StripQuotes,
		Headers:      d.Headers,
		SkipLines:    d.SkipLines,
		ContentStart: d.ContentStart,
		Columns:      d.Columns,
	}
}

// InspectResult describes an uploaded file: its dialect, header, preamble
// and the first rows.
type InspectResult struct {
	ID          string      `json:"id"`
	FileName    string      `json:"fileName"`
	Size        int64       `json:"size"`
	Profile     string      `json:"profile,omitempty"`
	Dialect     DialectInfo `json:"dialect"`
	Header      []string    `json:"header"`
	Columns     []string    `json:"columns"`
	Preamble    string      `json:"preamble"`
	Preview     [][]string  `json:"preview"`
	TotalRows   int         `json:"totalRows"`
	HeaderVotes delim.Votes `json:"headerVotes"`
	DurationMs  int64       `json:"durationMs"`
}

// ImportResult contains the final result of an import.
type ImportResult struct {
	ImportID   string        `json:"importId"`
	Table      string        `json:"table"`
	FileName   string        `json:"fileName"`
	Columns    []string      `json:"columns"`
	Inserted   int64         `json:"inserted"`
	Truncated  int           `json:"truncated"`
	Replaced   bool          `json:"replaced"`
	Dialect    DialectInfo   `json:"dialect"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"durationMs"`
}
