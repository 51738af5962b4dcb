// Package core provides the business logic around the delimited-text reader.
//
// This package holds the domain operations independent of any UI or
// transport layer. Web handlers call it; tests drive it directly with a fake
// database.
//
// # Operations
//
//   - [Service.Inspect] infers the dialect of an upload and returns the
//     header, preamble, a preview and the row count.
//   - [Service.Convert] rewrites an upload as JSON, NDJSON, CSV, TSV or
//     Parquet.
//   - [Service.Import] bulk loads an upload into a PostgreSQL table with
//     COPY, creating the table when missing.
//
// # Reader Settings
//
// Each request carries [ReadOptions]. Settings resolve in order: explicit
// request values, the named dialect profile, configured defaults. Whatever
// is still unset is inferred by the reader.
//
// # Spooling
//
// The reader opens its source twice (inference, then data), so uploads are
// written to a spool directory first and removed when the request ends.
// [Service.StartSpoolSweeper] removes files left behind by crashed requests.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (size, format, encoding, marker)
//   - DB001-DB007: Database errors (constraints, connections)
//   - UPL002-UPL005: Request errors (busy, cancelled, timeout)
//   - IMP001-IMP003: Import errors (disabled, table name, column mismatch)
//   - REQ001-REQ003: Invalid request settings
package core
