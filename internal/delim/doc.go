// Package delim reads delimited text files of unknown dialect.
//
// A [Reader] samples the first lines of a source, infers the separator,
// collapse mode, content-start line and header presence, and then exposes
// the source as header labelled rows:
//
//	r := delim.NewReader("export.txt")
//	header, err := r.Header()
//	...
//	for {
//	    row, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// # Dialect inference
//
// Inference is a pure function over a line sample, see [InferDialect]. Each
// candidate separator (tab, comma, semicolon, pipe, slash, space and any
// whitespace run, each with and without collapsing) tracks the length of
// its current run of lines with the same non-zero separator count. The
// longest run wins; ties go to the candidate implying fewer columns, then to
// the earlier candidate. Scanning stops once a run exceeds the consistency
// threshold (25 lines by default).
//
// # Reader lifecycle
//
// A reader moves through [StateUninitialized], [StateInitialized],
// [StateOpened], [StateIterating] and [StateClosed]. The dialect is inferred
// lazily on first use and memoized; explicit setters invalidate it. A reader
// is not safe for concurrent use.
package delim
