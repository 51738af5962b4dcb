package export

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/JonMunkholm/csvsniff/internal/delim"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// flushSize bounds the bytes a stream buffers before writing through.
const flushSize = 32 * 1024

type JSONOption func(*jsonCodec)

type jsonCodec struct {
	newlineDelimited bool
	limit            int
}

// WithNewlineDelimited writes one object per line instead of an array.
func WithNewlineDelimited(ndjson bool) JSONOption {
	return func(c *jsonCodec) {
		c.newlineDelimited = ndjson
	}
}

// WithLimit stops after limit rows. A negative limit writes every row.
func WithLimit(limit int) JSONOption {
	return func(c *jsonCodec) {
		c.limit = limit
	}
}

// WriteJSON writes each row as an object keyed by column name, in column
// order. Absent cells and cells past the end of a short row are null.
func WriteJSON(w io.Writer, t *delim.Table, opts ...JSONOption) error {
	c := &jsonCodec{limit: -1}
	for _, opt := range opts {
		opt(c)
	}

	names := UniqueNames(t)
	stream := json.BorrowStream(w)
	defer json.ReturnStream(stream)

	if !c.newlineDelimited {
		stream.WriteArrayStart()
	}
	for i, row := range t.Rows {
		if c.limit >= 0 && i >= c.limit {
			break
		}
		if i > 0 && !c.newlineDelimited {
			stream.WriteMore()
		}
		stream.WriteObjectStart()
		for col, name := range names {
			if col > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(name)
			if cell := row.Get(col); cell.Valid {
				stream.WriteString(cell.Value)
			} else {
				stream.WriteNil()
			}
		}
		stream.WriteObjectEnd()
		if c.newlineDelimited {
			stream.WriteRaw("\n")
		}
		if stream.Buffered() > flushSize {
			if err := stream.Flush(); err != nil {
				return err
			}
		}
	}
	if !c.newlineDelimited {
		stream.WriteArrayEnd()
		stream.WriteRaw("\n")
	}
	if stream.Error != nil {
		return stream.Error
	}
	return stream.Flush()
}
