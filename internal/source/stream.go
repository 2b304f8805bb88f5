// Package source reads the raw pipeline inputs (delimited text and Parquet) into typed rows.
package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// utf8BOM is stripped from the start of a stream; the demographics extract ships with one.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StreamOptions configures the streaming delimited-text parser.
type StreamOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
	// Ragged allows rows whose field count differs from the first row.
	Ragged bool
}

// Stream reads delimited rows and sends them to a channel, header row included.
// Caller must consume the returned row channel. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func Stream(ctx context.Context, r io.Reader, opts StreamOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		br := bufio.NewReader(r)
		if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = br.Discard(len(utf8BOM))
		}

		reader := csv.NewReader(br)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.LazyQuotes = opts.LazyQuotes
		if opts.Ragged {
			reader.FieldsPerRecord = -1
		}

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "source: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "source: read row")
				return
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "source: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}
