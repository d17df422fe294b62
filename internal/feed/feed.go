package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"fenrir/internal/common"
)

// MaxLineSize bounds a single event line, newline included.
const MaxLineSize = 64 * 1024

var (
	ErrFeedRead = errors.New("feed read failed")
)

// Record is one line of the feed. Err is set when the line could not be
// decoded into an event; the feed itself carries on.
type Record struct {
	Line  int
	Event common.Event
	Err   error
}

// Decoder reads a JSON-lines order feed, one event per line:
//
//	{"type": "Limit", "order": {"direction": "Buy", "id": 1, "price": 10, "quantity": 5}}
//
// Blank lines are skipped. A line that does not fit in MaxLineSize is
// dropped as a malformed record and the feed carries on after it.
type Decoder struct {
	reader *bufio.Reader
	line   int
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: bufio.NewReaderSize(r, MaxLineSize)}
}

// Next returns the next record, or io.EOF once the feed is exhausted. Any
// other error comes from the underlying reader and wraps ErrFeedRead.
func (d *Decoder) Next() (Record, error) {
	for {
		raw, tooLong, err := d.readLine()
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, fmt.Errorf("%w: after line %d: %w", ErrFeedRead, d.line, err)
		}
		d.line++

		if tooLong {
			return Record{
				Line: d.line,
				Err:  fmt.Errorf("%w: line %d exceeds %d bytes", common.ErrMalformedOrder, d.line, MaxLineSize),
			}, nil
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		return parseEvent(d.line, raw), nil
	}
}

// readLine returns the next line. The slice is only valid until the next
// read. An oversized line is consumed up to its end and reported as too long.
func (d *Decoder) readLine() ([]byte, bool, error) {
	raw, err := d.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = d.reader.ReadSlice('\n')
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, false, err
		}
		return nil, true, nil
	}
	// Last line without a trailing newline.
	if errors.Is(err, io.EOF) && len(raw) > 0 {
		return raw, false, nil
	}
	return raw, false, err
}

func parseEvent(line int, raw []byte) Record {
	record := Record{Line: line}
	if err := json.Unmarshal(raw, &record.Event); err != nil {
		record.Err = fmt.Errorf("%w: line %d: %w", common.ErrMalformedOrder, line, err)
	}
	return record
}
