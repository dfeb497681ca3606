// Package sse reads server-sent event streams.
package sse

import (
	"bufio"
	"bytes"
	"io"
)

// Event is one dispatched server-sent event.
type Event struct {
	Name string
	Data []byte
}

// Reader splits a text/event-stream body into events.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

const maxLine = 4 << 20

// NewReader returns a Reader over body. Closing the Reader closes body.
func NewReader(body io.ReadCloser) *Reader {
	s := bufio.NewScanner(body)
	s.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Reader{scanner: s, closer: body}
}

// Next returns the next event with a non-empty data field. Multi-line data is
// joined with "\n". It returns io.EOF when the body ends, and io.ErrUnexpectedEOF
// when it ends inside an event.
func (r *Reader) Next() (Event, error) {
	var (
		ev      Event
		data    [][]byte
		pending bool
	)
	for r.scanner.Scan() {
		line := r.scanner.Bytes()

		if len(line) == 0 {
			if len(data) > 0 {
				ev.Data = bytes.Join(data, []byte("\n"))
				return ev, nil
			}
			ev, pending = Event{}, false
			continue
		}
		if line[0] == ':' {
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		value = bytes.TrimPrefix(value, []byte(" "))
		switch string(field) {
		case "event":
			ev.Name = string(value)
			pending = true
		case "data":
			data = append(data, bytes.Clone(value))
			pending = true
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	if len(data) > 0 {
		ev.Data = bytes.Join(data, []byte("\n"))
		return ev, nil
	}
	if pending {
		return Event{}, io.ErrUnexpectedEOF
	}
	return Event{}, io.EOF
}

// Close closes the underlying body.
func (r *Reader) Close() error {
	return r.closer.Close()
}
