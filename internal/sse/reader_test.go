package sse

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func readAll(t *testing.T, input string) ([]Event, error) {
	t.Helper()
	r := NewReader(io.NopCloser(strings.NewReader(input)))
	var events []Event
	for {
		ev, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, err
		}
		events = append(events, ev)
	}
}

func TestReader_Next(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Event
	}{
		{
			name:  "named events",
			input: "event: message_start\ndata: {\"a\":1}\n\nevent: ping\ndata: {}\n\n",
			want: []Event{
				{Name: "message_start", Data: []byte(`{"a":1}`)},
				{Name: "ping", Data: []byte(`{}`)},
			},
		},
		{
			name:  "data only",
			input: "data: {\"x\":1}\n\ndata: [DONE]\n\n",
			want: []Event{
				{Data: []byte(`{"x":1}`)},
				{Data: []byte(`[DONE]`)},
			},
		},
		{
			name:  "comments and crlf",
			input: ": keep-alive\r\n\r\ndata:{\"y\":2}\r\n\r\n",
			want:  []Event{{Data: []byte(`{"y":2}`)}},
		},
		{
			name:  "multi line data",
			input: "data: line1\ndata: line2\n\n",
			want:  []Event{{Data: []byte("line1\nline2")}},
		},
		{
			name:  "event without data is skipped",
			input: "event: ping\n\ndata: z\n\n",
			want:  []Event{{Data: []byte("z")}},
		},
		{
			name:  "missing trailing blank line",
			input: "data: tail",
			want:  []Event{{Data: []byte("tail")}},
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readAll(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_UnexpectedEOF(t *testing.T) {
	_, err := readAll(t, "data: a\n\nevent: cut")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReader_Close(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("")}
	r := NewReader(body)
	require.NoError(t, r.Close())
	assert.True(t, body.closed)
}
