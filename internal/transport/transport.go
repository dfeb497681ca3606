// Package transport sends streaming JSON requests and maps backend error
// responses to provider.APIError.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/i2y/bridle/internal/sse"
	"github.com/i2y/bridle/provider"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// Client posts JSON and returns the SSE body of a successful response.
type Client struct {
	Provider   string
	HTTPClient *http.Client

	// Header is added to every request, before the per-request header.
	Header http.Header

	// Authorize, when set, is called on every request after headers are set.
	Authorize func(*http.Request) error
}

// PostStream sends body as JSON to url. On a 2xx response it returns a reader
// over the event stream; otherwise it returns a *provider.APIError.
func (c *Client) PostStream(ctx context.Context, url string, header http.Header, body any) (*sse.Reader, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for k, vs := range c.Header {
		req.Header[k] = vs
	}
	for k, vs := range header {
		req.Header[k] = vs
	}
	if c.Authorize != nil {
		if err := c.Authorize(req); err != nil {
			return nil, fmt.Errorf("authorizing request: %w", err)
		}
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, ParseError(c.Provider, resp, respBody)
	}

	return sse.NewReader(resp.Body), nil
}

// ParseError builds an APIError from an error response. It understands the
// Anthropic ({"error":{"type","message"}}), Google ({"error":{"status","message"}})
// and OpenAI shapes, and falls back to the raw body.
func ParseError(providerName string, resp *http.Response, body []byte) *provider.APIError {
	apiErr := &provider.APIError{
		Provider:   providerName,
		StatusCode: resp.StatusCode,
		RequestID:  RequestID(resp.Header),
	}
	if d, ok := RetryAfter(resp.Header); ok {
		apiErr.RetryAfterDelay = d
	}

	// Google APIs sometimes wrap the error object in an array.
	doc := gjson.ParseBytes(body)
	if doc.IsArray() {
		doc = doc.Get("0")
	}

	if !gjson.ValidBytes(body) || !doc.IsObject() {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	fields := []gjson.Result{
		doc.Get("error.message"),
		doc.Get("message"),
	}
	for _, f := range fields {
		if f.Exists() && f.String() != "" {
			apiErr.Message = f.String()
			break
		}
	}
	if t := doc.Get("error.type"); t.Exists() {
		apiErr.Type = t.String()
	} else if s := doc.Get("error.status"); s.Exists() {
		apiErr.Type = s.String()
	} else if c := doc.Get("error.code"); c.Type == gjson.String {
		apiErr.Type = c.String()
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// RequestID returns the backend request id from response headers.
func RequestID(h http.Header) string {
	for _, k := range []string{"Request-Id", "X-Request-Id", "X-Goog-Request-Id"} {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// RetryAfter parses the Retry-After header in either of its forms.
func RetryAfter(h http.Header) (time.Duration, bool) {
	return parseRetryAfter(h.Get("Retry-After"), time.Now())
}

func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// Translator turns native events into chunks.
type Translator interface {
	// Translate handles one event. Returning io.EOF marks the terminal event.
	Translate(ev sse.Event) ([]provider.Chunk, error)

	// Finish is called once when the event stream ends and may flush chunks
	// held until the end, or report a truncated stream.
	Finish() ([]provider.Chunk, error)
}

// Source adapts an SSE reader and a Translator to provider.EventSource.
type Source struct {
	reader     *sse.Reader
	translator Translator
	done       bool
}

// NewSource returns an event source reading r through t.
func NewSource(r *sse.Reader, t Translator) *Source {
	return &Source{reader: r, translator: t}
}

func (s *Source) Recv() ([]provider.Chunk, error) {
	if s.done {
		return nil, io.EOF
	}

	ev, err := s.reader.Next()
	if err == nil {
		var chunks []provider.Chunk
		chunks, err = s.translator.Translate(ev)
		if err == nil {
			return chunks, nil
		}
	}
	if !errors.Is(err, io.EOF) {
		return nil, err
	}

	s.done = true
	chunks, err := s.translator.Finish()
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, io.EOF
	}
	return chunks, nil
}

func (s *Source) Close() error {
	return s.reader.Close()
}
