// Package ssetest provides a scripted HTTP server that replays event-stream
// responses for backend tests.
package ssetest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Response is one scripted reply.
type Response struct {
	Status int
	Header map[string]string
	Body   string
}

// Stream returns a 200 event-stream response made of events.
func Stream(events ...string) Response {
	return Response{
		Status: http.StatusOK,
		Header: map[string]string{"Content-Type": "text/event-stream"},
		Body:   strings.Join(events, ""),
	}
}

// Error returns a JSON error response.
func Error(status int, body string) Response {
	return Response{
		Status: status,
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   body,
	}
}

// Named formats an event with an event name.
func Named(name, data string) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", name, data)
}

// Data formats an unnamed event.
func Data(data string) string {
	return fmt.Sprintf("data: %s\n\n", data)
}

// Request is a recorded request.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Server replays its responses in order, repeating the last one.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses []Response
	requests  []Request
}

// New starts a server closed at the end of the test.
func New(t testing.TB, responses ...Response) *Server {
	t.Helper()
	s := &Server{responses: responses}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	n := len(s.requests)
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	resp := Response{Status: http.StatusInternalServerError, Body: "no scripted response"}
	if len(s.responses) > 0 {
		resp = s.responses[min(n, len(s.responses)-1)]
	}
	s.mu.Unlock()

	for k, v := range resp.Header {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.Status)
	_, _ = io.WriteString(w, resp.Body)
}

// Calls returns the number of requests received.
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Last returns the most recent request.
func (s *Server) Last() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}
