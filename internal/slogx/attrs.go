// Package slogx holds slog attribute helpers shared by the backends.
package slogx

import (
	"log/slog"
	"time"
)

const (
	KeyRequestID = "request_id"
	KeyProvider  = "provider"
	KeyModel     = "model"
)

// Error returns a slog.Attr representing the provided error.
// The attribute key is "error" and the value is the error's message.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// RequestID returns the attribute correlating all log lines of one stream.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Provider returns the family attribute.
func Provider(name string) slog.Attr {
	return slog.String(KeyProvider, name)
}

// Model returns the resolved model attribute.
func Model(id string) slog.Attr {
	return slog.String(KeyModel, id)
}

// Delay formats a retry delay.
func Delay(d time.Duration) slog.Attr {
	return slog.String("delay", d.String())
}
