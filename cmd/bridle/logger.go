package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

// newLogger returns a slog logger backed by a zerolog console writer.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Stamp}
	zl := zerolog.New(output).With().Timestamp().Logger()
	return slog.New(zeroslog.NewHandler(zl, &zeroslog.HandlerOptions{Level: lvl})), nil
}
