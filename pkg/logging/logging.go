// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Level       string
	Format      string // json or console
	Service     string
	Environment string
}

// Setup replaces log.Logger. Output defaults to stdout when w is nil.
func Setup(opts Options, w io.Writer) error {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	if w == nil {
		w = os.Stdout
	}
	switch strings.ToLower(opts.Format) {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return fmt.Errorf("unknown log format %q", opts.Format)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(w).With().Timestamp().Caller()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	if opts.Environment != "" {
		ctx = ctx.Str("env", opts.Environment)
	}
	log.Logger = ctx.Logger()
	return nil
}
