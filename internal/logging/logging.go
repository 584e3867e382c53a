// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New logs to stderr in console form and, when File is set, as JSON to a
// rotating file. The returned closer releases the file.
func New(o Options) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(o.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	var closer io.Closer = nopCloser{}
	if o.File != "" {
		lj := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			Compress:   true,
		}
		w = zerolog.MultiLevelWriter(w, lj)
		closer = lj
	}

	log := zerolog.New(w).Level(level).With().Timestamp().Str("service", "avatar-voice").Logger()
	return log, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
