// Copyright 2024 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging provides the human-readable, platform-tagged logger used by
// every new-version component.
//
// Logs are written to stderr by default: stdout is reserved for the MCP
// JSON-RPC stream when the binary runs in --mcp mode.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Platform tags prefixed to every log line.
const (
	TagBase    = "[New Version]"
	TagIOS     = "[New Version][iOS]"
	TagAndroid = "[New Version][Android]"
)

// Logger wraps zerolog with a fixed message prefix.
type Logger struct {
	zlog  zerolog.Logger
	out   io.Writer
	tag   string
	level zerolog.Level
}

// New creates a logger writing console-formatted lines to w, each message
// prefixed with tag.
func New(w io.Writer, tag string) *Logger {
	return newLogger(w, tag, zerolog.InfoLevel)
}

// NewDefault creates a logger writing to stderr.
func NewDefault(tag string) *Logger {
	return New(os.Stderr, tag)
}

// Nop returns a logger discarding everything.
func Nop() *Logger {
	return New(io.Discard, "")
}

func newLogger(w io.Writer, tag string, level zerolog.Level) *Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    true,
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return tag
			}
			if tag == "" {
				return fmt.Sprint(i)
			}
			return tag + " " + fmt.Sprint(i)
		},
	}

	return &Logger{
		zlog:  zerolog.New(cw).Level(level).With().Timestamp().Logger(),
		out:   w,
		tag:   tag,
		level: level,
	}
}

// WithTag returns a logger sharing the output and level of l but using tag.
func (l *Logger) WithTag(tag string) *Logger {
	return newLogger(l.out, tag, l.level)
}

// Tag returns the prefix of l.
func (l *Logger) Tag() string {
	return l.tag
}

// SetLevel parses level ("debug", "info", "warn", "error") and applies it.
func (l *Logger) SetLevel(level string) error {
	if level == "" {
		return nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	*l = *newLogger(l.out, l.tag, lvl)
	return nil
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debugf logs a debug message with printf-style formatting.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// Errorf logs err at error level with a printf-style message.
func (l *Logger) Errorf(err error, format string, args ...interface{}) {
	l.zlog.Error().Err(err).Msgf(format, args...)
}
