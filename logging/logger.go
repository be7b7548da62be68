// Package logging provides the structured, leveled logger used across the
// storefront. Fields are passed as a map so call sites read the same in
// every package.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Logger is the minimal logging surface the services depend on.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
	// With returns a logger that adds fields to every entry.
	With(fields map[string]interface{}) Logger
}

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel accepts debug, info, warn/warning and error in any case.
// Anything else maps to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

type Options struct {
	Level  string
	Format string // "text" or "json"
	Output io.Writer
	// Service is attached to every entry when set.
	Service string
}

type logger struct {
	level  Level
	json   bool
	out    io.Writer
	mu     *sync.Mutex
	fields map[string]interface{}
	now    func() time.Time
}

// New builds a logger writing to opts.Output (stdout by default).
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	l := &logger{
		level:  ParseLevel(opts.Level),
		json:   strings.EqualFold(opts.Format, "json"),
		out:    out,
		mu:     &sync.Mutex{},
		fields: map[string]interface{}{},
		now:    time.Now,
	}
	if opts.Service != "" {
		l.fields["service"] = opts.Service
	}
	return l
}

func (l *logger) Debug(msg string, fields map[string]interface{}) { l.log(DebugLevel, msg, fields) }
func (l *logger) Info(msg string, fields map[string]interface{})  { l.log(InfoLevel, msg, fields) }
func (l *logger) Warn(msg string, fields map[string]interface{})  { l.log(WarnLevel, msg, fields) }
func (l *logger) Error(msg string, fields map[string]interface{}) { l.log(ErrorLevel, msg, fields) }

func (l *logger) With(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &logger{
		level:  l.level,
		json:   l.json,
		out:    l.out,
		mu:     l.mu,
		fields: merged,
		now:    l.now,
	}
}

func (l *logger) log(level Level, msg string, fields map[string]interface{}) {
	if level < l.level {
		return
	}
	entry := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		entry[k] = v
	}
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}
	ts := l.now().UTC().Format(time.RFC3339)

	var line string
	if l.json {
		entry["timestamp"] = ts
		entry["level"] = level.String()
		entry["message"] = msg
		data, err := json.Marshal(entry)
		if err != nil {
			line = fmt.Sprintf(`{"level":"ERROR","message":"log marshal failed: %s"}`, err)
		} else {
			line = string(data)
		}
	} else {
		keys := make([]string, 0, len(entry))
		for k := range entry {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		fmt.Fprintf(&b, "%s [%s] %s", ts, level, msg)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry[k])
		}
		line = b.String()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, line)
}

type noop struct{}

// NoOp discards everything. Handy in tests.
func NoOp() Logger { return noop{} }

func (noop) Info(string, map[string]interface{})  {}
func (noop) Warn(string, map[string]interface{})  {}
func (noop) Error(string, map[string]interface{}) {}
func (noop) Debug(string, map[string]interface{}) {}
func (n noop) With(map[string]interface{}) Logger { return n }
