// Package interfaces defines core domain contracts.
//
//nolint:revive // Package name 'interfaces' is intentional for domain layer
package interfaces

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
)

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs debug-level messages
	Debug(msg string, fields ...Field)

	// Info logs informational messages
	Info(msg string, fields ...Field)

	// Warn logs warning messages
	Warn(msg string, fields ...Field)

	// Error logs error messages
	Error(msg string, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field (convenience function)
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// NoOpLogger is a logger that does nothing (useful for tests)
type NoOpLogger struct{}

// Debug does nothing (no-op implementation)
func (n *NoOpLogger) Debug(_ string, _ ...Field) {}

// Info does nothing (no-op implementation)
func (n *NoOpLogger) Info(_ string, _ ...Field) {}

// Warn does nothing (no-op implementation)
func (n *NoOpLogger) Warn(_ string, _ ...Field) {}

// Error does nothing (no-op implementation)
func (n *NoOpLogger) Error(_ string, _ ...Field) {}

// ConsoleLogger writes one line per message with key=value fields.
// Stdout is left free for command results.
type ConsoleLogger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	color   colorstring.Colorize
}

// ConsoleLoggerConfig configures a ConsoleLogger
type ConsoleLoggerConfig struct {
	Output  io.Writer // defaults to os.Stderr
	Verbose bool      // emit Debug messages
	NoColor bool
}

// NewConsoleLogger creates a console logger
func NewConsoleLogger(config ConsoleLoggerConfig) *ConsoleLogger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleLogger{
		out:     out,
		verbose: config.Verbose,
		color: colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: config.NoColor,
			Reset:   true,
		},
	}
}

// Debug logs debug-level messages when verbose output is enabled
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if !c.verbose {
		return
	}
	c.log("[dark_gray]DEBUG", msg, fields)
}

// Info logs informational messages
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log("[cyan]INFO ", msg, fields)
}

// Warn logs warning messages
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log("[yellow]WARN ", msg, fields)
}

func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log("[red]ERROR", msg, fields)
}

func (c *ConsoleLogger) log(level, msg string, fields []Field) {
	var b strings.Builder
	b.WriteString(c.color.Color(level))
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, b.String())
}
