package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// BootstrapLogger is used during startup, before configuration is loaded
// and the main logger can be built.
type BootstrapLogger struct {
	logger *log.Logger
}

// NewBootstrapLogger creates a simple logger writing to stdout
func NewBootstrapLogger() *BootstrapLogger {
	return newBootstrapLogger(os.Stdout)
}

func newBootstrapLogger(w io.Writer) *BootstrapLogger {
	return &BootstrapLogger{
		logger: log.New(w, "[BOOTSTRAP] ", log.LstdFlags),
	}
}

func (b *BootstrapLogger) Debug(ctx context.Context, msg string, args ...any) {
	b.print("DEBUG", msg, args)
}

func (b *BootstrapLogger) Info(ctx context.Context, msg string, args ...any) {
	b.print("INFO", msg, args)
}

func (b *BootstrapLogger) Warn(ctx context.Context, msg string, args ...any) {
	b.print("WARN", msg, args)
}

func (b *BootstrapLogger) Error(ctx context.Context, msg string, args ...any) {
	b.print("ERROR", msg, args)
}

// print renders key/value pairs as key=value, matching the text handler.
func (b *BootstrapLogger) print(level, msg string, args []any) {
	var sb strings.Builder
	sb.WriteString(level)
	sb.WriteString(": ")
	sb.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&sb, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&sb, " %v", args[i])
		}
	}
	b.logger.Print(sb.String())
}

var _ Logger = (*BootstrapLogger)(nil)
