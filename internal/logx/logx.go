// Package logx provides the small Logger interface used across the daemon,
// modeled after machinist/mserver/factory.go's lib/logger.Logger /
// DefaultLogger shape, backed by hashicorp/go-hclog.
package logx

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Logger is the narrow logging surface every component depends on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Named(name string) Logger
}

// hclogLogger adapts hclog.Logger to the Logger interface.
type hclogLogger struct {
	l hclog.Logger
}

// New builds the default Logger, writing to stderr at the given level
// ("trace", "debug", "info", "warn", "error").
func New(name, level string) Logger {
	l := hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  hclog.LevelFromString(level),
		Output: os.Stderr,
	})
	return &hclogLogger{l: l}
}

func (h *hclogLogger) Debugf(format string, args ...interface{}) {
	h.l.Debug(sprintf(format, args...))
}

func (h *hclogLogger) Infof(format string, args ...interface{}) {
	h.l.Info(sprintf(format, args...))
}

func (h *hclogLogger) Warnf(format string, args ...interface{}) {
	h.l.Warn(sprintf(format, args...))
}

func (h *hclogLogger) Errorf(format string, args ...interface{}) {
	h.l.Error(sprintf(format, args...))
}

func (h *hclogLogger) Named(name string) Logger {
	return &hclogLogger{l: h.l.Named(name)}
}

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
