package log

import (
	"fmt"
	"os"
	"sync"

	charm "github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"go.originals.dev/sdk/internal/metadata"
)

// CharmOptions adjusts the behavior of a logger instance backed by the
// charmbracelet log library.
type CharmOptions struct {
	// TimeFormat used to display timestamps.
	TimeFormat string

	// ReportCaller enables file/line reporting.
	ReportCaller bool

	// Prefix added at the beginning of each log entry.
	Prefix string

	// AsJSON enables JSON-formatted output.
	AsJSON bool
}

type charmHandler struct {
	cl     *charm.Logger
	mu     sync.Mutex
	fields metadata.MD
}

// WithCharm provides a Logger backed by the charmbracelet log library.
// https://github.com/charmbracelet/log
func WithCharm(opt CharmOptions) Logger {
	cl := charm.NewWithOptions(os.Stderr, charm.Options{
		Prefix:          opt.Prefix,
		Level:           charm.DebugLevel,
		TimeFormat:      opt.TimeFormat,
		ReportCaller:    opt.ReportCaller,
		ReportTimestamp: true,
	})
	if opt.AsJSON {
		cl.SetFormatter(charm.JSONFormatter)
	}
	cl.SetColorProfile(termenv.ANSI256)
	return &charmHandler{
		cl:     cl,
		fields: metadata.New(),
	}
}

func (h *charmHandler) SetLevel(lvl Level) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch lvl {
	case Debug:
		h.cl.SetLevel(charm.DebugLevel)
	case Info:
		h.cl.SetLevel(charm.InfoLevel)
	case Warning:
		h.cl.SetLevel(charm.WarnLevel)
	case Error:
		h.cl.SetLevel(charm.ErrorLevel)
	}
}

func (h *charmHandler) WithFields(fields Fields) Logger {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fields.Load(fields)
	return h
}

func (h *charmHandler) WithField(key string, value any) Logger {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fields.Set(key, value)
	return h
}

func (h *charmHandler) Sub(tags Fields) Logger {
	return &charmHandler{
		cl:     h.cl.With(expand(tags)...),
		fields: metadata.New(),
	}
}

func (h *charmHandler) take() []any {
	fields := expand(h.fields.Values())
	h.fields.Clear()
	return fields
}

func (h *charmHandler) Debug(args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cl.Debug(fmt.Sprint(args...), h.take()...)
}

func (h *charmHandler) Debugf(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cl.Debug(fmt.Sprintf(format, args...), h.take()...)
}

func (h *charmHandler) Info(args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cl.Info(fmt.Sprint(args...), h.take()...)
}

func (h *charmHandler) Infof(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cl.Info(fmt.Sprintf(format, args...), h.take()...)
}

func (h *charmHandler) Warning(args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cl.Warn(fmt.Sprint(args...), h.take()...)
}

func (h *charmHandler) Warningf(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cl.Warn(fmt.Sprintf(format, args...), h.take()...)
}

func (h *charmHandler) Error(args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cl.Error(fmt.Sprint(args...), h.take()...)
}

func (h *charmHandler) Errorf(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cl.Error(fmt.Sprintf(format, args...), h.take()...)
}

// expand flattens a map into the key1, value1, key2, value2, ... form
// expected by the charmbracelet logger's variadic fields.
func expand(values map[string]any) []any {
	list := make([]any, 0, len(values)*2)
	for k, v := range values {
		list = append(list, k, v)
	}
	return list
}
