// Package action talks to the GitHub Actions runner: a slog.Handler
// rendering records as workflow commands, and step outputs written to
// the $GITHUB_OUTPUT file.
package action

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Handler is a slog.Handler writing one workflow
// command per record.
type Handler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	prefix string
	attrs  []slog.Attr
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler returns a Handler writing to w. A nil
// opts enables every level down to debug; the runner
// hides debug commands unless step debugging is on.
func NewHandler(w io.Writer, opts *slog.HandlerOptions) *Handler {
	var level slog.Leveler = slog.LevelDebug
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &Handler{w: w, mu: &sync.Mutex{}, level: level}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(r.Message)

	for _, a := range h.attrs {
		appendAttr(&b, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})

	line := b.String()
	if cmd := command(r.Level); cmd != "" {
		line = cmd + escape(line)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.w, line+"\n")

	return err
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)

	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}

		nh.attrs = append(nh.attrs, a)
	}

	return &nh
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	nh := *h
	nh.prefix = h.prefix + name + "."

	return &nh
}

func command(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "::error::"
	case l >= slog.LevelWarn:
		return "::warning::"
	case l >= slog.LevelInfo:
		return ""
	default:
		return "::debug::"
	}
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			appendAttr(b, p, ga)
		}

		return
	}

	// Quoting keeps line breaks out of the output, so
	// a value can never start a workflow command.
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"\r\n") {
		val = strconv.Quote(val)
	}

	fmt.Fprintf(b, " %s%s=%s", prefix, a.Key, val)
}

// escape encodes the characters a workflow command
// message cannot carry.
func escape(s string) string {
	return strings.NewReplacer(
		"%", "%25",
		"\r", "%0D",
		"\n", "%0A",
	).Replace(s)
}

// Outputs writes step outputs to the file named by
// $GITHUB_OUTPUT.
type Outputs struct {
	Fs   afero.Fs
	Path string
}

// NewOutputs returns Outputs bound to the runner's
// output file. Path is empty outside of a workflow.
func NewOutputs() *Outputs {
	return &Outputs{
		Fs:   afero.NewOsFs(),
		Path: os.Getenv("GITHUB_OUTPUT"),
	}
}

// Set appends name=value to the output file. Values
// spanning several lines use a random heredoc
// delimiter. Without an output file the value is only
// logged.
func (o *Outputs) Set(name, value string) error {
	const errCtx = "setting output"

	if o.Path == "" {
		slog.Debug("no output file, dropping output", "name", name, "value", value)

		return nil
	}

	var entry string
	if strings.ContainsAny(value, "\r\n") {
		delim := "ghadelimiter_" + uuid.NewString()
		entry = fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delim, value, delim)
	} else {
		entry = name + "=" + value + "\n"
	}

	f, err := o.Fs.OpenFile(o.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errCtx, name, err)
	}

	if _, err := f.WriteString(entry); err != nil {
		_ = f.Close()

		return fmt.Errorf("%s: %s: %w", errCtx, name, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: %s: %w", errCtx, name, err)
	}

	return nil
}
