package alerts

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Writer handles alert output.
type Writer interface {
	WriteAlert(alert *Alert) error
}

// WriterFunc is an adapter to allow functions to be used as Writers.
type WriterFunc func(*Alert) error

// WriteAlert calls the function.
func (f WriterFunc) WriteAlert(alert *Alert) error {
	return f(alert)
}

// DiscardWriter is a Writer that discards all alerts.
var DiscardWriter Writer = WriterFunc(func(*Alert) error { return nil })

// TextWriter writes alerts as text lines, details indented below the
// message.
type TextWriter struct {
	w        io.Writer
	useColor bool
}

// NewWriter creates a TextWriter. Color is used only when noColor is
// false and w is a terminal.
func NewWriter(w io.Writer, noColor bool) *TextWriter {
	return &TextWriter{w: w, useColor: !noColor && isTerminal(w)}
}

// WriteAlert writes one alert.
func (tw *TextWriter) WriteAlert(alert *Alert) error {
	message := alert.String()
	if tw.useColor {
		message = alert.Level.Color() + message + resetColor
	}

	if _, err := fmt.Fprintln(tw.w, message); err != nil {
		return err
	}
	for _, detail := range alert.Details {
		if _, err := fmt.Fprintf(tw.w, "   %s\n", detail); err != nil {
			return err
		}
	}
	return nil
}

// isTerminal checks if the writer is a terminal (for color support).
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// For returns the writer commands use for status messages: a TextWriter
// on w, or DiscardWriter when quiet.
func For(w io.Writer, quiet, noColor bool) Writer {
	if quiet {
		return DiscardWriter
	}
	return NewWriter(w, noColor)
}
