package components

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/a-h/templ"
)

// Writer accumulates the first write error so components can emit markup
// without checking every call.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup
func (hw *Writer) Raw(s string) *Writer {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
	return hw
}

// Text writes s HTML-escaped
func (hw *Writer) Text(s string) *Writer {
	return hw.Raw(templ.EscapeString(s))
}

// Safe is markup that Printf writes without escaping.
type Safe string

// Printf formats markup. String arguments are HTML-escaped unless they are
// Safe; other values are formatted as is.
func (hw *Writer) Printf(format string, args ...interface{}) *Writer {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		escaped[i] = escapeArg(a)
	}
	return hw.Raw(fmt.Sprintf(format, escaped...))
}

func escapeArg(a interface{}) interface{} {
	switch v := a.(type) {
	case Safe:
		return string(v)
	case string:
		return templ.EscapeString(v)
	case fmt.Stringer:
		return templ.EscapeString(v.String())
	}
	if rv := reflect.ValueOf(a); rv.Kind() == reflect.String {
		return templ.EscapeString(rv.String())
	}
	return a
}

// Component renders a child component into the same stream
func (hw *Writer) Component(ctx context.Context, c templ.Component) *Writer {
	if hw.err == nil && c != nil {
		hw.err = c.Render(ctx, hw.w)
	}
	return hw
}

// Err returns the first write error
func (hw *Writer) Err() error {
	return hw.err
}

// FormatFileSize renders a byte count for humans
func FormatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatDate renders t as dd.mm.yyyy, or "-" for nil
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}

// FormatRelativeTime renders how long ago t was, in Turkish
func FormatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "az önce"
	case d < time.Hour:
		return fmt.Sprintf("%d dakika önce", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d saat önce", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d gün önce", int(d.Hours()/24))
	}
	return t.Format("02.01.2006")
}
