package notify

import (
	"fmt"
	"io"
	"sync"
)

const (
	resetColor  = "\033[0m"
	greenColor  = "\033[32m"
	yellowColor = "\033[33m"
	redColor    = "\033[31m"
)

var palette = map[Severity]struct{ color, icon string }{
	Info:    {greenColor, "✔"},
	Warning: {yellowColor, "⚠"},
	Error:   {redColor, "✖"},
}

// Format renders a sanitized message with its severity marker, in colour if
// color is set.
func Format(message string, severity Severity, color bool) string {
	p := palette[severity.orInfo()]
	if !color {
		return fmt.Sprintf("%s %s", p.icon, Message(message))
	}
	return fmt.Sprintf("%s%s %s%s", p.color, p.icon, Message(message), resetColor)
}

// Line writes each notification as its own line. It is what a toast falls
// back to when there is no screen to draw on.
type Line struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

func NewLine(w io.Writer, color bool) *Line {
	return &Line{w: w, color: color}
}

func (l *Line) Notify(message string, severity Severity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, Format(message, severity, l.color))
}
