// Package live is a small raw-mode editor that previews the stylized text
// while the user types. Conversions are debounced by the session; the editor
// only forwards keystrokes and redraws.
package live

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

const (
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyBackspace = 0x08
	keyTab       = 0x09
	keyLF        = 0x0A
	keyCtrlL     = 0x0C
	keyCR        = 0x0D
	keyCtrlU     = 0x15
	keyCtrlY     = 0x19
	keyEscape    = 0x1B
	keyDelete    = 0x7F

	clearLine = "\r\033[K"
	prompt    = "› "
)

// Actions are what keystrokes trigger.
type Actions interface {
	HandleInput()
	Convert()
	Copy()
	Clear()
}

// Editor is both the input and the output surface of a session, plus the
// status line its toasts draw on.
type Editor struct {
	in    io.Reader
	out   io.Writer
	width int

	// Actions must be set before Run.
	Actions Actions
	// NextStyle is called on Tab, if set.
	NextStyle func()

	mu      sync.Mutex
	buf     []rune
	preview string
	status  string
	// esc tracks how far into an escape sequence the input is.
	esc int
	// finished is set once Run has handed the terminal back.
	finished bool
}

// New returns an editor reading raw keystrokes from in and drawing to out,
// which should be a terminal in raw mode.
func New(in io.Reader, out io.Writer, width int) *Editor {
	if width < 10 {
		width = 10
	}
	return &Editor{in: in, out: out, width: width}
}

// Text returns the text typed so far.
func (e *Editor) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.buf), nil
}

// Reset empties the input line.
func (e *Editor) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf = e.buf[:0]
	return e.draw()
}

// SetText replaces the preview.
func (e *Editor) SetText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preview = text
	return e.draw()
}

// Preview returns the stylized text on display.
func (e *Editor) Preview() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preview
}

// Output adapts the preview to the session output interface.
func (e *Editor) Output() Output {
	return Output{e: e}
}

type Output struct {
	e *Editor
}

func (o Output) SetText(text string) error {
	return o.e.SetText(text)
}

func (o Output) Text() string {
	return o.e.Preview()
}

// DrawStatus shows a status message under the preview. Pass "" to hide it.
func (e *Editor) DrawStatus(status string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = status
	e.draw()
}

// Run processes keystrokes until Ctrl+C, Ctrl+D, end of input or ctx is done.
func (e *Editor) Run(ctx context.Context) error {
	if e.Actions == nil {
		return errors.New("live editor has no actions")
	}
	keys := make(chan rune)
	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		r := bufio.NewReader(e.in)
		for {
			k, _, err := r.ReadRune()
			if err != nil {
				errc <- err
				return
			}
			select {
			case keys <- k:
			case <-done:
				return
			}
		}
	}()

	e.mu.Lock()
	// Reserve the preview and status rows so drawing never scrolls.
	fmt.Fprint(e.out, "\n\n\033[2A")
	e.draw()
	e.mu.Unlock()
	defer e.finish()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case k := <-keys:
			if !e.handle(k) {
				return nil
			}
		}
	}
}

// handle applies one key and reports whether to keep going. Actions are
// called without holding the lock since they call back into the editor.
func (e *Editor) handle(k rune) bool {
	e.mu.Lock()
	if e.esc > 0 {
		// Skip CSI sequences such as arrow keys: ESC [ params final.
		switch {
		case e.esc == 1 && (k == '[' || k == 'O'):
			e.esc = 2
		case e.esc == 2 && (k < 0x40 || k > 0x7E):
		default:
			e.esc = 0
		}
		e.mu.Unlock()
		return true
	}

	var action func()
	switch k {
	case keyCtrlC, keyCtrlD:
		e.mu.Unlock()
		return false
	case keyEscape:
		e.esc = 1
	case keyCR, keyLF:
		action = e.Actions.Convert
	case keyCtrlY:
		action = e.Actions.Copy
	case keyCtrlL:
		action = e.Actions.Clear
	case keyTab:
		if e.NextStyle != nil {
			action = e.NextStyle
		}
	case keyBackspace, keyDelete:
		if len(e.buf) > 0 {
			e.buf = e.buf[:len(e.buf)-1]
			e.draw()
			action = e.Actions.HandleInput
		}
	case keyCtrlU:
		e.buf = e.buf[:0]
		e.draw()
		action = e.Actions.HandleInput
	default:
		if k >= 0x20 {
			e.buf = append(e.buf, k)
			e.draw()
			action = e.Actions.HandleInput
		}
	}
	e.mu.Unlock()

	if action != nil {
		action()
	}
	return true
}

// draw repaints the three rows and leaves the cursor after the input. The
// cursor is always on the input row when draw starts.
func (e *Editor) draw() error {
	if e.finished {
		return nil
	}
	input := tail(strings.ReplaceAll(string(e.buf), "\n", "⏎"), e.width-runewidth.StringWidth(prompt)-1)
	preview := runewidth.Truncate(strings.NewReplacer("\r\n", "⏎", "\n", "⏎", "\r", "⏎", "\t", " ").Replace(e.preview), e.width-1, "…")
	status := runewidth.Truncate(e.status, e.width-1, "…")

	var sb strings.Builder
	sb.WriteString(clearLine + prompt + input)
	sb.WriteString("\033[1B" + clearLine + preview)
	sb.WriteString("\033[1B" + clearLine + status)
	fmt.Fprintf(&sb, "\033[2A\r\033[%dC", runewidth.StringWidth(prompt+input))
	_, err := io.WriteString(e.out, sb.String())
	return err
}

func (e *Editor) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	io.WriteString(e.out, "\033[2B\r\n")
	e.finished = true
}

// tail returns the end of s that fits in width columns, marking the cut.
func tail(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	rs := []rune(s)
	w := runewidth.StringWidth("…")
	i := len(rs)
	for i > 0 && w+runewidth.RuneWidth(rs[i-1]) <= width {
		w += runewidth.RuneWidth(rs[i-1])
		i--
	}
	return "…" + string(rs[i:])
}
