// Package writer is the terminal output surface: it prints converted text
// with a short typewriter effect, wrapped to the width of the terminal.
package writer

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
	greenColor = "\033[32m"
	resetColor = "\033[0m"

	// MaxLineWidth caps wrapping even on very wide terminals.
	MaxLineWidth = 100
)

var displayReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\t", "    ")

// Writer holds the text currently on display.
type Writer struct {
	out   io.Writer
	width int
	// animate is the delay of the slowest character; zero prints at once.
	animate time.Duration
	color   bool
	sleep   func(time.Duration)

	mu   sync.Mutex
	text string
}

type Option func(*Writer)

// WithAnimation enables the typewriter effect. The delay applies to the
// last characters and shrinks for characters further from the end.
func WithAnimation(delay time.Duration) Option {
	return func(w *Writer) { w.animate = delay }
}

// WithColor prints the text in green, the way the prompt answers look.
func WithColor(color bool) Option {
	return func(w *Writer) { w.color = color }
}

// WithWidth overrides the detected line width.
func WithWidth(width int) Option {
	return func(w *Writer) { w.width = width }
}

func withSleep(sleep func(time.Duration)) Option {
	return func(w *Writer) { w.sleep = sleep }
}

// New returns a Writer printing to out. If out is a terminal its width is
// used for wrapping, capped at MaxLineWidth.
func New(out io.Writer, opts ...Option) *Writer {
	w := &Writer{
		out:   out,
		width: MaxLineWidth,
		sleep: time.Sleep,
	}
	if f, ok := out.(*os.File); ok {
		w.width = TerminalWidth(f)
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// TerminalWidth returns the width of f if it is a terminal, capped at
// MaxLineWidth. Anything that is not a terminal gets MaxLineWidth.
func TerminalWidth(f *os.File) int {
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 && width < MaxLineWidth {
		return width
	}
	return MaxLineWidth
}

// SetText replaces the displayed text and prints it. An empty text prints
// nothing. Without a width the text is printed exactly as given, plus a final
// newline if it lacks one.
func (w *Writer) SetText(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.text = text
	if text == "" {
		return nil
	}
	if w.width < 1 {
		return w.print([]string{strings.TrimSuffix(text, "\n")})
	}
	return w.print(Wrap(text, w.width))
}

// Text returns the text last set.
func (w *Writer) Text() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.text
}

// Select prints the current text plainly so that the user can select and
// copy it by hand.
func (w *Writer) Select() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.text == "" {
		return nil
	}
	_, err := fmt.Fprintln(w.out, strings.TrimSuffix(w.text, "\n"))
	return err
}

func (w *Writer) print(lines []string) (err error) {
	if w.animate > 0 {
		if _, err := io.WriteString(w.out, hideCursor); err != nil {
			return err
		}
		defer func() {
			if _, showErr := io.WriteString(w.out, showCursor); err == nil {
				err = showErr
			}
		}()
	}
	if w.color {
		if _, err := io.WriteString(w.out, greenColor); err != nil {
			return err
		}
		defer func() {
			if _, resetErr := io.WriteString(w.out, resetColor); err == nil {
				err = resetErr
			}
		}()
	}

	remaining := 0
	for _, line := range lines {
		remaining += len([]rune(line))
	}
	for _, line := range lines {
		if w.animate <= 0 {
			if _, err := fmt.Fprintln(w.out, line); err != nil {
				return err
			}
			continue
		}
		for _, r := range line {
			if _, err := fmt.Fprint(w.out, string(r)); err != nil {
				return err
			}
			remaining--
			// Speed up output when there is a lot left.
			d := time.Duration(float64(w.animate) * math.Exp(-0.005*float64(remaining)))
			if d >= time.Millisecond {
				w.sleep(d)
			}
		}
		if _, err := fmt.Fprintln(w.out); err != nil {
			return err
		}
	}
	return nil
}

// Wrap splits text into display lines no wider than width columns. Words
// shorter than half a line move to the next line instead of being split. A
// trailing newline ends the last line rather than starting a new one.
func Wrap(text string, width int) []string {
	var lines []string
	text = strings.TrimSuffix(displayReplacer.Replace(text), "\n")
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapLine(para, width)...)
	}
	return lines
}

func wrapLine(s string, width int) []string {
	if width < 1 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var lines []string
	var line []rune
	lineWidth := 0
	lastSpace := -1
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if lineWidth+rw > width && len(line) > 0 {
			if r == ' ' {
				// If whitespace is what causes the line to break, don't print it.
				lines = append(lines, string(line))
				line, lineWidth, lastSpace = line[:0], 0, -1
				continue
			}
			if lastSpace >= 0 && len(line)-lastSpace-1 < width/2 {
				word := append([]rune(nil), line[lastSpace+1:]...)
				lines = append(lines, string(line[:lastSpace]))
				line, lineWidth = word, runewidth.StringWidth(string(word))
			} else {
				lines = append(lines, string(line))
				line, lineWidth = line[:0], 0
			}
			lastSpace = -1
		}
		if r == ' ' {
			lastSpace = len(line)
		}
		line = append(line, r)
		lineWidth += rw
	}
	return append(lines, string(line))
}
