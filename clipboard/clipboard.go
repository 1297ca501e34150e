// Package clipboard puts text on the system clipboard, trying one mechanism
// after another until one works.
package clipboard

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnavailable is returned when no mechanism managed to copy the text. The
// caller should offer manual selection instead.
var ErrUnavailable = errors.New("clipboard unavailable")

// Method is one way of getting text onto the clipboard.
type Method interface {
	Name() string
	Copy(text string) error
}

// Copier tries its methods in order.
type Copier struct {
	methods []Method
	log     zerolog.Logger
}

func New(log zerolog.Logger, methods ...Method) *Copier {
	return &Copier{methods: methods, log: log}
}

// Copy returns the name of the method that succeeded. If all of them fail the
// error wraps ErrUnavailable together with every individual failure.
func (c *Copier) Copy(text string) (string, error) {
	errs := []error{ErrUnavailable}
	for _, m := range c.methods {
		if err := m.Copy(text); err != nil {
			c.log.Warn().Err(err).Str("context", "copy").Str("method", m.Name()).Msg("Clipboard method failed")
			errs = append(errs, fmt.Errorf("%s: %w", m.Name(), err))
			continue
		}
		return m.Name(), nil
	}
	return "", errors.Join(errs...)
}

// Timeout bounds how long a clipboard program may run.
const Timeout = 5 * time.Second

// Command copies by piping the text into an external program such as pbcopy.
type Command struct {
	Path string
	Args []string
}

func (c Command) Name() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Copy waits for the program itself, not for children it leaves behind.
// xclip and xsel fork a process that keeps serving the selection, so stdout
// goes nowhere and stderr goes to a file, leaving no pipe for them to hold open.
func (c Command) Copy(text string) error {
	stderr, err := os.CreateTemp("", "freakfont-clipboard-*")
	if err != nil {
		return err
	}
	defer os.Remove(stderr.Name())
	defer stderr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stderr = stderr
	cmd.WaitDelay = 500 * time.Millisecond
	if err := cmd.Run(); err != nil {
		msg, _ := os.ReadFile(stderr.Name())
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(msg)))
	}
	return nil
}

// System returns the clipboard programs for this platform that are installed.
func System() []Method {
	var candidates []Command
	switch runtime.GOOS {
	case "darwin":
		candidates = []Command{{Path: "pbcopy"}}
	case "windows":
		candidates = []Command{{Path: "clip.exe"}}
	default:
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			candidates = append(candidates, Command{Path: "wl-copy"})
		}
		candidates = append(candidates,
			Command{Path: "xclip", Args: []string{"-selection", "clipboard"}},
			Command{Path: "xsel", Args: []string{"--clipboard", "--input"}},
		)
		// Inside WSL the Windows clipboard is usually the one that matters.
		candidates = append(candidates, Command{Path: "clip.exe"})
	}
	var methods []Method
	for _, c := range candidates {
		if path, err := exec.LookPath(c.Path); err == nil {
			methods = append(methods, Command{Path: path, Args: c.Args})
		}
	}
	return methods
}

// OSC52 asks the terminal emulator to set the clipboard with an OSC 52 escape
// sequence. It only works when W is a terminal that honours the sequence, and
// there is no way to know whether it did.
type OSC52 struct {
	W io.Writer
}

func (o OSC52) Name() string {
	return "osc52"
}

func (o OSC52) Copy(text string) error {
	if o.W == nil {
		return errors.New("no terminal")
	}
	_, err := fmt.Fprintf(o.W, "\033]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}

// Func adapts a function to the Method interface.
type Func struct {
	Label string
	Fn    func(text string) error
}

func (f Func) Name() string {
	return f.Label
}

func (f Func) Copy(text string) error {
	return f.Fn(text)
}
