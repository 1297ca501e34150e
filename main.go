package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/blixt/freakfont/clipboard"
	"github.com/blixt/freakfont/command"
	"github.com/blixt/freakfont/config"
	"github.com/blixt/freakfont/glyph"
	"github.com/blixt/freakfont/live"
	"github.com/blixt/freakfont/logging"
	"github.com/blixt/freakfont/notify"
	"github.com/blixt/freakfont/session"
	"github.com/blixt/freakfont/writer"
)

// animationDelay is how long the last characters of an answer take to appear.
const animationDelay = 8 * time.Millisecond

func main() {
	styleFlag := flag.String("style", "", "glyph style, one of: "+strings.Join(glyph.Names(), ", "))
	liveFlag := flag.Bool("live", false, "preview while typing (needs a terminal)")
	copyFlag := flag.Bool("copy", false, "copy the converted text to the clipboard")
	flag.Parse()

	cfg, err := config.Load(config.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *styleFlag != "" {
		cfg.Style = *styleFlag
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))

	log, closeLog, err := newLogger(cfg, *liveFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	var methods []clipboard.Method
	methods = append(methods, clipboard.System()...)
	if stdoutTTY {
		methods = append(methods, clipboard.OSC52{W: os.Stdout})
	}
	clip := clipboard.New(log, methods...)

	switch {
	case flag.NArg() > 0:
		err = oneShot(cfg, log, clip, strings.Join(flag.Args(), " "), *copyFlag, stdoutTTY)
	case !stdinTTY:
		err = pipe(cfg, log, clip, os.Stdin, *copyFlag)
	case *liveFlag:
		err = runLive(cfg, log, clip)
	default:
		err = repl(cfg, log, clip, stdoutTTY)
	}
	if err != nil {
		log.Error().Err(err).Msg("Exiting")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, liveMode bool) (zerolog.Logger, func() error, error) {
	if cfg.LogFile != "" {
		return logging.NewFile(cfg.LogLevel, cfg.LogFile)
	}
	if liveMode {
		// Console logs would scribble over the raw-mode editor.
		return zerolog.Nop(), func() error { return nil }, nil
	}
	return logging.New(cfg.LogLevel, os.Stderr), func() error { return nil }, nil
}

func newSession(cfg *config.Config, log zerolog.Logger, in session.Input, out session.Output, n notify.Notifier, clip session.Clipboard) *session.Session {
	return session.New(session.Config{
		Input:          in,
		Output:         out,
		Notifier:       notify.Multi(n, notify.NewLog(log)),
		Clipboard:      clip,
		Table:          cfg.Table(),
		MaxLength:      cfg.MaxLength,
		Debounce:       cfg.Debounce,
		ReportUnmapped: cfg.ReportUnmapped,
		Log:            log,
	})
}

func oneShot(cfg *config.Config, log zerolog.Logger, clip session.Clipboard, text string, copyOut, tty bool) error {
	var opts []writer.Option
	if tty && cfg.Animate {
		opts = append(opts, writer.WithAnimation(animationDelay))
	}
	out := writer.New(os.Stdout, append(opts, writer.WithColor(tty))...)
	s := newSession(cfg, log, session.NewTextInput(text), out, notify.NewLine(os.Stderr, tty), clip)
	defer s.Close()
	s.Convert()
	if copyOut {
		s.Copy()
	}
	return nil
}

// pipe converts everything on r. Reading stops a little past the length cap
// so that truncation is still noticed without holding arbitrary input.
func pipe(cfg *config.Config, log zerolog.Logger, clip session.Clipboard, r io.Reader, copyOut bool) error {
	data, err := io.ReadAll(io.LimitReader(r, int64(cfg.MaxLength)*utf8.UTFMax+1))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	out := writer.New(os.Stdout, writer.WithWidth(0))
	s := newSession(cfg, log, session.NewTextInput(string(data)), out, notify.NewLine(os.Stderr, false), clip)
	defer s.Close()
	s.Convert()
	if copyOut {
		s.Copy()
	}
	return nil
}

func repl(cfg *config.Config, log zerolog.Logger, clip session.Clipboard, tty bool) error {
	var opts []writer.Option
	if cfg.Animate {
		opts = append(opts, writer.WithAnimation(animationDelay))
	}
	out := writer.New(os.Stdout, append(opts, writer.WithColor(tty))...)
	in := session.NewTextInput("")
	notifier := notify.NewLine(os.Stderr, tty)
	s := newSession(cfg, log, in, out, notifier, clip)
	defer s.Close()

	runner := command.NewRunner(os.Stdout)
	box := command.Builtin(s, notifier)

	// The liner package makes the input prompt a lot nicer to use, supporting
	// arrow keys and common keyboard shortcuts.
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Printf("Type some text, or %shelp for commands.\n", command.Prefix)
	for {
		input, err := line.Prompt("› ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if input == "exit" {
			return nil
		}
		if command.IsCommand(input) {
			if err := box.Run(runner, input); err != nil {
				notifier.Notify(err.Error(), notify.Warning)
			}
			continue
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		in.Set(input)
		s.Convert()
	}
}

func runLive(cfg *config.Config, log zerolog.Logger, clip session.Clipboard) error {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	ed := live.New(os.Stdin, os.Stdout, writer.TerminalWidth(os.Stdout))
	// Plain status text, since the status row is clipped to the terminal width.
	toast := notify.NewToast(ed.DrawStatus, cfg.ToastDuration, false)
	defer toast.Close()
	s := newSession(cfg, log, ed, ed.Output(), toast, clip)
	defer s.Close()

	ed.Actions = s
	ed.NextStyle = s.NextStyle
	toast.Notify("Enter converts, Ctrl+Y copies, Ctrl+L clears, Tab switches style, Ctrl+C quits", notify.Info)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := ed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	// The editor no longer draws, so this only updates the preview.
	s.Flush()

	// Leave the final text in the scrollback once the terminal is back to normal.
	term.Restore(fd, state)
	if text := ed.Preview(); text != "" {
		fmt.Println(text)
	}
	return nil
}
