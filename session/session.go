// Package session is the glue between the converter and whatever shows it to
// the user. Every action is guarded: no fault inside an action escapes to the
// caller, it becomes a notification instead.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/blixt/freakfont/convert"
	"github.com/blixt/freakfont/debounce"
	"github.com/blixt/freakfont/glyph"
	"github.com/blixt/freakfont/normalize"
	"github.com/blixt/freakfont/notify"
)

// LargeCopy is the length above which copying warns that it may be slow.
const LargeCopy = 50_000

// ErrNoOutput is reported when a session has no output surface.
var ErrNoOutput = errors.New("output surface unavailable")

// Input is where raw text comes from.
type Input interface {
	Text() (string, error)
	Reset() error
}

// Output is where converted text goes.
type Output interface {
	SetText(text string) error
	Text() string
}

// Selecter is implemented by outputs that can help the user select text by
// hand when copying fails.
type Selecter interface {
	Select() error
}

// Clipboard copies text and names the mechanism that did it.
type Clipboard interface {
	Copy(text string) (string, error)
}

type Config struct {
	Input     Input
	Output    Output
	Notifier  notify.Notifier
	Clipboard Clipboard
	Table     *glyph.Table
	// MaxLength caps input length in characters; zero means normalize.MaxLength.
	MaxLength int
	// Debounce is the quiet period HandleInput waits for.
	Debounce time.Duration
	// ReportUnmapped also notifies about characters that have no stylized
	// form. Faults are always reported.
	ReportUnmapped bool
	Log            zerolog.Logger
}

type Session struct {
	in             Input
	out            Output
	notifier       notify.Notifier
	clipboard      Clipboard
	normalizer     *normalize.Normalizer
	debouncer      *debounce.Debouncer
	reportUnmapped bool
	log            zerolog.Logger

	// mu serializes actions.
	mu    sync.Mutex
	table *glyph.Table
}

func New(cfg Config) *Session {
	s := &Session{
		in:             cfg.Input,
		out:            cfg.Output,
		notifier:       cfg.Notifier,
		clipboard:      cfg.Clipboard,
		normalizer:     normalize.New(cfg.MaxLength),
		debouncer:      debounce.New(cfg.Debounce),
		reportUnmapped: cfg.ReportUnmapped,
		log:            cfg.Log,
		table:          cfg.Table,
	}
	if s.notifier == nil {
		s.notifier = notify.Nop
	}
	if s.table == nil {
		s.table = glyph.Default()
	}
	return s
}

// Table returns the glyph table conversions use.
func (s *Session) Table() *glyph.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// SetTable switches the glyph table for future conversions.
func (s *Session) SetTable(t *glyph.Table) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
}

// NextStyle switches to the next built-in style, announces it and schedules
// a conversion with it.
func (s *Session) NextStyle() {
	s.mu.Lock()
	s.table = glyph.Next(s.table)
	name := s.table.Name()
	s.mu.Unlock()

	s.notify("Style: "+name, notify.Info)
	s.HandleInput()
}

// Convert converts the current input and delivers it to the output.
func (s *Session) Convert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convert()
}

// HandleInput schedules a conversion for when the input has been quiet for
// the debounce period. Whitespace-only input clears the output instead.
func (s *Session) HandleInput() {
	s.debouncer.Trigger(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		defer s.guard("handle input", "", nil)
		if strings.TrimSpace(s.readInput()) == "" {
			s.deliver("")
			return
		}
		s.convert()
	})
}

// Flush runs a pending debounced conversion right away.
func (s *Session) Flush() bool {
	return s.debouncer.Flush()
}

// Close drops any pending debounced conversion.
func (s *Session) Close() {
	s.debouncer.Stop()
}

func (s *Session) convert() {
	defer s.guard("convert", "Failed to convert text. Please try again.", func() {
		if s.out != nil {
			if err := s.out.SetText(""); err != nil {
				s.log.Error().Err(err).Str("context", "convert cleanup").Msg("Could not clear output")
			}
		}
	})

	if s.out == nil {
		s.log.Error().Err(ErrNoOutput).Str("context", "convert").Msg("Action failed")
		s.notify("Failed to convert text. Please try again.", notify.Error)
		return
	}

	raw := s.readInput()
	if raw == "" {
		s.deliver("")
		return
	}

	norm := s.normalizer.Normalize(raw)
	if norm.Truncated {
		s.notify(fmt.Sprintf("Text truncated to %s characters", humanize.Comma(int64(s.normalizer.Max()))), notify.Warning)
	}

	res := convert.New(s.table, s.log).Convert(norm.Text)
	switch {
	case res.Faults > 0:
		s.notify(fmt.Sprintf("%s %s couldn't be converted", humanize.Comma(int64(res.Faults)), plural(res.Faults)), notify.Warning)
	case res.Unmapped > 0 && s.reportUnmapped:
		s.notify(fmt.Sprintf("%s %s left unstyled", humanize.Comma(int64(res.Unmapped)), plural(res.Unmapped)), notify.Info)
	}
	s.log.Debug().
		Int("length", utf8.RuneCountInString(norm.Text)).
		Int("removed", norm.Removed).
		Int("unmapped", res.Unmapped).
		Str("style", s.table.Name()).
		Msg("Converted text")

	s.deliver(res.Text)
}

// Copy puts the converted text on the clipboard, falling back to manual
// selection when no clipboard mechanism works.
func (s *Session) Copy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.guard("copy", "Failed to copy text. Please try selecting and copying manually.", nil)

	if s.out == nil {
		s.log.Error().Err(ErrNoOutput).Str("context", "copy").Msg("Action failed")
		s.notify("Failed to copy text. Please try selecting and copying manually.", notify.Error)
		return
	}
	text := s.out.Text()
	if strings.TrimSpace(text) == "" {
		s.notify("Nothing to copy! Type some text first.", notify.Error)
		return
	}
	if utf8.RuneCountInString(text) > LargeCopy {
		s.notify("Text is very long. Copy may take a moment...", notify.Warning)
	}

	if s.clipboard != nil {
		method, err := s.clipboard.Copy(text)
		if err == nil {
			s.log.Debug().Str("method", method).Msg("Copied to clipboard")
			s.notify("Text copied to clipboard!", notify.Info)
			return
		}
		s.log.Warn().Err(err).Str("context", "copy").Msg("Clipboard unavailable")
	}

	s.notify("Copy failed. Please select the text and copy it manually.", notify.Error)
	if sel, ok := s.out.(Selecter); ok {
		if err := sel.Select(); err != nil {
			s.log.Error().Err(err).Str("context", "copy manual selection").Msg("Could not offer manual selection")
		}
	}
}

// Clear empties both the input and the output.
func (s *Session) Clear() {
	s.debouncer.Cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.guard("clear", "Failed to clear fields.", nil)

	var failed []string
	if s.in == nil {
		failed = append(failed, "input unavailable")
	} else if err := s.in.Reset(); err != nil {
		s.log.Error().Err(err).Str("context", "clear input").Msg("Could not clear input")
		failed = append(failed, "input")
	}
	if s.out == nil {
		failed = append(failed, "output unavailable")
	} else if err := s.out.SetText(""); err != nil {
		s.log.Error().Err(err).Str("context", "clear output").Msg("Could not clear output")
		failed = append(failed, "output")
	}

	if len(failed) > 0 {
		s.notify(fmt.Sprintf("Some fields couldn't be cleared: %s", strings.Join(failed, ", ")), notify.Warning)
		return
	}
	s.notify("Fields cleared!", notify.Info)
}

func (s *Session) readInput() string {
	if s.in == nil {
		return ""
	}
	raw, err := s.in.Text()
	if err != nil {
		s.log.Warn().Err(err).Str("context", "read input").Msg("Input unavailable, treating as empty")
		return ""
	}
	return raw
}

func (s *Session) deliver(text string) {
	if s.out == nil {
		return
	}
	if err := s.out.SetText(text); err != nil {
		s.log.Error().Err(err).Str("context", "deliver output").Msg("Could not display text")
		s.notify("Could not display the converted text.", notify.Error)
	}
}

// notify never lets a misbehaving notifier take the action down with it.
func (s *Session) notify(message string, severity notify.Severity) {
	defer func() {
		if v := recover(); v != nil {
			s.log.Error().Interface("panic", v).Str("context", "notify").Str("message", message).Msg("Notifier failed")
		}
	}()
	s.notifier.Notify(message, severity)
}

// guard must be deferred directly. It turns a panic into a log entry and,
// if message is set, a notification, then runs cleanup.
func (s *Session) guard(action, message string, cleanup func()) {
	v := recover()
	if v == nil {
		return
	}
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("%v", v)
	}
	s.log.Error().Err(err).Str("context", action).Msg("Action failed")
	if message != "" {
		s.notify(message, notify.Error)
	}
	if cleanup != nil {
		func() {
			defer func() {
				if v := recover(); v != nil {
					s.log.Error().Interface("panic", v).Str("context", action+" cleanup").Msg("Cleanup failed")
				}
			}()
			cleanup()
		}()
	}
}

func plural(n int) string {
	if n == 1 {
		return "character"
	}
	return "characters"
}
