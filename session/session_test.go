package session_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blixt/freakfont/glyph"
	"github.com/blixt/freakfont/notify"
	"github.com/blixt/freakfont/session"
)

type fakeInput struct {
	mu       sync.Mutex
	text     string
	err      error
	resetErr error
}

func (f *fakeInput) Text() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, f.err
}

func (f *fakeInput) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return f.resetErr
	}
	f.text = ""
	return nil
}

func (f *fakeInput) set(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
}

type fakeOutput struct {
	mu       sync.Mutex
	text     string
	sets     int
	err      error
	selected int
}

func (f *fakeOutput) SetText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func (f *fakeOutput) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *fakeOutput) Select() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected++
	return nil
}

type note struct {
	message  string
	severity notify.Severity
}

type recorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *recorder) Notify(message string, severity notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{message, severity})
}

func (r *recorder) all() []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]note(nil), r.notes...)
}

type fakeClipboard struct {
	copied string
	err    error
}

func (f *fakeClipboard) Copy(text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.copied = text
	return "fake", nil
}

// panickyOutput blows up on anything but clearing.
type panickyOutput struct{ fakeOutput }

func (p *panickyOutput) SetText(text string) error {
	if text != "" {
		panic("display exploded")
	}
	return p.fakeOutput.SetText(text)
}

type harness struct {
	in    *fakeInput
	out   *fakeOutput
	notes *recorder
	clip  *fakeClipboard
	logs  *bytes.Buffer
	s     *session.Session
}

func newHarness(t *testing.T, mutate func(*session.Config)) *harness {
	t.Helper()
	h := &harness{
		in:    &fakeInput{},
		out:   &fakeOutput{},
		notes: &recorder{},
		clip:  &fakeClipboard{},
		logs:  &bytes.Buffer{},
	}
	cfg := session.Config{
		Input:     h.in,
		Output:    h.out,
		Notifier:  h.notes,
		Clipboard: h.clip,
		Debounce:  20 * time.Millisecond,
		Log:       zerolog.New(h.logs),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h.s = session.New(cfg)
	t.Cleanup(h.s.Close)
	return h
}

func TestConvert(t *testing.T) {
	h := newHarness(t, nil)
	h.in.set("Hello123")
	h.s.Convert()
	assert.Equal(t, "𝓗𝓮𝓵𝓵𝓸𝟏𝟐𝟑", h.out.Text())
	assert.Empty(t, h.notes.all())
}

func TestConvertEmptyInput(t *testing.T) {
	h := newHarness(t, nil)
	h.out.text = "stale"
	h.s.Convert()
	assert.Equal(t, "", h.out.Text())
	assert.Empty(t, h.notes.all())
}

func TestConvertStripsControlCharacters(t *testing.T) {
	h := newHarness(t, nil)
	h.in.set("ab\x00cd")
	h.s.Convert()
	assert.Equal(t, "𝓪𝓫𝓬𝓭", h.out.Text())
	assert.Empty(t, h.notes.all())
}

func TestConvertTruncates(t *testing.T) {
	h := newHarness(t, nil)
	h.in.set(strings.Repeat("a", 10_050))
	h.s.Convert()

	assert.Equal(t, strings.Repeat("𝓪", 10_000), h.out.Text())
	assert.Equal(t, []note{{"Text truncated to 10,000 characters", notify.Warning}}, h.notes.all())
}

func TestConvertCustomMaxLength(t *testing.T) {
	h := newHarness(t, func(c *session.Config) { c.MaxLength = 3 })
	h.in.set("abcdef")
	h.s.Convert()
	assert.Equal(t, "𝓪𝓫𝓬", h.out.Text())
	assert.Equal(t, []note{{"Text truncated to 3 characters", notify.Warning}}, h.notes.all())
}

func TestConvertUnmapped(t *testing.T) {
	h := newHarness(t, nil)
	h.in.set("a@b")
	h.s.Convert()
	assert.Equal(t, "𝓪@𝓫", h.out.Text())
	assert.Empty(t, h.notes.all(), "unmapped characters are quiet unless reported")

	h = newHarness(t, func(c *session.Config) { c.ReportUnmapped = true })
	h.in.set("a@b")
	h.s.Convert()
	assert.Equal(t, []note{{"1 character left unstyled", notify.Info}}, h.notes.all())
}

func TestConvertInputUnavailable(t *testing.T) {
	h := newHarness(t, nil)
	h.in.err = errors.New("no input surface")
	h.out.text = "stale"
	h.s.Convert()
	assert.Equal(t, "", h.out.Text())
	assert.Empty(t, h.notes.all())
	assert.Contains(t, h.logs.String(), "no input surface")
}

func TestConvertWithoutOutput(t *testing.T) {
	h := newHarness(t, func(c *session.Config) { c.Output = nil })
	h.in.set("abc")
	assert.NotPanics(t, h.s.Convert)
	assert.Equal(t, []note{{"Failed to convert text. Please try again.", notify.Error}}, h.notes.all())
	assert.Contains(t, h.logs.String(), session.ErrNoOutput.Error())
}

func TestConvertOutputFailureIsIsolated(t *testing.T) {
	h := newHarness(t, nil)
	h.out.err = errors.New("surface gone")
	h.in.set("abc")
	h.s.Convert()
	assert.Equal(t, []note{{"Could not display the converted text.", notify.Error}}, h.notes.all())

	// The next conversion is unaffected once the surface is back.
	h.out.err = nil
	h.s.Convert()
	assert.Equal(t, "𝓪𝓫𝓬", h.out.Text())
}

func TestConvertRecoversFromPanics(t *testing.T) {
	out := &panickyOutput{}
	out.text = "previous"
	h := newHarness(t, func(c *session.Config) { c.Output = out })
	h.in.set("abc")

	assert.NotPanics(t, h.s.Convert)
	assert.Equal(t, []note{{"Failed to convert text. Please try again.", notify.Error}}, h.notes.all())
	assert.Equal(t, "", out.Text(), "output is cleared after a fault")
	assert.Contains(t, h.logs.String(), "display exploded")
}

func TestSetTable(t *testing.T) {
	h := newHarness(t, nil)
	assert.Same(t, glyph.Script(), h.s.Table())

	h.s.SetTable(glyph.Monospace())
	h.s.SetTable(nil)
	assert.Same(t, glyph.Monospace(), h.s.Table())

	h.in.set("Go1")
	h.s.Convert()
	assert.Equal(t, "𝙶𝚘𝟷", h.out.Text())
}

func TestHandleInputDebounces(t *testing.T) {
	h := newHarness(t, nil)
	for _, text := range []string{"a", "ab", "abc"} {
		h.in.set(text)
		h.s.HandleInput()
	}

	require.Eventually(t, func() bool { return h.out.Text() == "𝓪𝓫𝓬" }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	assert.Equal(t, 1, h.out.sets)
}

func TestHandleInputWhitespaceClears(t *testing.T) {
	h := newHarness(t, func(c *session.Config) { c.Debounce = time.Hour })
	h.out.text = "𝓸𝓵𝓭"
	h.in.set("  \n\t")
	h.s.HandleInput()

	require.True(t, h.s.Flush())
	assert.Equal(t, "", h.out.Text())
	assert.Empty(t, h.notes.all())
}

func TestCopy(t *testing.T) {
	h := newHarness(t, nil)
	h.in.set("hi")
	h.s.Convert()
	h.s.Copy()

	assert.Equal(t, "𝓱𝓲", h.clip.copied)
	assert.Equal(t, []note{{"Text copied to clipboard!", notify.Info}}, h.notes.all())
}

func TestCopyNothing(t *testing.T) {
	h := newHarness(t, nil)
	h.out.text = "   "
	h.s.Copy()
	assert.Equal(t, []note{{"Nothing to copy! Type some text first.", notify.Error}}, h.notes.all())
	assert.Empty(t, h.clip.copied)
}

func TestCopyFallsBackToManualSelection(t *testing.T) {
	h := newHarness(t, nil)
	h.clip.err = errors.New("clipboard unavailable")
	h.out.text = "𝓱𝓲"
	h.s.Copy()

	assert.Equal(t, []note{{"Copy failed. Please select the text and copy it manually.", notify.Error}}, h.notes.all())
	assert.Equal(t, 1, h.out.selected)
}

func TestCopyWithoutClipboard(t *testing.T) {
	h := newHarness(t, func(c *session.Config) { c.Clipboard = nil })
	h.out.text = "𝓱𝓲"
	h.s.Copy()
	assert.Equal(t, 1, h.out.selected)
}

func TestCopyLargeText(t *testing.T) {
	h := newHarness(t, nil)
	h.out.text = strings.Repeat("x", session.LargeCopy+1)
	h.s.Copy()
	assert.Equal(t, []note{
		{"Text is very long. Copy may take a moment...", notify.Warning},
		{"Text copied to clipboard!", notify.Info},
	}, h.notes.all())
}

func TestCopyWithoutOutput(t *testing.T) {
	h := newHarness(t, func(c *session.Config) { c.Output = nil })
	assert.NotPanics(t, h.s.Copy)
	assert.Equal(t, []note{{"Failed to copy text. Please try selecting and copying manually.", notify.Error}}, h.notes.all())
	assert.Contains(t, h.logs.String(), session.ErrNoOutput.Error())
	assert.Empty(t, h.clip.copied)
}

func TestNextStyle(t *testing.T) {
	h := newHarness(t, func(c *session.Config) { c.Debounce = time.Hour })
	h.in.set("Go1")

	h.s.NextStyle()
	assert.Same(t, glyph.Monospace(), h.s.Table())
	assert.Equal(t, []note{{"Style: monospace", notify.Info}}, h.notes.all())

	require.True(t, h.s.Flush())
	assert.Equal(t, "𝙶𝚘𝟷", h.out.Text())

	h.s.SetTable(glyph.SansBoldItalic())
	h.s.NextStyle()
	assert.Same(t, glyph.Script(), h.s.Table())
}

func TestClear(t *testing.T) {
	h := newHarness(t, nil)
	h.in.set("abc")
	h.s.Convert()
	h.s.Clear()

	text, err := h.in.Text()
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, h.out.Text())
	assert.Equal(t, []note{{"Fields cleared!", notify.Info}}, h.notes.all())
}

func TestClearPartialFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.in.resetErr = errors.New("read only")
	h.out.err = errors.New("gone")
	h.s.Clear()
	assert.Equal(t, []note{{"Some fields couldn't be cleared: input, output", notify.Warning}}, h.notes.all())

	h = newHarness(t, func(c *session.Config) { c.Input = nil })
	h.s.Clear()
	assert.Equal(t, []note{{"Some fields couldn't be cleared: input unavailable", notify.Warning}}, h.notes.all())
}

func TestClearCancelsPendingConversion(t *testing.T) {
	h := newHarness(t, nil)
	h.in.set("abc")
	h.s.HandleInput()
	h.s.Clear()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, h.out.Text())
}

func TestNotifierPanicIsContained(t *testing.T) {
	h := newHarness(t, func(c *session.Config) {
		c.Notifier = notify.Func(func(string, notify.Severity) { panic("toast broke") })
	})
	h.in.set(strings.Repeat("a", 10_001))
	assert.NotPanics(t, h.s.Convert)
	assert.Equal(t, strings.Repeat("𝓪", 10_000), h.out.Text())
	assert.Contains(t, h.logs.String(), "toast broke")
}
