// Package normalize turns raw, possibly hostile input into text that is safe
// to map: it caps the length and strips ASCII control characters other than
// tab, line feed and carriage return.
//
// Normalization is total. Whatever it is given, it returns valid UTF-8 of at
// most the configured length.
package normalize

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// MaxLength is the default cap. Length is counted in UTF-16 code units, the
// unit text fields and clipboards measure in: characters outside the Basic
// Multilingual Plane, such as the stylized glyphs themselves, count as two.
const MaxLength = 10_000

// Result is sanitized text plus what had to be done to get there.
type Result struct {
	Text string
	// Truncated is set when the input was longer than the cap.
	Truncated bool
	// Removed counts stripped control characters.
	Removed int
}

// Normalizer normalizes with a fixed cap.
type Normalizer struct {
	max int
}

var std = New(MaxLength)

// New returns a Normalizer that caps text at max code units. A max below one
// falls back to MaxLength.
func New(max int) *Normalizer {
	if max < 1 {
		max = MaxLength
	}
	return &Normalizer{max: max}
}

// Max returns the cap in code units.
func (n *Normalizer) Max() int {
	return n.max
}

// Normalize normalizes raw with the default cap.
func Normalize(raw any) Result {
	return std.Normalize(raw)
}

// String is a shorthand for Normalize(s).Text.
func String(s string) string {
	return std.Normalize(s).Text
}

// Normalize coerces raw to text, truncates it to the cap and strips control
// characters. Invalid UTF-8 bytes become U+FFFD.
func (n *Normalizer) Normalize(raw any) (res Result) {
	defer func() {
		// Coercion runs arbitrary String methods; never let one escape.
		if r := recover(); r != nil {
			res = Result{}
		}
	}()

	s := coerce(raw)
	if s == "" {
		return Result{}
	}

	// Cut at the cap first so a huge input is never copied whole. A character
	// that would only partly fit is dropped.
	units := 0
	for i, r := range s {
		size := utf16.RuneLen(r)
		if size < 0 {
			size = 1
		}
		if units+size > n.max {
			s, res.Truncated = s[:i], true
			break
		}
		units += size
	}

	out, _, err := transform.String(stripControls, s)
	if err != nil {
		return Result{}
	}
	// Every invalid byte is one character on both sides, since it comes out
	// as one U+FFFD, so the difference is exactly what was stripped.
	res.Text = out
	res.Removed = utf8.RuneCountInString(s) - utf8.RuneCountInString(out)
	return res
}

// stripControls removes stripped characters and replaces invalid UTF-8 bytes
// with U+FFFD.
var stripControls = runes.Remove(runes.Predicate(isStripped))

// isStripped reports whether r is one of U+0000-U+0008, U+000B, U+000C,
// U+000E-U+001F or U+007F.
func isStripped(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return false
	case r < 0x20, r == 0x7F:
		return true
	}
	return false
}

func coerce(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case []rune:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}
