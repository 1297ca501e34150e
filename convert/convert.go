// Package convert maps sanitized text through a glyph table one character at
// a time.
package convert

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Table is anything that can look up a stylized code point. *glyph.Table is
// the usual implementation.
type Table interface {
	Lookup(r rune) (rune, bool)
}

// Result is the converted text together with how many characters were passed
// through unchanged. Partial success is the normal outcome, so there is no
// error.
type Result struct {
	Text string
	// Unmapped counts characters emitted as-is, including faults.
	Unmapped int
	// Faults counts characters whose lookup panicked.
	Faults int
}

// Converter converts with a fixed table and reports lookup faults to a logger.
type Converter struct {
	table Table
	log   zerolog.Logger
}

// New returns a Converter for table.
func New(table Table, log zerolog.Logger) *Converter {
	return &Converter{table: table, log: log}
}

// Convert maps text through table without logging.
func Convert(text string, table Table) Result {
	return New(table, zerolog.Nop()).Convert(text)
}

// Convert maps every character of text. Characters missing from the table are
// kept unchanged. Each character is handled on its own, so a fault on one of
// them cannot affect the rest.
func (c *Converter) Convert(text string) Result {
	var res Result
	var b strings.Builder
	b.Grow(len(text) * 2)
	pos := 0
	for _, r := range text {
		g, ok, err := c.lookup(r)
		switch {
		case err != nil:
			res.Faults++
			res.Unmapped++
			if res.Faults == 1 {
				c.log.Error().Err(err).Str("context", "lookup").Int("position", pos).Msg("Character conversion failed")
			}
			b.WriteRune(r)
		case ok:
			b.WriteRune(g)
		default:
			res.Unmapped++
			b.WriteRune(r)
		}
		pos++
	}
	if res.Faults > 1 {
		c.log.Warn().Int("faults", res.Faults).Msg("Further character conversions failed")
	}
	res.Text = b.String()
	return res
}

func (c *Converter) lookup(r rune) (g rune, ok bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("lookup of %q panicked: %v", r, v)
		}
	}()
	if c.table == nil {
		return 0, false, nil
	}
	g, ok = c.table.Lookup(r)
	return g, ok, nil
}
