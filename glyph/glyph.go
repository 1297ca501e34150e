// Package glyph holds the fixed lookup tables that map the 62 base characters
// (a-z, A-Z, 0-9) to stylized code points from the Mathematical Alphanumeric
// Symbols block.
package glyph

import (
	"sort"
)

// Table is an immutable mapping from a base character to exactly one stylized
// code point. Runes outside a-z, A-Z and 0-9 always miss.
type Table struct {
	name   string
	glyphs map[rune]rune
}

// style describes a table by the first code point of each run. The upper and
// lower case runs are contiguous for every style offered here.
type style struct {
	name   string
	upper  rune
	lower  rune
	digits rune
}

var styles = []style{
	{name: "script", upper: 0x1D4D0, lower: 0x1D4EA, digits: 0x1D7CE},
	{name: "monospace", upper: 0x1D670, lower: 0x1D68A, digits: 0x1D7F6},
	{name: "sans-bold", upper: 0x1D5D4, lower: 0x1D5EE, digits: 0x1D7EC},
	{name: "sans-italic", upper: 0x1D608, lower: 0x1D622, digits: 0x1D7E2},
	// There are no italic digits, so the bold sans digits are reused.
	{name: "sans-bold-italic", upper: 0x1D63C, lower: 0x1D656, digits: 0x1D7EC},
}

var (
	tables = buildAll()
	byName = index(tables)
)

func Script() *Table         { return tables[0] }
func Monospace() *Table      { return tables[1] }
func SansBold() *Table       { return tables[2] }
func SansItalic() *Table     { return tables[3] }
func SansBoldItalic() *Table { return tables[4] }

// Default returns the table used when nothing else has been chosen.
func Default() *Table {
	return Script()
}

func buildAll() []*Table {
	ts := make([]*Table, len(styles))
	for i, s := range styles {
		ts[i] = build(s)
	}
	return ts
}

func index(ts []*Table) map[string]*Table {
	m := make(map[string]*Table, len(ts))
	for _, t := range ts {
		m[t.name] = t
	}
	return m
}

func build(s style) *Table {
	t := &Table{
		name:   s.name,
		glyphs: make(map[rune]rune, 62),
	}
	for i := rune(0); i < 26; i++ {
		t.glyphs['A'+i] = s.upper + i
		t.glyphs['a'+i] = s.lower + i
	}
	for i := rune(0); i < 10; i++ {
		t.glyphs['0'+i] = s.digits + i
	}
	return t
}

// Lookup returns the stylized code point for r. A nil table misses everything.
func (t *Table) Lookup(r rune) (rune, bool) {
	if t == nil {
		return 0, false
	}
	g, ok := t.glyphs[r]
	return g, ok
}

// Name returns the style name the table was registered under.
func (t *Table) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Len returns the number of base characters the table covers.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.glyphs)
}

// Each calls fn for every entry in base character order (digits, upper case,
// lower case). It stops early if fn returns false.
func (t *Table) Each(fn func(base, glyph rune) bool) {
	if t == nil {
		return
	}
	keys := make([]rune, 0, len(t.glyphs))
	for k := range t.glyphs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		if !fn(k, t.glyphs[k]) {
			return
		}
	}
}

// Sample renders "Aa0" style previews, handy for listing styles.
func (t *Table) Sample(text string) string {
	out := []rune(text)
	for i, r := range out {
		if g, ok := t.Lookup(r); ok {
			out[i] = g
		}
	}
	return string(out)
}

// ByName returns the built-in table with the given name.
func ByName(name string) (*Table, bool) {
	t, ok := byName[name]
	return t, ok
}

// Next returns the built-in table after t, wrapping around. Anything that is
// not a built-in table gets Default.
func Next(t *Table) *Table {
	for i, bt := range tables {
		if bt == t {
			return tables[(i+1)%len(tables)]
		}
	}
	return Default()
}

// Names returns the names of all built-in tables in a stable order.
func Names() []string {
	names := make([]string, 0, len(styles))
	for _, s := range styles {
		names = append(names, s.name)
	}
	return names
}
