package glyph_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blixt/freakfont/glyph"
)

const baseChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func TestScriptTable(t *testing.T) {
	tests := []struct {
		base rune
		want string
	}{
		{'a', "𝓪"},
		{'w', "𝔀"},
		{'z', "𝔃"},
		{'A', "𝓐"},
		{'H', "𝓗"},
		{'Z', "𝓩"},
		{'0', "𝟎"},
		{'9', "𝟗"},
	}
	for _, tt := range tests {
		g, ok := glyph.Script().Lookup(tt.base)
		require.True(t, ok, "expected %q to be mapped", tt.base)
		assert.Equal(t, tt.want, string(g))
	}
}

func TestTablesCoverBaseCharacters(t *testing.T) {
	for _, name := range glyph.Names() {
		t.Run(name, func(t *testing.T) {
			table, ok := glyph.ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, table.Name())
			assert.Equal(t, 62, table.Len())

			seen := make(map[rune]rune)
			for _, r := range baseChars {
				g, ok := table.Lookup(r)
				require.True(t, ok, "missing %q", r)
				assert.Equal(t, 4, utf8.RuneLen(g), "glyph for %q should be outside the BMP", r)
				if prev, dup := seen[g]; dup {
					t.Errorf("%q and %q both map to %q", prev, r, g)
				}
				seen[g] = r
			}
		})
	}
}

func TestLookupMisses(t *testing.T) {
	for _, r := range []rune{' ', '@', '\n', 'é', 'ß', '😀', 0, utf8.RuneError} {
		_, ok := glyph.Script().Lookup(r)
		assert.False(t, ok, "%q should not be mapped", r)
	}

	var nilTable *glyph.Table
	_, ok := nilTable.Lookup('a')
	assert.False(t, ok)
	assert.Equal(t, 0, nilTable.Len())
}

func TestEachIsOrdered(t *testing.T) {
	var bases []rune
	glyph.Monospace().Each(func(base, _ rune) bool {
		bases = append(bases, base)
		return true
	})
	require.Len(t, bases, 62)
	assert.Equal(t, '0', bases[0])
	assert.Equal(t, 'z', bases[len(bases)-1])

	count := 0
	glyph.Monospace().Each(func(_, _ rune) bool {
		count++
		return count < 3
	})
	assert.Equal(t, 3, count)
}

func TestSample(t *testing.T) {
	assert.Equal(t, "𝓗𝓮𝓵𝓵𝓸 𝟏𝟐𝟑!", glyph.Script().Sample("Hello 123!"))
}

func TestByNameUnknown(t *testing.T) {
	_, ok := glyph.ByName("comic-sans")
	assert.False(t, ok)
	assert.Same(t, glyph.Script(), glyph.Default())
}

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		from *glyph.Table
		want *glyph.Table
	}{
		{name: "first to second", from: glyph.Script(), want: glyph.Monospace()},
		{name: "middle", from: glyph.SansBold(), want: glyph.SansItalic()},
		{name: "wraps around", from: glyph.SansBoldItalic(), want: glyph.Script()},
		{name: "nil", from: nil, want: glyph.Default()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, glyph.Next(tt.from))
		})
	}
}

func TestNextVisitsEveryStyle(t *testing.T) {
	seen := map[string]bool{}
	tbl := glyph.Default()
	for range glyph.Names() {
		seen[tbl.Name()] = true
		tbl = glyph.Next(tbl)
	}
	assert.Len(t, seen, len(glyph.Names()))
	assert.Same(t, glyph.Default(), tbl)
}
