package command

import (
	"fmt"

	"github.com/blixt/freakfont/glyph"
	"github.com/blixt/freakfont/notify"
)

// Session is what the built-in commands act on.
type Session interface {
	Copy()
	Clear()
	Table() *glyph.Table
	SetTable(t *glyph.Table)
}

// Builtin returns the prompt commands: copy, clear, style, styles and help.
// Style changes are announced through n.
func Builtin(s Session, n notify.Notifier) *Box {
	if n == nil {
		n = notify.Nop
	}
	box := NewBox(
		Func("copy", "Copy the last converted text to the clipboard", func(r Runner, args []string) error {
			s.Copy()
			return nil
		}),
		Func("clear", "Forget the current input and output", func(r Runner, args []string) error {
			s.Clear()
			return nil
		}),
		Func("style", "Show or switch the glyph style", func(r Runner, args []string) error {
			if len(args) == 0 {
				r.Report(fmt.Sprintf("Current style: %s", s.Table().Name()))
				return nil
			}
			t, ok := glyph.ByName(args[0])
			if !ok {
				return fmt.Errorf("unknown style %q, try %sstyles", args[0], Prefix)
			}
			s.SetTable(t)
			n.Notify("Style: "+t.Name(), notify.Info)
			return nil
		}),
		Func("styles", "List the available glyph styles", func(r Runner, args []string) error {
			for _, name := range glyph.Names() {
				t, _ := glyph.ByName(name)
				r.Report(fmt.Sprintf("%-17s %s", name, t.Sample("Hello 123")))
			}
			return nil
		}),
	)
	box.Add(Func("help", "List the commands", func(r Runner, args []string) error {
		r.Report(box.Help() + "Type exit to quit.")
		return nil
	}))
	return box
}
