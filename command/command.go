// Package command implements the slash commands of the interactive prompt.
package command

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Prefix marks a prompt line as a command rather than text to convert.
const Prefix = "/"

var ErrUnknown = errors.New("unknown command")

type Command interface {
	// Name is what the user types after the prefix.
	Name() string
	// Description is a one-line summary for the help listing.
	Description() string
	// Run runs the command with the words that followed its name.
	Run(r Runner, args []string) error
}

// Runner receives what a command has to say. Reports are separate from the
// converted output, which goes through the session.
type Runner interface {
	Report(status string)
}

// NewRunner returns a Runner that prints every report on its own line of w.
func NewRunner(w io.Writer) Runner {
	return lineRunner{w: w}
}

type lineRunner struct {
	w io.Writer
}

func (r lineRunner) Report(status string) {
	fmt.Fprintln(r.w, strings.TrimRight(status, "\n"))
}

// Func returns a command backed by fn.
func Func(name, description string, fn func(r Runner, args []string) error) Command {
	return &command{name: name, description: description, fn: fn}
}

type command struct {
	name, description string
	fn                func(r Runner, args []string) error
}

func (c *command) Name() string {
	return c.name
}

func (c *command) Description() string {
	return c.description
}

func (c *command) Run(r Runner, args []string) error {
	return c.fn(r, args)
}

type Box struct {
	commands map[string]Command
}

// NewBox returns a Box containing the given commands.
func NewBox(commands ...Command) *Box {
	b := &Box{
		commands: make(map[string]Command),
	}
	for _, c := range commands {
		b.Add(c)
	}
	return b
}

// Add adds a command to the box. Names must be unique.
func (b *Box) Add(c Command) {
	name := c.Name()
	if _, ok := b.commands[name]; ok {
		panic(fmt.Sprintf("command %q already exists", name))
	}
	b.commands[name] = c
}

// Get returns the command with the given name, or nil.
func (b *Box) Get(name string) Command {
	return b.commands[name]
}

// IsCommand reports whether line should be handed to Run.
func IsCommand(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), Prefix)
}

// Run parses a line such as "/style monospace" and runs the named command.
func (b *Box) Run(r Runner, line string) error {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), Prefix))
	if len(fields) == 0 {
		return fmt.Errorf("%w: %q", ErrUnknown, line)
	}
	c := b.Get(fields[0])
	if c == nil {
		return fmt.Errorf("%w: %s%s", ErrUnknown, Prefix, fields[0])
	}
	return c.Run(r, fields[1:])
}

// Help lists every command with its description, sorted by name.
func (b *Box) Help() string {
	names := make([]string, 0, len(b.commands))
	width := 0
	for name := range b.commands {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "%s%-*s  %s\n", Prefix, width, name, b.commands[name].Description())
	}
	return sb.String()
}
