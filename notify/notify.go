// Package notify is the one-way channel the converter uses to tell the user
// about truncation, unmapped characters and faults.
package notify

import (
	"github.com/blixt/freakfont/normalize"
)

type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Valid reports whether s is one of the known severities. Sinks render
// anything else as Info.
func (s Severity) Valid() bool {
	return s == Info || s == Warning || s == Error
}

func (s Severity) orInfo() Severity {
	if s.Valid() {
		return s
	}
	return Info
}

// Notifier shows a message to the user. Implementations must not block for
// long and must not fail loudly: a notification is best effort.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Func adapts a function to the Notifier interface.
type Func func(message string, severity Severity)

func (f Func) Notify(message string, severity Severity) {
	f(message, severity)
}

// Nop discards every notification.
var Nop = Func(func(string, Severity) {})

// Message sanitizes a notification message the same way user text is
// sanitized, so a message can never smuggle control sequences to the screen.
func Message(message string) string {
	return normalize.String(message)
}

type multi []Notifier

// Multi fans every notification out to all of ns.
func Multi(ns ...Notifier) Notifier {
	return multi(ns)
}

func (m multi) Notify(message string, severity Severity) {
	for _, n := range m {
		if n != nil {
			n.Notify(message, severity)
		}
	}
}
