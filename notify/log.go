package notify

import (
	"github.com/rs/zerolog"
)

// Log records notifications in the application log.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Notify(message string, severity Severity) {
	var ev *zerolog.Event
	switch severity.orInfo() {
	case Warning:
		ev = l.log.Warn()
	case Error:
		ev = l.log.Error()
	default:
		ev = l.log.Info()
	}
	ev.Str("severity", severity.orInfo().String()).Msg(Message(message))
}
