package session

import "sync"

// TextInput is an Input that holds whatever was last set, such as a line from
// a prompt or command line arguments.
type TextInput struct {
	mu   sync.Mutex
	text string
}

func NewTextInput(text string) *TextInput {
	return &TextInput{text: text}
}

func (t *TextInput) Set(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.text = text
}

func (t *TextInput) Text() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text, nil
}

func (t *TextInput) Reset() error {
	t.Set("")
	return nil
}
