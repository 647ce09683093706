// Package messages holds the human-readable lines a session accumulates for
// the terminal summary.
package messages

// Buffer is an ordered, drainable list of session messages.
// One Buffer is created per session and handed to whoever needs it.
type Buffer struct {
	lines []string
}

// NewBuffer creates an empty message buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a message to the end of the buffer
func (b *Buffer) Append(msg string) {
	b.lines = append(b.lines, msg)
}

// Drain returns all buffered messages in insertion order and empties the buffer.
// Draining an empty buffer returns nil.
func (b *Buffer) Drain() []string {
	if len(b.lines) == 0 {
		return nil
	}
	drained := b.lines
	b.lines = nil
	return drained
}

// Messages returns a copy of the buffered messages without clearing them
func (b *Buffer) Messages() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len reports the number of buffered messages
func (b *Buffer) Len() int {
	return len(b.lines)
}
