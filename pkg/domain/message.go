package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Kind determines which interactive affordance a Message carries.
type Kind string

const (
	KindPlain                Kind = "plain"
	KindDisambiguationPrompt Kind = "disambiguation_prompt" // offers provide-answer / search-web
	KindWebPreviewPrompt     Kind = "web_preview_prompt"    // offers yes / no on a web preview
	KindJokePrompt           Kind = "joke_prompt"           // offers "another joke"
)

// Message is one transcript entry. It is never mutated once appended.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the given time.
func NewMessage(role Role, text string, kind Kind, now time.Time) Message {
	if kind == "" {
		kind = KindPlain
	}
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Kind:      kind,
		Timestamp: now,
	}
}

// Transcript is the ordered, append-only log of exchanged messages.
// The zero value is an empty transcript ready to use.
type Transcript struct {
	messages []Message
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// AppendUnlessRepeated appends msg unless the last entry has the same role and text.
// It reports whether the message was appended.
func (t *Transcript) AppendUnlessRepeated(msg Message) bool {
	if last, ok := t.Last(); ok && last.Role == msg.Role && last.Text == msg.Text {
		return false
	}
	t.Append(msg)
	return true
}

// Last returns the most recent message, if any.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Messages returns a copy of all messages.
func (t *Transcript) Messages() []Message {
	return t.Since(0)
}

// Since returns a copy of the messages appended at or after index n.
func (t *Transcript) Since(n int) []Message {
	if n < 0 {
		n = 0
	}
	if n >= len(t.messages) {
		return []Message{}
	}
	out := make([]Message, len(t.messages)-n)
	copy(out, t.messages[n:])
	return out
}
