package domain

import (
	"maps"
	"slices"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. It is never edited after being
// appended to a Thread.
type Message struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// Thread is a named, append-only conversation with one store owner.
type Thread struct {
	Name     string    `json:"name"`
	Messages []Message `json:"messages"`
}

// Append returns a copy of the thread with msg added at the end. The
// receiver's backing array is never shared with the result.
func (t Thread) Append(msg Message) Thread {
	msgs := make([]Message, 0, len(t.Messages)+1)
	msgs = append(msgs, t.Messages...)
	msgs = append(msgs, msg)
	return Thread{Name: t.Name, Messages: msgs}
}

// Threads maps a conversation name to its thread.
type Threads map[string]Thread

// Names returns the thread names, sorted.
func (ts Threads) Names() []string {
	return slices.Sorted(maps.Keys(ts))
}
