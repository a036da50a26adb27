// Package conversation renders stored threads and appends new turns.
package conversation

import (
	"context"
	"log/slog"

	"replyai/internal/domain"
)

const (
	EmptyHint      = "No messages yet for this conversation."
	AssistantLabel = "You (Reply AI)"
	UserLabel      = "Store Owner / You"
)

// Turn is one displayable message.
type Turn struct {
	Role    string
	Label   string
	Content string
}

// View is a render target. Implementations draw whatever the Manager pushes.
type View interface {
	Clear()
	ShowEmpty(hint string)
	ShowTurns(turns []Turn)
	ScrollToLatest()
}

// Rendering is what Render drew, returned for callers and tests.
type Rendering struct {
	Name  string
	Empty bool
	Turns []Turn
}

type Manager struct {
	store  domain.LocalStore
	view   View
	logger *slog.Logger
}

func NewManager(store domain.LocalStore, view View, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, view: view, logger: logger}
}

// Render redraws the named conversation. An empty name only clears the view;
// an unknown or empty thread shows EmptyHint.
func (m *Manager) Render(ctx context.Context, name string) Rendering {
	m.view.Clear()
	if name == "" {
		return Rendering{}
	}

	th, ok := m.store.LoadThreads(ctx)[name]
	if !ok || len(th.Messages) == 0 {
		m.view.ShowEmpty(EmptyHint)
		return Rendering{Name: name, Empty: true}
	}

	turns := Turns(th)
	m.view.ShowTurns(turns)
	m.view.ScrollToLatest()
	m.logger.Debug("conversation rendered", "name", name, "turns", len(turns))
	return Rendering{Name: name, Turns: turns}
}

// Turns maps each message to a labelled turn, in append order.
func Turns(th domain.Thread) []Turn {
	turns := make([]Turn, len(th.Messages))
	for i, msg := range th.Messages {
		label := UserLabel
		if msg.Role == domain.RoleAssistant {
			label = AssistantLabel
		}
		turns[i] = Turn{Role: msg.Role, Label: label, Content: msg.Content}
	}
	return turns
}

// AppendMessage appends msg to the named thread in threads, creating the
// thread when absent, and returns the updated thread. Persisting is left to
// the caller.
func AppendMessage(threads domain.Threads, name string, msg domain.Message) domain.Thread {
	th, ok := threads[name]
	if !ok {
		th = domain.Thread{Name: name, Messages: []domain.Message{}}
	}
	th = th.Append(msg)
	threads[name] = th
	return th
}
