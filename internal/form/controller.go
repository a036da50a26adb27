// Package form orchestrates one user submission: it reads the profile and
// thread, asks a ReplyGenerator for the next reply and records the result.
package form

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"replyai/internal/conversation"
	"replyai/internal/domain"
)

// User-visible status lines.
const (
	StatusNeedName     = "Please enter a conversation name (e.g. store or client)."
	StatusNeedMessages = "Please fill in both your scouting message and the store owner's latest reply."
	StatusGenerating   = "Generating reply..."
	StatusGenerated    = "Reply generated successfully."
	StatusBusy         = "A reply is already being generated."
	StatusProfileSaved = "Profile saved."
	StatusCopied       = "Reply copied to clipboard."
	StatusCopyFailed   = "Could not copy text."
)

// Surface is where the controller reports progress and results.
type Surface interface {
	SetStatus(msg string)
	SetSubmitEnabled(enabled bool)
	ShowReply(text string)
}

// Submission is the raw form input for one generation.
type Submission struct {
	ConversationName    string
	ReplyName           string
	StoreName           string
	StoreURL            string
	ScoutingMessage     string
	StoreOwnerReply     string
	Tone                string
	Goal                string
	Length              string
	ExtraSalesProofURLs []string
	ExtraPortfolioURLs  []string
	ExtraNotes          string
}

// Outcome is the result of one Submit.
type Outcome struct {
	Status string
	Reply  string
	Thread domain.Thread
	Err    error
}

type Config struct {
	Store     domain.LocalStore
	Manager   *conversation.Manager
	Replies   domain.ReplyGenerator
	Surface   Surface
	Clipboard Clipboard // optional
	Logger    *slog.Logger
}

type Controller struct {
	store     domain.LocalStore
	manager   *conversation.Manager
	replies   domain.ReplyGenerator
	surface   Surface
	clipboard Clipboard
	logger    *slog.Logger

	busy atomic.Bool

	mu        sync.Mutex
	lastReply string
}

func NewController(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		store:     cfg.Store,
		manager:   cfg.Manager,
		replies:   cfg.Replies,
		surface:   cfg.Surface,
		clipboard: cfg.Clipboard,
		logger:    cfg.Logger,
	}
}

// Submit runs one submission. The store owner's reply is appended to the
// thread and saved before the generator is called, so it stays even when
// generation fails. Only one Submit runs at a time per Controller; this is a
// best-effort guard, not a lock across processes sharing a store.
func (c *Controller) Submit(ctx context.Context, sub Submission) Outcome {
	if !c.busy.CompareAndSwap(false, true) {
		return c.status(Outcome{Status: StatusBusy})
	}
	defer c.busy.Store(false)

	name := strings.TrimSpace(sub.ConversationName)
	if name == "" {
		return c.status(Outcome{Status: StatusNeedName})
	}
	scouting := strings.TrimSpace(sub.ScoutingMessage)
	ownerReply := strings.TrimSpace(sub.StoreOwnerReply)
	if scouting == "" || ownerReply == "" {
		return c.status(Outcome{Status: StatusNeedMessages})
	}

	logger := c.logger.With("conversation", name)

	threads := c.store.LoadThreads(ctx)
	thread := conversation.AppendMessage(threads, name, domain.Message{Role: domain.RoleUser, Content: ownerReply})
	if err := c.store.SaveThreads(ctx, threads); err != nil {
		logger.Warn("cannot save store owner reply", "err", err)
	}

	profile := c.store.LoadProfile(ctx)
	req := domain.GenerationRequest{
		ConversationHistory: thread.Messages,
		SalespersonProfile:  profile.Snapshot(),
		ReplyName:           strings.TrimSpace(sub.ReplyName),
		StoreName:           strings.TrimSpace(sub.StoreName),
		StoreURL:            strings.TrimSpace(sub.StoreURL),
		ScoutingMessage:     scouting,
		StoreOwnerReply:     ownerReply,
		Tone:                sub.Tone,
		Goal:                sub.Goal,
		Length:              sub.Length,
		SalesProofURLs:      domain.MergeURLs(profile.DefaultSalesProofURLs, CleanURLs(sub.ExtraSalesProofURLs)),
		PortfolioURLs:       domain.MergeURLs(profile.DefaultPortfolioURLs, CleanURLs(sub.ExtraPortfolioURLs)),
		ExtraNotes:          strings.TrimSpace(sub.ExtraNotes),
	}

	c.surface.SetStatus(StatusGenerating)
	c.surface.SetSubmitEnabled(false)
	defer c.surface.SetSubmitEnabled(true)

	text, err := c.replies.GenerateReply(ctx, req)
	if err != nil {
		logger.Warn("reply generation failed", "err", err)
		return c.status(Outcome{Status: domain.PublicMessage(err), Thread: thread, Err: err})
	}

	c.surface.ShowReply(text)
	c.mu.Lock()
	c.lastReply = text
	c.mu.Unlock()

	thread = conversation.AppendMessage(threads, name, domain.Message{Role: domain.RoleAssistant, Content: text})
	if err := c.store.SaveThreads(ctx, threads); err != nil {
		logger.Warn("cannot save generated reply", "err", err)
	}
	c.manager.Render(ctx, name)

	logger.Info("reply recorded", "messages", len(thread.Messages))
	return c.status(Outcome{Status: StatusGenerated, Reply: text, Thread: thread})
}

func (c *Controller) status(o Outcome) Outcome {
	c.surface.SetStatus(o.Status)
	return o
}

// SelectConversation re-renders the named conversation.
func (c *Controller) SelectConversation(ctx context.Context, name string) conversation.Rendering {
	return c.manager.Render(ctx, strings.TrimSpace(name))
}

// LastReply returns the most recent generated reply.
func (c *Controller) LastReply() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReply
}

// CleanURLs trims entries and drops blanks, keeping order.
func CleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// SplitURLs splits newline-separated text into a cleaned URL list.
func SplitURLs(text string) []string {
	return CleanURLs(strings.Split(text, "\n"))
}
