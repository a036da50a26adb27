package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"replyai/internal/conversation"
	"replyai/internal/domain"
	"replyai/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSurface struct {
	mu       sync.Mutex
	statuses []string
	enabled  []bool
	reply    string
}

func (f *fakeSurface) SetStatus(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, msg)
}

func (f *fakeSurface) SetSubmitEnabled(e bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = append(f.enabled, e)
}

func (f *fakeSurface) ShowReply(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = text
}

func (f *fakeSurface) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return ""
	}
	return f.statuses[len(f.statuses)-1]
}

type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	reqs    []domain.GenerationRequest
	block   chan struct{} // when set, calls wait for it
	entered chan struct{}
}

func (g *fakeGenerator) GenerateReply(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reqs = append(g.reqs, req)
	if g.err != nil {
		return "", g.err
	}
	r := fmt.Sprintf("reply %d", len(g.reqs))
	if len(g.replies) >= len(g.reqs) {
		r = g.replies[len(g.reqs)-1]
	}
	return r, nil
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fixture struct {
	ctrl    *Controller
	store   *store.Store
	surface *fakeSurface
	gen     *fakeGenerator
	clip    *fakeClipboard
}

func newFixture(t *testing.T, gen *fakeGenerator) *fixture {
	t.Helper()
	s := store.New(store.NewMemoryBackend(), nil)
	surface := &fakeSurface{}
	clip := &fakeClipboard{}
	ctrl := NewController(Config{
		Store:     s,
		Manager:   conversation.NewManager(s, &nopView{}, nil),
		Replies:   gen,
		Surface:   surface,
		Clipboard: clip,
	})
	return &fixture{ctrl: ctrl, store: s, surface: surface, gen: gen, clip: clip}
}

type nopView struct{}

func (nopView) Clear()                        {}
func (nopView) ShowEmpty(string)              {}
func (nopView) ShowTurns([]conversation.Turn) {}
func (nopView) ScrollToLatest()               {}

func acmeSubmission(ownerReply string) Submission {
	return Submission{
		ConversationName: "AcmeStore",
		ScoutingMessage:  "Hi, loved your store",
		StoreOwnerReply:  ownerReply,
		Tone:             "friendly",
		Goal:             "book_call",
		Length:           "short",
	}
}

func TestSubmit_TwoGenerationsBuildFourMessages(t *testing.T) {
	f := newFixture(t, &fakeGenerator{replies: []string{"first answer", "second answer"}})
	ctx := context.Background()

	out := f.ctrl.Submit(ctx, acmeSubmission("Thanks! Tell me more"))
	require.NoError(t, out.Err)
	require.Equal(t, StatusGenerated, out.Status)
	out = f.ctrl.Submit(ctx, acmeSubmission("How much does it cost?"))
	require.NoError(t, out.Err)

	want := []domain.Message{
		{Role: domain.RoleUser, Content: "Thanks! Tell me more"},
		{Role: domain.RoleAssistant, Content: "first answer"},
		{Role: domain.RoleUser, Content: "How much does it cost?"},
		{Role: domain.RoleAssistant, Content: "second answer"},
	}
	if diff := cmp.Diff(want, f.store.LoadThreads(ctx)["AcmeStore"].Messages); diff != "" {
		t.Fatalf("thread mismatch (-want +got):\n%s", diff)
	}

	// The second request carried the whole history including the new user turn.
	require.Len(t, f.gen.reqs, 2)
	require.Equal(t, want[:3], f.gen.reqs[1].ConversationHistory)
	require.Equal(t, "second answer", f.surface.reply)
	require.Equal(t, "second answer", f.ctrl.LastReply())
}

func TestSubmit_FailureKeepsUserMessage(t *testing.T) {
	gen := &fakeGenerator{err: &domain.RemoteError{StatusCode: 500, Message: "Failed to generate reply"}}
	f := newFixture(t, gen)
	ctx := context.Background()

	out := f.ctrl.Submit(ctx, acmeSubmission("Thanks! Tell me more"))
	require.Error(t, out.Err)
	require.Equal(t, "Failed to generate reply", out.Status)
	require.Equal(t, "Failed to generate reply", f.surface.last())

	msgs := f.store.LoadThreads(ctx)["AcmeStore"].Messages
	require.Equal(t, []domain.Message{{Role: domain.RoleUser, Content: "Thanks! Tell me more"}}, msgs)
	require.Empty(t, f.surface.reply)
}

func TestSubmit_NetworkFailureMessage(t *testing.T) {
	f := newFixture(t, &fakeGenerator{err: fmt.Errorf("%w: dial tcp: refused", domain.ErrNetwork)})
	out := f.ctrl.Submit(context.Background(), acmeSubmission("hello"))
	require.Equal(t, "Network or server error.", out.Status)
}

func TestSubmit_SubmitReenabledOnEveryOutcome(t *testing.T) {
	for name, gen := range map[string]*fakeGenerator{
		"success": {},
		"failure": {err: errors.New("boom")},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, gen)
			f.ctrl.Submit(context.Background(), acmeSubmission("hi"))
			require.Equal(t, []bool{false, true}, f.surface.enabled)
			require.Contains(t, f.surface.statuses, StatusGenerating)
		})
	}
}

func TestSubmit_MissingFieldsNeverCallGenerator(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		sub  Submission
		want string
	}{
		{"no conversation", Submission{ScoutingMessage: "a", StoreOwnerReply: "b"}, StatusNeedName},
		{"blank conversation", Submission{ConversationName: "  ", ScoutingMessage: "a", StoreOwnerReply: "b"}, StatusNeedName},
		{"empty owner reply", Submission{ConversationName: "Acme", ScoutingMessage: "a", StoreOwnerReply: ""}, StatusNeedMessages},
		{"blank scouting", Submission{ConversationName: "Acme", ScoutingMessage: " \n", StoreOwnerReply: "b"}, StatusNeedMessages},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &fakeGenerator{})
			f.store.SaveThreads(ctx, domain.Threads{"Acme": {Name: "Acme", Messages: []domain.Message{{Role: domain.RoleUser, Content: "old"}}}})
			before := f.store.LoadThreads(ctx)

			out := f.ctrl.Submit(ctx, tt.sub)
			require.Equal(t, tt.want, out.Status)
			require.Empty(t, f.gen.reqs)
			require.Empty(t, f.surface.enabled)
			if diff := cmp.Diff(before, f.store.LoadThreads(ctx)); diff != "" {
				t.Fatalf("threads changed (-before +after):\n%s", diff)
			}
		})
	}
}

func TestSubmit_MergesProfileURLsFirst(t *testing.T) {
	f := newFixture(t, &fakeGenerator{})
	ctx := context.Background()
	_, err := f.ctrl.SaveProfile(ctx, ProfileForm{
		Name:           " Ana ",
		Agency:         "GrowthLab",
		SalesProofURLs: "https://proof/1\n\n  https://proof/2  \n",
		PortfolioURLs:  "https://portfolio/main",
	})
	require.NoError(t, err)

	sub := acmeSubmission("hi")
	sub.ExtraSalesProofURLs = []string{" https://proof/extra ", ""}
	sub.ExtraPortfolioURLs = []string{"https://portfolio/case"}
	f.ctrl.Submit(ctx, sub)

	req := f.gen.reqs[0]
	require.Equal(t, []string{"https://proof/1", "https://proof/2", "https://proof/extra"}, req.SalesProofURLs)
	require.Equal(t, []string{"https://portfolio/main", "https://portfolio/case"}, req.PortfolioURLs)
	require.Equal(t, domain.ProfileSnapshot{Name: "Ana", Agency: "GrowthLab"}, req.SalespersonProfile)
}

func TestSubmit_ConcurrentSubmitIsRefused(t *testing.T) {
	gen := &fakeGenerator{block: make(chan struct{}), entered: make(chan struct{})}
	f := newFixture(t, gen)
	ctx := context.Background()

	done := make(chan Outcome)
	go func() { done <- f.ctrl.Submit(ctx, acmeSubmission("first")) }()
	<-gen.entered

	second := f.ctrl.Submit(ctx, acmeSubmission("second"))
	require.Equal(t, StatusBusy, second.Status)

	close(gen.block)
	first := <-done
	require.Equal(t, StatusGenerated, first.Status)

	msgs := f.store.LoadThreads(ctx)["AcmeStore"].Messages
	require.Len(t, msgs, 2)
	require.Equal(t, "first", msgs[0].Content)
}

func TestSaveProfile_RoundTripEmptyLists(t *testing.T) {
	f := newFixture(t, &fakeGenerator{})
	ctx := context.Background()

	p, err := f.ctrl.SaveProfile(ctx, ProfileForm{Name: "Ana"})
	require.NoError(t, err)
	require.Equal(t, StatusProfileSaved, f.surface.last())
	require.NotNil(t, p.DefaultSalesProofURLs)

	got := f.store.LoadProfile(ctx)
	require.Equal(t, []string{}, got.DefaultSalesProofURLs)
	require.Equal(t, []string{}, got.DefaultPortfolioURLs)
	require.Equal(t, ProfileForm{Name: "Ana"}, f.ctrl.CurrentProfile(ctx))
}

func TestCopy(t *testing.T) {
	f := newFixture(t, &fakeGenerator{replies: []string{"copy me"}})
	ctx := context.Background()

	require.Error(t, f.ctrl.Copy(ctx))
	require.Equal(t, StatusCopyFailed, f.surface.last())

	f.ctrl.Submit(ctx, acmeSubmission("hi"))
	require.NoError(t, f.ctrl.Copy(ctx))
	require.Equal(t, "copy me", f.clip.text)
	require.Equal(t, StatusCopied, f.surface.last())

	f.clip.err = errors.New("no display")
	require.Error(t, f.ctrl.Copy(ctx))
	require.Equal(t, StatusCopyFailed, f.surface.last())
}

func TestSelectConversation(t *testing.T) {
	f := newFixture(t, &fakeGenerator{})
	ctx := context.Background()

	require.True(t, f.ctrl.SelectConversation(ctx, "AcmeStore").Empty)
	f.ctrl.Submit(ctx, acmeSubmission("hi"))
	r := f.ctrl.SelectConversation(ctx, " AcmeStore ")
	require.Len(t, r.Turns, 2)
	require.Equal(t, conversation.AssistantLabel, r.Turns[1].Label)
}

func TestSplitURLs(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, SplitURLs("a\n  \n b \n"))
	require.Equal(t, []string{}, SplitURLs(""))
}

func TestTerminalSurface_SplitsStatusAndReply(t *testing.T) {
	var status, out strings.Builder
	s := NewTerminalSurface(&status, &out)
	s.SetStatus(StatusGenerating)
	s.SetSubmitEnabled(false)
	s.ShowReply("Hallo Ana")
	s.SetStatus(StatusGenerated)

	require.Equal(t, StatusGenerating+"\n"+StatusGenerated+"\n", status.String())
	require.Equal(t, "Hallo Ana\n", out.String())
}
