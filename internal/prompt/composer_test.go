package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"replyai/internal/domain"
)

func newComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := New()
	require.NoError(t, err)
	return c
}

func sampleRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		ConversationHistory: []domain.Message{
			{Role: domain.RoleUser, Content: "Thanks! Tell me more"},
		},
		SalespersonProfile: domain.ProfileSnapshot{Name: "Ana", Agency: "GrowthLab", Role: "Partner", Signature: "Cheers, Ana"},
		ReplyName:          "acme-1",
		StoreName:          "AcmeStore",
		StoreURL:           "https://acme.example",
		ScoutingMessage:    "Hi, loved your store",
		StoreOwnerReply:    "Thanks! Tell me more",
		Tone:               "friendly",
		Goal:               "book_call",
		Length:             "short",
		SalesProofURLs:     []string{"https://proof/1", "https://proof/2"},
		PortfolioURLs:      []string{"https://portfolio"},
		ExtraNotes:         "Mention the free audit",
	}
}

func TestCompose_FriendlyBookCallScenario(t *testing.T) {
	c := newComposer(t)
	p := c.Compose(sampleRequest())

	require.Contains(t, p.System, "Use a warm, friendly, relaxed tone.")
	require.Contains(t, p.System, "Your main goal is to book a quick call or voice chat and agree on a time.")
	require.Contains(t, p.System, "Keep the reply short and sharp: 5–8 concise sentences.")
	require.Contains(t, p.System, "https://proof/1, https://proof/2")
	require.Contains(t, p.System, "Store name (if provided): AcmeStore")
	require.Contains(t, p.System, "- Signature to use at the end (if natural in the language): Cheers, Ana")
	require.Contains(t, p.System, "Mention the free audit")
	require.Contains(t, p.System, "100% human")
	require.NotContains(t, p.System, "%!")

	require.Contains(t, p.User, "\"Hi, loved your store\"")
	require.Contains(t, p.User, "\"Thanks! Tell me more\"")
	require.True(t, strings.HasSuffix(p.User, "Just the message body."))
}

func TestCompose_Deterministic(t *testing.T) {
	c := newComposer(t)
	req := sampleRequest()
	first := c.Compose(req)
	for range 5 {
		require.Equal(t, first, c.Compose(req))
	}
}

func TestCompose_SectionOrder(t *testing.T) {
	p := newComposer(t).Compose(sampleRequest())
	markers := []string{
		"IMPORTANT STYLE RULES:",
		"LANGUAGE RULE:",
		"GOAL & SHAPE:",
		"CONTEXT:",
		"Salesperson profile:",
		"Sales proof URLs",
		"Portfolio URLs",
		"Extra notes from the user",
		"CONVERSATION:",
		"Your output:",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(p.System, m)
		require.Greater(t, idx, last, "section %q out of order", m)
		last = idx
	}
}

func TestCompose_Fallbacks(t *testing.T) {
	p := newComposer(t).Compose(domain.GenerationRequest{
		ScoutingMessage: "hello",
		StoreOwnerReply: "hi",
		Tone:            "sarcastic",
	})

	require.Contains(t, p.System, "Use a professional, human-to-human tone.")
	require.Contains(t, p.System, "Your main goal is to keep the conversation moving and make it easy for them to respond.")
	require.Contains(t, p.System, "Write a medium-length reply: around 2–3 short paragraphs.")
	require.Contains(t, p.System, "Reply name (for your context, do NOT write this in the message): not specified")
	require.Contains(t, p.System, "Store URL (if provided): not provided")
	require.Contains(t, p.System, "- Agency / brand: not specified")
	require.Contains(t, p.System, "(if natural in the language): none")
	require.Equal(t, 2, strings.Count(p.System, "None provided"))
	require.Contains(t, p.System, "(if any, you may integrate them naturally):\nNone")
}

func TestCompose_CaseInsensitiveLookup(t *testing.T) {
	c := newComposer(t)
	p := c.Compose(domain.GenerationRequest{Tone: " FORMAL ", Goal: "Close_Deal", Length: "LONG"})
	require.Contains(t, p.System, "Use a formal, respectful, business tone.")
	require.Contains(t, p.System, "move them closer to saying yes")
	require.Contains(t, p.System, "Write a longer reply: 3–5 short paragraphs")
}

func TestMessages_SystemHistoryUser(t *testing.T) {
	c := newComposer(t)
	req := sampleRequest()
	req.ConversationHistory = []domain.Message{
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "reply one"},
		{Role: domain.RoleUser, Content: "second"},
	}

	msgs := c.Messages(req)
	require.Len(t, msgs, 5)
	require.Equal(t, domain.RoleSystem, msgs[0].Role)
	require.Equal(t, req.ConversationHistory, msgs[1:4])
	require.Equal(t, domain.RoleUser, msgs[4].Role)
	require.Equal(t, c.Compose(req).User, msgs[4].Content)
}

func TestParseInstructions_RequiresDefault(t *testing.T) {
	_, err := ParseInstructions([]byte("tone:\n  options:\n    a: b\ngoal:\n  default: g\nlength:\n  default: l\n"))
	require.Error(t, err)
}

func TestParseInstructions_LowercasesKeys(t *testing.T) {
	ins, err := ParseInstructions([]byte(`
tone: {default: "t", options: {Warm: "warm sentence"}}
goal: {default: "g"}
length: {default: "l"}
`))
	require.NoError(t, err)
	require.Equal(t, "warm sentence", ins.Tone.Lookup("warm"))
	require.Equal(t, "g", ins.Goal.Lookup("anything"))
}

func TestDefaultInstructions_Keys(t *testing.T) {
	ins, err := DefaultInstructions()
	require.NoError(t, err)
	require.Equal(t, []string{"direct", "exaggerating", "formal", "friendly", "persuasive"}, ins.Tone.Keys())
	require.Equal(t, []string{"book_call", "close_deal", "explain_offer", "get_whatsapp"}, ins.Goal.Keys())
	require.Equal(t, []string{"long", "medium", "short"}, ins.Length.Keys())
}
