// Package prompt turns a GenerationRequest into the message sequence sent to
// the completion API. Everything here is pure: no I/O, no clock, no globals
// besides the embedded instruction tables.
package prompt

import (
	"fmt"
	"strings"

	"replyai/internal/domain"
)

// Prompt is the composed system/user pair for one generation.
type Prompt struct {
	System string
	User   string
}

type Composer struct {
	ins *Instructions
}

// New returns a Composer over the embedded instruction tables.
func New() (*Composer, error) {
	ins, err := DefaultInstructions()
	if err != nil {
		return nil, err
	}
	return &Composer{ins: ins}, nil
}

// NewWithInstructions returns a Composer over custom tables.
func NewWithInstructions(ins *Instructions) *Composer {
	return &Composer{ins: ins}
}

func (c *Composer) Instructions() *Instructions {
	return c.ins
}

func (c *Composer) Compose(req domain.GenerationRequest) Prompt {
	p := req.SalespersonProfile
	system := fmt.Sprintf(systemTemplate,
		c.ins.Tone.Lookup(req.Tone),
		c.ins.Goal.Lookup(req.Goal),
		c.ins.Length.Lookup(req.Length),
		orDefault(req.ReplyName, "not specified"),
		orDefault(req.StoreName, "not provided"),
		orDefault(req.StoreURL, "not provided"),
		orDefault(p.Name, "not specified"),
		orDefault(p.Agency, "not specified"),
		orDefault(p.Role, "not specified"),
		orDefault(p.Signature, "none"),
		joinOrNone(req.SalesProofURLs),
		joinOrNone(req.PortfolioURLs),
		orDefault(req.ExtraNotes, "None"),
	)
	user := fmt.Sprintf(userTemplate, req.ScoutingMessage, req.StoreOwnerReply)
	return Prompt{System: system, User: user}
}

// Messages returns system prompt + history verbatim + user prompt. History is
// copied, never trimmed or reordered.
func (c *Composer) Messages(req domain.GenerationRequest) []domain.Message {
	pr := c.Compose(req)
	msgs := make([]domain.Message, 0, len(req.ConversationHistory)+2)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: pr.System})
	msgs = append(msgs, req.ConversationHistory...)
	msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: pr.User})
	return msgs
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinOrNone(urls []string) string {
	if s := strings.Join(urls, ", "); s != "" {
		return s
	}
	return "None provided"
}

const systemTemplate = `You are a professional copywriter who writes WhatsApp / email style replies for a salesperson
who works with e-commerce store owners.

IMPORTANT STYLE RULES:
- The reply must sound 100%% human, like a real salesperson writing on their phone or laptop.
- Vary sentence length and structure. Mix short lines with slightly longer explanations.
- Do NOT use generic AI phrases like:
  "As an AI language model", "according to my training", "I don't have access", etc.
- Do NOT say that the text was generated or mention that you are an AI.
- You MAY mention that the salesperson uses AI-based systems or funnels, but only naturally and when it helps the pitch.

LANGUAGE RULE:
- First, detect the language of the STORE OWNER REPLY.
- Then reply ENTIRELY in that language (German in → German out, French → French, etc.).
- Do NOT state which language you detected. Just write in it.
- If the message mixes languages, choose the one that dominates.

GOAL & SHAPE:
%s
%s
%s

CONTEXT:
Reply name (for your context, do NOT write this in the message): %s
Store name (if provided): %s
Store URL (if provided): %s

Salesperson profile:
- Name: %s
- Agency / brand: %s
- Role: %s
- Signature to use at the end (if natural in the language): %s

Additional material you can reference:
Sales proof URLs (mention them generally, not as a long list):
%s

Portfolio URLs (you can mention you have a portfolio if needed):
%s

Extra notes from the user (if any, you may integrate them naturally):
%s

CONVERSATION:
You will receive previous conversation turns (user = store owner or salesperson, assistant = previous replies).
Use them as context to keep the same style and logic.
At the end of the message, if a signature is provided in the profile, you may include a short closing line plus their name/agency,
but keep it natural in the detected language.

Your output:
- ONE single reply message that the salesperson can send to the store owner.
- No headers like "Subject:", "From:", "To:". Just the message body.
- Use natural line breaks as in a WhatsApp or email message.`

const userTemplate = `This is the original scouting / reachout message the salesperson sent:

"%s"

This is the latest store owner's message:

"%s"

Write the next reply in the conversation, following all rules above.
Do NOT add labels like "Subject:", "From:", etc. Just the message body.`
