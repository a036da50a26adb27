package main

import (
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"

	"replyai/internal/client"
	"replyai/internal/conversation"
	"replyai/internal/domain"
	"replyai/internal/form"
)

var errDraftFailed = errors.New("draft failed")

type draftOptions struct {
	sub        form.Submission
	local      bool
	copy       bool
	showThread bool
	endpoint   string
}

func (a *app) draftCmd() *cobra.Command {
	var o draftOptions
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft the next reply in a conversation",
		Long: `Appends the store owner's reply to the named conversation, drafts the next
reply and records it. The reply is printed on stdout; status lines go to stderr.`,
		Example: `  replyai draft -n AcmeStore --scouting "Hi, loved your store" \
    --owner-reply "Thanks! Tell me more" --tone friendly --goal book_call`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDraft(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.sub.ConversationName, "conversation", "n", "", "conversation name (store or client)")
	f.StringVar(&o.sub.ReplyName, "reply-name", "", "label for this reply (context only)")
	f.StringVar(&o.sub.StoreName, "store-name", "", "store name")
	f.StringVar(&o.sub.StoreURL, "store-url", "", "store URL")
	f.StringVarP(&o.sub.ScoutingMessage, "scouting", "s", "", "your original outreach message")
	f.StringVarP(&o.sub.StoreOwnerReply, "owner-reply", "r", "", "the store owner's latest reply")
	f.StringVar(&o.sub.Tone, "tone", "", "friendly|formal|direct|persuasive|exaggerating")
	f.StringVar(&o.sub.Goal, "goal", "", "book_call|get_whatsapp|close_deal|explain_offer")
	f.StringVar(&o.sub.Length, "length", "", "short|medium|long")
	f.StringArrayVar(&o.sub.ExtraSalesProofURLs, "sales-proof", nil, "extra sales proof URL (repeatable)")
	f.StringArrayVar(&o.sub.ExtraPortfolioURLs, "portfolio", nil, "extra portfolio URL (repeatable)")
	f.StringVar(&o.sub.ExtraNotes, "notes", "", "extra notes for this reply")
	f.BoolVar(&o.local, "local", false, "call the completion API in-process instead of the reply server")
	f.StringVar(&o.endpoint, "endpoint", "", "reply server URL (default: client.endpoint)")
	f.BoolVar(&o.copy, "copy", false, "copy the reply to the clipboard")
	f.BoolVar(&o.showThread, "show-thread", false, "print the whole conversation after the reply")
	return cmd
}

func (a *app) runDraft(cmd *cobra.Command, o draftOptions) error {
	ctx := cmd.Context()
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	st, err := a.openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var replies domain.ReplyGenerator
	if o.local {
		svc, _, err := a.newReplyService(ctx, cfg, nil)
		if err != nil {
			return err
		}
		replies = svc
	} else {
		endpoint := cfg.Client.Endpoint
		if o.endpoint != "" {
			endpoint = o.endpoint
		}
		replies = client.New(client.Config{
			Endpoint: endpoint,
			Timeout:  time.Duration(cfg.Client.TimeoutSeconds) * time.Second,
			Logger:   a.logger,
		})
	}

	threadOut := io.Discard
	if o.showThread {
		threadOut = a.stdout
	}

	ctrl := form.NewController(form.Config{
		Store:     st,
		Manager:   conversation.NewManager(st, conversation.NewTerminalView(threadOut), a.logger),
		Replies:   replies,
		Surface:   form.NewTerminalSurface(a.stderr, a.stdout),
		Clipboard: form.SystemClipboard{},
		Logger:    a.logger,
	})

	out := ctrl.Submit(ctx, o.sub)
	if out.Status != form.StatusGenerated {
		return errDraftFailed
	}
	if o.copy {
		// Status already reports a failed copy; the draft itself succeeded.
		_ = ctrl.Copy(ctx)
	}
	return nil
}
