package domain

import "context"

// GenerationRequest is the fully resolved input to one reply generation. The
// JSON form is the body of POST /api/generate-reply.
type GenerationRequest struct {
	ConversationHistory []Message       `json:"conversationHistory"`
	SalespersonProfile  ProfileSnapshot `json:"salespersonProfile"`
	ReplyName           string          `json:"replyName"`
	StoreName           string          `json:"storeName"`
	StoreURL            string          `json:"storeUrl"`
	ScoutingMessage     string          `json:"scoutingMessage"`
	StoreOwnerReply     string          `json:"storeOwnerReply"`
	Tone                string          `json:"tone"`
	Goal                string          `json:"goal"`
	Length              string          `json:"length"`
	SalesProofURLs      []string        `json:"salesProofUrls"`
	PortfolioURLs       []string        `json:"portfolioUrls"`
	ExtraNotes          string          `json:"extraNotes"`
}

// MergeURLs concatenates profile defaults with request-specific extras,
// defaults first, keeping the relative order of both lists.
func MergeURLs(defaults, extras []string) []string {
	out := make([]string, 0, len(defaults)+len(extras))
	out = append(out, defaults...)
	return append(out, extras...)
}

// ReplyGenerator produces one reply for a request. The in-process reply
// service and the HTTP client both implement it.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, req GenerationRequest) (string, error)
}
