package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"replyai/internal/config"
	"replyai/internal/domain"
)

// Gemini implements domain.Provider on the Gemini API via google.golang.org/genai.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

type GeminiConfig struct {
	APIKey  string
	APIBase string // optional endpoint override
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.Model == "" {
		cfg.Model = config.DefaultGeminiModel
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: SharedHTTPClient(cfg.Timeout),
	}
	if cfg.APIBase != "" && cfg.APIBase != defaultOpenAIBase {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.APIBase}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, logger: cfg.Logger}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Healthy(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	return nil
}

// Chat makes one GenerateContent call. System messages become the system
// instruction; assistant turns are sent with the model role.
func (g *Gemini) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	system, contents := toGeminiContents(req.Messages)

	temp := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	if req.TopP > 0 {
		topP := float32(req.TopP)
		cfg.TopP = &topP
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	start := time.Now()
	res, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	out := &domain.ChatResponse{
		Content:      res.Text(),
		FinishReason: "stop",
		LatencyMs:    time.Since(start).Milliseconds(),
	}
	if len(res.Candidates) > 0 && res.Candidates[0].FinishReason != "" {
		out.FinishReason = strings.ToLower(string(res.Candidates[0].FinishReason))
	}
	if u := res.UsageMetadata; u != nil {
		out.Usage = domain.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	g.logger.Debug("gemini completion", "model", model, "tokens", out.Usage.TotalTokens, "latency_ms", out.LatencyMs)
	return out, nil
}

// toGeminiContents splits system messages out and maps the rest to
// user/model turns, keeping their order.
func toGeminiContents(msgs []domain.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, m.Content)
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}
