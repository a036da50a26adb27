// Package reply validates a GenerationRequest and turns it into one
// completion call.
package reply

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"replyai/internal/domain"
	"replyai/internal/logging"
	"replyai/internal/metrics"
	"replyai/internal/prompt"
)

// Config fixes the model and sampling for the lifetime of a Service.
type Config struct {
	Provider    domain.Provider
	Composer    *prompt.Composer
	Model       string
	Temperature float64
	TopP        float64
	Limiter     *Limiter         // optional
	Metrics     *metrics.Replies // optional
	Logger      *slog.Logger
}

type Service struct {
	provider    domain.Provider
	composer    *prompt.Composer
	model       string
	temperature float64
	topP        float64
	limiter     *Limiter
	metrics     *metrics.Replies
	logger      *slog.Logger
}

func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		provider:    cfg.Provider,
		composer:    cfg.Composer,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		limiter:     cfg.Limiter,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

// Validate reports domain.ErrInvalidInput when the scouting message or the
// store owner's reply is blank.
func Validate(req domain.GenerationRequest) error {
	if strings.TrimSpace(req.ScoutingMessage) == "" || strings.TrimSpace(req.StoreOwnerReply) == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// GenerateReply makes exactly one completion call and returns the trimmed
// text. Provider errors are logged here and come back wrapped in
// domain.ErrUpstreamError.
func (s *Service) GenerateReply(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if err := Validate(req); err != nil {
		s.record(metrics.OutcomeInvalidInput)
		return "", err
	}

	msgs := s.composer.Messages(req)
	logger := logging.FromContext(ctx, s.logger)

	if err := s.limiter.Wait(ctx); err != nil {
		logger.Warn("completion call not started", "err", err)
		s.record(metrics.OutcomeUpstreamError)
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamError, err)
	}

	if s.metrics != nil {
		s.metrics.InFlight.Inc()
		defer s.metrics.InFlight.Dec()
	}
	start := time.Now()
	resp, err := s.provider.Chat(ctx, domain.ChatRequest{
		Messages:    msgs,
		Model:       s.model,
		Temperature: s.temperature,
		TopP:        s.topP,
	})
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("error generating reply", "provider", s.provider.Name(), "err", err, "elapsed", elapsed)
		s.record(metrics.OutcomeUpstreamError)
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamError, err)
	}
	if s.metrics != nil {
		s.metrics.ObserveCompletion(elapsed, resp.Usage.TotalTokens)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		logger.Warn("completion returned no text", "provider", s.provider.Name(), "finish_reason", resp.FinishReason)
		s.record(metrics.OutcomeUpstreamEmpty)
		return "", domain.ErrUpstreamEmpty
	}

	logger.Info("reply generated",
		"provider", s.provider.Name(),
		"history", len(req.ConversationHistory),
		"chars", len(text),
		"tokens", resp.Usage.TotalTokens,
		"elapsed", elapsed,
	)
	s.record(metrics.OutcomeOK)
	return text, nil
}

func (s *Service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.Outcome(outcome)
	}
}
