package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"replyai/internal/api"
	"replyai/internal/config"
	"replyai/internal/domain"
	"replyai/internal/metrics"
	"replyai/internal/prompt"
	"replyai/internal/provider"
	"replyai/internal/reply"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reply endpoint",
		Long:  "Serves POST /api/generate-reply, GET /status and GET /metrics. Press Ctrl+C to stop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			cfg.Server.Port, err = resolvePort(cmd.Flags().Changed("port"), port, os.Getenv("PORT"), cfg.Server.Port)
			if err != nil {
				return err
			}
			return a.runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default: server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default: $PORT, then server.port)")
	return cmd
}

// resolvePort picks the listen port: an explicit flag, then the PORT
// environment variable, then the configured port.
func resolvePort(flagSet bool, flagPort int, env string, configured int) (int, error) {
	if flagSet {
		return flagPort, nil
	}
	if env != "" {
		p, err := strconv.Atoi(env)
		if err != nil || p < 0 || p > 65535 {
			return 0, fmt.Errorf("invalid PORT %q", env)
		}
		return p, nil
	}
	return configured, nil
}

// newReplyService builds the in-process reply pipeline from config.
func (a *app) newReplyService(ctx context.Context, cfg *config.Config, m *metrics.Replies) (*reply.Service, domain.Provider, error) {
	prov, err := provider.NewFactory(cfg.Provider, a.logger).Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	composer, err := prompt.New()
	if err != nil {
		return nil, nil, err
	}
	svc := reply.NewService(reply.Config{
		Provider:    prov,
		Composer:    composer,
		Model:       cfg.Provider.EffectiveModel(),
		Temperature: cfg.Provider.Temperature,
		TopP:        cfg.Provider.TopP,
		Limiter:     reply.NewLimiter(cfg.Provider.RequestsPerMinute, cfg.Provider.Burst),
		Metrics:     m,
		Logger:      a.logger,
	})
	return svc, prov, nil
}

func (a *app) runServer(ctx context.Context, cfg *config.Config) error {
	collector := metrics.NewCollector("replyai")
	replyMetrics := metrics.NewReplies(collector)

	svc, prov, err := a.newReplyService(ctx, cfg, replyMetrics)
	if err != nil {
		return err
	}

	srv := api.NewServer(api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		Replies:      svc,
		Metrics:      collector,
		ReplyMetrics: replyMetrics,
		Version:      version,
		ProviderName: prov.Name(),
		Logger:       a.logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		checkProvider(gctx, prov, a.logger)
		return nil
	})
	return g.Wait()
}

// checkProvider logs whether the completion API answers. A failing check
// does not stop the server.
func checkProvider(ctx context.Context, prov domain.Provider, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := prov.Healthy(ctx); err != nil {
		logger.Warn("provider unhealthy at startup", "provider", prov.Name(), "err", err)
		return
	}
	logger.Info("provider healthy", "provider", prov.Name())
}
