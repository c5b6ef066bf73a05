package cmd

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/brickmetric/leadpulse/internal/calls"
	"github.com/brickmetric/leadpulse/internal/httpapi"
	"github.com/brickmetric/leadpulse/internal/leads"
	"github.com/brickmetric/leadpulse/internal/llm"
	"github.com/brickmetric/leadpulse/internal/llm/gemini"
	"github.com/brickmetric/leadpulse/internal/logger"
	"github.com/brickmetric/leadpulse/internal/secrets"
)

const defaultPort = 8000

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		config, err := getConfig()
		if err != nil {
			zl.Fatal("getting a config", zap.Error(err))
		}

		zl.Info("starting leadpulse", zap.String("version", version))

		gateway := buildGateway(ctx, config.LLM, zl)

		scoring := config.Scoring
		if scoring == nil {
			scoring = &ScoringConfig{}
		}
		llmCfg := config.LLM
		if llmCfg == nil {
			llmCfg = &LLMConfig{}
		}

		notes := leads.NewNotesInterpreter(gateway, llmCfg.MinNotesLength, llmCfg.MaxLogLength, zl)
		scorer := leads.NewScorer(notes, scoring.MaxParallel, zl)
		evaluator := calls.NewEvaluator(gateway, llmCfg.MaxLogLength, zl)

		port := servePort
		if port == 0 && config.Server != nil {
			port = config.Server.Port
		}
		if port == 0 {
			port = defaultPort
		}

		server := httpapi.NewServer(scorer, evaluator, version, scoring.MaxResults, zl)
		return server.Run(ctx, port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
}

// buildGateway assembles the LLM gateway once at startup. A missing or
// misconfigured backend is not fatal: the service runs with heuristics only.
func buildGateway(ctx context.Context, cfg *LLMConfig, zl *zap.Logger) *llm.Gateway {
	if cfg == nil || !cfg.Enabled {
		zl.Info("llm disabled, scoring with heuristics only")
		return llm.NewGateway(llm.Unavailable{}, llm.GatewayConfig{}, zl)
	}

	gatewayCfg := llm.GatewayConfig{
		MaxAttempts:    cfg.MaxAttempts,
		Timeout:        time.Duration(cfg.TimeoutSeconds) * time.Second,
		InitialBackoff: time.Duration(cfg.InitialBackoffMs) * time.Millisecond,
		MaxBackoff:     time.Duration(cfg.MaxBackoffMs) * time.Millisecond,
	}

	backend, err := buildBackend(ctx, cfg, zl)
	if err != nil {
		zl.Warn("llm backend unavailable, scoring with heuristics only", zap.Error(err))
		return llm.NewGateway(llm.Unavailable{}, gatewayCfg, zl)
	}

	gatewayCfg.ShouldRetry = gemini.IsRetryable

	zl.Info("llm backend ready", logger.CommonLLMFields(cfg.Provider, backend.Model())...)
	return llm.NewGateway(backend, gatewayCfg, zl)
}

func buildBackend(ctx context.Context, cfg *LLMConfig, zl *zap.Logger) (llm.TextGenerator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}

	var keyFile, model string
	if cfg.Gemini != nil {
		keyFile = cfg.Gemini.APIKeyFile
		model = cfg.Gemini.Model
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		Env:  geminiKeyEnv,
		File: keyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set %s or llm.gemini.api-key-file)", err, geminiKeyEnv)
	}

	backend, err := gemini.NewGenerator(ctx, apiKey, model)
	if err != nil {
		return nil, err
	}

	zl.Debug("gemini backend created", zap.String("model", backend.Model()))
	return backend, nil
}
