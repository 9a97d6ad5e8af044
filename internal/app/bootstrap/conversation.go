package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/commerce-chat/cmd/mainconfig"
	appconfig "github.com/wolfman30/commerce-chat/internal/config"
	"github.com/wolfman30/commerce-chat/internal/conversation"
	"github.com/wolfman30/commerce-chat/internal/observability/metrics"
	"github.com/wolfman30/commerce-chat/internal/persona"
	"github.com/wolfman30/commerce-chat/pkg/logging"
)

const (
	ProviderGemini  = "gemini"
	ProviderBedrock = "bedrock"
)

// ErrBackendUnconfigured is returned by the placeholder client used when no
// provider credentials are present. Chat requests degrade instead of failing.
var ErrBackendUnconfigured = errors.New("bootstrap: language backend is not configured")

// BuildLLMClient returns the single language backend selected by LLM_PROVIDER.
// Missing credentials yield a client that always fails so /chat degrades and
// /rate keeps working.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.LLMClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.LLMProvider {
	case "", ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("no Gemini API key configured; chat responses will degrade")
			return unconfiguredClient(), nil
		}
		client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, err
		}
		logger.Info("using gemini language backend", "model", cfg.GeminiModelID)
		return client, nil
	case ProviderBedrock:
		if cfg.BedrockModelID == "" {
			logger.Warn("no Bedrock model configured; chat responses will degrade")
			return unconfiguredClient(), nil
		}
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		client, err := conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
		if err != nil {
			return nil, err
		}
		logger.Info("using bedrock language backend", "model", cfg.BedrockModelID, "region", cfg.AWSRegion)
		return client, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func unconfiguredClient() conversation.LLMClient {
	return conversation.LLMClientFunc(func(context.Context, conversation.LLMRequest) (conversation.LLMResponse, error) {
		return conversation.LLMResponse{}, ErrBackendUnconfigured
	})
}

// BuildOrchestrator wires persona, dispatcher and backend into the chat pipeline.
func BuildOrchestrator(cfg *appconfig.Config, p *persona.Config, llm conversation.LLMClient, lookup conversation.OrderStatusLookup, m *metrics.ChatMetrics, logger *logging.Logger) *conversation.Orchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	return conversation.NewOrchestrator(conversation.OrchestratorConfig{
		Persona:    p,
		LLM:        llm,
		Dispatcher: conversation.NewDispatcher(lookup, cfg.DefaultOrderStatus, m, logger),
		Timeout:    cfg.ChatTimeout,
		DebugTrace: cfg.ChatDebugTrace,
		Metrics:    m,
		Logger:     logger,
	})
}
