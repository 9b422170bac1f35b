package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/rotbot/rotbot-api/pkg/config"
	"github.com/rotbot/rotbot-api/pkg/logctx"
	"github.com/rotbot/rotbot-api/pkg/metrics"
)

// AzureClient talks to an Azure OpenAI deployment. The client is built on
// first use; missing credentials surface as ErrNotConfigured then.
type AzureClient struct {
	cfg      cfgpkg.LLMConfig
	log      *zap.SugaredLogger
	validate *validator.Validate

	mu     sync.Mutex
	client *openai.Client
}

func NewAzureClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *AzureClient {
	return &AzureClient{cfg: cfg.LLM, log: log, validate: validator.New()}
}

func (a *AzureClient) ensure() (*openai.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}
	a.cfg.APIKey = strings.TrimSpace(a.cfg.APIKey)
	a.cfg.Endpoint = strings.TrimSpace(a.cfg.Endpoint)
	if err := a.validate.Struct(a.cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	conf := openai.DefaultAzureConfig(a.cfg.APIKey, a.cfg.Endpoint)
	if a.cfg.APIVersion != "" {
		conf.APIVersion = a.cfg.APIVersion
	}
	deployment := a.cfg.Deployment
	conf.AzureModelMapperFunc = func(string) string { return deployment }
	timeout := a.cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	conf.HTTPClient = &http.Client{Timeout: timeout}

	a.client = openai.NewClientWithConfig(conf)
	a.log.Infow("llm_client_initialized", "deployment", deployment, "api_version", conf.APIVersion)
	return a.client, nil
}

func (a *AzureClient) Complete(ctx context.Context, messages []Message) (string, error) {
	client, err := a.ensure()
	if err != nil {
		return "", err
	}
	start := time.Now()
	defer metrics.ObserveSince("llm", "chat_completion", start)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.cfg.Model,
		Messages: lo.Map(messages, func(m Message, _ int) openai.ChatCompletionMessage {
			return openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
		}),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		TopP:        a.cfg.TopP,
	})
	if err != nil {
		logctx.FromCtx(ctx, a.log).Errorw("llm_completion_failed", "err", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

var Module = fx.Options(
	fx.Provide(
		NewAzureClient,
		func(a *AzureClient) Completer { return a },
	),
)
