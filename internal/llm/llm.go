// Package llm builds the chat models the agent stages share and wraps them
// with the retry/breaker runner so a flaky API surfaces as a clean stage
// error instead of a hung run.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/config"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/resilience"
)

const defaultOpenAIBaseURL = "https://api.deepseek.com/v1"

// Models holds the two completion tiers the stages draw from: quick for
// analysts and debaters, deep for the manager, trader, and judges.
type Models struct {
	Quick model.BaseChatModel
	Deep  model.BaseChatModel
}

// NewModels builds both tiers for the configured provider.
func NewModels(ctx context.Context, cfg *config.Config) (*Models, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "", "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			return nil, errors.New("deepseek API key not configured")
		}
		quick, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.QuickThinkLLM,
			MaxTokens: 4096,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create quick deepseek model: %w", err)
		}
		deep, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.DeepThinkLLM,
			MaxTokens: 8192,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create deep deepseek model: %w", err)
		}
		return &Models{Quick: quick, Deep: deep}, nil

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("openai API key not configured")
		}
		baseURL := cfg.BackendURL
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		quickTokens := 4096
		quick, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   baseURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.QuickThinkLLM,
			MaxTokens: &quickTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create quick openai model: %w", err)
		}
		deepTokens := 8192
		deep, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   baseURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.DeepThinkLLM,
			MaxTokens: &deepTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create deep openai model: %w", err)
		}
		return &Models{Quick: quick, Deep: deep}, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

// Invoker runs completions against one model under a named breaker.
type Invoker struct {
	model  model.BaseChatModel
	runner *resilience.Runner
	log    *zap.Logger
	name   string
	policy resilience.Policy
}

// NewInvoker wraps m. The name keys the circuit breaker and log fields.
func NewInvoker(m model.BaseChatModel, runner *resilience.Runner, log *zap.Logger, name string) *Invoker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoker{
		model:  m,
		runner: runner,
		log:    log,
		name:   name,
		policy: resilience.DefaultPolicy(),
	}
}

// Generate returns the trimmed completion text for messages. Empty
// completions count as failures so the retry loop gets another attempt.
func (inv *Invoker) Generate(ctx context.Context, messages []*schema.Message) (string, error) {
	var content string
	err := inv.runner.Do(ctx, inv.name, inv.policy, func(ctx context.Context) error {
		msg, err := inv.model.Generate(ctx, messages)
		if err != nil {
			return fmt.Errorf("chat completion failed: %w", err)
		}
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			return errors.New("chat model returned empty content")
		}
		content = strings.TrimSpace(msg.Content)
		return nil
	})
	if err != nil {
		return "", err
	}

	inv.log.Debug("completion received",
		zap.String("model", inv.name),
		zap.Int("prompt_messages", len(messages)),
		zap.Int("content_chars", len(content)),
	)
	return content, nil
}
