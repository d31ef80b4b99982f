package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"assistant/models"
	"assistant/pkg/config"
)

// ChatMessage is one turn of the context sent to the completion API.
type ChatMessage struct {
	Role models.Role
	Text string
}

// CompletionGateway turns an ordered conversation into the next assistant turn.
type CompletionGateway interface {
	Complete(ctx context.Context, history []ChatMessage) (string, error)
}

// LLMGateway adapts a langchaingo model. It makes exactly one call per Complete.
type LLMGateway struct {
	llm   llms.Model
	model string
}

func NewLLMGateway(llm llms.Model, model string) *LLMGateway {
	return &LLMGateway{llm: llm, model: model}
}

// NewCompletionGateway builds the gateway selected by COMPLETION_PROVIDER.
// It returns ErrCompletionUnavailable when the provider's credential is absent.
func NewCompletionGateway(ctx context.Context, cfg *config.Config) (CompletionGateway, error) {
	if strings.TrimSpace(cfg.CompletionAPIKey()) == "" {
		return nil, ErrCompletionUnavailable
	}

	switch cfg.CompletionProvider {
	case config.ProviderLocal:
		return LocalGateway{}, nil
	case config.ProviderGoogleAI:
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.GoogleAPIKey),
			googleai.WithDefaultModel(cfg.CompletionModel()),
		)
		if err != nil {
			return nil, fmt.Errorf("init googleai client: %w", err)
		}
		return NewLLMGateway(llm, cfg.CompletionModel()), nil
	default:
		opts := []openai.Option{
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.CompletionModel()),
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return NewLLMGateway(llm, cfg.CompletionModel()), nil
	}
}

func (g *LLMGateway) Complete(ctx context.Context, history []ChatMessage) (string, error) {
	content := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		role := schema.ChatMessageTypeHuman
		if m.Role == models.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, m.Text))
	}

	resp, err := g.llm.GenerateContent(ctx, content, llms.WithModel(g.model))
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Content, nil
}
