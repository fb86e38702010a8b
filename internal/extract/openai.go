package extract

import (
	"context"
	"encoding/base64"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/imagendo/radeval/internal/config"
	"github.com/imagendo/radeval/internal/model"
)

// OpenAIProvider extracts report data via the OpenAI chat completions API,
// sending report pages as data-URL image parts and requesting JSON output.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
	limiter   *rate.Limiter
}

// NewOpenAIProvider creates the provider from configuration.
func NewOpenAIProvider(cfg config.OpenAIConfig, maxTokens int, limiter *rate.Limiter) *OpenAIProvider {
	return &OpenAIProvider{
		client:    openai.NewClient(cfg.Key),
		model:     cfg.Model,
		maxTokens: maxTokens,
		limiter:   limiter,
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Model implements Provider.
func (p *OpenAIProvider) Model() string { return p.model }

// Extract implements Provider.
func (p *OpenAIProvider) Extract(ctx context.Context, prompt string, pages [][]byte) (model.Record, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "openai: rate limit wait")
		}
	}

	parts := make([]openai.ChatMessagePart, 0, len(pages)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: prompt,
	})
	for _, page := range pages {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(page),
			},
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "openai: create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("openai: response has no choices")
	}

	return DecodeResponse(resp.Choices[0].Message.Content)
}
