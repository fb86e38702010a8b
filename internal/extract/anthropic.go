package extract

import (
	"context"
	"encoding/base64"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/imagendo/radeval/internal/config"
	"github.com/imagendo/radeval/internal/model"
)

// AnthropicProvider extracts report data via the Anthropic Messages API,
// sending report pages as base64 image blocks.
type AnthropicProvider struct {
	client    sdk.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

// NewAnthropicProvider creates the provider from configuration.
func NewAnthropicProvider(cfg config.AnthropicConfig, maxTokens int, limiter *rate.Limiter) *AnthropicProvider {
	return &AnthropicProvider{
		client:    sdk.NewClient(option.WithAPIKey(cfg.Key)),
		model:     cfg.Model,
		maxTokens: int64(maxTokens),
		limiter:   limiter,
	}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Model implements Provider.
func (p *AnthropicProvider) Model() string { return p.model }

// Extract implements Provider.
func (p *AnthropicProvider) Extract(ctx context.Context, prompt string, pages [][]byte) (model.Record, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "anthropic: rate limit wait")
		}
	}

	blocks := make([]sdk.ContentBlockParamUnion, 0, len(pages)+1)
	blocks = append(blocks, sdk.NewTextBlock(prompt))
	for _, page := range pages {
		b64 := base64.StdEncoding.EncodeToString(page)
		blocks = append(blocks, sdk.NewImageBlockBase64("image/png", b64))
	}

	msg, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(blocks...)},
	})
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, eris.New("anthropic: response has no text content")
	}

	zap.L().Debug("anthropic: extraction response",
		zap.String("model", p.model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	return DecodeResponse(text.String())
}
