package providers

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"agentic_studio/pkg/models"
)

// ImageOptions tunes an image request.
type ImageOptions struct {
	Style         string // e.g. "vivid", "natural"
	Landscape     bool
	PreferDiagram bool // web sourcing only
}

// ImageResult is one produced or sourced image.
type ImageResult struct {
	URL      string            `json:"url,omitempty"`
	Data     []byte            `json:"data,omitempty"`
	Cost     float64           `json:"cost"`
	License  string            `json:"license,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ImageProvider turns a prompt into an image.
type ImageProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts ImageOptions) (*ImageResult, error)
}

// DALL·E 3 pricing per image.
const (
	dalleCostSquare    = 0.04
	dalleCostLandscape = 0.08
)

// DallEProvider generates images through the OpenAI image API.
type DallEProvider struct {
	client *openai.Client
}

var _ ImageProvider = (*DallEProvider)(nil)

func NewDallEProvider(apiKey string) (*DallEProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}
	return &DallEProvider{client: openai.NewClient(apiKey)}, nil
}

func (p *DallEProvider) Name() string { return "dalle" }

func (p *DallEProvider) Generate(ctx context.Context, prompt string, opts ImageOptions) (*ImageResult, error) {
	size := openai.CreateImageSize1024x1024
	cost := dalleCostSquare
	if opts.Landscape {
		size = openai.CreateImageSize1792x1024
		cost = dalleCostLandscape
	}
	style := openai.CreateImageStyleVivid
	if opts.Style == "natural" {
		style = openai.CreateImageStyleNatural
	}

	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          openai.CreateImageModelDallE3,
		Size:           size,
		Style:          style,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Retryable: true, Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &models.ProviderError{Provider: p.Name(), Err: fmt.Errorf("no image returned")}
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Err: fmt.Errorf("bad image payload: %w", err)}
	}
	return &ImageResult{
		Data: data,
		Cost: cost,
		Metadata: map[string]string{
			"model":          "dall-e-3",
			"revised_prompt": resp.Data[0].RevisedPrompt,
		},
	}, nil
}
