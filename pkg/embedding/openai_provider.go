package embedding

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider computes embeddings with the OpenAI API or any
// OpenAI-compatible endpoint (a custom base URL covers Jina, vLLM and
// similar gateways).
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) ModelId() string {
	return p.model
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) (*Result, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: []string{text},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &ServiceError{
				Provider:  "openai",
				Status:    apiErr.HTTPStatusCode,
				Body:      apiErr.Message,
				Retryable: apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429,
			}
		}
		return nil, &ServiceError{Provider: "openai", Body: err.Error(), Retryable: true}
	}
	if len(resp.Data) == 0 {
		return nil, &ServiceError{Provider: "openai", Body: "empty embedding response", Retryable: false}
	}

	values := resp.Data[0].Embedding

	return &Result{
		Values: values,
		Model:  p.model,
		Dim:    len(values),
	}, nil
}
