package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// embeddingDimensions maps known embedding models to their vector sizes.
var embeddingDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
}

// OpenAIClient implements EmbeddingProvider and CompletionProvider against
// the OpenAI API (or any compatible endpoint via WithBaseURL).
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
	dimensions     int
}

// Option configures an OpenAIClient.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) { o.baseURL = url }
}

// WithTimeout bounds each API request. Defaults to 60 seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// NewOpenAIClient creates a client for the given models. The API key is
// required: a missing credential fails here, before any query is processed.
func NewOpenAIClient(apiKey, chatModel, embeddingModel string, opts ...Option) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	o := clientOptions{timeout: 60 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := openai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: o.timeout}

	dims, ok := embeddingDimensions[embeddingModel]
	if !ok {
		dims = 1536
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(cfg),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		dimensions:     dims,
	}, nil
}

// Embed returns the embedding vector for text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is empty")
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response empty")
	}

	embedding := resp.Data[0].Embedding
	result := make([]float32, len(embedding))
	copy(result, embedding)
	return result, nil
}

// Dimensions returns the vector size of the configured embedding model.
func (c *OpenAIClient) Dimensions() int {
	return c.dimensions
}

// Complete returns a chat completion for the system persona and user prompt.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion response empty")
	}
	return resp.Choices[0].Message.Content, nil
}
