package semantic

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/genai"
)

const defaultEmbeddingModel = "gemini-embedding-001"

// GenAIEmbedder encodes strings with a Gemini embedding model. Vectors are
// L2-normalized before they leave this type, so the detector can score pairs
// with a plain dot product.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

// NewGenAIEmbedder creates the production embedder. The client is created
// once and reused for every batch; callers own the lifecycle via Close.
func NewGenAIEmbedder(ctx context.Context, apiKey, model string) (*GenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if model == "" {
		model = defaultEmbeddingModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	return &GenAIEmbedder{client: client, model: model}, nil
}

func (e *GenAIEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, fmt.Errorf("embed batch of %d: %w", len(texts), err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("model returned %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = normalize(emb.Values)
	}
	return vectors, nil
}

// Close releases the underlying client. The genai client holds no
// closeable resources, so this is a no-op kept for interface symmetry.
func (e *GenAIEmbedder) Close() error {
	return nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
