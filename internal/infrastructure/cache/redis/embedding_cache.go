package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"lumi/internal/core/ports"
)

// EmbeddingCache wraps an embedding provider with a Redis read-through cache
// keyed by text hash. Re-ingesting the same material skips the model entirely.
// Cache failures are logged and the call falls through to the provider.
type EmbeddingCache struct {
	inner  ports.EmbeddingProvider
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewEmbeddingCache(inner ports.EmbeddingProvider, client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *EmbeddingCache {
	if prefix == "" {
		prefix = "lumi:emb"
	}
	return &EmbeddingCache{
		inner:  inner,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *EmbeddingCache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return c.inner.Embed(ctx, texts)
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = c.key(text)
	}

	out := make([][]float32, len(texts))
	var missingIdx []int

	cached, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("embedding cache read failed", "error", err)
		missingIdx = make([]int, len(texts))
		for i := range texts {
			missingIdx[i] = i
		}
	} else {
		for i, raw := range cached {
			vector, ok := decodeVector(raw)
			if !ok {
				missingIdx = append(missingIdx, i)
				continue
			}
			out[i] = vector
		}
	}

	if len(missingIdx) == 0 {
		return out, nil
	}

	missingTexts := make([]string, len(missingIdx))
	for i, idx := range missingIdx {
		missingTexts[i] = texts[idx]
	}

	vectors, err := c.inner.Embed(ctx, missingTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missingTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(missingTexts))
	}

	pipe := c.client.Pipeline()
	for i, idx := range missingIdx {
		out[idx] = vectors[i]
		encoded, err := json.Marshal(vectors[i])
		if err != nil {
			continue
		}
		pipe.Set(ctx, keys[idx], encoded, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("embedding cache write failed", "error", err)
	}
	return out, nil
}

func (c *EmbeddingCache) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (c *EmbeddingCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + ":" + hex.EncodeToString(sum[:])
}

func decodeVector(raw any) ([]float32, bool) {
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil, false
	}
	var vector []float32
	if err := json.Unmarshal([]byte(s), &vector); err != nil || len(vector) == 0 {
		return nil, false
	}
	return vector, true
}
