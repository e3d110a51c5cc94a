// Package cache decorates an embedding service with a Redis lookaside cache.
// CV texts and reference answers are embedded repeatedly across an interview;
// caching keeps that off the provider bill.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

const keyPrefix = "emb:"

// Service wraps an inner embedding service with Redis. Cache failures never
// fail the embed call; they just fall through to the inner service.
type Service struct {
	inner domain.EmbeddingService
	rdb   *redis.Client
	ttl   time.Duration
}

var _ domain.EmbeddingService = (*Service)(nil)

// New wraps inner with a Redis cache.
func New(inner domain.EmbeddingService, rdb *redis.Client, ttl time.Duration) *Service {
	return &Service{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Embed serves from cache when possible, otherwise embeds and stores.
func (s *Service) Embed(ctx domain.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err == nil {
			return vec, nil
		}
		// Corrupt entry: drop it and re-embed.
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("embedding cache read failed", slog.Any("error", err))
	}

	vec, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(vec); err == nil {
		if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			slog.Warn("embedding cache write failed", slog.Any("error", err))
		}
	}
	return vec, nil
}

// CosineSimilarity delegates to the inner service.
func (s *Service) CosineSimilarity(a, b []float32) float64 {
	return s.inner.CosineSimilarity(a, b)
}
