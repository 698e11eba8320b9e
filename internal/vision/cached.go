package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/vbonduro/fridgechef/internal/domain"
)

// Cache stores extraction results keyed by CacheKey.
type Cache interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Put(ctx context.Context, key string, names []string) error
}

// CachingExtractor skips the model call for images it has already seen.
// Cache failures are logged and never fail an extraction.
type CachingExtractor struct {
	next   Extractor
	cache  Cache
	logger *slog.Logger
}

func NewCachingExtractor(next Extractor, cache Cache, logger *slog.Logger) *CachingExtractor {
	return &CachingExtractor{next: next, cache: cache, logger: logger}
}

func (c *CachingExtractor) Extract(ctx context.Context, image domain.ImageRecord) ([]string, error) {
	key := CacheKey(image)

	names, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("extraction cache lookup failed", "key", key, "error", err)
	} else if ok {
		c.logger.Debug("extraction cache hit", "key", key, "ingredients", len(names))
		return names, nil
	}

	names, err = c.next.Extract(ctx, image)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, names); err != nil {
		c.logger.Warn("extraction cache store failed", "key", key, "error", err)
	}
	return names, nil
}

// CacheKey is the hex SHA-256 of the image bytes and its context hint.
func CacheKey(image domain.ImageRecord) string {
	h := sha256.New()
	h.Write(image.Data)
	h.Write([]byte{0})
	h.Write([]byte(image.Context))
	return hex.EncodeToString(h.Sum(nil))
}
