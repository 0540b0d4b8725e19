package notifier

import (
	"context"
	"time"

	"github.com/NeuralTrust/SafeChat/pkg/infra/cache"
)

// MemoryDeduplicator is the single-replica fallback used when Redis is disabled.
type MemoryDeduplicator struct {
	seen *cache.TTLMap
}

func NewMemoryDeduplicator() *MemoryDeduplicator {
	return &MemoryDeduplicator{seen: cache.NewTTLMap()}
}

func (d *MemoryDeduplicator) FirstSeen(ctx context.Context, key string, window time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return d.seen.SetNX(key, window), nil
}
