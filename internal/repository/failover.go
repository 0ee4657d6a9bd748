package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const recoveryWindow = time.Minute

// FailoverCache serves from primary (redis) and switches to fallback
// (memory) when primary errors, probing primary again after a minute.
type FailoverCache struct {
	primary   ResponseCache
	fallback  ResponseCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverCache(primary, fallback ResponseCache, logger *zerolog.Logger) *FailoverCache {
	return &FailoverCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary response cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverCache) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryWindow
}

func (r *FailoverCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.usePrimary() {
		data, ok, err := r.primary.Get(ctx, key)
		if err == nil {
			if r.isDown.Swap(false) {
				r.logger.Info().Msg("Primary response cache recovered")
			}
			return data, ok, nil
		}
		r.markDown(err)
	}
	return r.fallback.Get(ctx, key)
}

func (r *FailoverCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.Set(ctx, key, value, ttl)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Set(ctx, key, value, ttl)
}

// DeletePrefix clears both layers so a recovered primary never serves
// entries invalidated while it was down.
func (r *FailoverCache) DeletePrefix(ctx context.Context, prefix string) error {
	if err := r.fallback.DeletePrefix(ctx, prefix); err != nil {
		return err
	}
	if err := r.primary.DeletePrefix(ctx, prefix); err != nil {
		if !r.isDown.Load() {
			r.markDown(err)
		}
	}
	return nil
}
