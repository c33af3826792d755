// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package pyramidio

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tessera-viz/tessera/internal/logging"
	"github.com/tessera-viz/tessera/internal/tile"
)

// BreakerIO wraps another PyramidIO with a circuit breaker so a failing
// back-end sheds load fast instead of stacking up slow reads. Not-found
// results pass through without tripping the breaker; only genuine back-end
// failures count.
type BreakerIO struct {
	inner   PyramidIO
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// BreakerConfig tunes the circuit breaker.
type BreakerConfig struct {
	// Name labels the breaker in logs.
	Name string

	// FailureThreshold is the consecutive-failure count that opens the
	// breaker. Default: 5
	FailureThreshold uint32

	// Timeout is how long the breaker stays open before probing again.
	// Default: 10s
	Timeout time.Duration
}

// NewBreakerIO wraps inner with a circuit breaker.
func NewBreakerIO(inner PyramidIO, cfg BreakerConfig) *BreakerIO {
	if cfg.Name == "" {
		cfg.Name = "pyramidio"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	settings := gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("tile store breaker state change")
		},
		IsSuccessful: func(err error) bool {
			// Absence is a valid answer, not a back-end failure.
			return err == nil || isNotFound(err)
		},
	}
	return &BreakerIO{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrTileNotFound) || errors.Is(err, ErrMetadataNotFound)
}

func (b *BreakerIO) ReadTile(ctx context.Context, datasetID string, idx tile.Index) ([]byte, error) {
	return b.breaker.Execute(func() ([]byte, error) {
		return b.inner.ReadTile(ctx, datasetID, idx)
	})
}

func (b *BreakerIO) WriteTile(ctx context.Context, datasetID string, idx tile.Index, data []byte) error {
	_, err := b.breaker.Execute(func() ([]byte, error) {
		return nil, b.inner.WriteTile(ctx, datasetID, idx, data)
	})
	return err
}

func (b *BreakerIO) ReadMetadata(ctx context.Context, datasetID string) ([]byte, error) {
	return b.breaker.Execute(func() ([]byte, error) {
		return b.inner.ReadMetadata(ctx, datasetID)
	})
}

func (b *BreakerIO) WriteMetadata(ctx context.Context, datasetID string, data []byte) error {
	_, err := b.breaker.Execute(func() ([]byte, error) {
		return nil, b.inner.WriteMetadata(ctx, datasetID, data)
	})
	return err
}
