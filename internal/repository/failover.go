package repository

import (
	"context"
	"sync/atomic"
	"time"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"

	"github.com/rs/zerolog"
)

// FailoverAvailabilityCache serves from the primary cache until it errors,
// then switches to the fallback and probes the primary again after a minute.
type FailoverAvailabilityCache struct {
	primary   domain.AvailabilityCache
	fallback  domain.AvailabilityCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverAvailabilityCache(primary, fallback domain.AvailabilityCache, logger *zerolog.Logger) *FailoverAvailabilityCache {
	return &FailoverAvailabilityCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverAvailabilityCache) GetDay(ctx context.Context, tutorID int64, day models.Date) ([]models.TimeSlot, int64, bool, error) {
	if !r.isDown.Load() {
		slots, version, ok, err := r.primary.GetDay(ctx, tutorID, day)
		if err == nil {
			return slots, version, ok, nil
		}
		r.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		slots, version, ok, err := r.primary.GetDay(ctx, tutorID, day)
		if err == nil {
			r.isDown.Store(false)
			return slots, version, ok, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetDay(ctx, tutorID, day)
}

func (r *FailoverAvailabilityCache) SetDay(ctx context.Context, tutorID int64, day models.Date, version int64, slots []models.TimeSlot) error {
	if !r.isDown.Load() {
		err := r.primary.SetDay(ctx, tutorID, day, version, slots)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetDay(ctx, tutorID, day, version, slots)
}

func (r *FailoverAvailabilityCache) InvalidateTutor(ctx context.Context, tutorID int64) error {
	// Invalidate both sides: entries may have been written to the fallback
	// while the primary was down.
	fallbackErr := r.fallback.InvalidateTutor(ctx, tutorID)

	if !r.isDown.Load() {
		if err := r.primary.InvalidateTutor(ctx, tutorID); err != nil {
			r.logger.Error().Err(err).Msg("Primary availability cache failed, falling back to memory")
			r.isDown.Store(true)
			r.lastCheck = time.Now()
		}
	}

	return fallbackErr
}
