package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tutorhub/internal/models"
)

type memoryCacheKey struct {
	tutorID int64
	day     string
}

type memoryCacheEntry struct {
	slots     []models.TimeSlot
	version   int64
	expiresAt time.Time
}

// MemoryAvailabilityCache is the in-process fallback cache used when Redis
// is unavailable or disabled. Like the Redis cache it versions entries per
// tutor: an entry written against an older version is never served, so a
// write racing an invalidation cannot bring stale slots back.
type MemoryAvailabilityCache struct {
	entries  sync.Map
	versions sync.Map // tutorID -> *atomic.Int64
	ttl      time.Duration
}

func NewMemoryAvailabilityCache(ttl time.Duration) *MemoryAvailabilityCache {
	return &MemoryAvailabilityCache{
		ttl: ttl,
	}
}

func (r *MemoryAvailabilityCache) version(tutorID int64) *atomic.Int64 {
	if v, ok := r.versions.Load(tutorID); ok {
		return v.(*atomic.Int64)
	}
	v, _ := r.versions.LoadOrStore(tutorID, new(atomic.Int64))
	return v.(*atomic.Int64)
}

func (r *MemoryAvailabilityCache) GetDay(ctx context.Context, tutorID int64, day models.Date) ([]models.TimeSlot, int64, bool, error) {
	version := r.version(tutorID).Load()

	key := memoryCacheKey{tutorID: tutorID, day: day.String()}
	val, ok := r.entries.Load(key)
	if !ok {
		return nil, version, false, nil
	}

	entry := val.(*memoryCacheEntry)
	if entry.version != version || time.Now().After(entry.expiresAt) {
		r.entries.Delete(key)
		return nil, version, false, nil
	}

	return entry.slots, version, true, nil
}

func (r *MemoryAvailabilityCache) SetDay(ctx context.Context, tutorID int64, day models.Date, version int64, slots []models.TimeSlot) error {
	r.entries.Store(memoryCacheKey{tutorID: tutorID, day: day.String()}, &memoryCacheEntry{
		slots:     slots,
		version:   version,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryAvailabilityCache) InvalidateTutor(ctx context.Context, tutorID int64) error {
	r.version(tutorID).Add(1)
	r.entries.Range(func(key, _ any) bool {
		if key.(memoryCacheKey).tutorID == tutorID {
			r.entries.Delete(key)
		}
		return true
	})
	return nil
}
