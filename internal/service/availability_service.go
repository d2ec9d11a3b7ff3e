package service

import (
	"context"
	"fmt"
	"time"

	"tutorhub/internal/database"
	"tutorhub/internal/domain"
	"tutorhub/internal/events"
	"tutorhub/internal/metrics"
	"tutorhub/internal/models"
	"tutorhub/internal/schedule"

	"github.com/rs/zerolog"
)

// TemplateInput carries the fields of a template create request.
type TemplateInput struct {
	TutorID      int64
	Weekday      int
	StartTime    models.TimeOfDay
	EndTime      models.TimeOfDay
	LocationMode string
	LocationNote string
	ValidFrom    *models.Date
	ValidUntil   *models.Date
	Duration     string
}

// TemplateUpdate carries the optional fields of a partial template update.
// The validity window is never touched by updates; the stored window keeps
// applying to the overlap re-check.
type TemplateUpdate struct {
	Weekday      *int
	StartTime    *models.TimeOfDay
	EndTime      *models.TimeOfDay
	LocationMode *string
	LocationNote *string
}

type AvailabilityService struct {
	schedule domain.ScheduleStore
	bookings domain.BookingStore
	cache    domain.AvailabilityCache
	eventBus *events.EventBus
	locks    *tutorLocks
	logger   *zerolog.Logger
}

func NewAvailabilityService(store domain.ScheduleStore, bookings domain.BookingStore, cache domain.AvailabilityCache, eventBus *events.EventBus, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		schedule: store,
		bookings: bookings,
		cache:    cache,
		eventBus: eventBus,
		locks:    newTutorLocks(),
		logger:   logger,
	}
}

// resolveValidUntil picks the template's end of validity: an explicit
// valid_until wins, otherwise a duration preset counted from valid_from
// (or today) decides, defaulting to one semester.
func resolveValidUntil(in TemplateInput) (*models.Date, error) {
	if in.ValidUntil != nil {
		return in.ValidUntil, nil
	}

	preset := in.Duration
	if preset == "" {
		preset = models.DefaultDuration
	}
	if preset == models.DurationForever {
		return nil, nil
	}

	days, ok := models.DurationDays[preset]
	if !ok {
		return nil, fmt.Errorf("%w: unknown duration preset %q", database.ErrValidation, preset)
	}

	base := models.Today()
	if in.ValidFrom != nil {
		base = *in.ValidFrom
	}
	until := base.AddDays(days)
	return &until, nil
}

func (s *AvailabilityService) CreateTemplate(ctx context.Context, in TemplateInput) (*models.AvailabilityTemplate, error) {
	if in.Weekday < 0 || in.Weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be between 0 and 6, got %d", database.ErrValidation, in.Weekday)
	}
	if in.StartTime >= in.EndTime {
		return nil, fmt.Errorf("%w: start time %s is not before end time %s", database.ErrInvalidRange, in.StartTime, in.EndTime)
	}

	validUntil, err := resolveValidUntil(in)
	if err != nil {
		return nil, err
	}

	tpl := &models.AvailabilityTemplate{
		TutorID:      in.TutorID,
		Weekday:      in.Weekday,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		LocationMode: in.LocationMode,
		LocationNote: in.LocationNote,
		ValidFrom:    in.ValidFrom,
		ValidUntil:   validUntil,
	}

	lock := s.locks.lock(in.TutorID)
	defer lock.Unlock()

	if err := s.schedule.CreateTemplate(ctx, tpl); err != nil {
		return nil, err
	}

	s.invalidate(ctx, in.TutorID)
	_ = s.eventBus.PublishJSON(events.EventScheduleChanged, events.ScheduleEventPayload{TutorID: in.TutorID, SlotID: tpl.ID})

	s.logger.Info().Int64("tutor_id", in.TutorID).Int64("slot_id", tpl.ID).Int("weekday", in.Weekday).Msg("availability template created")
	return tpl, nil
}

func (s *AvailabilityService) UpdateTemplate(ctx context.Context, slotID, tutorID int64, upd TemplateUpdate) (*models.AvailabilityTemplate, error) {
	lock := s.locks.lock(tutorID)
	defer lock.Unlock()

	tpl, err := s.schedule.GetTemplate(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if tpl.TutorID != tutorID {
		return nil, fmt.Errorf("%w: availability slot %d belongs to another tutor", database.ErrForbidden, slotID)
	}

	if upd.Weekday != nil {
		if *upd.Weekday < 0 || *upd.Weekday > 6 {
			return nil, fmt.Errorf("%w: weekday must be between 0 and 6, got %d", database.ErrValidation, *upd.Weekday)
		}
		tpl.Weekday = *upd.Weekday
	}
	if upd.StartTime != nil {
		tpl.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		tpl.EndTime = *upd.EndTime
	}
	if upd.LocationMode != nil {
		tpl.LocationMode = *upd.LocationMode
	}
	if upd.LocationNote != nil {
		tpl.LocationNote = *upd.LocationNote
	}

	if tpl.StartTime >= tpl.EndTime {
		return nil, fmt.Errorf("%w: start time %s is not before end time %s", database.ErrInvalidRange, tpl.StartTime, tpl.EndTime)
	}

	if err := s.schedule.UpdateTemplate(ctx, tpl); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tutorID)
	_ = s.eventBus.PublishJSON(events.EventScheduleChanged, events.ScheduleEventPayload{TutorID: tutorID, SlotID: slotID})

	return tpl, nil
}

func (s *AvailabilityService) DeleteTemplate(ctx context.Context, slotID, tutorID int64) error {
	lock := s.locks.lock(tutorID)
	defer lock.Unlock()

	tpl, err := s.schedule.GetTemplate(ctx, slotID)
	if err != nil {
		return err
	}
	if tpl.TutorID != tutorID {
		return fmt.Errorf("%w: availability slot %d belongs to another tutor", database.ErrForbidden, slotID)
	}

	if err := s.schedule.DeleteTemplate(ctx, slotID); err != nil {
		return err
	}

	s.invalidate(ctx, tutorID)
	_ = s.eventBus.PublishJSON(events.EventScheduleChanged, events.ScheduleEventPayload{TutorID: tutorID, SlotID: slotID})

	return nil
}

func (s *AvailabilityService) ListTemplates(ctx context.Context, tutorID int64) ([]models.AvailabilityTemplate, error) {
	return s.schedule.ListTemplates(ctx, tutorID)
}

// GetAvailability returns the tutor's free 1-hour slots for one date.
func (s *AvailabilityService) GetAvailability(ctx context.Context, tutorID int64, day models.Date) ([]models.TimeSlot, error) {
	// The version observed on a miss is handed back to SetDay below, so an
	// invalidation racing the store reads routes the write to a dead key.
	var (
		cacheVersion int64
		cacheable    bool
	)
	if s.cache != nil {
		slots, version, ok, err := s.cache.GetDay(ctx, tutorID, day)
		if err != nil {
			metrics.IncCache("error")
			s.logger.Warn().Err(err).Int64("tutor_id", tutorID).Msg("availability cache read failed")
		} else if ok {
			metrics.IncCache("hit")
			return slots, nil
		} else {
			metrics.IncCache("miss")
			cacheVersion = version
			cacheable = true
		}
	}

	started := time.Now()
	templates, err := s.schedule.ActiveTemplates(ctx, tutorID, day.Weekday(), day)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ActiveBookingsOn(ctx, tutorID, day)
	if err != nil {
		return nil, err
	}

	slots := schedule.FreeSlots(templates, day, bookings)
	metrics.ObserveSlotGeneration(time.Since(started).Seconds())

	if cacheable {
		if err := s.cache.SetDay(ctx, tutorID, day, cacheVersion, slots); err != nil {
			s.logger.Warn().Err(err).Int64("tutor_id", tutorID).Msg("availability cache write failed")
		}
	}

	return slots, nil
}

// GetAvailabilityRange returns every date in [start, end] on which the tutor
// has at least one free slot. Templates and bookings are fetched once for
// the whole range.
func (s *AvailabilityService) GetAvailabilityRange(ctx context.Context, tutorID int64, start, end models.Date) ([]models.Date, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %s precedes start date %s", database.ErrInvalidRange, end, start)
	}

	templates, err := s.schedule.ListTemplates(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ActiveBookingsBetween(ctx, tutorID, start.Time(), end.AddDays(1).Time())
	if err != nil {
		return nil, err
	}

	dates := []models.Date{}
	for day := start; !day.After(end); day = day.AddDays(1) {
		if schedule.HasFreeSlot(templates, day, bookings) {
			dates = append(dates, day)
		}
	}
	return dates, nil
}

func (s *AvailabilityService) invalidate(ctx context.Context, tutorID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTutor(ctx, tutorID); err != nil {
		s.logger.Warn().Err(err).Int64("tutor_id", tutorID).Msg("availability cache invalidation failed")
	}
}
