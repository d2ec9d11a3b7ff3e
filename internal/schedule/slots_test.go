package schedule

import (
	"testing"
	"time"

	"tutorhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-09-07 is a Monday: weekday 1 under the 0=Sunday convention.
var monday = models.NewDate(time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC))

func mondayAt(hour, minute int) time.Time {
	return time.Date(2026, time.September, 7, hour, minute, 0, 0, time.UTC)
}

func TestFreeSlots(t *testing.T) {
	morning := models.AvailabilityTemplate{
		TutorID:   5,
		Weekday:   1,
		StartTime: tod(t, "09:00"),
		EndTime:   tod(t, "12:00"),
	}

	t.Run("ExpandsHourlyWindows", func(t *testing.T) {
		slots := FreeSlots([]models.AvailabilityTemplate{morning}, monday, nil)
		require.Len(t, slots, 3)
		assert.Equal(t, mondayAt(9, 0), slots[0].StartTime)
		assert.Equal(t, mondayAt(10, 0), slots[1].StartTime)
		assert.Equal(t, mondayAt(11, 0), slots[2].StartTime)
		for _, slot := range slots {
			assert.True(t, slot.IsAvailable)
			assert.Equal(t, time.Hour, slot.EndTime.Sub(slot.StartTime))
		}
	})

	t.Run("BookedWindowRemoved", func(t *testing.T) {
		bookings := []models.Booking{
			{TutorID: 5, StartTime: mondayAt(10, 0), EndTime: mondayAt(11, 0), Status: models.StatusConfirmed},
		}
		slots := FreeSlots([]models.AvailabilityTemplate{morning}, monday, bookings)
		require.Len(t, slots, 2)
		assert.Equal(t, mondayAt(9, 0), slots[0].StartTime)
		assert.Equal(t, mondayAt(11, 0), slots[1].StartTime)
	})

	t.Run("CancelledBookingIgnored", func(t *testing.T) {
		bookings := []models.Booking{
			{TutorID: 5, StartTime: mondayAt(10, 0), EndTime: mondayAt(11, 0), Status: models.StatusCancelled},
		}
		slots := FreeSlots([]models.AvailabilityTemplate{morning}, monday, bookings)
		assert.Len(t, slots, 3)
	})

	t.Run("PartialOverlapBlocksSlot", func(t *testing.T) {
		bookings := []models.Booking{
			{TutorID: 5, StartTime: mondayAt(9, 30), EndTime: mondayAt(10, 30), Status: models.StatusPending},
		}
		slots := FreeSlots([]models.AvailabilityTemplate{morning}, monday, bookings)
		require.Len(t, slots, 1)
		assert.Equal(t, mondayAt(11, 0), slots[0].StartTime)
	})

	t.Run("TrailingPartialWindowDropped", func(t *testing.T) {
		tpl := models.AvailabilityTemplate{
			TutorID:   5,
			Weekday:   1,
			StartTime: tod(t, "09:00"),
			EndTime:   tod(t, "10:30"),
		}
		slots := FreeSlots([]models.AvailabilityTemplate{tpl}, monday, nil)
		require.Len(t, slots, 1)
		assert.Equal(t, mondayAt(9, 0), slots[0].StartTime)
	})

	t.Run("EmptyDayIsNonNilSlice", func(t *testing.T) {
		slots := FreeSlots(nil, monday, nil)
		assert.NotNil(t, slots, "empty days must marshal as a JSON array")
		assert.Empty(t, slots)
	})

	t.Run("WindowShorterThanSlotYieldsNothing", func(t *testing.T) {
		tpl := models.AvailabilityTemplate{
			TutorID:   5,
			Weekday:   1,
			StartTime: tod(t, "09:00"),
			EndTime:   tod(t, "09:45"),
		}
		assert.Empty(t, FreeSlots([]models.AvailabilityTemplate{tpl}, monday, nil))
	})

	t.Run("WrongWeekdayExcluded", func(t *testing.T) {
		tuesday := monday.AddDays(1)
		assert.Empty(t, FreeSlots([]models.AvailabilityTemplate{morning}, tuesday, nil))
	})

	t.Run("ExpiredTemplateExcluded", func(t *testing.T) {
		expired := morning
		until := monday.AddDays(-7)
		expired.ValidUntil = &until
		assert.Empty(t, FreeSlots([]models.AvailabilityTemplate{expired}, monday, nil))
	})

	t.Run("FutureTemplateExcluded", func(t *testing.T) {
		future := morning
		from := monday.AddDays(7)
		future.ValidFrom = &from
		assert.Empty(t, FreeSlots([]models.AvailabilityTemplate{future}, monday, nil))
	})

	t.Run("MultipleTemplatesSortedAscending", func(t *testing.T) {
		afternoon := models.AvailabilityTemplate{
			TutorID:   5,
			Weekday:   1,
			StartTime: tod(t, "14:00"),
			EndTime:   tod(t, "15:00"),
		}
		slots := FreeSlots([]models.AvailabilityTemplate{afternoon, morning}, monday, nil)
		require.Len(t, slots, 4)
		for i := 1; i < len(slots); i++ {
			assert.True(t, slots[i-1].StartTime.Before(slots[i].StartTime))
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		first := FreeSlots([]models.AvailabilityTemplate{morning}, monday, nil)
		second := FreeSlots([]models.AvailabilityTemplate{morning}, monday, nil)
		assert.Equal(t, first, second)
	})
}

func TestHasFreeSlot(t *testing.T) {
	tpl := models.AvailabilityTemplate{
		TutorID:   5,
		Weekday:   1,
		StartTime: tod(t, "09:00"),
		EndTime:   tod(t, "10:00"),
	}

	t.Run("OpenDay", func(t *testing.T) {
		assert.True(t, HasFreeSlot([]models.AvailabilityTemplate{tpl}, monday, nil))
	})

	t.Run("FullyBooked", func(t *testing.T) {
		bookings := []models.Booking{
			{TutorID: 5, StartTime: mondayAt(9, 0), EndTime: mondayAt(10, 0), Status: models.StatusPending},
		}
		assert.False(t, HasFreeSlot([]models.AvailabilityTemplate{tpl}, monday, bookings))
	})

	t.Run("NoTemplates", func(t *testing.T) {
		assert.False(t, HasFreeSlot(nil, monday, nil))
	})
}
