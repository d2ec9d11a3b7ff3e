package schedule

import (
	"sort"
	"time"

	"tutorhub/internal/models"
)

// FreeSlots expands the templates that are active on day into fixed-length
// candidate slots and drops every slot that collides with an active booking.
// A trailing window shorter than the slot length is discarded (documented
// policy). The result is sorted ascending by start time and is fully
// determined by its inputs.
func FreeSlots(templates []models.AvailabilityTemplate, day models.Date, bookings []models.Booking) []models.TimeSlot {
	weekday := day.Weekday()

	// Never nil: the empty day must serialize as a JSON array.
	slots := []models.TimeSlot{}
	for i := range templates {
		tpl := &templates[i]
		if tpl.Weekday != weekday || !tpl.ActiveOn(day) {
			continue
		}

		cursor := tpl.StartTime.At(day)
		end := tpl.EndTime.At(day)
		for !cursor.Add(models.SlotDuration).After(end) {
			slotEnd := cursor.Add(models.SlotDuration)
			if !isBooked(cursor, slotEnd, bookings) {
				slots = append(slots, models.TimeSlot{
					StartTime:   cursor,
					EndTime:     slotEnd,
					IsAvailable: true,
				})
			}
			cursor = slotEnd
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots
}

// HasFreeSlot is FreeSlots with an early exit, for range queries that only
// need to know whether a day has any opening.
func HasFreeSlot(templates []models.AvailabilityTemplate, day models.Date, bookings []models.Booking) bool {
	weekday := day.Weekday()

	for i := range templates {
		tpl := &templates[i]
		if tpl.Weekday != weekday || !tpl.ActiveOn(day) {
			continue
		}

		cursor := tpl.StartTime.At(day)
		end := tpl.EndTime.At(day)
		for !cursor.Add(models.SlotDuration).After(end) {
			slotEnd := cursor.Add(models.SlotDuration)
			if !isBooked(cursor, slotEnd, bookings) {
				return true
			}
			cursor = slotEnd
		}
	}
	return false
}

func isBooked(start, end time.Time, bookings []models.Booking) bool {
	for i := range bookings {
		b := &bookings[i]
		if !b.Status.Active() {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}
