package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("/schedule/bookings", "201")
		IncBookingCreated()
		IncBookingConflict()
		IncStatusChange("confirmed")
		ObserveSlotGeneration(0.001)
		IncCache("hit")
	})
}
