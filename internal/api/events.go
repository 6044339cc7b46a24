package api

import (
	"fmt"

	"been-map/internal/surface"
)

const maxEventsPerRequest = 256

// validateEvents：批量上限属于传输层约束，逐条校验交给 surface
func validateEvents(events []surface.Event) error {
	if len(events) == 0 {
		return fmt.Errorf("%w: no events", surface.ErrBadEvent)
	}
	if len(events) > maxEventsPerRequest {
		return fmt.Errorf("%w: at most %d events per request", surface.ErrBadEvent, maxEventsPerRequest)
	}
	return surface.ValidateEvents(events)
}
