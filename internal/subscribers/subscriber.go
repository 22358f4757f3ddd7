package subscribers

import (
	"context"

	"supportstack.local/projects/support-gateway/internal/events"
)

type Subscriber interface {
	Name() string
	Handle(context.Context, events.Envelope) error
}
