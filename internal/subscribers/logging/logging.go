package logging

import (
	"context"
	"encoding/json"
	"log"

	"supportstack.local/projects/support-gateway/internal/events"
)

// Subscriber writes every event as a single JSON line to the injected
// logger.
type Subscriber struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Subscriber {
	return &Subscriber{logger: logger}
}

func (s *Subscriber) Name() string {
	return "logging"
}

func (s *Subscriber) Handle(_ context.Context, event events.Envelope) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.logger.Printf("event %s", data)
	return nil
}
