package activity

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

// Publisher delivers an encoded event. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Recorder wraps a Publisher with fire-and-forget semantics: failures are
// logged and never reach the caller. A nil *Recorder records nothing.
type Recorder struct {
	publisher Publisher
	clientID  string
	now       func() time.Time
}

func NewRecorder(publisher Publisher, clientID string) *Recorder {
	return &Recorder{
		publisher: publisher,
		clientID:  clientID,
		now:       time.Now,
	}
}

// Record publishes data as an event of the given type
func (r *Recorder) Record(ctx context.Context, eventType string, data any) {
	if r == nil || r.publisher == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Activity] Failed to encode %s: %v", eventType, err)
		return
	}

	event := Event{
		ID:         uuid.New().String(),
		ClientID:   r.clientID,
		EventType:  eventType,
		Data:       payload,
		OccurredAt: r.now().UTC(),
	}
	if err := r.publisher.Publish(ctx, r.clientID, event); err != nil {
		log.Printf("[Activity] Failed to publish %s: %v", eventType, err)
	}
}
