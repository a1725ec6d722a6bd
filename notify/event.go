// Package notify delivers budget alerts outside the request path.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeBudgetNearing  = "budget.nearing"
	TypeBudgetExceeded = "budget.exceeded"
)

type Event struct {
	ID        uuid.UUID         `json:"id"`
	Type      string            `json:"event_type"`
	UserID    uuid.UUID         `json:"user_id"`
	Message   string            `json:"message,omitempty"`
	Data      map[string]string `json:"event_data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type EventOption func(*Event)

func WithType(eventType string) EventOption {
	return func(e *Event) {
		e.Type = eventType
	}
}

func WithUser(userID uuid.UUID) EventOption {
	return func(e *Event) {
		e.UserID = userID
	}
}

func WithMessage(msg string) EventOption {
	return func(e *Event) {
		e.Message = msg
	}
}

func WithData(data map[string]string) EventOption {
	return func(e *Event) {
		for k, v := range data {
			e.Data[k] = v
		}
	}
}

func NewEvent(opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Data:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Publisher hands an event to whatever is listening for alerts.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
