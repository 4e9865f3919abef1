package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "chatbot.run.completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by the run lifecycle events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewRunCompleted signals that a chatbot run delivered its terminal success
// event to the callback receiver.
func NewRunCompleted(messageID, comID, empID string) Event {
	return BaseEvent{
		Type: "chatbot.run.completed",
		Data: map[string]interface{}{
			"messageId": messageID,
			"comId":     comID,
			"empId":     empID,
		},
		OccurredAt: time.Now(),
	}
}

// NewRunFailed signals that a chatbot run terminated with an error.
func NewRunFailed(messageID, comID, empID, errorMessage string) Event {
	return BaseEvent{
		Type: "chatbot.run.failed",
		Data: map[string]interface{}{
			"messageId":    messageID,
			"comId":        comID,
			"empId":        empID,
			"errorMessage": errorMessage,
		},
		OccurredAt: time.Now(),
	}
}
