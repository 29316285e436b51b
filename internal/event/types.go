package event

import "time"

// Envelope is the message body published for every domain event. The routing key
// is the event type, e.g. "quiz.submitted".
type Envelope struct {
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

func newEnvelope(source, eventType string, payload interface{}) Envelope {
	return Envelope{
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}
}
