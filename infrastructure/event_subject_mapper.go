package infrastructure

import (
	"fmt"

	"github.com/MichiMauch/geomaster.world-sub001/events"
)

const (
	SubjectResultRecorded = "results.recorded"
	SubjectDuelCompleted  = "duels.completed"
	SubjectGuestMigrated  = "guests.migrated"

	// EventStreamName is the JetStream stream holding every published subject
	EventStreamName = "leaderboard_events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeResultRecorded:
		return SubjectResultRecorded
	case events.EventTypeDuelCompleted:
		return SubjectDuelCompleted
	case events.EventTypeGuestMigrated:
		return SubjectGuestMigrated
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectResultRecorded,
		SubjectDuelCompleted,
		SubjectGuestMigrated,
	}
}

// EventTypes returns every event type that has a subject
func (m *EventSubjectMapper) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeResultRecorded,
		events.EventTypeDuelCompleted,
		events.EventTypeGuestMigrated,
	}
}
