package ledger

import "time"

// EventType names a committed state transition. Journal entries use the
// same names for their kind.
type EventType string

const (
	EventInstitutionRegistered  EventType = "InstitutionRegistered"
	EventInstitutionDeactivated EventType = "InstitutionDeactivated"
	EventStudentRegistered      EventType = "StudentRegistered"
	EventTranscriptCreated      EventType = "TranscriptCreated"
	EventCourseAdded            EventType = "CourseAdded"
	EventGraduationDateSet      EventType = "GraduationDateSet"
	EventTranscriptVerified     EventType = "TranscriptVerified"
	EventRoleGranted            EventType = "RoleGranted"
	EventRoleRevoked            EventType = "RoleRevoked"
)

// EventTypes lists every event type the registry emits
var EventTypes = []EventType{
	EventInstitutionRegistered,
	EventInstitutionDeactivated,
	EventStudentRegistered,
	EventTranscriptCreated,
	EventCourseAdded,
	EventGraduationDateSet,
	EventTranscriptVerified,
	EventRoleGranted,
	EventRoleRevoked,
}

// Event is the notification emitted for one committed journal entry
type Event struct {
	Type      EventType `json:"type"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Publisher receives events after they are committed. Implementations must
// not block the caller.
type Publisher interface {
	Publish(evt Event)
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(Event)

// Publish calls f(evt)
func (f PublisherFunc) Publish(evt Event) { f(evt) }

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
