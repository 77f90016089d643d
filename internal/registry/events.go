package registry

import "github.com/azero-id/azns-toolkit/internal/domain"

type (
	EventKind string

	// Event describes a state change. Old and New carry the previous and next
	// account for address changes and transfers.
	Event struct {
		Kind EventKind
		Name string
		From domain.AccountID
		Old  *domain.AccountID
		New  *domain.AccountID
	}

	// EventSink receives every event the registry emits.
	EventSink interface {
		Publish(event Event) error
	}

	// EventRecorder keeps events in memory.
	EventRecorder struct {
		Events []Event
	}
)

const (
	EventRegister             EventKind = "register"
	EventRelease              EventKind = "release"
	EventSetAddress           EventKind = "set_address"
	EventTransfer             EventKind = "transfer"
	EventPublicPhaseActivated EventKind = "public_phase_activated"
)

func (r *EventRecorder) Publish(event Event) error {
	r.Events = append(r.Events, event)
	return nil
}

func accountPtr(a domain.AccountID) *domain.AccountID {
	return &a
}
