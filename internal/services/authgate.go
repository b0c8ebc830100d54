package services

import "eventhub/internal/domain"

type organizerGate struct{}

// NewAuthGate returns the AuthGate that grants organizer capabilities to the
// user recorded as the event's organizer.
func NewAuthGate() domain.AuthGate {
	return organizerGate{}
}

func (organizerGate) IsOrganizerOf(userID string, event *domain.Event) bool {
	return userID != "" && event != nil && event.OrganizerID == userID
}
