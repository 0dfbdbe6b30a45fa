package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTenantRegistered EventType = "tenant_registered"
	EventUserLoggedIn     EventType = "user_logged_in"
	EventUserLoggedOut    EventType = "user_logged_out"
	EventUserCreated      EventType = "user_created"
	EventUserDeactivated  EventType = "user_deactivated"
	EventProjectCreated   EventType = "project_created"
	EventProjectArchived  EventType = "project_archived"
	EventTaskCreated      EventType = "task_created"
	EventTaskDeleted      EventType = "task_deleted"
)

// Event represents a domain event emitted by services. Tenant and actor ids
// are pointers because platform-level actions (tenant registration) happen
// before either exists.
type Event struct {
	Type       EventType `json:"type"`
	TenantID   *string   `json:"tenant_id,omitempty"`
	ActorID    *string   `json:"actor_id,omitempty"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	IPAddress  *string   `json:"ip_address,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AllTypes lists every event type, for subscribers that want the full feed.
func AllTypes() []EventType {
	return []EventType{
		EventTenantRegistered,
		EventUserLoggedIn,
		EventUserLoggedOut,
		EventUserCreated,
		EventUserDeactivated,
		EventProjectCreated,
		EventProjectArchived,
		EventTaskCreated,
		EventTaskDeleted,
	}
}
