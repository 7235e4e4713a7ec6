// Package queue defines message payloads exchanged over the message broker.
package queue

// Event type values published on the application.events queue.
const (
	EventApplicationCreated = "application.created"
	EventApplicationUpdated = "application.updated"
	EventApplicationDeleted = "application.deleted"
)

// ApplicationEvent is published whenever a job application is created,
// updated or deleted. It carries enough information for downstream consumers
// to notify or aggregate without querying the primary database.
type ApplicationEvent struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	ApplicationID uint64 `json:"application_id"`
	UserID        uint64 `json:"user_id"`
	CompanyName   string `json:"company_name"`
	JobTitle      string `json:"job_title"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}
