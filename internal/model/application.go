package model

import (
	"strings"
	"time"
)

// Status is the user-editable label describing where a job application
// currently stands. It is not a workflow: any status may change to any other
// through an update.
type Status string

const (
	StatusApplied      Status = "Applied"
	StatusInterviewing Status = "Interviewing"
	StatusOffered      Status = "Offered"
	StatusRejected     Status = "Rejected"
)

// ParseStatus normalizes a client-supplied status string. An empty string
// falls back to the default StatusApplied. Matching is case-insensitive so
// "interviewing" and "Interviewing" are the same label; anything outside the
// four known values is rejected.
func ParseStatus(raw string) (Status, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return StatusApplied, true
	}
	for _, known := range []Status{StatusApplied, StatusInterviewing, StatusOffered, StatusRejected} {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Application represents a tracked job application in the `applications`
// table. Every application belongs to exactly one user; the owning user id is
// never exposed in API responses and never changes after creation.
//
// Fields:
//  ID          – primary key.
//  UserID      – owner (users.id foreign key).
//  CompanyName – required company name.
//  JobTitle    – required job title.
//  JobURL      – optional link to the posting.
//  Status      – one of the Status constants, defaults to Applied.
//  Notes       – optional free text.
//  CreatedAt   – timestamp of creation, used for list ordering.
type Application struct {
	ID          uint64    `json:"id"`           // applications.id
	UserID      uint64    `json:"-"`            // applications.user_id
	CompanyName string    `json:"company_name"` // applications.company_name
	JobTitle    string    `json:"job_title"`    // applications.job_title
	JobURL      string    `json:"job_url"`      // applications.job_url
	Status      Status    `json:"status"`       // applications.status
	Notes       string    `json:"notes"`        // applications.notes
	CreatedAt   time.Time `json:"created_at"`   // applications.created_at
}
