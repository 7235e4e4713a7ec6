package model

import "time"

// User represents a row in the `users` table. Accounts are created on the
// first successful login through the external identity provider; there is no
// password-based registration. The json tags shape the /api/get-user response:
// the external identifier and the delegated access token are never exposed to
// the browser.
//
// Fields:
//  ID          – primary key, assigned once by the database and never reused.
//  ExternalID  – stable identifier issued by the identity provider (unique).
//  Name        – display name, refreshed on every login.
//  Email       – set on first login, never updated afterwards.
//  AccessToken – long-lived delegated token from the provider; empty when the
//                provider withheld it (consent already granted earlier).
//  CreatedAt   – timestamp of the first login.
//  UpdatedAt   – timestamp of the last profile refresh.
type User struct {
	ID          uint64    `json:"id"`         // users.id
	ExternalID  string    `json:"-"`          // users.external_id
	Name        string    `json:"name"`       // users.name
	Email       string    `json:"email"`      // users.email
	AccessToken string    `json:"-"`          // users.access_token (nullable)
	CreatedAt   time.Time `json:"created_at"` // users.created_at
	UpdatedAt   time.Time `json:"-"`          // users.updated_at
}
