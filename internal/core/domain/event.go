package domain

import "time"

// AuthEventKind classifies an entry in the audit trail.
type AuthEventKind string

const (
	EventRegistered     AuthEventKind = "registered"
	EventLoginSucceeded AuthEventKind = "login_succeeded"
	EventLoginFailed    AuthEventKind = "login_failed"
	EventLoggedOut      AuthEventKind = "logged_out"
	EventResetRequested AuthEventKind = "reset_requested"
	EventPasswordReset  AuthEventKind = "password_reset"
)

// AuthEvent is one audit-trail record of an authentication operation.
// Email identifies the account; no credential material is ever carried.
type AuthEvent struct {
	Email     string        `json:"email"`
	UserID    string        `json:"user_id,omitempty"`
	Kind      AuthEventKind `json:"kind"`
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source,omitempty"`
}
