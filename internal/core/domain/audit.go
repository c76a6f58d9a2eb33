package domain

import "time"

// Audit actions recorded for authentication activity.
const (
	AuditRegister = "register"
	AuditLogin    = "login"
	AuditRefresh  = "refresh"
)

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuthEvent is a single entry in the authentication audit trail.
type AuthEvent struct {
	Username  string    `json:"username" bson:"username"`
	Action    string    `json:"action" bson:"action"`
	Outcome   string    `json:"outcome" bson:"outcome"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
