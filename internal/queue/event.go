// Package queue defines message payloads exchanged over the message broker.
package queue

// AuditQueueName is the durable queue carrying user audit events.
const AuditQueueName = "user.audit"

// UserAuditEvent is published after every user mutation has been written
// to user_logs.  It carries enough for downstream consumers to keep an
// append-only trail without querying the primary database.
type UserAuditEvent struct {
	EventID     string `json:"event_id"`
	LogID       uint64 `json:"log_id"`
	UserID      uint64 `json:"user_id"`
	Username    string `json:"username"`
	Action      string `json:"action"`
	Description string `json:"description"`
	OccurredAt  string `json:"occurred_at"`
}
