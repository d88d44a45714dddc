package model

import "time"

// ActionName identifies the kind of mutation recorded in the audit log.
type ActionName string

const (
	ActionCreate ActionName = "create"
	ActionUpdate ActionName = "update"
	ActionDelete ActionName = "delete"
)

// Action is a row of the `actions` lookup table.
type Action struct {
	ID   uint64
	Name ActionName
}

// UserLog is one audit entry in `user_logs`.  UserID is not a foreign key
// so the snapshot written with a deletion survives it.
type UserLog struct {
	ID          uint64     `json:"id"`
	UserID      uint64     `json:"user_id"`
	Action      ActionName `json:"action"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LogEntry is an audit entry prepared before a mutation.  The repository
// writes it in the same transaction as the change it describes.
type LogEntry struct {
	ActionID    uint64
	Action      ActionName
	Description string
	CreatedAt   time.Time
}
