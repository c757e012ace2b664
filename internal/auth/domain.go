// Package auth authenticates dashboard operators against the local
// operators table and manages the upstream API token bound to a session.
package auth

import "time"

// Operator is a dashboard operator account.
type Operator struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
