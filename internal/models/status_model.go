package models

import "time"

// Vault lock states reported by `bw status`.
const (
	StatusUnauthenticated = "unauthenticated"
	StatusLocked          = "locked"
	StatusUnlocked        = "unlocked"
)

// VaultStatus is the decoded output of `bw status`.
type VaultStatus struct {
	ServerURL string     `json:"serverUrl"`
	LastSync  *time.Time `json:"lastSync,omitempty"`
	UserEmail string     `json:"userEmail,omitempty"`
	UserID    string     `json:"userId,omitempty"`
	Status    string     `json:"status"`
}
