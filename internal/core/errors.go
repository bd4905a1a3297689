package core

import "errors"

// ErrItemNotFound is returned when no item matches the requested name,
// even after refreshing the local index.
var ErrItemNotFound = errors.New("Item not found")

var errEmptySession = errors.New("unlock returned an empty session token")

// ConfigError reports missing required configuration or input.
// It is never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

var (
	errMasterPasswordUnset = &ConfigError{Reason: "BW_MASTER_PASSWORD not set, cannot unlock automatically"}
	errEmptyItemName       = &ConfigError{Reason: "Item name is empty"}
)
