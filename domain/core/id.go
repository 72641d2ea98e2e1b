package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	AnomalyID ID
	RunID     ID
	SourceKey ID
)

// String conversions for domain IDs
func (id AnomalyID) String() string { return ID(id).String() }
func (id RunID) String() string     { return ID(id).String() }
func (id SourceKey) String() string { return ID(id).String() }

// NewAnomalyID creates a fresh anomaly identifier
func NewAnomalyID() AnomalyID {
	return AnomalyID(NewID())
}

// NewRunID creates a fresh detection-run identifier
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseSourceKey parses a string into SourceKey
func ParseSourceKey(s string) (SourceKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("source key cannot be empty")
	}
	return SourceKey(s), nil
}
