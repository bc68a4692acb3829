package domain

import (
	"fmt"
	"regexp"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxContentSize is the maximum raw document size in bytes.
const MaxContentSize = 4 << 20

// ValidateCollectionName checks name: ^[a-zA-Z0-9_-]+$, 1-64 chars.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required: %w", ErrInvalidRequest)
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64): %w", ErrInvalidRequest)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must be alphanumeric with underscores and hyphens: %w", ErrInvalidRequest)
	}
	return nil
}

// ValidateDocumentID checks id: ^[a-zA-Z0-9_-]+$, 1-256 chars.
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID is required: %w", ErrInvalidRequest)
	}
	if len(id) > 256 {
		return fmt.Errorf("document ID too long (max 256): %w", ErrInvalidRequest)
	}
	if !nameRegex.MatchString(id) {
		return fmt.Errorf("document ID must be alphanumeric with underscores and hyphens: %w", ErrInvalidRequest)
	}
	return nil
}
