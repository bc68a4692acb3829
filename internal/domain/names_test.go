package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCollectionName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "leyes", false},
		{"hyphen and underscore", "codigo_civil-2024", false},
		{"empty", "", true},
		{"space", "leyes nacionales", true},
		{"accent", "resolución", true},
		{"too long", strings.Repeat("a", 65), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCollectionName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestValidateDocumentID(t *testing.T) {
	if err := ValidateDocumentID("ley-27430"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateDocumentID(strings.Repeat("x", 257)); err == nil {
		t.Error("expected error for long id")
	}
	if err := ValidateDocumentID("a/b"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}
