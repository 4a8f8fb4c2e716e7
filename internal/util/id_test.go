package util

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateTaskID(t *testing.T) {
	tests := []struct {
		index    int
		expected string
	}{
		{0, "t01"},
		{8, "t09"},
		{9, "t10"},
		{98, "t99"},
		{99, "t100"},
	}

	for _, tt := range tests {
		if got := GenerateTaskID(tt.index); got != tt.expected {
			t.Errorf("GenerateTaskID(%d) = %q, want %q", tt.index, got, tt.expected)
		}
	}
}

func TestNewRunID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRunID()
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("run id %q is not a uuid: %v", id, err)
		}
		if seen[id] {
			t.Fatalf("duplicate run id %q", id)
		}
		seen[id] = true
	}
}
