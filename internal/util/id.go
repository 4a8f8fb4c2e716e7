package util

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateTaskID returns a task ID in the format t01, t02, ..., t99, t100, etc.
func GenerateTaskID(index int) string {
	return fmt.Sprintf("t%02d", index+1)
}

// NewRunID returns a random identifier for one run of the task list.
func NewRunID() string {
	return uuid.NewString()
}
