package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrPersist       = errors.New("failed to persist habits")
)

// DefaultStorageKey names the single entry the habit collection lives under.
const DefaultStorageKey = "habits"

type Storage interface {
	// Read returns the bytes last written, or ok=false when nothing is stored.
	Read(ctx context.Context) (data []byte, ok bool, err error)

	// Write replaces the stored value.
	Write(ctx context.Context, data []byte) error
}
