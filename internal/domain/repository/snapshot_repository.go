// Package repository defines persistence contracts for the domain layer.
package repository

import (
	"context"
	"time"

	"checkin/internal/domain/entity"
)

// SnapshotRepository mirrors the in-progress check-in records into durable
// local storage so the lifecycle survives a restart.
type SnapshotRepository interface {
	// Save replaces the full record set. Called on every mutation.
	Save(ctx context.Context, records []entity.CheckInRecord) error

	// LoadSameDay returns the stored records ordered by timestamp. If the
	// newest record does not fall on now's calendar date, the entire snapshot
	// is discarded and an empty set is returned (daily reset). Corrupt state
	// is treated as absent state.
	LoadSameDay(ctx context.Context, now time.Time) ([]entity.CheckInRecord, error)

	// Close releases the underlying storage handle.
	Close() error
}
