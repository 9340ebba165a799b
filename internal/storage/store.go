// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/dongyar/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for saved settlement operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateSettlement persists a computed settlement.
	// The ID, Title and CreatedAt fields are populated by the store when empty.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement with its contributions and transfers.
	// Returns an error wrapping ErrNotFound if no settlement has that ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// DeleteSettlement removes a settlement and everything attached to it.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Close releases any resources held by the store.
	Close() error
}
