// Package storage persists policy records. The production implementation
// is backed by NATS JetStream KV; an in-memory implementation exists for
// tests and offline use.
package storage

import (
	"context"

	"github.com/innovagov/policyhub/policy"
)

// Store is the persistence boundary for policy records. Implementations
// return ErrNotFound for missing records and pass authorization failures
// through as policy.ErrPermissionDenied without remapping.
type Store interface {
	// List returns all policies. Order is unspecified.
	List(ctx context.Context) ([]*policy.Policy, error)

	// Get retrieves one policy by ID.
	Get(ctx context.Context, id string) (*policy.Policy, error)

	// Create persists a new record, assigning ID, code, and timestamps.
	Create(ctx context.Context, p *policy.Policy) error

	// Update replaces an existing record and bumps UpdatedAt.
	Update(ctx context.Context, p *policy.Policy) error

	// UpdateEmbedding writes only the embedding vector of an existing
	// record. Used by the async embedder so it never clobbers concurrent
	// field edits.
	UpdateEmbedding(ctx context.Context, id string, vector []float32) error

	// Delete removes a record.
	Delete(ctx context.Context, id string) error
}
