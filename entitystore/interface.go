package entitystore

import "context"

// Interface defines the record store capability a host application
// supplies to the block. All three write operations are independently
// failable; callers that treat them as fire-and-forget must not assume
// one succeeded because another did.
type Interface interface {
	// CreateEntityType declares a new record schema and returns its
	// assigned entity type identifier.
	CreateEntityType(ctx context.Context, schema Schema) (string, error)

	// CreateEntity creates a new record of the given type with the given
	// properties and returns its assigned entity identifier.
	CreateEntity(ctx context.Context, entityTypeID string, properties map[string]interface{}) (string, error)

	// UpdateEntity merges the given properties into an existing record.
	// Returns ErrEntityNotFound if the entity does not exist.
	UpdateEntity(ctx context.Context, entityID string, properties map[string]interface{}) error

	// GetEntity returns a copy of the record with the given identifier.
	// Returns ErrEntityNotFound if the entity does not exist.
	GetEntity(ctx context.Context, entityID string) (*Entity, error)
}
