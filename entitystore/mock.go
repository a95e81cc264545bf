package entitystore

import (
	"context"
	"sync"
)

// MockStore is a mock implementation of the Interface for testing.
// It records every invocation so tests can assert on call counts and
// arguments, and optionally delegates to per-operation funcs.
type MockStore struct {
	mu sync.Mutex

	CreateEntityTypeFunc func(ctx context.Context, schema Schema) (string, error)
	CreateEntityFunc     func(ctx context.Context, entityTypeID string, properties map[string]interface{}) (string, error)
	UpdateEntityFunc     func(ctx context.Context, entityID string, properties map[string]interface{}) error
	GetEntityFunc        func(ctx context.Context, entityID string) (*Entity, error)

	CreateEntityTypeCalls []Schema
	CreateEntityCalls     []CreateEntityCall
	UpdateEntityCalls     []UpdateEntityCall
}

// CreateEntityCall records the arguments of one CreateEntity invocation
type CreateEntityCall struct {
	EntityTypeID string
	Properties   map[string]interface{}
}

// UpdateEntityCall records the arguments of one UpdateEntity invocation
type UpdateEntityCall struct {
	EntityID   string
	Properties map[string]interface{}
}

// CreateEntityType implements Interface.CreateEntityType
func (m *MockStore) CreateEntityType(ctx context.Context, schema Schema) (string, error) {
	m.mu.Lock()
	m.CreateEntityTypeCalls = append(m.CreateEntityTypeCalls, schema)
	m.mu.Unlock()

	if m.CreateEntityTypeFunc != nil {
		return m.CreateEntityTypeFunc(ctx, schema)
	}
	return "mock-entity-type-id", nil
}

// CreateEntity implements Interface.CreateEntity
func (m *MockStore) CreateEntity(ctx context.Context, entityTypeID string, properties map[string]interface{}) (string, error) {
	m.mu.Lock()
	m.CreateEntityCalls = append(m.CreateEntityCalls, CreateEntityCall{
		EntityTypeID: entityTypeID,
		Properties:   properties,
	})
	m.mu.Unlock()

	if m.CreateEntityFunc != nil {
		return m.CreateEntityFunc(ctx, entityTypeID, properties)
	}
	return "mock-entity-id", nil
}

// UpdateEntity implements Interface.UpdateEntity
func (m *MockStore) UpdateEntity(ctx context.Context, entityID string, properties map[string]interface{}) error {
	m.mu.Lock()
	m.UpdateEntityCalls = append(m.UpdateEntityCalls, UpdateEntityCall{
		EntityID:   entityID,
		Properties: properties,
	})
	m.mu.Unlock()

	if m.UpdateEntityFunc != nil {
		return m.UpdateEntityFunc(ctx, entityID, properties)
	}
	return nil
}

// GetEntity implements Interface.GetEntity
func (m *MockStore) GetEntity(ctx context.Context, entityID string) (*Entity, error) {
	if m.GetEntityFunc != nil {
		return m.GetEntityFunc(ctx, entityID)
	}
	return nil, ErrEntityNotFound
}

// Snapshot returns copies of the recorded call slices. Safe to call while
// fire-and-forget writes may still be appending.
func (m *MockStore) Snapshot() ([]Schema, []CreateEntityCall, []UpdateEntityCall) {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := append([]Schema(nil), m.CreateEntityTypeCalls...)
	creates := append([]CreateEntityCall(nil), m.CreateEntityCalls...)
	updates := append([]UpdateEntityCall(nil), m.UpdateEntityCalls...)
	return types, creates, updates
}
