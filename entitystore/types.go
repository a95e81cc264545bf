package entitystore

import "errors"

var (
	// ErrEntityNotFound is returned when an entity ID has no stored record
	ErrEntityNotFound = errors.New("entity not found")

	// ErrEntityTypeNotFound is returned when an entity type ID is unknown
	ErrEntityTypeNotFound = errors.New("entity type not found")
)

// Schema describes the shape of entities created under an entity type.
// Property values map a property name to a simple type name ("string",
// "number"). The store records schemas verbatim; it does not enforce them.
type Schema struct {
	Title      string            `json:"title"`
	Properties map[string]string `json:"properties"`
}

// Entity is a host-managed record. Properties hold arbitrary JSON-encodable
// values; EntityTypeID is empty for entities that were never typed.
type Entity struct {
	ID           string                 `json:"entityId"`
	EntityTypeID string                 `json:"entityTypeId,omitempty"`
	Properties   map[string]interface{} `json:"properties"`
}
