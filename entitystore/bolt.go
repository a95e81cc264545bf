package entitystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	entityTypesBucket = "entity_types"
	entitiesBucket    = "entities"
)

// BoltStore implements the Interface using BoltDB. It is the reference
// host-side record store the embedding application runs in-process.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates a new BoltDB-backed entity store.
// It initializes the required buckets if they don't exist.
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(entityTypesBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(entitiesBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// entityDTO is used for JSON serialization
type entityDTO struct {
	EntityTypeID string                 `json:"entity_type_id,omitempty"`
	Properties   map[string]interface{} `json:"properties"`
}

// entityTypeDTO is used for JSON serialization
type entityTypeDTO struct {
	Title      string            `json:"title"`
	Properties map[string]string `json:"properties"`
}

// CreateEntityType declares a new record schema and returns its identifier
func (s *BoltStore) CreateEntityType(ctx context.Context, schema Schema) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(entityTypesBucket))
		if bucket == nil {
			return errors.New("entity types bucket not found")
		}

		data, err := json.Marshal(entityTypeDTO{
			Title:      schema.Title,
			Properties: schema.Properties,
		})
		if err != nil {
			return err
		}

		return bucket.Put([]byte(id), data)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create entity type: %w", err)
	}

	return id, nil
}

// CreateEntity creates a new record of the given type and returns its identifier
func (s *BoltStore) CreateEntity(ctx context.Context, entityTypeID string, properties map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if entityTypeID != "" {
			types := tx.Bucket([]byte(entityTypesBucket))
			if types == nil || types.Get([]byte(entityTypeID)) == nil {
				return ErrEntityTypeNotFound
			}
		}

		bucket := tx.Bucket([]byte(entitiesBucket))
		if bucket == nil {
			return errors.New("entities bucket not found")
		}

		data, err := json.Marshal(entityDTO{
			EntityTypeID: entityTypeID,
			Properties:   properties,
		})
		if err != nil {
			return err
		}

		return bucket.Put([]byte(id), data)
	})
	if err != nil {
		if errors.Is(err, ErrEntityTypeNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to create entity: %w", err)
	}

	return id, nil
}

// UpdateEntity merges the given properties into an existing record
func (s *BoltStore) UpdateEntity(ctx context.Context, entityID string, properties map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(entitiesBucket))
		if bucket == nil {
			return errors.New("entities bucket not found")
		}

		key := []byte(entityID)
		raw := bucket.Get(key)
		if raw == nil {
			return ErrEntityNotFound
		}

		var dto entityDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return err
		}
		if dto.Properties == nil {
			dto.Properties = make(map[string]interface{})
		}
		for k, v := range properties {
			dto.Properties[k] = v
		}

		data, err := json.Marshal(dto)
		if err != nil {
			return err
		}

		return bucket.Put(key, data)
	})
	if err != nil {
		if errors.Is(err, ErrEntityNotFound) {
			return err
		}
		return fmt.Errorf("failed to update entity: %w", err)
	}

	return nil
}

// GetEntity returns the record with the given identifier
func (s *BoltStore) GetEntity(ctx context.Context, entityID string) (*Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *Entity

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(entitiesBucket))
		if bucket == nil {
			return errors.New("entities bucket not found")
		}

		raw := bucket.Get([]byte(entityID))
		if raw == nil {
			return ErrEntityNotFound
		}

		var dto entityDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return err
		}

		entity = &Entity{
			ID:           entityID,
			EntityTypeID: dto.EntityTypeID,
			Properties:   dto.Properties,
		}
		if entity.Properties == nil {
			entity.Properties = make(map[string]interface{})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entity, nil
}

// EnsureEntity creates an empty untyped record under the given identifier
// if none exists yet. Used at startup to seed the block's backing entity.
func (s *BoltStore) EnsureEntity(ctx context.Context, entityID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(entitiesBucket))
		if bucket == nil {
			return errors.New("entities bucket not found")
		}

		key := []byte(entityID)
		if bucket.Get(key) != nil {
			return nil
		}

		data, err := json.Marshal(entityDTO{Properties: map[string]interface{}{}})
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
}
