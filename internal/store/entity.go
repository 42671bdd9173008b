package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/inkwellapp/inkwell-server/internal/events"
)

// Entity provides generic document operations for one collection.
type Entity[T any] struct {
	store      *Store
	prefix     string
	collection events.Collection
	idOf       func(*T) string
	indexes    []Index[T]
}

// Index defines a secondary index on an entity.
//
// Unique indexes map one value to one document and reject conflicting
// writes (user handles, favourite/like pair keys). Non-unique indexes
// map one value to many documents and back equality-filtered queries
// (chapters by book, comments by parent).
type Index[T any] struct {
	name   string
	keyGen func(*T) []string
	unique bool
}

// NewEntity creates a new Entity for type T under the given key prefix.
// idOf extracts the document ID; index maintenance and change events use it.
func NewEntity[T any](s *Store, prefix string, collection events.Collection, idOf func(*T) string) *Entity[T] {
	return &Entity[T]{
		store:      s,
		prefix:     prefix,
		collection: collection,
		idOf:       idOf,
	}
}

// WithIndex adds a non-unique secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen})
	return e
}

// WithUniqueIndex adds a unique secondary index to the entity.
func (e *Entity[T]) WithUniqueIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen, unique: true})
	return e
}

// docKey returns the primary key for an ID.
func (e *Entity[T]) docKey(id string) string {
	return e.prefix + id
}

// indexKey returns the full index key for one index value.
// Non-unique indexes append the document ID so many documents can share
// a value; lookups scan the value's key range instead of a point get.
func (e *Entity[T]) indexKey(idx Index[T], value, id string) string {
	if idx.unique {
		return e.prefix + "idx:" + idx.name + ":" + value
	}
	return e.prefix + "idx:" + idx.name + ":" + value + ":" + id
}

// Create creates a new document with the given ID.
// Returns ErrAlreadyExists if the ID or a unique index value is taken.
func (e *Entity[T]) Create(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := e.idOf(entity)
	err := e.store.update(func(txn *badger.Txn) error {
		return e.createTxn(txn, entity)
	})
	if err != nil {
		return err
	}

	e.store.emit(events.Event{
		Collection: e.collection,
		Kind:       events.KindCreated,
		ID:         id,
		Doc:        entity,
	})
	return nil
}

// Get retrieves a document by ID.
// Returns ErrNotFound if the document does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.view(func(txn *badger.Txn) error {
		var err error
		entity, err = e.getTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetByIndex retrieves a document through a unique index.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.view(func(txn *badger.Txn) error {
		idxKey := e.prefix + "idx:" + indexName + ":" + value

		item, err := txn.Get([]byte(idxKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		entity, err = e.getTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// FindByIndex returns every document whose index value matches.
// This is the store's equality-filtered query; result order is by
// document ID, callers sort by their own field when it matters.
func (e *Entity[T]) FindByIndex(ctx context.Context, indexName, value string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []*T
	err := e.store.view(func(txn *badger.Txn) error {
		scanPrefix := []byte(e.prefix + "idx:" + indexName + ":" + value + ":")

		opts := badger.DefaultIteratorOptions
		opts.Prefix = scanPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(scanPrefix); it.ValidForPrefix(scanPrefix); it.Next() {
			var id string
			if err := it.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			entity, err := e.getTxn(txn, id)
			if err != nil {
				// Index keys are deleted in the same transaction as their
				// documents, so a dangling entry is a bug worth surfacing.
				return fmt.Errorf("index %s points at missing document %s: %w", indexName, id, err)
			}
			results = append(results, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Update rewrites an existing document.
// Returns ErrNotFound if the document does not exist.
func (e *Entity[T]) Update(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := e.idOf(entity)
	var before *T
	err := e.store.update(func(txn *badger.Txn) error {
		old, err := e.getTxn(txn, id)
		if err != nil {
			return err
		}
		before = old
		return e.setTxn(txn, entity, old)
	})
	if err != nil {
		return err
	}

	e.store.emit(events.Event{
		Collection: e.collection,
		Kind:       events.KindUpdated,
		ID:         id,
		Doc:        entity,
		Before:     before,
	})
	return nil
}

// Put writes a document unconditionally: create it if absent, replace it
// if present. This is the idempotent set used for notification delivery,
// where redelivered events must not fail.
func (e *Entity[T]) Put(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := e.idOf(entity)
	var before *T
	err := e.store.update(func(txn *badger.Txn) error {
		old, err := e.getTxn(txn, id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		before = old
		return e.setTxn(txn, entity, old)
	})
	if err != nil {
		return err
	}

	kind := events.KindCreated
	if before != nil {
		kind = events.KindUpdated
	}
	e.store.emit(events.Event{
		Collection: e.collection,
		Kind:       kind,
		ID:         id,
		Doc:        entity,
		Before:     before,
	})
	return nil
}

// Mutate applies fn to the current document state inside one read-write
// transaction and persists the result. Concurrent mutations of the same
// document serialize through Badger's conflict detection, which is what
// keeps counter adjustments from losing updates.
// Returns the document state after the mutation.
func (e *Entity[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity, before *T
	err := e.store.update(func(txn *badger.Txn) error {
		old, err := e.getTxn(txn, id)
		if err != nil {
			return err
		}
		before = old

		updated := *old
		if err := fn(&updated); err != nil {
			return err
		}
		entity = &updated
		return e.setTxn(txn, entity, old)
	})
	if err != nil {
		return nil, err
	}

	e.store.emit(events.Event{
		Collection: e.collection,
		Kind:       events.KindUpdated,
		ID:         id,
		Doc:        entity,
		Before:     before,
	})
	return entity, nil
}

// Delete deletes a document by ID.
// This operation is idempotent - deleting a missing document is a no-op
// and emits no event.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var deleted *T
	err := e.store.update(func(txn *badger.Txn) error {
		var err error
		deleted, err = e.deleteTxn(txn, id)
		return err
	})
	if err != nil {
		return err
	}

	if deleted != nil {
		e.store.emit(events.Event{
			Collection: e.collection,
			Kind:       events.KindDeleted,
			ID:         id,
			Doc:        deleted,
		})
	}
	return nil
}

// List returns every document in the collection.
func (e *Entity[T]) List(ctx context.Context) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []*T
	err := e.store.view(func(txn *badger.Txn) error {
		scanPrefix := []byte(e.prefix)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = scanPrefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(scanPrefix); it.ValidForPrefix(scanPrefix); it.Next() {
			// Skip index keys.
			key := string(it.Item().Key())
			if strings.HasPrefix(key[len(e.prefix):], "idx:") {
				continue
			}

			var entity T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entity)
			}); err != nil {
				return err
			}
			results = append(results, &entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Transaction-scoped helpers. These let combined operations and delete
// batches compose entity writes inside a single atomic transaction.

// createTxn writes a new document inside txn, failing if the ID is taken.
func (e *Entity[T]) createTxn(txn *badger.Txn, entity *T) error {
	_, err := txn.Get([]byte(e.docKey(e.idOf(entity))))
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to check existing key: %w", err)
	}
	return e.setTxn(txn, entity, nil)
}

// getTxn loads and decodes a document inside txn.
func (e *Entity[T]) getTxn(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get([]byte(e.docKey(id)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entity)
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &entity, nil
}

// setTxn writes a document and maintains its index keys inside txn.
// old is the previous state for index cleanup, nil on create.
func (e *Entity[T]) setTxn(txn *badger.Txn, entity, old *T) error {
	id := e.idOf(entity)

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	// Drop index keys whose values changed.
	if old != nil {
		for _, idx := range e.indexes {
			newKeys := make(map[string]bool)
			for _, v := range idx.keyGen(entity) {
				newKeys[v] = true
			}
			for _, v := range idx.keyGen(old) {
				if newKeys[v] {
					continue
				}
				if err := txn.Delete([]byte(e.indexKey(idx, v, id))); err != nil {
					return fmt.Errorf("failed to delete old index key: %w", err)
				}
			}
		}
	}

	// Check unique index conflicts before writing anything.
	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}
		oldKeys := make(map[string]bool)
		if old != nil {
			for _, v := range idx.keyGen(old) {
				oldKeys[v] = true
			}
		}
		for _, v := range idx.keyGen(entity) {
			if oldKeys[v] {
				continue
			}
			_, err := txn.Get([]byte(e.indexKey(idx, v, id)))
			if err == nil {
				return fmt.Errorf("index %s conflict on value %s: %w", idx.name, v, ErrAlreadyExists)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}

	if err := txn.Set([]byte(e.docKey(id)), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	for _, idx := range e.indexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Set([]byte(e.indexKey(idx, v, id)), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

// deleteTxn removes a document and its index keys inside txn.
// Returns the deleted document, or nil if it did not exist.
func (e *Entity[T]) deleteTxn(txn *badger.Txn, id string) (*T, error) {
	entity, err := e.getTxn(txn, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, idx := range e.indexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Delete([]byte(e.indexKey(idx, v, id))); err != nil {
				return nil, fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}

	if err := txn.Delete([]byte(e.docKey(id))); err != nil {
		return nil, fmt.Errorf("failed to delete key: %w", err)
	}
	return entity, nil
}
