package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/inkwellapp/inkwell-server/internal/events"
)

// Batch accumulates writes across collections and commits them in a
// single transaction. Cascading deletions run through a Batch so a
// parent and all of its dependents disappear together: if any op fails,
// nothing is applied.
//
// Change events for the batch are collected during the transaction and
// emitted only after a successful commit, in op order.
type Batch struct {
	store *Store
	ops   []func(txn *badger.Txn, emit func(events.Event)) error
}

// NewBatch creates an empty batch against the store.
func (s *Store) NewBatch() *Batch {
	return &Batch{store: s}
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Commit applies every queued operation in one transaction, then emits
// the recorded change events. On error nothing is written and nothing
// is emitted. The batch must not be reused after Commit.
func (b *Batch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(b.ops) == 0 {
		return nil
	}

	var recorded []events.Event
	err := b.store.update(func(txn *badger.Txn) error {
		recorded = recorded[:0]
		record := func(e events.Event) {
			recorded = append(recorded, e)
		}
		for _, op := range b.ops {
			if err := op(txn, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, e := range recorded {
		b.store.emit(e)
	}
	return nil
}

// BatchDelete queues deletion of a document. Missing documents are
// skipped, so cascades stay idempotent under event redelivery.
func (e *Entity[T]) BatchDelete(b *Batch, id string) {
	b.ops = append(b.ops, func(txn *badger.Txn, emit func(events.Event)) error {
		deleted, err := e.deleteTxn(txn, id)
		if err != nil {
			return err
		}
		if deleted != nil {
			emit(events.Event{
				Collection: e.collection,
				Kind:       events.KindDeleted,
				ID:         id,
				Doc:        deleted,
			})
		}
		return nil
	})
}

// BatchUpdate queues a read-modify-write of a document. Missing
// documents are skipped.
func (e *Entity[T]) BatchUpdate(b *Batch, id string, fn func(*T) error) {
	b.ops = append(b.ops, func(txn *badger.Txn, emit func(events.Event)) error {
		old, err := e.getTxn(txn, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}

		updated := *old
		if err := fn(&updated); err != nil {
			return err
		}
		if err := e.setTxn(txn, &updated, old); err != nil {
			return err
		}
		emit(events.Event{
			Collection: e.collection,
			Kind:       events.KindUpdated,
			ID:         id,
			Doc:        &updated,
			Before:     old,
		})
		return nil
	})
}
