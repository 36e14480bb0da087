// Package store persists the trained classifier snapshot in a Badger
// database so a restart can restore the model without retraining.
package store

import (
	"errors"
	"fmt"
	"log"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/steerlab/voxsteer/internal/model"
)

// ErrNotFound is returned by Load when no snapshot has been saved.
// A missing snapshot is a normal state, not a failure.
var ErrNotFound = errors.New("store: no saved model")

var modelKey = []byte("model/current")

// Record is the persisted model snapshot.
type Record struct {
	ModelState []byte        `msgpack:"model_state"`
	Scaler     *model.Scaler `msgpack:"scaler"`
	Labels     []string      `msgpack:"labels"`
	SavedAt    time.Time     `msgpack:"saved_at"`
}

// Store wraps a Badger database holding the current model snapshot.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store: dir is required")
	}
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a store with no disk persistence. Used in tests to
// exercise the real badger engine.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts.WithLogger(quietLogger{}))
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Save writes the snapshot, replacing any previous one.
func (s *Store) Save(rec Record) error {
	if len(rec.ModelState) == 0 {
		return errors.New("store: refusing to save an empty model state")
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now().UTC()
	}
	raw, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("store: encode record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(modelKey, raw)
	})
}

// Load returns the saved snapshot, or ErrNotFound.
func (s *Store) Load() (*Record, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read record: %w", err)
	}
	var rec Record
	if err := msgpack.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("store: decode record: %w", err)
	}
	return &rec, nil
}

// Clear deletes the saved snapshot. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(modelKey)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// quietLogger keeps badger's chatty info output off the CLI while
// still surfacing real problems.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{})   { log.Printf("[store] ERROR: "+f, v...) }
func (quietLogger) Warningf(f string, v ...interface{}) { log.Printf("[store] WARN: "+f, v...) }
func (quietLogger) Infof(string, ...interface{})        {}
func (quietLogger) Debugf(string, ...interface{})       {}
