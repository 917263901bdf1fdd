package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"docstream-be/pkg/ocr"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no artifact exists for a doc_id. A chunker
// seeing this for an OCR_DONE document is looking at a data-loss anomaly.
var ErrNotFound = errors.New("artifact not found")

var keyPrefix = []byte("ocr/")

// Store keeps raw OCR results as side artifacts keyed by doc_id, outside the
// document record. Puts are idempotent: re-running OCR for the same document
// overwrites the previous artifact.
type Store struct {
	db *badger.DB
}

// badgerLoggerAdapter adapts zap to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any)   { bl.logger.Errorf(msg, items...) }
func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) { bl.logger.Warnf(msg, items...) }
func (bl *badgerLoggerAdapter) Infof(msg string, items ...any)    { bl.logger.Debugf(msg, items...) }
func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any)   { bl.logger.Debugf(msg, items...) }

// Open opens (or creates) the artifact database at path. With inMemory set,
// nothing touches disk; tests use this.
func Open(path string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if err := os.MkdirAll(path, 0755); err != nil {
				return nil, err
			}
		} else if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}
		opts = badger.DefaultOptions(path)
	}

	opts.Compression = options.None
	opts.Logger = &badgerLoggerAdapter{logger: zap.S()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}
	return &Store{db: db}, nil
}

func key(docId string) []byte {
	return append(append([]byte{}, keyPrefix...), docId...)
}

// Put stores the OCR result for a document, replacing any previous artifact.
func (s *Store) Put(docId string, result *ocr.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(docId), data)
	})
}

// Get loads the OCR result for a document.
func (s *Store) Get(docId string) (*ocr.Result, error) {
	var result ocr.Result
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(docId))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes the artifact for a document. Used by administrative cleanup
// only; the pipeline itself never deletes artifacts.
func (s *Store) Delete(docId string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(docId))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
