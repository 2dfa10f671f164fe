// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
)

// Backend owns the badger database shared by the document and checkpoint
// repositories.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLog forwards badger's printf-style logging to slog. Badger's info
// output is routine compaction chatter, so it is demoted to debug.
type badgerLog struct {
	logger *slog.Logger
}

var _ badger.Logger = badgerLog{}

func (l badgerLog) emit(level slog.Level, format string, args []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(format, args...))
}

func (l badgerLog) Errorf(format string, args ...any)   { l.emit(slog.LevelError, format, args) }
func (l badgerLog) Warningf(format string, args ...any) { l.emit(slog.LevelWarn, format, args) }
func (l badgerLog) Infof(format string, args ...any)    { l.emit(slog.LevelDebug, format, args) }
func (l badgerLog) Debugf(format string, args ...any)   { l.emit(slog.LevelDebug, format, args) }

// OpenBackend opens the knowledge store. An on-disk store lives in the
// directory at dataDir, which is created when missing; inMemory ignores
// dataDir entirely.
func OpenBackend(dataDir string, inMemory bool) (*Backend, error) {
	logger := slog.Default().With("component", "badger")

	opts := badger.DefaultOptions("").WithInMemory(true)
	if !inMemory {
		if err := ensureDataDir(dataDir); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dataDir)
	}
	opts = opts.
		WithLogger(badgerLog{logger: logger}).
		WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open knowledge store: %w", err)
	}
	logger.Debug("knowledge store opened", "dir", dataDir, "in_memory", inMemory)
	return &Backend{db: db, logger: logger}, nil
}

// ensureDataDir creates dir when absent and rejects a path naming a file.
func ensureDataDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("open knowledge store: data directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("open knowledge store: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("open knowledge store: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("open knowledge store: %s is not a directory", dir)
	}
	return nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether the database has been closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside a badger transaction, read-write when isWrite is set.
// fn commits write transactions itself; anything left uncommitted is
// discarded on return.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// WithTransaction runs fn and commits a write transaction when it succeeds.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// FindSimilar scores every embedded document against vector and returns
// those at or above minSimilarity, best first. Stored vectors are
// normalized, so the dot product is the cosine similarity. Equal scores
// are ordered by document id. A limit of zero or less returns every match.
func (b *Backend) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	var results []*core.SearchResult

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var doc *core.KnowledgeDocument
			err := iter.Item().Value(func(val []byte) (err error) {
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(doc.Vector) == 0 {
				continue
			}
			if score := dotProduct(vector, doc.Vector); score >= minSimilarity {
				results = append(results, &core.SearchResult{Document: doc, Score: score})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Document.ID, b.Document.ID)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// dotProduct sums the pairwise products over the shorter of a and b.
func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range min(len(a), len(b)) {
		sum += a[i] * b[i]
	}
	return sum
}
