package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	if backend == nil || backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return &DocumentRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned and closed by the caller.
func (r *DocumentRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *DocumentRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocuments stores new documents with their order and fingerprint indices.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.KnowledgeDocument) ([]*core.KnowledgeDocument, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if err := core.ValidateDocument(doc); err != nil {
				return err
			}

			key := makeDocumentKey(doc.ID)
			existing, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: document %s", storage.ErrDuplicateKey, doc.ID)
			}

			doc.ContentHash = core.IDFromContent(doc.Content)
			owner, err := readHashOwner(tx, doc.ContentHash)
			if err != nil {
				return err
			}
			if owner != "" {
				return fmt.Errorf("%w: content already stored as %s", storage.ErrDuplicateKey, owner)
			}

			if doc.CreatedAt.IsZero() {
				doc.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
			}
			doc.UpdatedAt = doc.CreatedAt
			if doc.Metadata == nil {
				doc.Metadata = map[string]string{}
			}

			if err := writeDocument(tx, key, doc); err != nil {
				return err
			}
			if err := tx.Set(makeDocumentOrderKey(doc.CreatedAt, doc.ID), []byte(doc.ID)); err != nil {
				return err
			}
			if err := tx.Set(makeDocumentHashKey(doc.ContentHash), []byte(doc.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// UpdateDocuments replaces existing documents, keeping their creation time.
func (r *DocumentRepository) UpdateDocuments(ctx context.Context, docs ...*core.KnowledgeDocument) ([]*core.KnowledgeDocument, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if err := core.ValidateDocument(doc); err != nil {
				return err
			}

			key := makeDocumentKey(doc.ID)
			old, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return fmt.Errorf("%w: document %s", storage.ErrNotFound, doc.ID)
			}

			doc.CreatedAt = old.CreatedAt
			doc.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
			doc.ContentHash = core.IDFromContent(doc.Content)

			// Move the fingerprint index if content changed
			if doc.ContentHash != old.ContentHash {
				owner, err := readHashOwner(tx, doc.ContentHash)
				if err != nil {
					return err
				}
				if owner != "" && owner != doc.ID {
					return fmt.Errorf("%w: content already stored as %s", storage.ErrDuplicateKey, owner)
				}
				if err := tx.Delete(makeDocumentHashKey(old.ContentHash)); err != nil {
					return err
				}
				if err := tx.Set(makeDocumentHashKey(doc.ContentHash), []byte(doc.ID)); err != nil {
					return err
				}
			}

			if err := writeDocument(tx, key, doc); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// DeleteDocuments removes documents by id.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)
			doc, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return fmt.Errorf("%w: document %s", storage.ErrNotFound, id)
			}

			if err := tx.Delete(makeDocumentOrderKey(doc.CreatedAt, doc.ID)); err != nil {
				return err
			}
			if err := tx.Delete(makeDocumentHashKey(doc.ContentHash)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by id.
func (r *DocumentRepository) GetDocument(ctx context.Context, id string) (*core.KnowledgeDocument, error) {
	var result *core.KnowledgeDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: document %s", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by id.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...string) ([]*core.KnowledgeDocument, error) {
	var result []*core.KnowledgeDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListDocuments returns documents in insertion order.
func (r *DocumentRepository) ListDocuments(ctx context.Context, offset, limit int) ([]*core.KnowledgeDocument, error) {
	if offset < 0 || limit < 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.KnowledgeDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentOrderPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		skipped := 0
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			if skipped < offset {
				skipped++
				continue
			}
			doc, err := r.readIndexed(tx, iter.Item())
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// ListDocumentsAfter returns up to limit documents inserted after afterID.
func (r *DocumentRepository) ListDocumentsAfter(ctx context.Context, afterID string, limit int) ([]*core.KnowledgeDocument, error) {
	var results []*core.KnowledgeDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(documentOrderPrefix + ":")
		seek := prefix
		if afterID != "" {
			after, err := readDocument(tx, makeDocumentKey(afterID))
			if err != nil {
				return err
			}
			if after == nil {
				return fmt.Errorf("%w: document %s", storage.ErrNotFound, afterID)
			}
			seek = makeDocumentOrderKey(after.CreatedAt, after.ID)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(seek); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			if afterID != "" && bytes.Equal(iter.Item().Key(), seek) {
				continue
			}
			doc, err := r.readIndexed(tx, iter.Item())
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// CountDocuments counts entries in the insertion-order index.
func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentOrderPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindByContentHash returns the document owning a content fingerprint.
func (r *DocumentRepository) FindByContentHash(ctx context.Context, hash core.ID) (*core.KnowledgeDocument, error) {
	var result *core.KnowledgeDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		owner, err := readHashOwner(tx, hash)
		if err != nil {
			return err
		}
		if owner == "" {
			return storage.ErrNotFound
		}
		result, err = readDocument(tx, makeDocumentKey(owner))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// Helper methods

// readIndexed resolves an index entry whose value is a document id.
func (r *DocumentRepository) readIndexed(tx *badger.Txn, item *badger.Item) (*core.KnowledgeDocument, error) {
	id, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return readDocument(tx, makeDocumentKey(string(id)))
}

// readDocument reads a document from the transaction.
// Returns nil, nil if the key does not exist.
func readDocument(tx *badger.Txn, key []byte) (*core.KnowledgeDocument, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.KnowledgeDocument
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

func writeDocument(tx *badger.Txn, key []byte, doc *core.KnowledgeDocument) error {
	return tx.Set(key, storage.MarshalDocument(doc))
}

// readHashOwner returns the id of the document owning hash, or "".
func readHashOwner(tx *badger.Txn, hash core.ID) (string, error) {
	item, err := tx.Get(makeDocumentHashKey(hash))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	owner, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(owner), nil
}
