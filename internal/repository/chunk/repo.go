// Package chunk persists chunked documents in the key-value store.
//
// Layout:
//
//	<prefix>col:<collection>:doc:<id>  JSON documentRecord
//	<prefix>col:<collection>:docs      set of document ids
//	<prefix>collections                set of collection names
package chunk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kailas-cloud/lexdex/internal/db"
	"github.com/kailas-cloud/lexdex/internal/domain"
	domchunk "github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/domain/legal"
)

// store is the consumer interface for the chunk repository.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Document is a stored document with its chunks.
type Document struct {
	ID         string
	Collection string
	Metadata   legal.Metadata
	Chunks     []domchunk.Chunk
	IngestedAt time.Time
}

// Repo stores chunk sets per document.
type Repo struct {
	store  store
	prefix string
	now    func() time.Time
}

// New creates a chunk repository. An empty prefix uses domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix, now: time.Now}
}

// SaveDocument replaces the stored chunks of a document. Returns true if the document is new.
func (r *Repo) SaveDocument(
	ctx context.Context, collection, docID string, meta legal.Metadata, chunks []domchunk.Chunk,
) (bool, error) {
	ids, err := r.store.SMembers(ctx, r.docsKey(collection))
	if err != nil {
		return false, fmt.Errorf("list documents %s: %w", collection, err)
	}
	created := !slices.Contains(ids, docID)

	rec := documentRecord{
		ID:         docID,
		Collection: collection,
		Metadata:   meta,
		Chunks:     chunks,
		IngestedAt: r.now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal document %s: %w", docID, err)
	}

	key := r.docKey(collection, docID)
	if err := r.store.Set(ctx, key, data); err != nil {
		return false, fmt.Errorf("set %s: %w", key, err)
	}
	if err := r.store.SAdd(ctx, r.docsKey(collection), docID); err != nil {
		return false, fmt.Errorf("index document %s: %w", docID, err)
	}
	if err := r.store.SAdd(ctx, r.collectionsKey(), collection); err != nil {
		return false, fmt.Errorf("register collection %s: %w", collection, err)
	}
	return created, nil
}

// GetDocument returns one stored document.
func (r *Repo) GetDocument(ctx context.Context, collection, docID string) (Document, error) {
	key := r.docKey(collection, docID)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return Document{}, fmt.Errorf("document %s: %w", docID, domain.ErrNotFound)
		}
		return Document{}, fmt.Errorf("get %s: %w", key, err)
	}
	return decode(data)
}

// ListChunks returns every chunk in a collection, grouped by document in id order.
// Returns domain.ErrCollectionNotFound when the collection has no documents.
func (r *Repo) ListChunks(ctx context.Context, collection string) ([]domchunk.Chunk, error) {
	ids, err := r.store.SMembers(ctx, r.docsKey(collection))
	if err != nil {
		return nil, fmt.Errorf("list documents %s: %w", collection, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s: %w", collection, domain.ErrCollectionNotFound)
	}
	slices.Sort(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(collection, id)
	}
	raw, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load documents %s: %w", collection, err)
	}

	var chunks []domchunk.Chunk
	for i, data := range raw {
		// set member without a value: the document was deleted between the two reads
		if data == nil {
			continue
		}
		doc, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", ids[i], err)
		}
		chunks = append(chunks, doc.Chunks...)
	}
	return chunks, nil
}

// ListDocumentIDs returns the sorted document ids of a collection.
func (r *Repo) ListDocumentIDs(ctx context.Context, collection string) ([]string, error) {
	ids, err := r.store.SMembers(ctx, r.docsKey(collection))
	if err != nil {
		return nil, fmt.Errorf("list documents %s: %w", collection, err)
	}
	slices.Sort(ids)
	return ids, nil
}

// ListCollections returns the sorted names of collections that ever received a document.
func (r *Repo) ListCollections(ctx context.Context) ([]string, error) {
	names, err := r.store.SMembers(ctx, r.collectionsKey())
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// DeleteDocument removes a document and its chunks.
func (r *Repo) DeleteDocument(ctx context.Context, collection, docID string) error {
	ids, err := r.store.SMembers(ctx, r.docsKey(collection))
	if err != nil {
		return fmt.Errorf("list documents %s: %w", collection, err)
	}
	if !slices.Contains(ids, docID) {
		return fmt.Errorf("document %s: %w", docID, domain.ErrNotFound)
	}

	key := r.docKey(collection, docID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := r.store.SRem(ctx, r.docsKey(collection), docID); err != nil {
		return fmt.Errorf("unindex document %s: %w", docID, err)
	}
	return nil
}

func decode(data []byte) (Document, error) {
	var rec documentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	return Document(rec), nil
}

func (r *Repo) docKey(collection, docID string) string {
	return fmt.Sprintf("%scol:%s:doc:%s", r.prefix, collection, docID)
}

func (r *Repo) docsKey(collection string) string {
	return fmt.Sprintf("%scol:%s:docs", r.prefix, collection)
}

func (r *Repo) collectionsKey() string {
	return r.prefix + "collections"
}
