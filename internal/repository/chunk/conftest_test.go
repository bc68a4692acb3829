package chunk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/lexdex/internal/db"
	domchunk "github.com/kailas-cloud/lexdex/internal/domain/chunk"
)

// fakeStore is an in-memory KV + set store.
type fakeStore struct {
	kv      map[string][]byte
	sets    map[string]map[string]bool
	failOp  string
	failErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{kv: map[string][]byte{}, sets: map[string]map[string]bool{}}
}

func (f *fakeStore) fail(op string) error {
	if f.failOp == op {
		if f.failErr != nil {
			return f.failErr
		}
		return &db.Error{Op: op, Err: errors.New("boom")}
	}
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := f.fail(db.OpGet); err != nil {
		return nil, err
	}
	v, ok := f.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	if err := f.fail(db.OpGet); err != nil {
		return nil, err
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = f.kv[k]
	}
	return out, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte) error {
	if err := f.fail(db.OpSet); err != nil {
		return err
	}
	f.kv[key] = value
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	if err := f.fail(db.OpDel); err != nil {
		return err
	}
	for _, k := range keys {
		delete(f.kv, k)
	}
	return nil
}

func (f *fakeStore) SAdd(_ context.Context, key string, members ...string) error {
	if err := f.fail(db.OpSAdd); err != nil {
		return err
	}
	if f.sets[key] == nil {
		f.sets[key] = map[string]bool{}
	}
	for _, m := range members {
		f.sets[key][m] = true
	}
	return nil
}

func (f *fakeStore) SRem(_ context.Context, key string, members ...string) error {
	if err := f.fail(db.OpSRem); err != nil {
		return err
	}
	for _, m := range members {
		delete(f.sets[key], m)
	}
	return nil
}

func (f *fakeStore) SMembers(_ context.Context, key string) ([]string, error) {
	if err := f.fail(db.OpSMembers); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return out, nil
}

func newTestRepo(t *testing.T) (*Repo, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	r := New(fs, "test:")
	r.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return r, fs
}

func testChunks(docID string, n int) []domchunk.Chunk {
	out := make([]domchunk.Chunk, n)
	for i := range out {
		out[i] = domchunk.Chunk{
			ID:         docID + "-" + string(rune('a'+i)),
			DocumentID: docID,
			Content:    "Artículo de prueba",
			Section:    "Artículo 1",
			Embedding:  []float32{0.1, 0.2},
			Importance: 0.5,
		}
	}
	return out
}
