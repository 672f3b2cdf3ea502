package memo

import (
	"context"
	"sync"
)

// fakeStore is a MemoryStore with injectable failures and call counts.
type fakeStore struct {
	*MemoryStore

	mu                     sync.Mutex
	getErr, setErr, delErr error
	gets, sets, deletes    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{MemoryStore: NewMemoryStore(0)}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	f.gets++
	err := f.getErr
	f.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *fakeStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.sets++
	err := f.setErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.deletes++
	err := f.delErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryStore.Delete(ctx, key)
}

func (f *fakeStore) counts() (gets, sets, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets, f.sets, f.deletes
}
