package file_store

import (
	"context"
	"sync"
)

// FakeFileStore keeps objects in memory. Set Err to make every Store fail.
type FakeFileStore struct {
	Host string
	Err  error

	mu      sync.Mutex
	objects map[string][]byte
}

func (f *FakeFileStore) Store(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = append([]byte(nil), body...)
	return f.GetUrlFromKey(key), nil
}

func (f *FakeFileStore) GetUrlFromKey(key string) string {
	return f.Host + "/" + key
}

// Object returns the stored bytes of key.
func (f *FakeFileStore) Object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[key]
	return body, ok
}

// Len returns how many distinct keys are stored.
func (f *FakeFileStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
