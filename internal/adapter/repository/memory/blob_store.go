package memory

import (
	"context"
	"sync"
)

// BlobStore keeps image bytes in memory, keyed like the object store.
type BlobStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Blob
}

type Blob struct {
	ContentType string
	Data        []byte
}

func NewBlobStore(baseURL string) *BlobStore {
	if baseURL == "" {
		baseURL = "memory://"
	}
	return &BlobStore{baseURL: baseURL, objects: make(map[string]Blob)}
}

func objectKey(listingID, imageID string) string {
	return "listings/" + listingID + "/" + imageID
}

func (s *BlobStore) Put(_ context.Context, listingID, imageID, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey(listingID, imageID)] = Blob{ContentType: contentType, Data: append([]byte(nil), data...)}
	return s.URL(listingID, imageID), nil
}

func (s *BlobStore) URL(listingID, imageID string) string {
	return s.baseURL + objectKey(listingID, imageID)
}

func (s *BlobStore) Delete(_ context.Context, listingID, imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey(listingID, imageID))
	return nil
}

// Get returns a stored blob. Tests use it to check what was uploaded.
func (s *BlobStore) Get(listingID, imageID string) (Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[objectKey(listingID, imageID)]
	return b, ok
}

func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
