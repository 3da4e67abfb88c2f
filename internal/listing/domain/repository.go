package domain

import "context"

// ListingRepository persists listings. FindByID returns ErrNotFound for
// unknown ids and does not filter inactive listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindCandidates(ctx context.Context, q CandidateQuery) ([]*Listing, error)
}

// BlobStore keeps image binaries addressed by (listingID, imageID).
// Deleting a missing object is not an error.
type BlobStore interface {
	Put(ctx context.Context, listingID, imageID, contentType string, data []byte) (string, error)
	URL(listingID, imageID string) string
	Delete(ctx context.Context, listingID, imageID string) error
}
