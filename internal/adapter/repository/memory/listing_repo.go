// Package memory holds the in-process stores behind the mock backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
)

// ListingRepository keeps listings in a map owned by the instance. Every
// read and write copies, so callers never share state with the store.
type ListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
	order    []string
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{listings: make(map[string]*domain.Listing)}
}

func (r *ListingRepository) Create(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[listing.ID]; ok {
		return fmt.Errorf("%w: listing %s already exists", domain.ErrConflict, listing.ID)
	}
	r.listings[listing.ID] = listing.Clone()
	r.order = append(r.order, listing.ID)
	return nil
}

func (r *ListingRepository) Update(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[listing.ID]; !ok {
		return fmt.Errorf("listing %s: %w", listing.ID, domain.ErrNotFound)
	}
	r.listings[listing.ID] = listing.Clone()
	return nil
}

func (r *ListingRepository) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
	}
	return l.Clone(), nil
}

// FindCandidates scans every active listing and applies the structured predicates.
func (r *ListingRepository) FindCandidates(_ context.Context, q domain.CandidateQuery) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Listing, 0, len(r.order))
	for _, id := range r.order {
		l := r.listings[id]
		if l.IsActive && matchesCandidate(l, q) {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

func matchesCandidate(l *domain.Listing, q domain.CandidateQuery) bool {
	switch {
	case q.OwnerID != "" && l.ListedBy.ID != q.OwnerID:
		return false
	case q.State != "" && l.Location.State != q.State:
		return false
	case q.City != "" && l.Location.City != q.City:
		return false
	case q.MinRent != nil && l.Rent < *q.MinRent:
		return false
	case q.MaxRent != nil && l.Rent > *q.MaxRent:
		return false
	case q.MinUnitsAvailable != nil && l.UnitsAvailable < *q.MinUnitsAvailable:
		return false
	case q.Role != "" && l.ListedBy.Role != q.Role:
		return false
	case q.Status != "" && l.Status != q.Status:
		return false
	}
	return true
}
