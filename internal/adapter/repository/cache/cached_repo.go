package cache

import (
	"context"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"go.uber.org/zap"
)

type listingCache interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	SetListing(ctx context.Context, listing *domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
}

// CachedListingRepository reads single listings through a cache and drops
// the cached copy on every write. Cache failures fall back to the store.
// Candidate queries always go to the store.
type CachedListingRepository struct {
	next   domain.ListingRepository
	cache  listingCache
	logger *logger.Logger
}

func NewCachedListingRepository(next domain.ListingRepository, cache listingCache, log *logger.Logger) *CachedListingRepository {
	return &CachedListingRepository{next: next, cache: cache, logger: log.Named("CachedListingRepository")}
}

func (r *CachedListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if err := r.next.Create(ctx, listing); err != nil {
		return err
	}
	r.invalidate(ctx, listing.ID)
	return nil
}

func (r *CachedListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	r.invalidate(ctx, listing.ID)
	if err := r.next.Update(ctx, listing); err != nil {
		return err
	}
	r.invalidate(ctx, listing.ID)
	return nil
}

func (r *CachedListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	cached, err := r.cache.GetListing(ctx, id)
	if err != nil {
		r.logger.Warn("FindByID: cache read failed", zap.String("listing_id", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	listing, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetListing(ctx, listing); err != nil {
		r.logger.Warn("FindByID: cache write failed", zap.String("listing_id", id), zap.Error(err))
	}
	return listing, nil
}

func (r *CachedListingRepository) FindCandidates(ctx context.Context, q domain.CandidateQuery) ([]*domain.Listing, error) {
	return r.next.FindCandidates(ctx, q)
}

func (r *CachedListingRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.DeleteListing(ctx, id); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
	}
}
