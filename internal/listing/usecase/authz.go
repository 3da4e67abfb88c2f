package usecase

import "github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"

// AssertCanMutate permits a mutation when the actor is the listing's lister
// or holds an elevated role. The returned *domain.ForbiddenError carries the
// ids needed for the audit log.
func AssertCanMutate(listing *domain.Listing, actor domain.Principal) error {
	if actor.ID != "" && listing.ListedBy.ID == actor.ID {
		return nil
	}
	if actor.IsElevated() {
		return nil
	}
	return &domain.ForbiddenError{
		ListingID: listing.ID,
		OwnerID:   listing.ListedBy.ID,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
	}
}
