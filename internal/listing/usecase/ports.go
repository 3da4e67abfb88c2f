package usecase

import (
	"context"
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
)

// Event subjects published after successful writes.
const (
	SubjectListingCreated = "listing.created"
	SubjectListingUpdated = "listing.updated"
	SubjectListingDeleted = "listing.deleted"
)

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type Notifier interface {
	ListingCreated(ctx context.Context, listing *domain.Listing) error
}

type Metrics interface {
	ListingCreated()
	ListingUpdated()
	ListingDeleted()
	ImageUploadRolledBack()
}

type ListingEvent struct {
	ListingID  string          `json:"listingId"`
	ActorID    string          `json:"actorId"`
	ActorRole  domain.Role     `json:"actorRole"`
	OccurredAt time.Time       `json:"occurredAt"`
	Listing    *domain.Listing `json:"listing,omitempty"`
}

type nopMetrics struct{}

func (nopMetrics) ListingCreated()        {}
func (nopMetrics) ListingUpdated()        {}
func (nopMetrics) ListingDeleted()        {}
func (nopMetrics) ImageUploadRolledBack() {}
