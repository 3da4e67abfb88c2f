package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/query"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("rental-listing-service/usecase")

// Options are the behavioural settings of a ListingUsecase.
type Options struct {
	Query            query.Options
	StrictValidation bool
	// PurgeImagesOnDelete removes image blobs when a listing is soft-deleted.
	PurgeImagesOnDelete bool
	MaxImageBytes       int64
}

func DefaultOptions() Options {
	return Options{Query: query.DefaultOptions(), StrictValidation: true}
}

type Option func(*ListingUsecase)

func WithEventPublisher(p EventPublisher) Option {
	return func(uc *ListingUsecase) { uc.publisher = p }
}

func WithNotifier(n Notifier) Option {
	return func(uc *ListingUsecase) { uc.notifier = n }
}

func WithMetrics(m Metrics) Option {
	return func(uc *ListingUsecase) { uc.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(uc *ListingUsecase) { uc.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(uc *ListingUsecase) { uc.newID = newID }
}

// ListingUsecase is the only entry point for reading and changing listings.
type ListingUsecase struct {
	repo      domain.ListingRepository
	blobs     domain.BlobStore
	logger    *logger.Logger
	opts      Options
	publisher EventPublisher
	notifier  Notifier
	metrics   Metrics
	now       func() time.Time
	newID     func() string
	locks     *keyedMutex
}

func NewListingUsecase(repo domain.ListingRepository, blobs domain.BlobStore, log *logger.Logger, opts Options, options ...Option) *ListingUsecase {
	uc := &ListingUsecase{
		repo:    repo,
		blobs:   blobs,
		logger:  log.Named("ListingUsecase"),
		opts:    opts,
		metrics: nopMetrics{},
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		locks:   newKeyedMutex(),
	}
	for _, o := range options {
		o(uc)
	}
	return uc
}

func (uc *ListingUsecase) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ListingUsecase."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func requirePrincipal(actor domain.Principal) error {
	if strings.TrimSpace(actor.ID) == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

// CreateListing stores a new listing attributed to actor.
func (uc *ListingUsecase) CreateListing(ctx context.Context, in CreateListingInput, actor domain.Principal) (_ *domain.Listing, err error) {
	ctx, span := uc.startSpan(ctx, "CreateListing", attribute.String("actor.id", actor.ID))
	defer func() { endSpan(span, err) }()

	uc.logger.Info("ListingUsecase.CreateListing: creating new listing",
		zap.String("actor_id", actor.ID), zap.String("actor_role", string(actor.Role)), zap.String("title", in.Title))

	if err := requirePrincipal(actor); err != nil {
		return nil, err
	}
	if !actor.Role.IsLister() {
		ferr := &domain.ForbiddenError{ActorID: actor.ID, ActorRole: actor.Role}
		uc.logger.Warn("ListingUsecase.CreateListing: forbidden", zap.String("actor_id", actor.ID), zap.String("actor_role", string(actor.Role)))
		return nil, ferr
	}
	if err := uc.validateCreate(in); err != nil {
		uc.logger.Info("ListingUsecase.CreateListing: invalid input", zap.String("actor_id", actor.ID), zap.Error(err))
		return nil, err
	}

	id := uc.newID()
	now := uc.timestamp()

	images, uploaded, err := uc.resolveImages(ctx, id, in.Images, nil)
	if err != nil {
		return nil, err
	}

	lister := domain.Lister{
		ID:    actor.ID,
		Role:  actor.Role,
		Name:  firstNonEmpty(in.ListerName, actor.Name),
		Phone: strings.TrimSpace(in.ListerPhone),
		Email: firstNonEmpty(in.ListerEmail, actor.Email),
	}
	if actor.Role == domain.RoleAgent {
		lister.Company = strings.TrimSpace(in.ListerCompany)
	}

	listing := &domain.Listing{
		ID:             id,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Rent:           in.Rent,
		Location:       in.Location,
		Bedrooms:       in.Bedrooms,
		Bathrooms:      in.Bathrooms,
		UnitsAvailable: in.UnitsAvailable,
		Amenities:      normalizeAmenities(in.Amenities),
		Images:         images,
		ListedBy:       lister,
		CreatedAt:      now,
		UpdatedAt:      now,
		IsActive:       true,
		Status:         domain.StatusAvailable,
	}

	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("ListingUsecase.CreateListing: failed to create listing", zap.String("listing_id", id), zap.Error(err))
		uc.deleteBlobs(ctx, id, uploaded)
		return nil, err
	}

	uc.metrics.ListingCreated()
	uc.publish(ctx, SubjectListingCreated, id, listing, actor)
	if uc.notifier != nil {
		if err := uc.notifier.ListingCreated(ctx, listing); err != nil {
			uc.logger.Warn("ListingUsecase.CreateListing: notification failed", zap.String("listing_id", id), zap.Error(err))
		}
	}

	uc.logger.Info("ListingUsecase.CreateListing: listing created", zap.String("listing_id", id), zap.Int("images", len(images)))
	return listing.Clone(), nil
}

// GetListingByID returns a listing whether or not it is active.
func (uc *ListingUsecase) GetListingByID(ctx context.Context, id string) (_ *domain.Listing, err error) {
	ctx, span := uc.startSpan(ctx, "GetListingByID", attribute.String("listing.id", id))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.logger.Error("ListingUsecase.GetListingByID: failed to find listing", zap.String("listing_id", id), zap.Error(err))
		}
		return nil, err
	}
	return listing, nil
}

// UpdateListing merges patch into the stored listing. Identity fields, the
// creation time and the lister's id and role cannot be changed.
func (uc *ListingUsecase) UpdateListing(ctx context.Context, id string, patch ListingPatch, actor domain.Principal) (_ *domain.Listing, err error) {
	ctx, span := uc.startSpan(ctx, "UpdateListing", attribute.String("listing.id", id), attribute.String("actor.id", actor.ID))
	defer func() { endSpan(span, err) }()

	uc.logger.Info("ListingUsecase.UpdateListing: updating listing",
		zap.String("listing_id", id), zap.String("actor_id", actor.ID))

	if err := requirePrincipal(actor); err != nil {
		return nil, err
	}

	unlock := uc.locks.Lock(id)
	defer unlock()

	existing, err := uc.loadForMutation(ctx, "UpdateListing", id, actor)
	if err != nil {
		return nil, err
	}
	patch.Images = patch.imageList(existing.Images)
	if err := uc.validatePatch(patch, existing.Images); err != nil {
		uc.logger.Info("ListingUsecase.UpdateListing: invalid patch", zap.String("listing_id", id), zap.Error(err))
		return nil, err
	}

	merged := existing.Clone()
	applyPatch(merged, patch)

	var uploaded []string
	if patch.Images != nil {
		merged.Images, uploaded, err = uc.resolveImages(ctx, id, *patch.Images, existing.Images)
		if err != nil {
			return nil, err
		}
	}
	merged.UpdatedAt = uc.stamp(existing.UpdatedAt)

	if err := uc.repo.Update(ctx, merged); err != nil {
		uc.logger.Error("ListingUsecase.UpdateListing: failed to update listing in repo", zap.String("listing_id", id), zap.Error(err))
		uc.deleteBlobs(ctx, id, uploaded)
		return nil, err
	}
	if patch.Images != nil {
		uc.deleteBlobs(ctx, id, droppedImages(existing.Images, merged.Images))
	}

	uc.metrics.ListingUpdated()
	uc.publish(ctx, SubjectListingUpdated, id, merged, actor)
	return merged.Clone(), nil
}

// DeleteListing marks a listing inactive. The record is kept.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, id string, actor domain.Principal) (err error) {
	ctx, span := uc.startSpan(ctx, "DeleteListing", attribute.String("listing.id", id), attribute.String("actor.id", actor.ID))
	defer func() { endSpan(span, err) }()

	uc.logger.Info("ListingUsecase.DeleteListing: deleting listing",
		zap.String("listing_id", id), zap.String("actor_id", actor.ID))

	if err := requirePrincipal(actor); err != nil {
		return err
	}

	unlock := uc.locks.Lock(id)
	defer unlock()

	listing, err := uc.loadForMutation(ctx, "DeleteListing", id, actor)
	if err != nil {
		return err
	}

	listing.IsActive = false
	listing.UpdatedAt = uc.stamp(listing.UpdatedAt)
	if err := uc.repo.Update(ctx, listing); err != nil {
		uc.logger.Error("ListingUsecase.DeleteListing: failed to update listing in repo", zap.String("listing_id", id), zap.Error(err))
		return err
	}
	if uc.opts.PurgeImagesOnDelete {
		uc.deleteBlobs(ctx, id, imageIDs(listing.Images))
	}

	uc.metrics.ListingDeleted()
	uc.publish(ctx, SubjectListingDeleted, id, nil, actor)
	return nil
}

// GetListings answers a filtered, sorted, paginated query over active listings.
func (uc *ListingUsecase) GetListings(ctx context.Context, filters domain.ListingFilters) (_ domain.Page[*domain.Listing], err error) {
	ctx, span := uc.startSpan(ctx, "GetListings")
	defer func() { endSpan(span, err) }()

	page, err := query.Run(ctx, uc.repo.FindCandidates, filters, uc.opts.Query)
	if err != nil {
		uc.logger.Warn("ListingUsecase.GetListings: query failed", zap.Error(err))
		return page, err
	}
	span.SetAttributes(attribute.Int("result.total", page.Total))
	return page, nil
}

// SearchListings is GetListings with the search term set to term.
func (uc *ListingUsecase) SearchListings(ctx context.Context, term string, filters domain.ListingFilters) (domain.Page[*domain.Listing], error) {
	filters.SearchTerm = term
	return uc.GetListings(ctx, filters)
}

// ListByUser returns the active listings of one lister.
func (uc *ListingUsecase) ListByUser(ctx context.Context, userID string, filters domain.ListingFilters) (_ domain.Page[*domain.Listing], err error) {
	ctx, span := uc.startSpan(ctx, "ListByUser", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	page, err := query.RunByUser(ctx, uc.repo.FindCandidates, userID, filters, uc.opts.Query)
	if err != nil {
		uc.logger.Warn("ListingUsecase.ListByUser: query failed", zap.String("user_id", userID), zap.Error(err))
		return page, err
	}
	return page, nil
}

func (uc *ListingUsecase) loadForMutation(ctx context.Context, op, id string, actor domain.Principal) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Info("ListingUsecase."+op+": listing not found", zap.String("listing_id", id))
		} else {
			uc.logger.Error("ListingUsecase."+op+": failed to find listing", zap.String("listing_id", id), zap.Error(err))
		}
		return nil, err
	}
	if err := AssertCanMutate(listing, actor); err != nil {
		uc.logger.Warn("ListingUsecase."+op+": forbidden",
			zap.String("listing_id", id),
			zap.String("listing_owner_id", listing.ListedBy.ID),
			zap.String("actor_id", actor.ID),
			zap.String("actor_role", string(actor.Role)))
		return nil, err
	}
	return listing, nil
}

// stamp returns the current time, never earlier than prev.
// timestamp is the clock reading stored on listings. It keeps millisecond
// precision, the finest a BSON datetime holds, so the value handed back on a
// write is the one every later read returns.
func (uc *ListingUsecase) timestamp() time.Time {
	return uc.now().UTC().Truncate(time.Millisecond)
}

func (uc *ListingUsecase) stamp(prev time.Time) time.Time {
	now := uc.timestamp()
	if now.Before(prev) {
		return prev
	}
	return now
}

// publish sends a listing event. Failures are logged and ignored.
func (uc *ListingUsecase) publish(ctx context.Context, subject, listingID string, listing *domain.Listing, actor domain.Principal) {
	if uc.publisher == nil {
		return
	}
	ev := ListingEvent{
		ListingID:  listingID,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		OccurredAt: uc.now(),
		Listing:    listing.Clone(),
	}
	if err := uc.publisher.Publish(ctx, subject, ev); err != nil {
		uc.logger.Warn("ListingUsecase: failed to publish event", zap.String("subject", subject), zap.String("listing_id", ev.ListingID), zap.Error(err))
	}
}

func applyPatch(l *domain.Listing, p ListingPatch) {
	if p.Title != nil {
		l.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Rent != nil {
		l.Rent = *p.Rent
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.Bedrooms != nil {
		l.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		l.Bathrooms = *p.Bathrooms
	}
	if p.UnitsAvailable != nil {
		l.UnitsAvailable = *p.UnitsAvailable
	}
	if p.Amenities != nil {
		l.Amenities = normalizeAmenities(*p.Amenities)
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.ListerName != nil {
		l.ListedBy.Name = strings.TrimSpace(*p.ListerName)
	}
	if p.ListerPhone != nil {
		l.ListedBy.Phone = strings.TrimSpace(*p.ListerPhone)
	}
	if p.ListerEmail != nil {
		l.ListedBy.Email = strings.TrimSpace(*p.ListerEmail)
	}
	if p.ListerCompany != nil && l.ListedBy.Role == domain.RoleAgent {
		l.ListedBy.Company = strings.TrimSpace(*p.ListerCompany)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
