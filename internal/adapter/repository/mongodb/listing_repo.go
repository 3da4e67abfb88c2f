package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const listingCollectionName = "listings"

// ListingRepository implements domain.ListingRepository on MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(ctx context.Context, db *mongo.Database, log *logger.Logger) (*ListingRepository, error) {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "listed_by.id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "location.state", Value: 1}, {Key: "location.city", Value: 1}}},
		{Keys: bson.D{{Key: "rent", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	indexCtx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(indexCtx, indexes); err != nil {
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
		return nil, domain.NewDatabaseError("create listing indexes", err)
	}
	log.Info("Successfully ensured indexes for listings collection")

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
	}, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	r.logger.Debug("Inserting listing", zap.String("listing_id", listing.ID))
	_, err := r.collection.InsertOne(ctx, fromDomainListing(listing))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate key on listing insert", zap.String("listing_id", listing.ID))
			return fmt.Errorf("%w: listing %s already exists", domain.ErrConflict, listing.ID)
		}
		r.logger.Error("Failed to insert listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return domain.NewDatabaseError("insert listing", err)
	}
	return nil
}

// Update replaces the stored document with listing.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	r.logger.Debug("Replacing listing", zap.String("listing_id", listing.ID))
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": listing.ID}, fromDomainListing(listing))
	if err != nil {
		r.logger.Error("Failed to replace listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return domain.NewDatabaseError("update listing", err)
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("Listing not found for update", zap.String("listing_id", listing.ID))
		return fmt.Errorf("listing %s: %w", listing.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var doc listingDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
		}
		r.logger.Error("Failed to find listing", zap.String("listing_id", id), zap.Error(err))
		return nil, domain.NewDatabaseError("find listing", err)
	}
	return doc.toDomainListing(), nil
}

// FindCandidates pushes the structured predicates into the query. Results
// come back in (created_at, _id) order.
func (r *ListingRepository) FindCandidates(ctx context.Context, q domain.CandidateQuery) ([]*domain.Listing, error) {
	filter := candidateFilter(q)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query listings", zap.Any("filter", filter), zap.Error(err))
		return nil, domain.NewDatabaseError("find listings", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, domain.NewDatabaseError("decode listings", err)
	}

	out := make([]*domain.Listing, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomainListing())
	}
	return out, nil
}

func candidateFilter(q domain.CandidateQuery) bson.D {
	filter := bson.D{{Key: "is_active", Value: true}}
	if q.OwnerID != "" {
		filter = append(filter, bson.E{Key: "listed_by.id", Value: q.OwnerID})
	}
	if q.State != "" {
		filter = append(filter, bson.E{Key: "location.state", Value: q.State})
	}
	if q.City != "" {
		filter = append(filter, bson.E{Key: "location.city", Value: q.City})
	}
	if q.MinRent != nil || q.MaxRent != nil {
		rent := bson.D{}
		if q.MinRent != nil {
			rent = append(rent, bson.E{Key: "$gte", Value: *q.MinRent})
		}
		if q.MaxRent != nil {
			rent = append(rent, bson.E{Key: "$lte", Value: *q.MaxRent})
		}
		filter = append(filter, bson.E{Key: "rent", Value: rent})
	}
	if q.MinUnitsAvailable != nil {
		filter = append(filter, bson.E{Key: "units_available", Value: bson.D{{Key: "$gte", Value: *q.MinUnitsAvailable}}})
	}
	if q.Role != "" {
		filter = append(filter, bson.E{Key: "listed_by.role", Value: q.Role})
	}
	if q.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: q.Status})
	}
	return filter
}
