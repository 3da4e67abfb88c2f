package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhee091/Housing-Management-sub000/internal/identity"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const userCollectionName = "users"

// UserRepository implements identity.UserRepository on MongoDB.
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(ctx context.Context, db *mongo.Database, log *logger.Logger) (*UserRepository, error) {
	collection := db.Collection(userCollectionName)

	indexCtx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := collection.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Error("Failed to create email index for users collection", zap.Error(err))
		return nil, domain.NewDatabaseError("create user indexes", err)
	}

	return &UserRepository{
		collection: collection,
		logger:     log.Named("UserRepository"),
	}, nil
}

func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	if _, err := r.collection.InsertOne(ctx, fromDomainUser(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: email %s", domain.ErrConflict, user.Email)
		}
		r.logger.Error("Create: failed to insert user", zap.String("user_id", user.ID), zap.Error(err))
		return domain.NewDatabaseError("insert user", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*identity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*identity.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		r.logger.Error("findOne: failed to find user", zap.Error(err))
		return nil, domain.NewDatabaseError("find user", err)
	}
	return doc.toDomainUser(), nil
}
