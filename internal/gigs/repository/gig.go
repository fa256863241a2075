package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	gigserrors "gigstage/internal/gigs/errors"
	"gigstage/pkg/config"
	"gigstage/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Gigs"
)

type mongoGigRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type GigRepository interface {
	Create(ctx context.Context, gig *model.Gig) error
	FindByID(ctx context.Context, id string) (*model.Gig, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Gig, error)
	FindByParticipant(ctx context.Context, userID string, limit int, offset int64) ([]*model.Gig, error)
	UpdateDetails(ctx context.Context, id string, gig *model.Gig) error
	Cancel(ctx context.Context, id, cancelledBy, reason string) error
	MarkCompleted(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)

	SlotWriter
	PaymentWriter
}

func NewMongoGigRepository(cfg *config.Config) GigRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoGigRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout if not already in a
// transaction. SessionContext cannot be wrapped without breaking
// transaction semantics, so inside one the original context is returned
// with a no-op cancel.
func (r *mongoGigRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoGigRepository) Create(ctx context.Context, gig *model.Gig) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	gig.CreatedAt = now
	gig.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, gig)
	if err != nil {
		return fmt.Errorf("failed to create gig: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		gig.ID = oid.Hex()
	}
	return nil
}

func (r *mongoGigRepository) FindByID(ctx context.Context, id string) (*model.Gig, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", gigserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}

	var gig model.Gig
	err = r.collection.FindOne(ctx, filter).Decode(&gig)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, gigserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find gig: %w", err)
	}

	return &gig, nil
}

func (r *mongoGigRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Gig, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID}, limit, offset)
}

// FindByParticipant returns gigs the user touches in any capacity:
// interest, application, shortlist, a booked seat or a booked role.
func (r *mongoGigRepository) FindByParticipant(ctx context.Context, userID string, limit int, offset int64) ([]*model.Gig, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"interested_users": userID},
			{"applied_users": userID},
			{"shortlisted_users": userID},
			{"booked_by": userID},
			{"band_category.applicants": userID},
			{"band_category.booked_users": userID},
		},
	}
	return r.find(ctx, filter, limit, offset)
}

func (r *mongoGigRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Gig, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find gigs: %w", err)
	}
	defer cursor.Close(ctx)

	var gigs []*model.Gig
	if err = cursor.All(ctx, &gigs); err != nil {
		return nil, fmt.Errorf("failed to decode gigs: %w", err)
	}

	return gigs, nil
}

// UpdateDetails writes the owner-editable fields only. Slot, payment and
// cancellation state have dedicated conditional writers.
func (r *mongoGigRepository) UpdateDetails(ctx context.Context, id string, gig *model.Gig) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", gigserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "is_taken": false, "is_active": true}
	update := bson.M{
		"$set": bson.M{
			"title":       gig.Title,
			"description": gig.Description,
			"max_slots":   gig.MaxSlots,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update gig: %w", err)
	}
	if result.MatchedCount == 0 {
		return gigserrors.ErrConditionFailed
	}
	return nil
}

// Cancel soft-terminates a gig. The document is never deleted while history
// exists; disputes replay the ledger against it.
func (r *mongoGigRepository) Cancel(ctx context.Context, id, cancelledBy, reason string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", gigserrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"_id": objectID, "is_active": true}
	update := bson.M{
		"$set": bson.M{
			"is_active":           false,
			"cancelled_at":        now,
			"cancelled_by":        cancelledBy,
			"cancellation_reason": reason,
			"updated_at":          now,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel gig: %w", err)
	}
	if result.MatchedCount == 0 {
		return gigserrors.ErrConditionFailed
	}
	return nil
}

// MarkCompleted flips a paid gig to completed/inactive.
func (r *mongoGigRepository) MarkCompleted(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", gigserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "payment_status": model.PaymentPaid, "is_active": true}
	update := bson.M{
		"$set": bson.M{
			"is_active":  false,
			"is_pending": false,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark gig completed: %w", err)
	}
	if result.MatchedCount == 0 {
		return gigserrors.ErrConditionFailed
	}
	return nil
}

func (r *mongoGigRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count gigs: %w", err)
	}

	return count, nil
}
