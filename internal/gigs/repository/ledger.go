package repository

import (
	"context"
	"fmt"
	"time"

	"gigstage/pkg/config"
	mongotx "gigstage/pkg/db/mongo"
	"gigstage/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	LedgerCollectionName = "Booking_history"
)

// LedgerRepository is the append-only audit trail. Entries are inserted
// after the underlying state change commits and are never updated or
// deleted - StripDeprecatedField is the single sanctioned migration shape,
// and it only unsets a field, preserving order and count.
type LedgerRepository interface {
	Append(ctx context.Context, entry *model.BookingHistoryEntry) error
	History(ctx context.Context, gigID string, limit int, offset int64) ([]*model.BookingHistoryEntry, error)
	Replay(ctx context.Context, gigID string) ([]*model.BookingHistoryEntry, error)
	CountByGig(ctx context.Context, gigID string) (int64, error)
	StripDeprecatedField(ctx context.Context, field string) (int64, error)
}

type mongoLedgerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoLedgerRepository(cfg *config.Config) LedgerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLedgerRepository{
		cfg:        cfg,
		collection: db.Collection(LedgerCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoLedgerRepository) Append(ctx context.Context, entry *model.BookingHistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

// History returns entries newest-first, the order the UI displays.
func (r *mongoLedgerRepository) History(ctx context.Context, gigID string, limit int, offset int64) ([]*model.BookingHistoryEntry, error) {
	return r.findByGig(ctx, gigID, -1, limit, offset)
}

// Replay returns the full trail oldest-first - the canonical order for
// audit and dispute resolution.
func (r *mongoLedgerRepository) Replay(ctx context.Context, gigID string) ([]*model.BookingHistoryEntry, error) {
	return r.findByGig(ctx, gigID, 1, 0, 0)
}

func (r *mongoLedgerRepository) findByGig(ctx context.Context, gigID string, sortDir, limit int, offset int64) ([]*model.BookingHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: sortDir}, {Key: "_id", Value: sortDir}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit)).SetSkip(offset)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"gig_id": gigID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find history entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.BookingHistoryEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history entries: %w", err)
	}

	return entries, nil
}

func (r *mongoLedgerRepository) CountByGig(ctx context.Context, gigID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"gig_id": gigID})
	if err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}
	return count, nil
}

// StripDeprecatedField unsets one metadata key across all entries. This is
// a projection, not a rewrite: _id, created_at and every other field stay
// untouched, so order and count are preserved by construction. Runs inside
// a transaction so a partially stripped trail is never visible to readers.
func (r *mongoLedgerRepository) StripDeprecatedField(ctx context.Context, field string) (int64, error) {
	key := "metadata." + field

	var modified int64
	err := r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := r.collection.UpdateMany(sessCtx,
			bson.M{key: bson.M{"$exists": true}},
			bson.M{"$unset": bson.M{key: ""}},
		)
		if err != nil {
			return err
		}
		modified = result.ModifiedCount
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to strip deprecated field %q: %w", field, err)
	}
	return modified, nil
}
