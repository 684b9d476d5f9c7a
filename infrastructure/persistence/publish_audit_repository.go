package persistence

import (
	"context"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const publishAttemptsCollection = "publish_attempts"

// PublishAuditRepository appends one document per handled trigger.
type PublishAuditRepository struct {
	collection *mongo.Collection
}

func NewPublishAuditRepository(client *mongo.Client, database string) *PublishAuditRepository {
	return &PublishAuditRepository{collection: client.Database(database).Collection(publishAttemptsCollection)}
}

func (r *PublishAuditRepository) Record(ctx context.Context, attempt *model.PublishAttempt) error {
	if attempt.FinishedAt.IsZero() {
		attempt.FinishedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, attempt)
	return err
}

// ListForItem returns the attempts recorded for one item, oldest first.
func (r *PublishAuditRepository) ListForItem(ctx context.Context, kind model.Kind, itemID int64) ([]model.PublishAttempt, error) {
	filter := bson.D{{Key: "kind", Value: kind}, {Key: "itemId", Value: itemID}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)
	return decodeAttempts(ctx, cursor)
}

func decodeAttempts(ctx context.Context, cursor *mongo.Cursor) ([]model.PublishAttempt, error) {
	attempts := make([]model.PublishAttempt, 0)
	for cursor.Next(ctx) {
		var a model.PublishAttempt
		if err := cursor.Decode(&a); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding publish attempt")
			continue
		}
		attempts = append(attempts, a)
	}
	return attempts, cursor.Err()
}
