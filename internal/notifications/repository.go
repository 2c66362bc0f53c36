package notifications

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Insert(ctx context.Context, n Notification) (Notification, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == "" {
		n.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Notification, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead flips the read flag, but only when the notification belongs to the
// caller. Returns false when nothing matched.
func (r *MongoRepository) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
