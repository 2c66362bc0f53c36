package payments

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Insert(ctx context.Context, p Payment) (Payment, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]Payment, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, p Payment) (Payment, error) {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]Payment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Payment, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
