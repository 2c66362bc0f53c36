package reviews

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Insert(ctx context.Context, rv Review) (Review, error)
	ListByDoctor(ctx context.Context, doctorID string, limit int64) ([]Review, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, rv Review) (Review, error) {
	if rv.ID == "" {
		rv.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, rv); err != nil {
		return Review{}, err
	}
	return rv, nil
}

func (r *MongoRepository) ListByDoctor(ctx context.Context, doctorID string, limit int64) ([]Review, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.col.Find(ctx, bson.M{"doctorId": doctorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Review, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
