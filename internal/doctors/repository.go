package doctors

import (
	"context"

	"github.com/dhairyajangir/CuraLink/internal/availability"
	"github.com/dhairyajangir/CuraLink/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Get(ctx context.Context, id string) (Doctor, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Doctor, error)
	SetApproval(ctx context.Context, id string, approved bool) (bool, error)
	SetAvailability(ctx context.Context, id string, week availability.Week) (bool, error)
	ReserveSlot(ctx context.Context, id, day, label string) (bool, error)
	ReleaseSlot(ctx context.Context, id, day, label string) (bool, error)
	ApplyRating(ctx context.Context, id string, rating float64, total int) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func doctorFilter(id string) bson.M {
	return bson.M{"_id": id, "role": models.RoleDoctor}
}

func (r *MongoRepository) Get(ctx context.Context, id string) (Doctor, error) {
	var doc Doctor
	if err := r.col.FindOne(ctx, doctorFilter(id)).Decode(&doc); err != nil {
		return Doctor{}, err
	}
	return doc, nil
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Doctor, error) {
	query := bson.M{"role": models.RoleDoctor}
	if !filter.IncludePending {
		query["isApproved"] = true
	}
	if filter.Specialty != "" {
		query["specialty"] = filter.Specialty
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Doctor, 0)
	for cursor.Next(ctx) {
		var doc Doctor
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) SetApproval(ctx context.Context, id string, approved bool) (bool, error) {
	res, err := r.col.UpdateOne(ctx, doctorFilter(id), bson.M{"$set": bson.M{"isApproved": approved}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) SetAvailability(ctx context.Context, id string, week availability.Week) (bool, error) {
	res, err := r.col.UpdateOne(ctx, doctorFilter(id), bson.M{"$set": bson.M{"availability": week}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ReserveSlot flips the slot's booked flag in a single conditional update.
// The array filters only match an unbooked slot on an available day, so the
// store serializes concurrent reservations of the same slot: exactly one
// caller observes a modification.
func (r *MongoRepository) ReserveSlot(ctx context.Context, id, day, label string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		doctorFilter(id),
		bson.M{"$set": bson.M{"availability.$[d].timeSlots.$[s].isBooked": true}},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"d.day": day, "d.isAvailable": true},
			bson.M{"s.time": label, "s.isBooked": false},
		}}),
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// ReleaseSlot reports whether a booked flag was actually cleared. The update
// matching the doctor while flipping nothing means the day or slot is absent
// from the template, or the slot was already free; callers tell those apart.
func (r *MongoRepository) ReleaseSlot(ctx context.Context, id, day, label string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		doctorFilter(id),
		bson.M{"$set": bson.M{"availability.$[d].timeSlots.$[s].isBooked": false}},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"d.day": day},
			bson.M{"s.time": label, "s.isBooked": true},
		}}),
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoRepository) ApplyRating(ctx context.Context, id string, rating float64, total int) error {
	_, err := r.col.UpdateOne(ctx, doctorFilter(id), bson.M{
		"$set": bson.M{"rating": rating, "totalReviews": total},
	})
	return err
}
