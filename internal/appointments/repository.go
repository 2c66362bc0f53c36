package appointments

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Insert(ctx context.Context, appt Appointment) error
	Get(ctx context.Context, id string) (Appointment, error)
	SetStatus(ctx context.Context, id, status string, slotHeld bool) (bool, error)
	ListByPatient(ctx context.Context, patientID, status string) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID, status string) ([]Appointment, error)
	ListUpcoming(ctx context.Context, patientID, asOf string, limit int64) ([]Appointment, error)
	ListByDateStatus(ctx context.Context, date, status string) ([]Appointment, error)
	ListRecent(ctx context.Context, limit int64) ([]Appointment, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, appt Appointment) error {
	_, err := r.col.InsertOne(ctx, appt)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id string) (Appointment, error) {
	var appt Appointment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&appt); err != nil {
		return Appointment{}, err
	}
	return appt, nil
}

func (r *MongoRepository) SetStatus(ctx context.Context, id, status string, slotHeld bool) (bool, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "slotHeld": slotHeld},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) list(ctx context.Context, query bson.M, opts *options.FindOptions) ([]Appointment, error) {
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Appointment, 0)
	for cursor.Next(ctx) {
		var appt Appointment
		if err := cursor.Decode(&appt); err != nil {
			return nil, err
		}
		items = append(items, appt)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) ListByPatient(ctx context.Context, patientID, status string) ([]Appointment, error) {
	query := bson.M{"patientId": patientID}
	if status != "" {
		query["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	return r.list(ctx, query, opts)
}

func (r *MongoRepository) ListByDoctor(ctx context.Context, doctorID, status string) ([]Appointment, error) {
	query := bson.M{"doctorId": doctorID}
	if status != "" {
		query["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	return r.list(ctx, query, opts)
}

func (r *MongoRepository) ListUpcoming(ctx context.Context, patientID, asOf string, limit int64) ([]Appointment, error) {
	query := bson.M{
		"patientId": patientID,
		"date":      bson.M{"$gte": asOf},
		"status":    bson.M{"$ne": "cancelled"},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}).
		SetLimit(limit)
	return r.list(ctx, query, opts)
}

func (r *MongoRepository) ListByDateStatus(ctx context.Context, date, status string) ([]Appointment, error) {
	return r.list(ctx, bson.M{"date": date, "status": status}, nil)
}

func (r *MongoRepository) ListRecent(ctx context.Context, limit int64) ([]Appointment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	return r.list(ctx, bson.M{}, opts)
}
