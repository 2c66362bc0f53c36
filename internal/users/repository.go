package users

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dhairyajangir/CuraLink/internal/doctors"
)

type Repository interface {
	InsertUser(ctx context.Context, u User) (string, error)
	InsertDoctor(ctx context.Context, d doctors.Doctor) (string, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Contact(ctx context.Context, id string) (name, email string, err error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) InsertUser(ctx context.Context, u User) (string, error) {
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

func (r *MongoRepository) InsertDoctor(ctx context.Context, d doctors.Doctor) (string, error) {
	if d.ID == "" {
		d.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, d); err != nil {
		return "", err
	}
	return d.ID, nil
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, err
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (User, error) {
	var u User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, err
}

// Contact resolves the display name and email address for a user, regardless
// of role. Notification delivery uses it to address messages.
func (r *MongoRepository) Contact(ctx context.Context, id string) (string, string, error) {
	var doc struct {
		Name  string `bson:"name"`
		Email string `bson:"email"`
	}
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return "", "", err
	}
	return doc.Name, doc.Email, nil
}
