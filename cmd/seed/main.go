package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dhairyajangir/CuraLink/internal/auth"
	"github.com/dhairyajangir/CuraLink/internal/availability"
	"github.com/dhairyajangir/CuraLink/internal/config"
	"github.com/dhairyajangir/CuraLink/internal/db"
	"github.com/dhairyajangir/CuraLink/internal/models"
)

type seedDoctor struct {
	Name            string
	Email           string
	Specialty       string
	Experience      int
	Qualification   string
	Bio             string
	ConsultationFee int
	Hospital        string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	adminEmail := envOrDefault("ADMIN_EMAIL", "admin@curalink.local")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Println("seed admin: ADMIN_PASSWORD missing, skipping")
	} else if err := seedAdmin(ctx, cols, adminEmail, adminPassword, cfg.Timezone); err != nil {
		log.Fatalf("seed admin error: %v", err)
	}

	demoPassword := envOrDefault("SEED_DOCTOR_PASSWORD", "ChangeMe123!")
	demoDoctors := []seedDoctor{
		{
			Name:            "Dr. Sarah Johnson",
			Email:           "sarah.johnson@curalink.local",
			Specialty:       "Cardiology",
			Experience:      12,
			Qualification:   "MD, FACC",
			Bio:             "Cardiologist focused on preventive care and heart health.",
			ConsultationFee: 80,
			Hospital:        "City Heart Institute",
		},
		{
			Name:            "Dr. Michael Chen",
			Email:           "michael.chen@curalink.local",
			Specialty:       "Dermatology",
			Experience:      8,
			Qualification:   "MD, FAAD",
			Bio:             "Dermatologist treating both medical and cosmetic skin conditions.",
			ConsultationFee: 60,
			Hospital:        "Downtown Skin Clinic",
		},
	}

	for _, doc := range demoDoctors {
		if err := seedApprovedDoctor(ctx, cols, doc, demoPassword, cfg.Timezone); err != nil {
			log.Fatalf("seed doctor error for %s: %v", doc.Name, err)
		}
	}

	log.Println("seed completed")
}

func seedAdmin(ctx context.Context, cols *db.Collections, email, password string, loc *time.Location) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	update := bson.M{
		"$set": bson.M{
			"passwordHash": hash,
			"role":         models.RoleAdmin,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"name":      "Administrator",
			"email":     email,
			"createdAt": now,
		},
	}
	_, err = cols.Users.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	return err
}

func seedApprovedDoctor(ctx context.Context, cols *db.Collections, doc seedDoctor, password string, loc *time.Location) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	update := bson.M{
		"$set": bson.M{
			"passwordHash": hash,
			"role":         models.RoleDoctor,
			"isApproved":   true,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"_id":             primitive.NewObjectID().Hex(),
			"name":            doc.Name,
			"email":           doc.Email,
			"specialty":       doc.Specialty,
			"experience":      doc.Experience,
			"qualification":   doc.Qualification,
			"bio":             doc.Bio,
			"consultationFee": doc.ConsultationFee,
			"hospital":        doc.Hospital,
			"rating":          0.0,
			"totalReviews":    0,
			"availability":    availability.DefaultWeek(),
			"createdAt":       now,
		},
	}
	_, err = cols.Users.UpdateOne(ctx, bson.M{"email": doc.Email}, update, options.Update().SetUpsert(true))
	return err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
