package users

import "time"

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         string    `bson:"role" json:"role"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	DateOfBirth  string    `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Gender       string    `bson:"gender,omitempty" json:"gender,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=patient doctor"`
	Phone    string `json:"phone" validate:"omitempty,phone"`

	// patient profile
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,date"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female other"`

	// doctor profile, required when registering as one
	Specialty       string `json:"specialty" validate:"required_if=Role doctor,omitempty,max=100"`
	Experience      int    `json:"experience" validate:"omitempty,gte=0,lte=70"`
	Qualification   string `json:"qualification" validate:"omitempty,max=200"`
	Bio             string `json:"bio" validate:"omitempty,max=2000"`
	ConsultationFee int    `json:"consultationFee" validate:"omitempty,gte=0"`
	Hospital        string `json:"hospital" validate:"omitempty,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}
