package users

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dhairyajangir/CuraLink/internal/auth"
	"github.com/dhairyajangir/CuraLink/internal/availability"
	"github.com/dhairyajangir/CuraLink/internal/doctors"
	"github.com/dhairyajangir/CuraLink/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")
)

type Service struct {
	repo   Repository
	tokens *auth.Manager
	log    *slog.Logger
}

func NewService(repo Repository, tokens *auth.Manager, log *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, log: log}
}

// Register creates an account and signs the caller in. Doctors start with the
// default weekly availability and wait for admin approval before they can be
// booked; patients are active immediately.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (TokenResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return TokenResponse{}, err
	}

	now := time.Now().UTC()
	var id string
	switch req.Role {
	case models.RoleDoctor:
		id, err = s.repo.InsertDoctor(ctx, newDoctor(req, hash, now))
	default:
		id, err = s.repo.InsertUser(ctx, User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         models.RolePatient,
			Phone:        req.Phone,
			DateOfBirth:  req.DateOfBirth,
			Gender:       req.Gender,
			CreatedAt:    now,
		})
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return TokenResponse{}, ErrEmailTaken
		}
		return TokenResponse{}, err
	}

	u := User{ID: id, Name: req.Name, Email: req.Email, Role: req.Role, Phone: req.Phone, CreatedAt: now}
	return s.issueTokens(u)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return TokenResponse{}, ErrInvalidCredentials
		}
		return TokenResponse{}, err
	}
	if err := auth.ComparePassword(u.PasswordHash, req.Password); err != nil {
		return TokenResponse{}, ErrInvalidCredentials
	}
	return s.issueTokens(u)
}

// Refresh exchanges a valid refresh token for a fresh token pair. The user is
// reloaded so a role or profile change takes effect on the next rotation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	claims, err := s.tokens.Parse(refreshToken)
	if err != nil {
		return TokenResponse{}, ErrInvalidCredentials
	}
	u, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return TokenResponse{}, ErrInvalidCredentials
		}
		return TokenResponse{}, err
	}
	return s.issueTokens(u)
}

func (s *Service) Me(ctx context.Context, id string) (User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// Contact implements the notification directory lookup.
func (s *Service) Contact(ctx context.Context, id string) (string, string, error) {
	return s.repo.Contact(ctx, id)
}

func newDoctor(req RegisterRequest, hash string, now time.Time) doctors.Doctor {
	return doctors.Doctor{
		Name:            req.Name,
		Email:           req.Email,
		PasswordHash:    hash,
		Role:            models.RoleDoctor,
		Phone:           req.Phone,
		Specialty:       req.Specialty,
		Experience:      req.Experience,
		Qualification:   req.Qualification,
		Bio:             req.Bio,
		ConsultationFee: req.ConsultationFee,
		Hospital:        req.Hospital,
		IsApproved:      false,
		Availability:    availability.DefaultWeek(),
		CreatedAt:       now,
	}
}

func (s *Service) issueTokens(u User) (TokenResponse, error) {
	access, err := s.tokens.NewAccessToken(u.ID, u.Role)
	if err != nil {
		return TokenResponse{}, err
	}
	refresh, err := s.tokens.NewRefreshToken(u.ID, u.Role)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{AccessToken: access, RefreshToken: refresh, User: u}, nil
}
