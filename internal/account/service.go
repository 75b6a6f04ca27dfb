package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/NutMontree/kiosk/internal/apperr"
	"github.com/NutMontree/kiosk/internal/store"
)

// Collection is the name of the admin user collection.
const Collection = "Users"

// UniqueField is the natural key of a user.
const UniqueField = "email"

// Profile is the public view of an authenticated admin.
type Profile struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Service registers admins and checks their credentials. It issues no tokens.
type Service struct {
	users  store.Collection
	hasher Hasher
	now    func() time.Time
}

// NewService creates a service over the Users collection.
func NewService(users store.Collection, hasher Hasher) *Service {
	return &Service{users: users, hasher: hasher, now: time.Now}
}

// Register stores a new admin with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if in.Email == "" || in.Password == "" {
		return apperr.Validation("Email and Password are required")
	}
	if _, err := s.users.FindOne(ctx, store.Filter{"email": in.Email}); err == nil {
		return apperr.Conflict("Email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return apperr.Internal("Server error", fmt.Errorf("lookup user: %w", err))
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("hash password: %w", err))
	}
	_, err = s.users.InsertOne(ctx, store.Document{
		"email":      in.Email,
		"password":   digest,
		"full_name":  in.FullName,
		"created_at": s.now().UTC(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.Conflict("Email already exists")
	}
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("insert user: %w", err))
	}
	log.Printf("admin registered: %s", in.Email)
	return nil
}

// Login verifies credentials against the stored digest.
func (s *Service) Login(ctx context.Context, email, password string) (Profile, error) {
	if email == "" || password == "" {
		return Profile{}, apperr.Validation("Email and Password are required")
	}
	user, err := s.users.FindOne(ctx, store.Filter{"email": email})
	if errors.Is(err, store.ErrNotFound) {
		return Profile{}, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return Profile{}, apperr.Internal("Server error", fmt.Errorf("lookup user: %w", err))
	}
	if !s.hasher.Verify(password, user.String("password")) {
		return Profile{}, apperr.Unauthorized("Invalid email or password")
	}

	name := user.String("full_name")
	if name == "" {
		name = "User"
	}
	return Profile{Email: user.String("email"), FullName: name}, nil
}

// UpdatePassword overwrites the digest of an existing admin.
func (s *Service) UpdatePassword(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return apperr.Validation("Email and New Password are required")
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("hash password: %w", err))
	}
	res, err := s.users.UpdateOne(ctx, store.Filter{"email": email}, store.Document{"password": digest})
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("update password: %w", err))
	}
	if res.Matched == 0 {
		return apperr.NotFound("User email not found")
	}
	log.Printf("password updated: %s", email)
	return nil
}
