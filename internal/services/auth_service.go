package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hellosession/internal/domain"
	"hellosession/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

// createdAtLayout is fixed-width so created_at sorts lexically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

type AuthService struct {
	Users *repos.UserRepo
	// Cost is the bcrypt work factor; zero means bcrypt.DefaultCost.
	Cost int
}

func NewAuthService(users *repos.UserRepo, cost int) *AuthService {
	return &AuthService{Users: users, Cost: cost}
}

// Register stores a new user. Field checks belong to the caller.
func (s *AuthService) Register(name, email, password string) (*domain.User, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Hash:      string(h),
		CreatedAt: time.Now().UTC().Format(createdAtLayout),
	}
	if err := s.Users.Create(u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// Authenticate checks password against every account registered under email,
// oldest first, and returns the first match.
func (s *AuthService) Authenticate(email, password string) (*domain.User, error) {
	users, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	for i := range users {
		if bcrypt.CompareHashAndPassword([]byte(users[i].Hash), []byte(password)) == nil {
			return &users[i], nil
		}
	}
	return nil, ErrBadCreds
}

func (s *AuthService) UserByID(id string) (*domain.User, error) {
	return s.Users.ByID(id)
}
