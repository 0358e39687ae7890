package service

import (
	"context"
	"strings"
	"time"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
	"github.com/MAKAMOUL/prophoneplus/internal/repository"
	"github.com/MAKAMOUL/prophoneplus/pkg/uid"
)

const (
	// ErrEmailRequired indicates a missing or malformed user email.
	ErrEmailRequired ServiceError = "a valid email is required"

	// ErrInvalidRole indicates an unknown user role.
	ErrInvalidRole ServiceError = "role must be admin or worker"

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken ServiceError = "email is already registered"
)

// UserService manages the local account records referenced as actors from
// products and sales. Accounts are local-only: they are never pushed to
// the remote store, and authentication against them happens outside this
// system.
type UserService struct {
	store *repository.Store
}

// NewUserService creates a new user service.
func NewUserService(store *repository.Store) *UserService {
	return &UserService{store: store}
}

// UserInput carries the caller-supplied fields of a user.
type UserInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (in *UserInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrEmailRequired
	}
	switch in.Role {
	case model.RoleAdmin, model.RoleWorker:
		return nil
	default:
		return ErrInvalidRole
	}
}

// AddUser creates a local account.
func (s *UserService) AddUser(ctx context.Context, in UserInput) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	}

	now := time.Now()
	u := model.User{
		ID:        uid.New(),
		Email:     strings.TrimSpace(in.Email),
		Name:      in.Name,
		Role:      in.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.PutUser(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser applies caller-supplied fields to an existing account.
func (s *UserService) UpdateUser(ctx context.Context, id string, in UserInput) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if other, err := s.store.GetUserByEmail(ctx, in.Email); err == nil && other.ID != id {
		return nil, ErrEmailTaken
	}

	u.Email = strings.TrimSpace(in.Email)
	u.Name = in.Name
	u.Role = in.Role
	u.UpdatedAt = time.Now()

	if err := s.store.PutUser(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}

// User returns a single account by id.
func (s *UserService) User(ctx context.Context, id string) (*model.User, error) {
	return s.store.GetUser(ctx, id)
}

// Users returns all local accounts.
func (s *UserService) Users(ctx context.Context) ([]model.User, error) {
	return s.store.ListUsers(ctx)
}
