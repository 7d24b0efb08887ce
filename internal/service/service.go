package service

import (
	"context"
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/patric-chuzhbe/userdir/internal/logger"
	"github.com/patric-chuzhbe/userdir/internal/models"
)

// TriesToGenerateUniqueID bounds the retries when a freshly generated ID is already taken.
const TriesToGenerateUniqueID = 10

type usersReader interface {
	ListUsers(ctx context.Context) (models.Users, error)
}

type usersWriter interface {
	InsertUser(ctx context.Context, usr models.User) error

	UpdateUser(
		ctx context.Context,
		userID string,
		update models.UpdateUserRequest,
	) (models.User, bool, error)

	DeleteUser(ctx context.Context, userID string) (bool, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	usersReader
	usersWriter
	pinger
}

// ErrValidation is returned when a create payload is absent, malformed or incomplete.
var ErrValidation = errors.New("missing username or phone number")

// ErrNotFound is returned when no user has the requested ID.
var ErrNotFound = errors.New("user not found")

// Service implements the user directory operations on top of a storage.
// errUserExists is the storage error that signals an ID collision; it is
// supplied by the caller so the service does not import a concrete storage.
type Service struct {
	db            storage
	validate      *validator.Validate
	errUserExists error
	generateID    func() string
}

type Option func(*Service)

// WithIDGenerator replaces the UUID generator, mostly for tests.
func WithIDGenerator(generate func() string) Option {
	return func(s *Service) {
		s.generateID = generate
	}
}

// WithUserExistsError tells the service which storage error signals an ID collision.
func WithUserExistsError(err error) Option {
	return func(s *Service) {
		s.errUserExists = err
	}
}

func New(db storage, options ...Option) *Service {
	s := &Service{
		db:       db,
		validate: validator.New(),
		generateID: func() string {
			return uuid.New().String()
		},
	}
	for _, option := range options {
		option(s)
	}

	return s
}

// ListUsers returns every user in insertion order.
func (s *Service) ListUsers(ctx context.Context) (models.Users, error) {
	users, err := s.db.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/ListUsers(): error while `s.db.ListUsers()` calling: %w", err)
	}
	if users == nil {
		users = models.Users{}
	}

	return users, nil
}

// CreateUser validates the request, assigns a new ID and stores the user.
// A nil request is treated as an absent body.
func (s *Service) CreateUser(ctx context.Context, request *models.CreateUserRequest) (models.User, error) {
	if request == nil {
		return models.User{}, ErrValidation
	}
	if err := s.validate.Struct(request); err != nil {
		return models.User{}, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	usr := models.User{
		Username: *request.Username,
		Phone:    *request.Phone,
	}

	for i := 0; i < TriesToGenerateUniqueID; i++ {
		usr.ID = s.generateID()
		err := s.db.InsertUser(ctx, usr)
		if err == nil {
			logger.Log.Debugw("user created", "id", usr.ID)
			return usr, nil
		}
		if s.errUserExists == nil || !errors.Is(err, s.errUserExists) {
			return models.User{}, fmt.Errorf("in internal/service/service.go/CreateUser(): error while `s.db.InsertUser()` calling: %w", err)
		}
	}

	return models.User{}, errors.New("the number of attempts to generate a unique user ID has been exceeded")
}

// UpdateUser overwrites the fields present in request. A nil request changes nothing.
func (s *Service) UpdateUser(ctx context.Context, userID string, request *models.UpdateUserRequest) (models.User, error) {
	update := models.UpdateUserRequest{}
	if request != nil {
		update = *request
	}

	usr, found, err := s.db.UpdateUser(ctx, userID, update)
	if err != nil {
		return models.User{}, fmt.Errorf("in internal/service/service.go/UpdateUser(): error while `s.db.UpdateUser()` calling: %w", err)
	}
	if !found {
		return models.User{}, ErrNotFound
	}

	logger.Log.Debugw("user updated", "id", userID, "noop", update.IsEmpty())

	return usr, nil
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	deleted, err := s.db.DeleteUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("in internal/service/service.go/DeleteUser(): error while `s.db.DeleteUser()` calling: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	logger.Log.Debugw("user deleted", "id", userID)

	return nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
