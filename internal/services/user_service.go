package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/models"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/repositories"
)

// userService implements the UserService interface
type userService struct {
	userRepo  repositories.UserRepository
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewUserService creates a new user service instance
func NewUserService(userRepo repositories.UserRepository, logger *logrus.Logger) UserService {
	if logger == nil {
		logger = logrus.New()
	}
	return &userService{
		userRepo:  userRepo,
		validator: newValidator(),
		logger:    logger,
	}
}

// newValidator reports fields by their JSON key rather than the Go field name
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ListUsers returns all users
func (s *userService) ListUsers(ctx context.Context) ([]models.UserRecord, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	s.logger.WithField("count", len(users)).Debug("Listed users")
	return users, nil
}

// CreateUser creates a new user from a request body
func (s *userService) CreateUser(ctx context.Context, body []byte) (*models.CreatedUser, error) {
	req, err := models.ParseCreateUserRequest(body)
	if err != nil {
		return nil, err
	}

	if err := s.validate(req); err != nil {
		return nil, err
	}

	values, err := req.Values()
	if err != nil {
		return nil, err
	}

	id, err := s.userRepo.Create(ctx, values[0], values[1], values[2])
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.CreatedUser{UserID: id}, nil
}

// validate checks the required keys in order and reports the first one missing
func (s *userService) validate(req *models.CreateUserRequest) error {
	err := s.validator.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return models.MissingFieldError(fieldErrs[0].Field())
	}

	return fmt.Errorf("validation failed: %w", err)
}
