package services

import (
	"context"

	"storeapi/internal/apperr"
	"storeapi/internal/models"
	"storeapi/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserService handles signup and login.
type UserService struct {
	userRepo repositories.UserRepository
	hasher   PasswordHasher
	tokens   *TokenService
	events   EventPublisher
	validate *validator.Validate
	log      *zap.Logger
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(userRepo repositories.UserRepository, hasher PasswordHasher, tokens *TokenService, events EventPublisher, log *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		events:   events,
		validate: newValidator(),
		log:      log,
	}
}

// Login verifies the credentials and issues a bearer token.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (Result[models.LoginResponse], error) {
	if err := s.validate.Struct(req); err != nil {
		return Fail[models.LoginResponse]("Email and password are required"), nil
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return Fail[models.LoginResponse]("User not found"), nil
		}
		s.log.Error("Login error", zap.Error(err))
		return Result[models.LoginResponse]{}, apperr.E(apperr.Upstream, "login", err)
	}

	match, err := s.hasher.Compare(user.Password, req.Password)
	if err != nil {
		s.log.Error("Login error", zap.Error(err))
		return Result[models.LoginResponse]{}, apperr.E(apperr.Upstream, "login: compare password", err)
	}
	if !match {
		return Fail[models.LoginResponse]("Invalid credentials"), nil
	}

	token, err := s.tokens.GenerateToken(models.Identity{ID: user.ID, Email: user.Email, Username: user.Username})
	if err != nil {
		s.log.Error("Login error", zap.Error(err))
		return Result[models.LoginResponse]{}, apperr.E(apperr.Upstream, "login: sign token", err)
	}

	return Ok(models.LoginResponse{Token: token, User: user.Summary()}), nil
}

// Signup registers a new user with a hashed password. No token is issued;
// the caller logs in separately.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (Result[models.UserSummary], error) {
	if err := s.validate.Struct(req); err != nil {
		return Fail[models.UserSummary]("Required Fields"), nil
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		return Fail[models.UserSummary]("User already exists with this email"), nil
	case err != nil && !apperr.Is(err, apperr.NotFound):
		s.log.Error("Signup error", zap.Error(err))
		return Result[models.UserSummary]{}, apperr.E(apperr.Upstream, "signup", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.log.Error("Signup error", zap.Error(err))
		return Result[models.UserSummary]{}, apperr.E(apperr.Upstream, "signup: hash password", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent signup won the race past the lookup above; the unique
		// email index rejected this insert.
		if apperr.Is(err, apperr.Conflict) {
			return Fail[models.UserSummary]("User already exists with this email"), nil
		}
		s.log.Error("Signup error", zap.Error(err))
		return Result[models.UserSummary]{}, apperr.E(apperr.Upstream, "signup", err)
	}

	summary := user.Summary()
	publishEvent(ctx, s.events, s.log, EventUserSignedUp, summary)
	return Ok(summary), nil
}
