package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/constants"
	"github.com/yukikurage/org-task-api/internal/models"
	"github.com/yukikurage/org-task-api/internal/repository"
	"github.com/yukikurage/org-task-api/internal/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrEmailRequired        = errors.New("email is required")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrAccountRejected      = errors.New("account registration was rejected")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// RegistrationMessage is returned to a caller after a successful registration.
const RegistrationMessage = "Registration successful. Your account is pending approval by an administrator."

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo  repository.UserRepository
	tokens    *token.Manager
	directory *OrganizationDirectory
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *token.Manager, directory *OrganizationDirectory) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		directory: directory,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a pending user with no role and no organization.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Status:       authz.StatusPending,
	}

	if err := s.userRepo.Create(user); err != nil {
		// A concurrent registration can pass the lookup above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues tokens. Pending users may log in;
// the activity gate of each operation keeps them out of everything else.
func (s *AuthService) Login(input LoginInput) (*models.User, token.Pair, error) {
	user, err := s.userRepo.FindByEmail(strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, token.Pair{}, ErrInvalidCredentials
		}
		return nil, token.Pair{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, token.Pair{}, ErrInvalidCredentials
	}
	if !authz.CanLogin(user.Status) {
		return nil, token.Pair{}, ErrAccountRejected
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, token.Pair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return user, pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	user, err := s.GetUser(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}
	if !authz.CanLogin(user.Status) {
		return "", ErrAccountRejected
	}

	return s.tokens.IssueAccess(user.ID, user.Email)
}

// UserIDFromAccessToken verifies a bearer token and returns its subject.
func (s *AuthService) UserIDFromAccessToken(raw string) (uint64, error) {
	claims, err := s.tokens.ParseAccess(raw)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ResolveActor loads the current state of a user as an authorization actor,
// including the hierarchy snapshot of the user's organization.
func (s *AuthService) ResolveActor(userID uint64) (*authz.Actor, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	actor := user.Actor()
	if user.OrganizationID != nil {
		node, err := s.directory.Node(*user.OrganizationID)
		switch {
		case err == nil:
			actor.Organization = node
		case errors.Is(err, ErrOrganizationNotFound):
			// Leave the snapshot empty; parent and child scopes then deny.
		default:
			return nil, err
		}
	}
	return &actor, nil
}
