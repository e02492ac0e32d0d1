package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/taskflow/taskflow-api/internal/cache"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken           = errors.New("user already exists with this email")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrIncorrectPassword    = errors.New("current password is incorrect")
	ErrNameRequired         = errors.New("name is required")
	ErrNameTooLong          = errors.New("name is too long")
	ErrInvalidEmail         = errors.New("please provide a valid email")
	ErrPasswordRequired     = errors.New("password is required")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrPasswordTooLong      = errors.New("password too long")
	ErrBioTooLong           = errors.New("bio is too long")
	ErrAvatarTooLong        = errors.New("avatar is too long")
	ErrUserNotFound         = errors.New("user not found")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToIssueToken   = errors.New("failed to issue token")
	ErrFailedToRevokeToken  = errors.New("failed to revoke token")
)

var validate = validator.New()

// dummyHash is compared against when a login email is unknown, so that both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("taskflow-dummy-password"), bcrypt.DefaultCost)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	denylist cache.TokenDenylist
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, denylist cache.TokenDenylist) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		denylist: denylist,
		now:      time.Now,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new user and issues a token for them.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, "", err
	}
	email, err := validateEmail(input.Email)
	if err != nil {
		return nil, "", err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, "", err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, passwordVersion(user))
	if err != nil {
		return nil, "", ErrFailedToIssueToken
	}

	return user, token, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user and a token.
// Unknown emails and wrong passwords yield the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, utils.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(input.Password))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, passwordVersion(user))
	if err != nil {
		return nil, "", ErrFailedToIssueToken
	}

	return user, token, nil
}

// Authenticate resolves a bearer token to its user. Tokens that are revoked
// or were issued before the user's last password change are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *TokenClaims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil, err
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, nil, ErrTokenRevoked
		}
	}

	user, err := s.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}

	if claims.PasswordVersion != passwordVersion(user) {
		return nil, nil, ErrInvalidToken
	}

	return user, claims, nil
}

// Logout revokes the token identified by tokenID until it expires.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.denylist == nil || tokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, tokenID, expiresAt); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToRevokeToken, err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateProfileInput holds the profile fields to change; nil fields are kept.
type UpdateProfileInput struct {
	Name   *string
	Email  *string
	Bio    *string
	Avatar *string
}

// UpdateProfile applies the provided profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		user.Name = name
	}
	if input.Email != nil {
		email, err := validateEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			existing, err := s.userRepo.FindByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != user.ID:
				return nil, ErrEmailTaken
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
		}
		user.Email = email
	}
	if input.Bio != nil {
		bio := strings.TrimSpace(*input.Bio)
		if len([]rune(bio)) > constants.MaxBioLength {
			return nil, ErrBioTooLong
		}
		user.Bio = bio
	}
	if input.Avatar != nil {
		avatar := strings.TrimSpace(*input.Avatar)
		if len(avatar) > constants.MaxAvatarLength {
			return nil, ErrAvatarTooLong
		}
		user.Avatar = avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// UpdatePassword verifies the current password, stores the new one and
// returns a fresh token. Tokens issued earlier stop being accepted.
func (s *AuthService) UpdatePassword(ctx context.Context, userID uint64, currentPassword, newPassword string) (string, error) {
	if currentPassword == "" || newPassword == "" {
		return "", ErrPasswordRequired
	}
	if err := validatePassword(newPassword); err != nil {
		return "", err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return "", ErrIncorrectPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}

	changedAt := s.now().UTC().Truncate(time.Millisecond)
	user.PasswordHash = string(hashedPassword)
	user.PasswordChangedAt = &changedAt

	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, passwordVersion(user))
	if err != nil {
		return "", ErrFailedToIssueToken
	}
	return token, nil
}

// passwordVersion stamps tokens with the last password change. Millisecond
// precision survives every supported database's datetime column.
func passwordVersion(user *models.User) int64 {
	if user.PasswordChangedAt == nil {
		return 0
	}
	return user.PasswordChangedAt.UnixMilli()
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if len([]rune(name)) > constants.MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

func validateEmail(email string) (string, error) {
	email = utils.NormalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > constants.MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
