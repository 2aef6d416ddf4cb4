package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError(shared.ErrUnauthorized.Code, "Invalid email or password")

// AuthService handles registration, login, logout and the caller's own profile
type AuthService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register creates a customer account and signs the user in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Email is already registered")
	}

	user, err := identity.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if err := user.SetPhone(req.Phone); err != nil {
		return nil, err
	}

	// a concurrent registration of the same email loses on the unique index
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, user.PullDomainEvents()...)
	}

	return s.issue(user)
}

// Login verifies email and password and returns a signed token.
// Unknown emails and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email", zap.String("email", identity.NormalizeEmail(req.Email)))
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}

	s.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))

	return s.issue(user)
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, req LogoutRequest) error {
	if req.TokenID == "" || req.ExpiresIn <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, req.TokenID, req.ExpiresIn); err != nil {
		s.logger.Error("Failed to revoke token",
			zap.String("user_id", req.UserID.String()),
			zap.Error(err))
		return err
	}

	s.logger.Info("User logged out", zap.String("user_id", req.UserID.String()))
	return nil
}

// Profile returns the caller's account
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// UpdateProfile changes the caller's name, email, phone or password
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := applyAccountChanges(ctx, s.userRepo, user, req.Name, req.Email, req.Phone); err != nil {
		return nil, err
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", zap.String("user_id", user.ID.String()))

	response := ToUserResponse(user)
	return &response, nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	token, err := s.jwtService.Generate(user.ID, string(user.Role))
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, err
	}
	return &AuthResult{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      ToUserResponse(user),
	}, nil
}

// applyAccountChanges sets the non-nil fields; a changed email must be free
func applyAccountChanges(ctx context.Context, repo identity.UserRepository, user *identity.User, name, email, phone *string) error {
	if name != nil {
		if err := user.SetName(*name); err != nil {
			return err
		}
	}
	if email != nil && identity.NormalizeEmail(*email) != user.Email {
		exists, err := repo.ExistsByEmail(ctx, *email)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.ErrAlreadyExists.Code, "Email is already registered")
		}
		if err := user.SetEmail(*email); err != nil {
			return err
		}
	}
	if phone != nil {
		if err := user.SetPhone(*phone); err != nil {
			return err
		}
	}
	return nil
}
