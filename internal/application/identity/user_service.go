package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles user administration
type UserService struct {
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns one page of users, newest first
func (s *UserService) List(ctx context.Context, req ListUsersRequest) (*UserListResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	filter := identity.UserFilter{
		Keyword:  req.Keyword,
		Page:     page,
		PageSize: DefaultPageSize,
	}
	if req.Role != "" {
		role := identity.Role(req.Role)
		if !role.IsValid() {
			return nil, shared.NewValidationError("Invalid role: " + req.Role)
		}
		filter.Role = &role
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	paged := shared.NewPaginated(responses, total, page, DefaultPageSize)
	return &UserListResult{
		Users:      paged.Items,
		Page:       paged.Page,
		Pages:      paged.TotalPages,
		TotalUsers: paged.Total,
	}, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// Update edits an account. Administrators cannot demote themselves.
func (s *UserService) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyAccountChanges(ctx, s.userRepo, user, req.Name, req.Email, req.Phone); err != nil {
		return nil, err
	}
	if req.Role != nil {
		role := identity.Role(*req.Role)
		if actorID == id && role != user.Role {
			return nil, shared.NewDomainError(shared.ErrForbidden.Code, "You cannot change your own role")
		}
		if err := user.SetRole(role); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User updated",
		zap.String("user_id", user.ID.String()),
		zap.String("actor_id", actorID.String()),
		zap.String("role", string(user.Role)))

	response := ToUserResponse(user)
	return &response, nil
}

// Delete removes an account together with its cart and reviews.
// Placed orders are kept. Administrators cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return shared.NewDomainError(shared.ErrForbidden.Code, "You cannot delete your own account")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("User deleted",
		zap.String("user_id", id.String()),
		zap.String("actor_id", actorID.String()))

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, identity.NewUserDeletedEvent(user))
	}
	return nil
}
