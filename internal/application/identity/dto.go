package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
)

// DefaultPageSize is the page size of the admin user list
const DefaultPageSize = 10

// RegisterRequest creates a customer account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Phone    string `json:"phone" binding:"max=50"`
}

// LoginRequest authenticates with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LogoutRequest revokes the token a request was authenticated with
type LogoutRequest struct {
	UserID    uuid.UUID
	TokenID   string
	ExpiresIn time.Duration
}

// UpdateProfileRequest changes the caller's own account. Nil fields are kept.
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=200"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
}

// UpdateUserRequest is an administrator's edit of another account
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email *string `json:"email" binding:"omitempty,email,max=200"`
	Phone *string `json:"phone" binding:"omitempty,max=50"`
	Role  *string `json:"role" binding:"omitempty,oneof=user admin"`
}

// ListUsersRequest filters the admin user list
type ListUsersRequest struct {
	Keyword string `form:"keyword" binding:"max=200"`
	Role    string `form:"role" binding:"omitempty,oneof=user admin"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
}

// UserResponse represents a user in API responses. The password hash never leaves the service.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserListResult is one page of users
type UserListResult struct {
	Users      []UserResponse `json:"users"`
	Page       int            `json:"page"`
	Pages      int            `json:"pages"`
	TotalUsers int64          `json:"total_users"`
}

// ToUserResponse converts a domain user to a response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		IsAdmin:   u.IsAdmin(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
