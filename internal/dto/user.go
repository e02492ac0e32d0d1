package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Avatar    string          `json:"avatar"`
	Bio       string          `json:"bio"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AuthDTO is returned by register and login: the user plus a fresh token.
type AuthDTO struct {
	UserDTO
	Token string `json:"token"`
}

// TokenDTO is returned when only a new token is issued.
type TokenDTO struct {
	Token string `json:"token"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Avatar:    user.Avatar,
		Bio:       user.Bio,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToAuthDTO converts a User model and token to AuthDTO
func ToAuthDTO(user models.User, token string) AuthDTO {
	return AuthDTO{
		UserDTO: ToUserDTO(user),
		Token:   token,
	}
}
