package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
)

// UserDTO is the user payload returned to clients. The password hash never
// leaves the persistence layer.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Phone     *string        `json:"phone,omitempty"`
	Role      enums.UserRole `json:"role"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
}

// FromModel maps the persisted user onto the response DTO.
func FromModel(user *models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

// CreateUserDTO carries the fields needed to insert a user row.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	Role         enums.UserRole
}

// ToModel converts the DTO into a persistable model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        d.Phone,
		Role:         d.Role,
		IsActive:     true,
	}
}
