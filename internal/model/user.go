package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User roles as constants
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Username    string       `gorm:"type:varchar(80);uniqueIndex;not null" json:"username" validate:"required"`
	Password    string       `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Role        string       `gorm:"type:varchar(20);not null;default:'staff'" json:"role" validate:"required,oneof=admin manager staff"`
	IsActive    bool         `gorm:"default:true" json:"is_active"`
	Permissions []Permission `gorm:"many2many:user_permissions;" json:"permissions,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// GetPermissionCodes returns a slice of all permission codes for this user
func (u *User) GetPermissionCodes() []string {
	codes := make([]string, len(u.Permissions))
	for i, p := range u.Permissions {
		codes[i] = p.Code
	}
	return codes
}

// ToActor builds the per-request principal used by the permission gate
// and the inventory engine.
func (u *User) ToActor() Actor {
	return Actor{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Permissions: u.GetPermissionCodes(),
	}
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID    `json:"id"`
	Username    string       `json:"username"`
	Role        string       `json:"role"`
	IsActive    bool         `json:"is_active"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		IsActive:    u.IsActive,
		Permissions: u.Permissions,
		CreatedAt:   u.CreatedAt,
	}
}
