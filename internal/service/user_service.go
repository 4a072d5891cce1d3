package service

import (
	"errors"

	"retail-inventory-ws/internal/model"
	"retail-inventory-ws/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrUsernameExists = errors.New("username already exists")
	ErrUnknownRole    = errors.New("unknown role")
)

type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin manager staff"`
}

type UserService interface {
	CreateUser(req *CreateUserRequest, createdBy string) (*model.User, error)
	GetAllUsers() ([]model.User, error)
	GetUserByID(id uuid.UUID) (*model.User, error)
	UpdatePermissions(userID uuid.UUID, codes []string) (*model.User, error)
	ListPermissions() ([]model.Permission, error)
}

type userService struct {
	userRepo       repository.UserRepository
	permissionRepo repository.PermissionRepository
}

func NewUserService(userRepo repository.UserRepository, permRepo repository.PermissionRepository) UserService {
	return &userService{
		userRepo:       userRepo,
		permissionRepo: permRepo,
	}
}

// CreateUser creates a user with the role's default permission set. The
// stored set is independent of the role afterwards and may be changed
// freely via UpdatePermissions.
func (s *userService) CreateUser(req *CreateUserRequest, createdBy string) (*model.User, error) {
	defaults, ok := model.RoleDefaultPermissions[req.Role]
	if !ok {
		return nil, ErrUnknownRole
	}

	if existing, _ := s.userRepo.FindByUsername(req.Username); existing != nil {
		return nil, ErrUsernameExists
	}

	permissions, err := s.permissionRepo.FindByCodes(defaults)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:    req.Username,
		Role:        req.Role,
		IsActive:    true,
		Permissions: permissions,
	}
	user.CreatedBy = createdBy
	user.UpdatedBy = createdBy

	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetAllUsers() ([]model.User, error) {
	return s.userRepo.FindAll()
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdatePermissions replaces a user's permission set with the named
// codes. Unknown codes are silently dropped by the lookup.
func (s *userService) UpdatePermissions(userID uuid.UUID, codes []string) (*model.User, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, ErrUserNotFound
	}

	permissions, err := s.permissionRepo.FindByCodes(codes)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdatePermissions(userID, permissions); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(userID)
}

func (s *userService) ListPermissions() ([]model.Permission, error) {
	return s.permissionRepo.FindAll()
}
