package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/auth"
	"github.com/campusvirtual/backend/internal/pkg/filestorage"
	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// userStore is the slice of user persistence the user service needs.
type userStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context, role models.RoleType, offset uint64, limit int) ([]*models.User, int64, error)
	UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) error
	UpdateRole(ctx context.Context, id int64, role models.RoleType) error
	DeleteUser(ctx context.Context, id int64) error
}

// UserService defines the interface for user administration operations
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context, role models.RoleType, page, size int) ([]*models.User, int64, error)
	UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) error
	UpdateRole(ctx context.Context, id int64, role models.RoleType) error
	DeleteUser(ctx context.Context, id int64) error
	UpdateProfileImage(ctx context.Context, id int64, file *multipart.FileHeader) (string, error)
}

type userServiceImpl struct {
	userStore userStore
	storage   filestorage.ObjectStorage
}

// NewUserService creates a new user service instance
func NewUserService(userStore userStore, storage filestorage.ObjectStorage) UserService {
	return &userServiceImpl{
		userStore: userStore,
		storage:   storage,
	}
}

// GetUserByID retrieves a single user.
func (s *userServiceImpl) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userStore.GetUserByID(ctx, id)
}

// GetAllUsers lists users with pagination, optionally filtered by role.
func (s *userServiceImpl) GetAllUsers(ctx context.Context, role models.RoleType, page, size int) ([]*models.User, int64, error) {
	offset := uint64((page - 1) * size)
	return s.userStore.GetAllUsers(ctx, role, offset, size)
}

// UpdateUser applies the supplied profile fields.
func (s *userServiceImpl) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) error {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Legajo != nil {
		updates["legajo"] = *req.Legajo
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.CivilStatus != nil {
		updates["civil_status"] = *req.CivilStatus
	}
	if req.Profession != nil {
		updates["profession"] = *req.Profession
	}
	if req.Church != nil {
		updates["church"] = *req.Church
	}
	if req.MinisterialRole != nil {
		updates["ministerial_role"] = *req.MinisterialRole
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password"] = hashed
	}

	if len(updates) == 0 {
		return nil
	}
	return s.userStore.UpdateUser(ctx, id, updates)
}

// UpdateRole changes a user's role. The seeded admin cannot be demoted.
func (s *userServiceImpl) UpdateRole(ctx context.Context, id int64, role models.RoleType) error {
	user, err := s.userStore.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsDefaultAdmin {
		return apperrors.ErrDefaultAdminProtected
	}

	return s.userStore.UpdateRole(ctx, id, role)
}

// DeleteUser removes an account. The seeded admin cannot be deleted.
func (s *userServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.userStore.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsDefaultAdmin {
		return apperrors.ErrDefaultAdminProtected
	}

	return s.userStore.DeleteUser(ctx, id)
}

// UpdateProfileImage stores a new profile picture and saves its URL.
func (s *userServiceImpl) UpdateProfileImage(ctx context.Context, id int64, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: se requiere una imagen", apperrors.ErrValidationFailed)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := filestorage.UniqueKey(fmt.Sprintf("users/%d", id), file.Filename)
	url, err := s.storage.Upload(ctx, key, src, file.Header.Get("Content-Type"))
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Failed to upload profile image")
		return "", err
	}

	if err := s.userStore.UpdateUser(ctx, id, map[string]interface{}{"profile_image_url": url}); err != nil {
		return "", err
	}
	return url, nil
}
