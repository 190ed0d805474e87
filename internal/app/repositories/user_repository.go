package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// userColumns is the column list shared by every user SELECT.
var userColumns = []string{
	"id", "name", "email", "password", "dni", "legajo",
	"phone_code", "phone_area", "phone_number", "birthdate",
	"address", "civil_status", "profession", "church",
	"ministerial_role", "reason", "profile_image_url",
	"role", "is_default_admin", "is_verified",
	"verification_code", "verification_expires",
	"created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique violation error.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // 23505 is unique_violation
}

// duplicateConstraint returns the violated constraint name, or "".
func duplicateConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.DNI, &user.Legajo,
		&user.PhoneCode, &user.PhoneArea, &user.PhoneNumber, &user.Birthdate,
		&user.Address, &user.CivilStatus, &user.Profession, &user.Church,
		&user.MinisterialRole, &user.Reason, &user.ProfileImageURL,
		&user.Role, &user.IsDefaultAdmin, &user.IsVerified,
		&user.VerificationCode, &user.VerificationExpires,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user and returns its ID.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	sql, args, err := r.sb.Insert("users").
		Columns(
			"name", "email", "password", "dni", "legajo",
			"phone_code", "phone_area", "phone_number", "birthdate",
			"address", "civil_status", "profession", "church",
			"ministerial_role", "reason", "role", "is_default_admin",
			"is_verified", "verification_code", "verification_expires",
		).
		Values(
			user.Name, user.Email, user.Password, user.DNI, user.Legajo,
			user.PhoneCode, user.PhoneArea, user.PhoneNumber, user.Birthdate,
			user.Address, user.CivilStatus, user.Profession, user.Church,
			user.MinisterialRole, user.Reason, user.Role, user.IsDefaultAdmin,
			user.IsVerified, user.VerificationCode, user.VerificationExpires,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if constraint := duplicateConstraint(err); constraint != "" {
			if strings.Contains(constraint, "dni") {
				return 0, apperrors.ErrDNIAlreadyExists
			}
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create user query")
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return id, nil
}

// GetUserByID retrieves a user by ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user by ID SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}

	return user, nil
}

// GetUserByDNI retrieves a user by their national identity number.
func (r *UserRepository) GetUserByDNI(ctx context.Context, dni string) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"dni": dni}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user by DNI SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("dni", dni).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user by DNI: %w", err)
	}

	return user, nil
}

// GetAllUsers retrieves users with pagination, optionally filtered by role.
func (r *UserRepository) GetAllUsers(ctx context.Context, role models.RoleType, offset uint64, limit int) ([]*models.User, int64, error) {
	baseSelect := r.sb.Select(userColumns...).From("users")
	countSelect := r.sb.Select("COUNT(*)").From("users")

	if role != "" {
		baseSelect = baseSelect.Where(squirrel.Eq{"role": role})
		countSelect = countSelect.Where(squirrel.Eq{"role": role})
	}

	countSQL, countArgs, err := countSelect.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting users")
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	sql, args, err := baseSelect.
		OrderBy("name ASC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, 0, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning user row")
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, total, nil
}

// UpdateUser updates the given profile columns for a user.
func (r *UserRepository) UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	builder := r.sb.Update("users").Where(squirrel.Eq{"id": id})
	for column, value := range updates {
		builder = builder.Set(column, value)
	}
	builder = builder.Set("updated_at", time.Now())

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update user SQL")
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if constraint := duplicateConstraint(err); constraint != "" {
			if strings.Contains(constraint, "dni") {
				return apperrors.ErrDNIAlreadyExists
			}
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing update user query")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// UpdateRole changes a user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role models.RoleType) error {
	return r.UpdateUser(ctx, id, map[string]interface{}{"role": role})
}

// DeleteUser removes a user.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing delete user query")
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// SetVerificationCode stores a fresh verification code and its expiry.
func (r *UserRepository) SetVerificationCode(ctx context.Context, id int64, code string, expires time.Time) error {
	return r.UpdateUser(ctx, id, map[string]interface{}{
		"verification_code":    code,
		"verification_expires": expires,
	})
}

// MarkVerified flips the user to verified and clears the code.
func (r *UserRepository) MarkVerified(ctx context.Context, id int64) error {
	return r.UpdateUser(ctx, id, map[string]interface{}{
		"is_verified":          true,
		"verification_code":    nil,
		"verification_expires": nil,
	})
}
