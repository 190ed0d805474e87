package auth

import (
	"context"
	"errors"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/repositories"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// AuthorizationService answers role and ownership questions. Role checks
// that gate routes live in the middleware; these helpers cover the checks
// services need beyond the route-level gate.
type AuthorizationService struct {
	userRepo    *repositories.UserRepository
	subjectRepo *repositories.SubjectRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo *repositories.UserRepository, subjectRepo *repositories.SubjectRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo:    userRepo,
		subjectRepo: subjectRepo,
	}
}

// HasRole reports whether role is one of allowed.
func HasRole(role models.RoleType, allowed ...models.RoleType) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// ValidateRole checks that the user holds one of the allowed roles.
func (s *AuthorizationService) ValidateRole(ctx context.Context, userID int64, allowed ...models.RoleType) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user in ValidateRole")
		return err
	}

	if !HasRole(user.Role, allowed...) {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// ValidateSubjectInstructor checks that the user teaches the subject.
// Admins pass unconditionally.
func (s *AuthorizationService) ValidateSubjectInstructor(ctx context.Context, userID, subjectID int64) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return nil
	}

	subject, err := s.subjectRepo.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject.ProfessorID == nil || *subject.ProfessorID != userID {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// ValidateAcceptedStudent checks that the student holds an ACCEPTED roster
// entry in the subject.
func (s *AuthorizationService) ValidateAcceptedStudent(ctx context.Context, studentID, subjectID int64) error {
	enrollment, err := s.subjectRepo.GetEnrollment(ctx, subjectID, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEnrollmentNotFound) {
			return apperrors.ErrPermissionDenied
		}
		return err
	}
	if enrollment.Status != models.EnrollmentAccepted {
		return apperrors.ErrPermissionDenied
	}
	return nil
}
