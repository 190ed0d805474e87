package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/filestorage"
	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// subjectStore is the slice of subject persistence the subject service needs.
type subjectStore interface {
	CreateSubject(ctx context.Context, subject *models.Subject) (int64, error)
	GetSubjectByID(ctx context.Context, id int64) (*models.Subject, error)
	GetAllSubjects(ctx context.Context) ([]*models.Subject, error)
	GetSubjectsByProfessor(ctx context.Context, professorID int64) ([]*models.Subject, error)
	GetSubjectsByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
	UpdateSubject(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteSubject(ctx context.Context, id int64) error
	Enroll(ctx context.Context, subjectID, studentID int64) (int64, error)
	GetEnrollment(ctx context.Context, subjectID, studentID int64) (*models.Enrollment, error)
	UpdateEnrollmentStatus(ctx context.Context, subjectID, studentID int64, status models.EnrollmentStatus) error
	GetRoster(ctx context.Context, subjectID int64, status models.EnrollmentStatus) ([]models.Enrollment, error)
	ClearRoster(ctx context.Context, subjectID int64) error
	ClearMaterials(ctx context.Context, subjectID int64) error
	AddMaterial(ctx context.Context, material *models.Material) (int64, error)
	GetMaterials(ctx context.Context, subjectID int64, kind models.MaterialKind) ([]models.Material, error)
	GetMaterialByID(ctx context.Context, id int64) (*models.Material, error)
	DeleteMaterial(ctx context.Context, id int64) error
}

// subjectUserStore is the slice of user persistence the subject service needs.
type subjectUserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateRole(ctx context.Context, id int64, role models.RoleType) error
}

// subjectExamStore is the slice of exam persistence closure needs.
type subjectExamStore interface {
	GetExamsBySubject(ctx context.Context, subjectID int64) ([]*models.Exam, error)
	GetAnswerSet(ctx context.Context, examID, studentID int64) (*models.AnswerSet, error)
	DeleteExamsBySubject(ctx context.Context, subjectID int64) error
}

// transcriptStore is the slice of transcript persistence closure needs.
type transcriptStore interface {
	Upsert(ctx context.Context, transcript *models.Transcript) (int64, error)
}

// SubjectService defines the interface for subject, roster, material and
// closure operations.
type SubjectService interface {
	CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error)
	GetSubject(ctx context.Context, id int64) (*models.Subject, error)
	GetAllSubjects(ctx context.Context) ([]*models.Subject, error)
	GetSubjectsByProfessor(ctx context.Context, professorID int64) ([]*models.Subject, error)
	GetSubjectsByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
	AssignProfessor(ctx context.Context, subjectID, professorID int64) error
	ToggleEnrollment(ctx context.Context, subjectID int64, open bool) error
	DeleteSubject(ctx context.Context, id int64) error
	Enroll(ctx context.Context, subjectID, studentID int64) error
	UpdateEnrollmentStatus(ctx context.Context, subjectID, studentID int64, status models.EnrollmentStatus) error
	UploadMaterial(ctx context.Context, subjectID int64, kind models.MaterialKind, file *multipart.FileHeader) (*models.Material, error)
	DeleteMaterial(ctx context.Context, subjectID, materialID int64) error
	CloseSubject(ctx context.Context, subjectID int64) ([]models.Transcript, error)
}

type subjectServiceImpl struct {
	subjectStore    subjectStore
	userStore       subjectUserStore
	examStore       subjectExamStore
	transcriptStore transcriptStore
	storage         filestorage.ObjectStorage
}

// NewSubjectService creates a new subject service instance
func NewSubjectService(
	subjectStore subjectStore,
	userStore subjectUserStore,
	examStore subjectExamStore,
	transcriptStore transcriptStore,
	storage filestorage.ObjectStorage,
) SubjectService {
	return &subjectServiceImpl{
		subjectStore:    subjectStore,
		userStore:       userStore,
		examStore:       examStore,
		transcriptStore: transcriptStore,
		storage:         storage,
	}
}

func parseSubjectLevel(level string) (models.SubjectLevel, error) {
	for _, valid := range models.ValidSubjectLevels {
		if models.SubjectLevel(level) == valid {
			return valid, nil
		}
	}
	return "", fmt.Errorf("%w: nivel de materia inválido", apperrors.ErrValidationFailed)
}

// CreateSubject creates a subject with enrollment closed.
func (s *subjectServiceImpl) CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error) {
	level, err := parseSubjectLevel(req.Level)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre no puede estar vacío", apperrors.ErrValidationFailed)
	}

	subject := &models.Subject{
		Name:             name,
		Level:            level,
		IsEnrollmentOpen: false,
	}

	id, err := s.subjectStore.CreateSubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	subject.ID = id

	logger.Info().Int64("subjectID", id).Str("name", name).Msg("Subject created")
	return subject, nil
}

// GetSubject retrieves a subject with its roster, materials and exam list.
func (s *subjectServiceImpl) GetSubject(ctx context.Context, id int64) (*models.Subject, error) {
	subject, err := s.subjectStore.GetSubjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if subject.ProfessorID != nil {
		professor, err := s.userStore.GetUserByID(ctx, *subject.ProfessorID)
		if err == nil {
			subject.Professor = professor
		}
	}

	roster, err := s.subjectStore.GetRoster(ctx, id, "")
	if err != nil {
		return nil, err
	}
	subject.Roster = roster

	files, err := s.subjectStore.GetMaterials(ctx, id, models.MaterialFile)
	if err != nil {
		return nil, err
	}
	subject.Files = files

	videos, err := s.subjectStore.GetMaterials(ctx, id, models.MaterialVideo)
	if err != nil {
		return nil, err
	}
	subject.Videos = videos

	exams, err := s.examStore.GetExamsBySubject(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, exam := range exams {
		subject.ExamIDs = append(subject.ExamIDs, exam.ID)
	}

	return subject, nil
}

// GetAllSubjects lists every subject.
func (s *subjectServiceImpl) GetAllSubjects(ctx context.Context) ([]*models.Subject, error) {
	return s.subjectStore.GetAllSubjects(ctx)
}

// GetSubjectsByProfessor lists the subjects an instructor teaches.
func (s *subjectServiceImpl) GetSubjectsByProfessor(ctx context.Context, professorID int64) ([]*models.Subject, error) {
	return s.subjectStore.GetSubjectsByProfessor(ctx, professorID)
}

// GetSubjectsByStudent lists a student's roster entries.
func (s *subjectServiceImpl) GetSubjectsByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	return s.subjectStore.GetSubjectsByStudent(ctx, studentID)
}

// AssignProfessor puts an instructor in charge of a subject. A student
// picked for the job is promoted to INSTRUCTOR first.
func (s *subjectServiceImpl) AssignProfessor(ctx context.Context, subjectID, professorID int64) error {
	subject, err := s.subjectStore.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject.IsClosed {
		return apperrors.ErrSubjectAlreadyClosed
	}

	professor, err := s.userStore.GetUserByID(ctx, professorID)
	if err != nil {
		return err
	}

	if professor.Role == models.RoleStudent {
		if err := s.userStore.UpdateRole(ctx, professorID, models.RoleInstructor); err != nil {
			return err
		}
		logger.Info().Int64("userID", professorID).Msg("User promoted to instructor")
	}

	return s.subjectStore.UpdateSubject(ctx, subjectID, map[string]interface{}{"professor_id": professorID})
}

// ToggleEnrollment opens or closes enrollment for a subject.
func (s *subjectServiceImpl) ToggleEnrollment(ctx context.Context, subjectID int64, open bool) error {
	subject, err := s.subjectStore.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject.IsClosed {
		return apperrors.ErrSubjectAlreadyClosed
	}

	return s.subjectStore.UpdateSubject(ctx, subjectID, map[string]interface{}{"is_enrollment_open": open})
}

// DeleteSubject hard-deletes a subject and everything under it.
func (s *subjectServiceImpl) DeleteSubject(ctx context.Context, id int64) error {
	if err := s.subjectStore.DeleteSubject(ctx, id); err != nil {
		return err
	}

	if err := s.storage.DeletePrefix(ctx, subjectPrefix(id)); err != nil {
		logger.Warn().Err(err).Int64("subjectID", id).Msg("Failed to purge subject storage")
	}
	return nil
}

// Enroll adds a student to the roster in PENDING state. Enrollment must be
// open and the account must actually be a student.
func (s *subjectServiceImpl) Enroll(ctx context.Context, subjectID, studentID int64) error {
	subject, err := s.subjectStore.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject.IsClosed || !subject.IsEnrollmentOpen {
		return apperrors.ErrEnrollmentClosed
	}

	student, err := s.userStore.GetUserByID(ctx, studentID)
	if err != nil {
		return err
	}
	if student.Role != models.RoleStudent {
		return fmt.Errorf("%w: sólo los alumnos pueden inscribirse", apperrors.ErrValidationFailed)
	}

	if _, err := s.subjectStore.Enroll(ctx, subjectID, studentID); err != nil {
		return err
	}

	logger.Info().Int64("subjectID", subjectID).Int64("studentID", studentID).Msg("Student enrolled")
	return nil
}

// UpdateEnrollmentStatus accepts or rejects a roster entry.
func (s *subjectServiceImpl) UpdateEnrollmentStatus(ctx context.Context, subjectID, studentID int64, status models.EnrollmentStatus) error {
	subject, err := s.subjectStore.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject.IsClosed {
		return apperrors.ErrSubjectAlreadyClosed
	}

	return s.subjectStore.UpdateEnrollmentStatus(ctx, subjectID, studentID, status)
}

// UploadMaterial stores a file or video and attaches it to the subject.
func (s *subjectServiceImpl) UploadMaterial(ctx context.Context, subjectID int64, kind models.MaterialKind, file *multipart.FileHeader) (*models.Material, error) {
	subject, err := s.subjectStore.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.IsClosed {
		return nil, apperrors.ErrSubjectAlreadyClosed
	}
	if file == nil {
		return nil, fmt.Errorf("%w: se requiere un archivo", apperrors.ErrValidationFailed)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	folder := "files"
	if kind == models.MaterialVideo {
		folder = "videos"
	}
	key := filestorage.UniqueKey(fmt.Sprintf("%s/%s", subjectPrefix(subjectID), folder), file.Filename)

	url, err := s.storage.Upload(ctx, key, src, file.Header.Get("Content-Type"))
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", subjectID).Msg("Failed to upload material")
		return nil, err
	}

	material := &models.Material{
		SubjectID: subjectID,
		Kind:      kind,
		Name:      file.Filename,
		URL:       url,
	}
	id, err := s.subjectStore.AddMaterial(ctx, material)
	if err != nil {
		return nil, err
	}
	material.ID = id

	return material, nil
}

// DeleteMaterial removes a material and its stored object. Storage errors
// are logged and swallowed; the record always goes.
func (s *subjectServiceImpl) DeleteMaterial(ctx context.Context, subjectID, materialID int64) error {
	material, err := s.subjectStore.GetMaterialByID(ctx, materialID)
	if err != nil {
		return err
	}
	if material.SubjectID != subjectID {
		return apperrors.ErrResourceNotFound
	}

	if err := s.subjectStore.DeleteMaterial(ctx, materialID); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, material.URL); err != nil {
		logger.Warn().Err(err).Str("url", material.URL).Msg("Failed to delete stored material")
	}
	return nil
}

// CloseSubject derives a transcript for every accepted student and purges
// the subject's working data. A student passes only if each of the
// subject's exams has a submission with every answer approved; the first
// failure settles the outcome.
func (s *subjectServiceImpl) CloseSubject(ctx context.Context, subjectID int64) ([]models.Transcript, error) {
	subject, err := s.subjectStore.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.IsClosed {
		return nil, apperrors.ErrSubjectAlreadyClosed
	}

	roster, err := s.subjectStore.GetRoster(ctx, subjectID, models.EnrollmentAccepted)
	if err != nil {
		return nil, err
	}

	exams, err := s.examStore.GetExamsBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	closedAt := time.Now()
	transcripts := []models.Transcript{}

	for _, entry := range roster {
		finalStatus, err := s.finalStatusFor(ctx, exams, entry.StudentID)
		if err != nil {
			return nil, err
		}

		transcript := models.Transcript{
			StudentID:    entry.StudentID,
			SubjectID:    subjectID,
			InstructorID: subject.ProfessorID,
			FinalStatus:  finalStatus,
			ClosedAt:     closedAt,
			Student:      entry.Student,
			Subject:      subject,
		}

		id, err := s.transcriptStore.Upsert(ctx, &transcript)
		if err != nil {
			return nil, err
		}
		transcript.ID = id
		transcripts = append(transcripts, transcript)
	}

	if err := s.examStore.DeleteExamsBySubject(ctx, subjectID); err != nil {
		return nil, err
	}
	if err := s.subjectStore.ClearRoster(ctx, subjectID); err != nil {
		return nil, err
	}
	if err := s.subjectStore.ClearMaterials(ctx, subjectID); err != nil {
		return nil, err
	}

	err = s.subjectStore.UpdateSubject(ctx, subjectID, map[string]interface{}{
		"is_closed":          true,
		"is_enrollment_open": false,
		"professor_id":       nil,
	})
	if err != nil {
		return nil, err
	}

	if err := s.storage.DeletePrefix(ctx, subjectPrefix(subjectID)); err != nil {
		logger.Warn().Err(err).Int64("subjectID", subjectID).Msg("Failed to purge subject storage")
	}

	logger.Info().
		Int64("subjectID", subjectID).
		Int("transcripts", len(transcripts)).
		Msg("Subject closed")
	return transcripts, nil
}

// finalStatusFor walks the subject's exams for one student, stopping at
// the first failure.
func (s *subjectServiceImpl) finalStatusFor(ctx context.Context, exams []*models.Exam, studentID int64) (models.FinalStatus, error) {
	for _, exam := range exams {
		set, err := s.examStore.GetAnswerSet(ctx, exam.ID, studentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrAnswerSetNotFound) {
				return models.FinalMustRepeat, nil
			}
			return "", err
		}

		if len(set.Answers) == 0 {
			return models.FinalMustRepeat, nil
		}
		for _, answer := range set.Answers {
			if answer.Status != models.AnswerApproved {
				return models.FinalMustRepeat, nil
			}
		}
	}
	return models.FinalApproved, nil
}

func subjectPrefix(subjectID int64) string {
	return fmt.Sprintf("subjects/%d", subjectID)
}
