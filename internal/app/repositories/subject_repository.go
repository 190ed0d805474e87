package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// SubjectRepository handles subject, roster and material database operations
type SubjectRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateSubject inserts a new subject and returns its ID.
func (r *SubjectRepository) CreateSubject(ctx context.Context, subject *models.Subject) (int64, error) {
	sql, args, err := r.sb.Insert("subjects").
		Columns("name", "level", "is_enrollment_open", "professor_id").
		Values(subject.Name, subject.Level, subject.IsEnrollmentOpen, subject.ProfessorID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create subject SQL")
		return 0, fmt.Errorf("failed to build create subject query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, apperrors.ErrSubjectAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create subject query")
		return 0, fmt.Errorf("error creating subject: %w", err)
	}

	return id, nil
}

// GetSubjectByID retrieves a subject by ID without relations.
func (r *SubjectRepository) GetSubjectByID(ctx context.Context, id int64) (*models.Subject, error) {
	sql, args, err := r.sb.Select("id", "name", "level", "is_enrollment_open", "is_closed", "professor_id", "created_at", "updated_at").
		From("subjects").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get subject by ID SQL")
		return nil, fmt.Errorf("failed to build get subject query: %w", err)
	}

	subject := &models.Subject{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&subject.ID, &subject.Name, &subject.Level, &subject.IsEnrollmentOpen, &subject.IsClosed,
		&subject.ProfessorID, &subject.CreatedAt, &subject.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		logger.Error().Err(err).Int64("subjectID", id).Msg("Error scanning subject row")
		return nil, fmt.Errorf("error getting subject by ID: %w", err)
	}

	return subject, nil
}

// GetAllSubjects retrieves every subject ordered by level and name.
func (r *SubjectRepository) GetAllSubjects(ctx context.Context) ([]*models.Subject, error) {
	sql, args, err := r.sb.Select("id", "name", "level", "is_enrollment_open", "is_closed", "professor_id", "created_at", "updated_at").
		From("subjects").
		OrderBy("level ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list subjects query")
		return nil, fmt.Errorf("error querying subjects: %w", err)
	}
	defer rows.Close()

	subjects := []*models.Subject{}
	for rows.Next() {
		subject := &models.Subject{}
		err := rows.Scan(
			&subject.ID, &subject.Name, &subject.Level, &subject.IsEnrollmentOpen, &subject.IsClosed,
			&subject.ProfessorID, &subject.CreatedAt, &subject.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning subject row: %w", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subject rows: %w", err)
	}

	return subjects, nil
}

// GetSubjectsByProfessor retrieves the subjects assigned to an instructor.
func (r *SubjectRepository) GetSubjectsByProfessor(ctx context.Context, professorID int64) ([]*models.Subject, error) {
	sql, args, err := r.sb.Select("id", "name", "level", "is_enrollment_open", "is_closed", "professor_id", "created_at", "updated_at").
		From("subjects").
		Where(squirrel.Eq{"professor_id": professorID}).
		OrderBy("level ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subjects by professor query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("professorID", professorID).Msg("Error querying subjects by professor")
		return nil, fmt.Errorf("error querying subjects by professor: %w", err)
	}
	defer rows.Close()

	subjects := []*models.Subject{}
	for rows.Next() {
		subject := &models.Subject{}
		err := rows.Scan(
			&subject.ID, &subject.Name, &subject.Level, &subject.IsEnrollmentOpen, &subject.IsClosed,
			&subject.ProfessorID, &subject.CreatedAt, &subject.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning subject row: %w", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subject rows: %w", err)
	}

	return subjects, nil
}

// UpdateSubject updates the given columns for a subject.
func (r *SubjectRepository) UpdateSubject(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	builder := r.sb.Update("subjects").Where(squirrel.Eq{"id": id})
	for column, value := range updates {
		builder = builder.Set(column, value)
	}
	builder = builder.Set("updated_at", time.Now())

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update subject query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", id).Msg("Error executing update subject query")
		return fmt.Errorf("error updating subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}

	return nil
}

// DeleteSubject removes a subject. Enrollments, materials, exams and all
// submission data go with it via ON DELETE CASCADE; transcripts survive.
func (r *SubjectRepository) DeleteSubject(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("subjects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete subject query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", id).Msg("Error executing delete subject query")
		return fmt.Errorf("error deleting subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}

	return nil
}

// Enroll adds a student to a subject's roster in PENDING state.
func (r *SubjectRepository) Enroll(ctx context.Context, subjectID, studentID int64) (int64, error) {
	sql, args, err := r.sb.Insert("enrollments").
		Columns("subject_id", "student_id", "status").
		Values(subjectID, studentID, models.EnrollmentPending).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build enroll query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, apperrors.ErrAlreadyEnrolled
		}
		logger.Error().Err(err).Int64("subjectID", subjectID).Int64("studentID", studentID).Msg("Error executing enroll query")
		return 0, fmt.Errorf("error enrolling student: %w", err)
	}

	return id, nil
}

// GetEnrollment retrieves a single roster entry.
func (r *SubjectRepository) GetEnrollment(ctx context.Context, subjectID, studentID int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Select("id", "subject_id", "student_id", "status", "created_at").
		From("enrollments").
		Where(squirrel.Eq{"subject_id": subjectID, "student_id": studentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	enrollment := &models.Enrollment{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&enrollment.ID, &enrollment.SubjectID, &enrollment.StudentID,
		&enrollment.Status, &enrollment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("subjectID", subjectID).Int64("studentID", studentID).Msg("Error scanning enrollment row")
		return nil, fmt.Errorf("error getting enrollment: %w", err)
	}

	return enrollment, nil
}

// UpdateEnrollmentStatus moves a roster entry between states.
func (r *SubjectRepository) UpdateEnrollmentStatus(ctx context.Context, subjectID, studentID int64, status models.EnrollmentStatus) error {
	sql, args, err := r.sb.Update("enrollments").
		Set("status", status).
		Where(squirrel.Eq{"subject_id": subjectID, "student_id": studentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update enrollment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", subjectID).Int64("studentID", studentID).Msg("Error executing update enrollment query")
		return fmt.Errorf("error updating enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEnrollmentNotFound
	}

	return nil
}

// GetRoster retrieves a subject's roster with each student attached,
// optionally filtered by enrollment status.
func (r *SubjectRepository) GetRoster(ctx context.Context, subjectID int64, status models.EnrollmentStatus) ([]models.Enrollment, error) {
	builder := r.sb.Select(
		"e.id", "e.subject_id", "e.student_id", "e.status", "e.created_at",
		"u.id", "u.name", "u.email", "u.dni", "u.legajo",
		"u.phone_code", "u.phone_area", "u.phone_number", "u.role",
	).
		From("enrollments e").
		Join("users u ON e.student_id = u.id").
		Where(squirrel.Eq{"e.subject_id": subjectID}).
		OrderBy("u.name ASC")

	if status != "" {
		builder = builder.Where(squirrel.Eq{"e.status": status})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build roster query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", subjectID).Msg("Error executing roster query")
		return nil, fmt.Errorf("error querying roster: %w", err)
	}
	defer rows.Close()

	roster := []models.Enrollment{}
	for rows.Next() {
		enrollment := models.Enrollment{Student: &models.User{}}
		err := rows.Scan(
			&enrollment.ID, &enrollment.SubjectID, &enrollment.StudentID,
			&enrollment.Status, &enrollment.CreatedAt,
			&enrollment.Student.ID, &enrollment.Student.Name, &enrollment.Student.Email,
			&enrollment.Student.DNI, &enrollment.Student.Legajo,
			&enrollment.Student.PhoneCode, &enrollment.Student.PhoneArea,
			&enrollment.Student.PhoneNumber, &enrollment.Student.Role,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning roster row: %w", err)
		}
		roster = append(roster, enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roster rows: %w", err)
	}

	return roster, nil
}

// GetSubjectsByStudent retrieves every subject a student has a roster
// entry in, with the entry's status attached.
func (r *SubjectRepository) GetSubjectsByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	sql, args, err := r.sb.Select(
		"e.id", "e.subject_id", "e.student_id", "e.status", "e.created_at",
	).
		From("enrollments e").
		Where(squirrel.Eq{"e.student_id": studentID}).
		OrderBy("e.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subjects by student query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error querying enrollments by student")
		return nil, fmt.Errorf("error querying enrollments by student: %w", err)
	}
	defer rows.Close()

	enrollments := []models.Enrollment{}
	for rows.Next() {
		enrollment := models.Enrollment{}
		err := rows.Scan(
			&enrollment.ID, &enrollment.SubjectID, &enrollment.StudentID,
			&enrollment.Status, &enrollment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		enrollments = append(enrollments, enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment rows: %w", err)
	}

	return enrollments, nil
}

// AddMaterial attaches an uploaded file or video to a subject.
func (r *SubjectRepository) AddMaterial(ctx context.Context, material *models.Material) (int64, error) {
	sql, args, err := r.sb.Insert("subject_materials").
		Columns("subject_id", "kind", "name", "url").
		Values(material.SubjectID, material.Kind, material.Name, material.URL).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build add material query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", material.SubjectID).Msg("Error executing add material query")
		return 0, fmt.Errorf("error adding material: %w", err)
	}

	return id, nil
}

// GetMaterials retrieves a subject's materials of the given kind.
func (r *SubjectRepository) GetMaterials(ctx context.Context, subjectID int64, kind models.MaterialKind) ([]models.Material, error) {
	builder := r.sb.Select("id", "subject_id", "kind", "name", "url", "created_at").
		From("subject_materials").
		Where(squirrel.Eq{"subject_id": subjectID}).
		OrderBy("created_at ASC")

	if kind != "" {
		builder = builder.Where(squirrel.Eq{"kind": kind})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get materials query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", subjectID).Msg("Error executing get materials query")
		return nil, fmt.Errorf("error querying materials: %w", err)
	}
	defer rows.Close()

	materials := []models.Material{}
	for rows.Next() {
		material := models.Material{}
		err := rows.Scan(
			&material.ID, &material.SubjectID, &material.Kind,
			&material.Name, &material.URL, &material.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning material row: %w", err)
		}
		materials = append(materials, material)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating material rows: %w", err)
	}

	return materials, nil
}

// GetMaterialByID retrieves a single material.
func (r *SubjectRepository) GetMaterialByID(ctx context.Context, id int64) (*models.Material, error) {
	sql, args, err := r.sb.Select("id", "subject_id", "kind", "name", "url", "created_at").
		From("subject_materials").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get material query: %w", err)
	}

	material := &models.Material{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&material.ID, &material.SubjectID, &material.Kind,
		&material.Name, &material.URL, &material.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting material: %w", err)
	}

	return material, nil
}

// ClearRoster removes every enrollment for a subject. Used at closure.
func (r *SubjectRepository) ClearRoster(ctx context.Context, subjectID int64) error {
	sql, args, err := r.sb.Delete("enrollments").
		Where(squirrel.Eq{"subject_id": subjectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear roster query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("subjectID", subjectID).Msg("Error clearing roster")
		return fmt.Errorf("error clearing roster: %w", err)
	}
	return nil
}

// ClearMaterials removes every material record for a subject. Used at closure.
func (r *SubjectRepository) ClearMaterials(ctx context.Context, subjectID int64) error {
	sql, args, err := r.sb.Delete("subject_materials").
		Where(squirrel.Eq{"subject_id": subjectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear materials query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("subjectID", subjectID).Msg("Error clearing materials")
		return fmt.Errorf("error clearing materials: %w", err)
	}
	return nil
}

// DeleteMaterial removes a material record.
func (r *SubjectRepository) DeleteMaterial(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("subject_materials").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete material query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("materialID", id).Msg("Error executing delete material query")
		return fmt.Errorf("error deleting material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}
