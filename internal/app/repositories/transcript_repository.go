package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// TranscriptRepository handles final-grade record database operations
type TranscriptRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTranscriptRepository creates a new TranscriptRepository
func NewTranscriptRepository(db *pgxpool.Pool) *TranscriptRepository {
	return &TranscriptRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Upsert records a final status for a student in a subject, overwriting
// any earlier record for the same pair. Later closures win. The subject's
// name and level are denormalized into the row so the record stays
// readable after the subject itself is purged.
func (r *TranscriptRepository) Upsert(ctx context.Context, transcript *models.Transcript) (int64, error) {
	var subjectName, subjectLevel string
	if transcript.Subject != nil {
		subjectName = transcript.Subject.Name
		subjectLevel = string(transcript.Subject.Level)
	}

	sql, args, err := r.sb.Insert("transcripts").
		Columns(
			"student_id", "subject_id", "instructor_id", "final_status",
			"receipt", "payment_date", "closed_at", "subject_name", "subject_level",
		).
		Values(
			transcript.StudentID, transcript.SubjectID, transcript.InstructorID,
			transcript.FinalStatus, transcript.Receipt, transcript.PaymentDate,
			transcript.ClosedAt, subjectName, subjectLevel,
		).
		Suffix(`ON CONFLICT (student_id, subject_id) DO UPDATE SET
			instructor_id = EXCLUDED.instructor_id,
			final_status = EXCLUDED.final_status,
			receipt = EXCLUDED.receipt,
			payment_date = EXCLUDED.payment_date,
			closed_at = EXCLUDED.closed_at,
			subject_name = EXCLUDED.subject_name,
			subject_level = EXCLUDED.subject_level
			RETURNING id`).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert transcript SQL")
		return 0, fmt.Errorf("failed to build upsert transcript query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).
			Int64("studentID", transcript.StudentID).
			Int64("subjectID", transcript.SubjectID).
			Msg("Error executing upsert transcript query")
		return 0, fmt.Errorf("error upserting transcript: %w", err)
	}

	return id, nil
}

// transcriptSelect is the shared SELECT with student and subject attached.
// Subjects are purged at closure, so the subject join is LEFT and name and
// level are denormalized into the transcript row.
func (r *TranscriptRepository) transcriptSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"t.id", "t.student_id", "t.subject_id", "t.instructor_id",
		"t.final_status", "t.receipt", "t.payment_date", "t.closed_at",
		"t.subject_name", "t.subject_level",
		"u.name", "u.dni", "u.legajo",
	).
		From("transcripts t").
		Join("users u ON t.student_id = u.id")
}

func (r *TranscriptRepository) scanTranscripts(ctx context.Context, builder squirrel.SelectBuilder) ([]models.Transcript, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build transcripts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing transcripts query")
		return nil, fmt.Errorf("error querying transcripts: %w", err)
	}
	defer rows.Close()

	transcripts := []models.Transcript{}
	for rows.Next() {
		t := models.Transcript{
			Student: &models.User{},
			Subject: &models.Subject{},
		}
		err := rows.Scan(
			&t.ID, &t.StudentID, &t.SubjectID, &t.InstructorID,
			&t.FinalStatus, &t.Receipt, &t.PaymentDate, &t.ClosedAt,
			&t.Subject.Name, &t.Subject.Level,
			&t.Student.Name, &t.Student.DNI, &t.Student.Legajo,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning transcript row: %w", err)
		}
		t.Student.ID = t.StudentID
		t.Subject.ID = t.SubjectID
		transcripts = append(transcripts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transcript rows: %w", err)
	}

	return transcripts, nil
}

// GetAll retrieves every transcript ordered by student name.
func (r *TranscriptRepository) GetAll(ctx context.Context) ([]models.Transcript, error) {
	return r.scanTranscripts(ctx, r.transcriptSelect().OrderBy("u.name ASC", "t.closed_at ASC"))
}

// GetByStudent retrieves a student's transcripts.
func (r *TranscriptRepository) GetByStudent(ctx context.Context, studentID int64) ([]models.Transcript, error) {
	return r.scanTranscripts(ctx, r.transcriptSelect().
		Where(squirrel.Eq{"t.student_id": studentID}).
		OrderBy("t.closed_at ASC"))
}
