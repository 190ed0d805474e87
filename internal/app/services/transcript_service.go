package services

import (
	"context"
	"time"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// transcriptQueryStore is the slice of transcript persistence the
// transcript service needs.
type transcriptQueryStore interface {
	Upsert(ctx context.Context, transcript *models.Transcript) (int64, error)
	GetAll(ctx context.Context) ([]models.Transcript, error)
	GetByStudent(ctx context.Context, studentID int64) ([]models.Transcript, error)
}

// transcriptUserStore resolves the users referenced by manual records.
type transcriptUserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// transcriptSubjectStore resolves subjects for manual records. The subject
// may already be closed or gone; that is not an error.
type transcriptSubjectStore interface {
	GetSubjectByID(ctx context.Context, id int64) (*models.Subject, error)
}

// TranscriptService defines the interface for final-grade record queries
// and manual overrides.
type TranscriptService interface {
	UpsertManual(ctx context.Context, req *dto.UpsertTranscriptRequest) (*models.Transcript, error)
	GetAll(ctx context.Context) ([]models.Transcript, error)
	GetByStudent(ctx context.Context, studentID int64) ([]models.Transcript, error)
}

type transcriptServiceImpl struct {
	transcriptStore transcriptQueryStore
	userStore       transcriptUserStore
	subjectStore    transcriptSubjectStore
}

// NewTranscriptService creates a new transcript service instance
func NewTranscriptService(transcriptStore transcriptQueryStore, userStore transcriptUserStore, subjectStore transcriptSubjectStore) TranscriptService {
	return &transcriptServiceImpl{
		transcriptStore: transcriptStore,
		userStore:       userStore,
		subjectStore:    subjectStore,
	}
}

// UpsertManual records or amends a final status by hand. It deliberately
// skips the closure derivation: whatever the caller states is recorded.
func (s *transcriptServiceImpl) UpsertManual(ctx context.Context, req *dto.UpsertTranscriptRequest) (*models.Transcript, error) {
	if _, err := s.userStore.GetUserByID(ctx, req.StudentID); err != nil {
		return nil, err
	}

	transcript := &models.Transcript{
		StudentID:   req.StudentID,
		SubjectID:   req.SubjectID,
		FinalStatus: models.FinalStatus(req.FinalStatus),
		Receipt:     req.Receipt,
		PaymentDate: req.PaymentDate,
		ClosedAt:    time.Now(),
	}

	// Denormalize the subject's name and level while it still exists,
	// and record its assigned instructor.
	if subject, err := s.subjectStore.GetSubjectByID(ctx, req.SubjectID); err == nil {
		transcript.Subject = subject
		transcript.InstructorID = subject.ProfessorID
	}

	id, err := s.transcriptStore.Upsert(ctx, transcript)
	if err != nil {
		return nil, err
	}
	transcript.ID = id

	logger.Info().
		Int64("studentID", req.StudentID).
		Int64("subjectID", req.SubjectID).
		Str("finalStatus", req.FinalStatus).
		Msg("Transcript recorded manually")
	return transcript, nil
}

// GetAll lists every transcript.
func (s *transcriptServiceImpl) GetAll(ctx context.Context) ([]models.Transcript, error) {
	return s.transcriptStore.GetAll(ctx)
}

// GetByStudent lists a student's transcripts.
func (s *transcriptServiceImpl) GetByStudent(ctx context.Context, studentID int64) ([]models.Transcript, error) {
	return s.transcriptStore.GetByStudent(ctx, studentID)
}
