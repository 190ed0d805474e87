package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
)

func (f *fakeTranscriptStore) GetAll(ctx context.Context) ([]models.Transcript, error) {
	return append([]models.Transcript{}, f.records...), nil
}

func (f *fakeTranscriptStore) GetByStudent(ctx context.Context, studentID int64) ([]models.Transcript, error) {
	result := []models.Transcript{}
	for _, record := range f.records {
		if record.StudentID == studentID {
			result = append(result, record)
		}
	}
	return result, nil
}

func newTranscriptFixture(t *testing.T) (TranscriptService, *fakeTranscriptStore, *fakeSubjectLookup) {
	t.Helper()
	store := &fakeTranscriptStore{}
	users := newFakeUserStore(
		&models.User{ID: 7, Name: "Alumna Pérez", Role: models.RoleStudent},
	)
	professorID := int64(5)
	subjects := &fakeSubjectLookup{subjects: map[int64]*models.Subject{
		3: {ID: 3, Name: "Bibliología I", Level: models.LevelAvanzado2, ProfessorID: &professorID},
	}}
	return NewTranscriptService(store, users, subjects), store, subjects
}

func TestUpsertManualDenormalizesSubject(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTranscriptFixture(t)

	payment := time.Now()
	transcript, err := svc.UpsertManual(ctx, &dto.UpsertTranscriptRequest{
		StudentID:   7,
		SubjectID:   3,
		FinalStatus: string(models.FinalApproved),
		Receipt:     "REC-0042",
		PaymentDate: &payment,
	})
	require.NoError(t, err)

	assert.Equal(t, models.FinalApproved, transcript.FinalStatus)

	// The record carries the subject's assigned instructor, not the caller
	require.NotNil(t, transcript.InstructorID)
	assert.Equal(t, int64(5), *transcript.InstructorID)
	require.NotNil(t, transcript.Subject)
	assert.Equal(t, "Bibliología I", transcript.Subject.Name)
	assert.Len(t, store.records, 1)
}

func TestUpsertManualUnknownSubjectStillRecords(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTranscriptFixture(t)

	// The subject may already be purged; the record is still written
	transcript, err := svc.UpsertManual(ctx, &dto.UpsertTranscriptRequest{
		StudentID:   7,
		SubjectID:   999,
		FinalStatus: string(models.FinalMustRepeat),
	})
	require.NoError(t, err)
	assert.Nil(t, transcript.Subject)
	assert.Nil(t, transcript.InstructorID)
	assert.Len(t, store.records, 1)
}

func TestUpsertManualUnknownStudent(t *testing.T) {
	svc, _, _ := newTranscriptFixture(t)

	_, err := svc.UpsertManual(context.Background(), &dto.UpsertTranscriptRequest{
		StudentID:   999,
		SubjectID:   3,
		FinalStatus: string(models.FinalApproved),
	})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUpsertManualOverwritesEarlierRecord(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTranscriptFixture(t)

	_, err := svc.UpsertManual(ctx, &dto.UpsertTranscriptRequest{
		StudentID:   7,
		SubjectID:   3,
		FinalStatus: string(models.FinalMustRepeat),
	})
	require.NoError(t, err)

	_, err = svc.UpsertManual(ctx, &dto.UpsertTranscriptRequest{
		StudentID:   7,
		SubjectID:   3,
		FinalStatus: string(models.FinalApproved),
	})
	require.NoError(t, err)

	records, err := svc.GetByStudent(ctx, 7)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.FinalApproved, records[0].FinalStatus)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
