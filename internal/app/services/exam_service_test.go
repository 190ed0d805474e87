package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
)

// fakeStorage is an in-memory ObjectStorage for service tests.
type fakeStorage struct {
	mu              sync.Mutex
	uploads         map[string]bool
	deleted         []string
	deletedPrefixes []string
	failDelete      bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string]bool{}}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[key] = true
	return "https://files.test/" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return fmt.Errorf("storage unavailable")
	}
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func (f *fakeStorage) DeletePrefix(ctx context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return fmt.Errorf("storage unavailable")
	}
	f.deletedPrefixes = append(f.deletedPrefixes, prefix)
	return nil
}

// fakeExamStore keeps exams and answer sets in memory.
type fakeExamStore struct {
	exams     map[int64]*models.Exam
	sets      map[string]*models.AnswerSet
	nextSetID int64
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{
		exams:     map[int64]*models.Exam{},
		sets:      map[string]*models.AnswerSet{},
		nextSetID: 100,
	}
}

func setKey(examID, studentID int64) string {
	return fmt.Sprintf("%d:%d", examID, studentID)
}

func (f *fakeExamStore) CreateExam(ctx context.Context, exam *models.Exam) (int64, error) {
	id := int64(len(f.exams) + 1)
	exam.ID = id
	f.exams[id] = exam
	return id, nil
}

func (f *fakeExamStore) GetExamByID(ctx context.Context, id int64) (*models.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, apperrors.ErrExamNotFound
	}
	return exam, nil
}

func (f *fakeExamStore) GetExamsBySubject(ctx context.Context, subjectID int64) ([]*models.Exam, error) {
	result := []*models.Exam{}
	for _, exam := range f.exams {
		if exam.SubjectID == subjectID {
			result = append(result, exam)
		}
	}
	return result, nil
}

func (f *fakeExamStore) DeleteExam(ctx context.Context, id int64) error {
	delete(f.exams, id)
	return nil
}

func (f *fakeExamStore) DeleteExamsBySubject(ctx context.Context, subjectID int64) error {
	for id, exam := range f.exams {
		if exam.SubjectID == subjectID {
			delete(f.exams, id)
		}
	}
	return nil
}

func (f *fakeExamStore) CreateAnswerSet(ctx context.Context, set *models.AnswerSet) (int64, error) {
	key := setKey(set.ExamID, set.StudentID)
	if _, exists := f.sets[key]; exists {
		return 0, apperrors.ErrAlreadySubmitted
	}
	f.nextSetID++
	set.ID = f.nextSetID
	set.SubmittedAt = time.Now()
	f.sets[key] = set
	return set.ID, nil
}

func (f *fakeExamStore) GetAnswerSet(ctx context.Context, examID, studentID int64) (*models.AnswerSet, error) {
	set, ok := f.sets[setKey(examID, studentID)]
	if !ok {
		return nil, apperrors.ErrAnswerSetNotFound
	}
	return set, nil
}

func (f *fakeExamStore) GetAnswerSetsByExam(ctx context.Context, examID int64) ([]models.AnswerSet, error) {
	result := []models.AnswerSet{}
	for _, set := range f.sets {
		if set.ExamID == examID {
			result = append(result, *set)
		}
	}
	return result, nil
}

func (f *fakeExamStore) ApplyCorrections(ctx context.Context, setID int64, statuses map[int64]models.AnswerStatus, setStatus models.AnswerStatus) error {
	for _, set := range f.sets {
		if set.ID != setID {
			continue
		}
		for i := range set.Answers {
			if status, ok := statuses[set.Answers[i].QuestionID]; ok {
				set.Answers[i].Status = status
			}
		}
		set.Status = setStatus
		return nil
	}
	return apperrors.ErrInvalidQuestion
}

func (f *fakeExamStore) UpdateAnswers(ctx context.Context, setID int64, answers []models.Answer, setStatus models.AnswerStatus) error {
	for _, set := range f.sets {
		if set.ID != setID {
			continue
		}
		for _, updated := range answers {
			for i := range set.Answers {
				if set.Answers[i].QuestionID == updated.QuestionID {
					set.Answers[i].Text = updated.Text
					set.Answers[i].OptionID = updated.OptionID
					set.Answers[i].AudioURL = updated.AudioURL
					set.Answers[i].Status = updated.Status
				}
			}
		}
		set.Status = setStatus
		return nil
	}
	return apperrors.ErrAnswerSetNotFound
}

// fakeSubjectLookup satisfies the subject lookup the exam service needs.
type fakeSubjectLookup struct {
	subjects map[int64]*models.Subject
}

func (f *fakeSubjectLookup) GetSubjectByID(ctx context.Context, id int64) (*models.Subject, error) {
	subject, ok := f.subjects[id]
	if !ok {
		return nil, apperrors.ErrSubjectNotFound
	}
	return subject, nil
}

func newExamFixture(t *testing.T) (*fakeExamStore, *fakeSubjectLookup, *models.Exam) {
	t.Helper()

	store := newFakeExamStore()
	subjects := &fakeSubjectLookup{subjects: map[int64]*models.Subject{
		1: {ID: 1, Name: "Doctrinas Básicas “A”", Level: models.LevelElemental},
	}}

	exam := &models.Exam{
		SubjectID:    1,
		InstructorID: 5,
		Title:        "Parcial 1",
		DueDate:      time.Now().Add(48 * time.Hour),
		Questions: []models.Question{
			{ID: 10, Position: 1, Text: "Desarrolle el tema", Type: models.QuestionFreeResponse},
			{ID: 11, Position: 2, Text: "Elija la opción correcta", Type: models.QuestionMultipleChoice, Options: []models.Option{
				{ID: 20, QuestionID: 11, Text: "Opción A", Score: 10},
				{ID: 21, QuestionID: 11, Text: "Opción B", Score: 0},
			}},
		},
	}
	_, err := store.CreateExam(context.Background(), exam)
	require.NoError(t, err)

	return store, subjects, exam
}

func optID(id int64) *int64 { return &id }

func TestSubmitAnswers(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := NewExamService(store, subjects, newFakeStorage(), false)

	req := &dto.SubmitAnswersRequest{Answers: []dto.AnswerItem{
		{QuestionID: 10, Text: "Mi desarrollo"},
		{QuestionID: 11, OptionID: optID(20)},
	}}

	set, err := svc.SubmitAnswers(ctx, exam.ID, 7, req, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AnswerDone, set.Status)
	require.Len(t, set.Answers, 2)
	for _, answer := range set.Answers {
		assert.Equal(t, models.AnswerDone, answer.Status)
	}

	// Second submission is rejected
	_, err = svc.SubmitAnswers(ctx, exam.ID, 7, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrAlreadySubmitted)
}

func TestSubmitAnswersAfterDueDate(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	exam.DueDate = time.Now().AddDate(0, 0, -2)
	svc := NewExamService(store, subjects, newFakeStorage(), false)

	req := &dto.SubmitAnswersRequest{Answers: []dto.AnswerItem{{QuestionID: 10, Text: "tarde"}}}
	_, err := svc.SubmitAnswers(ctx, exam.ID, 7, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrDueDatePassed)
}

func TestSubmitAnswersUnknownQuestion(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := NewExamService(store, subjects, newFakeStorage(), false)

	req := &dto.SubmitAnswersRequest{Answers: []dto.AnswerItem{
		{QuestionID: 999, Text: "?"},
		{QuestionID: 11, OptionID: optID(20)},
	}}
	_, err := svc.SubmitAnswers(ctx, exam.ID, 7, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuestion)
}

func TestSubmitAnswersInvalidOption(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := NewExamService(store, subjects, newFakeStorage(), false)

	req := &dto.SubmitAnswersRequest{Answers: []dto.AnswerItem{
		{QuestionID: 10, Text: "desarrollo"},
		{QuestionID: 11, OptionID: optID(999)},
	}}
	_, err := svc.SubmitAnswers(ctx, exam.ID, 7, req, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSubmitAnswersRequiresEveryQuestion(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := NewExamService(store, subjects, newFakeStorage(), false)

	// Empty submission
	_, err := svc.SubmitAnswers(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	// One of two questions answered
	_, err = svc.SubmitAnswers(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{
		Answers: []dto.AnswerItem{{QuestionID: 10, Text: "incompleto"}},
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	// Nothing was persisted, so a complete submission still goes through
	_, err = svc.SubmitAnswers(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{
		Answers: []dto.AnswerItem{
			{QuestionID: 10, Text: "completo"},
			{QuestionID: 11, OptionID: optID(20)},
		},
	}, nil)
	assert.NoError(t, err)
}

func TestSubmitAnswersRejectsMismatchedFields(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := NewExamService(store, subjects, newFakeStorage(), false)

	// Free-response answer carrying an option
	_, err := svc.SubmitAnswers(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{
		Answers: []dto.AnswerItem{
			{QuestionID: 10, Text: "desarrollo", OptionID: optID(20)},
			{QuestionID: 11, OptionID: optID(20)},
		},
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	// Multiple-choice answer carrying free text
	_, err = svc.SubmitAnswers(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{
		Answers: []dto.AnswerItem{
			{QuestionID: 10, Text: "desarrollo"},
			{QuestionID: 11, OptionID: optID(20), Text: "además texto"},
		},
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

// audioUpload builds an openable multipart part named audio_<questionID>.
func audioUpload(t *testing.T, questionID int64) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="audio_%d.webm"`, questionID))
	header.Set("Content-Type", "audio/webm")
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("webm"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"][0]
}

func TestSubmitAnswersStoresAudioUnderSubjectPrefix(t *testing.T) {
	ctx := context.Background()
	store, subjects, _ := newExamFixture(t)
	storage := newFakeStorage()
	svc := NewExamService(store, subjects, storage, false)

	exam := &models.Exam{
		SubjectID:    1,
		InstructorID: 5,
		Title:        "Oral",
		DueDate:      time.Now().Add(48 * time.Hour),
		Questions: []models.Question{
			{ID: 30, Position: 1, Text: "Grabe su respuesta", Type: models.QuestionAudio},
		},
	}
	_, err := store.CreateExam(ctx, exam)
	require.NoError(t, err)

	set, err := svc.SubmitAnswers(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{
		Answers: []dto.AnswerItem{{QuestionID: 30}},
	}, []*multipart.FileHeader{audioUpload(t, 30)})
	require.NoError(t, err)
	require.Len(t, set.Answers, 1)
	require.NotNil(t, set.Answers[0].AudioURL)

	// Closing the subject purges subjects/<id>, which must cover the audio
	wantPrefix := fmt.Sprintf("subjects/%d/exams/%d/audio/", exam.SubjectID, exam.ID)
	require.Len(t, storage.uploads, 1)
	for key := range storage.uploads {
		assert.True(t, strings.HasPrefix(key, wantPrefix), "stored at %s", key)
	}
}

func submitFixture(t *testing.T, store *fakeExamStore, subjects *fakeSubjectLookup, exam *models.Exam) ExamService {
	t.Helper()
	svc := NewExamService(store, subjects, newFakeStorage(), false)
	req := &dto.SubmitAnswersRequest{Answers: []dto.AnswerItem{
		{QuestionID: 10, Text: "Primer intento"},
		{QuestionID: 11, OptionID: optID(20)},
	}}
	_, err := svc.SubmitAnswers(context.Background(), exam.ID, 7, req, nil)
	require.NoError(t, err)
	return svc
}

func TestCorrectMarksRework(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := submitFixture(t, store, subjects, exam)

	set, err := svc.Correct(ctx, exam.ID, &dto.CorrectionsRequest{
		StudentID: 7,
		Corrections: []dto.CorrectionItem{
			{QuestionID: 10, Status: string(models.AnswerRework)},
			{QuestionID: 11, Status: string(models.AnswerApproved)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.AnswerRework, set.Status)
}

func TestCorrectAllApproved(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := submitFixture(t, store, subjects, exam)

	set, err := svc.Correct(ctx, exam.ID, &dto.CorrectionsRequest{
		StudentID: 7,
		Corrections: []dto.CorrectionItem{
			{QuestionID: 10, Status: string(models.AnswerApproved)},
			{QuestionID: 11, Status: string(models.AnswerApproved)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.AnswerApproved, set.Status)
}

func TestCorrectTwiceYieldsSameResult(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := submitFixture(t, store, subjects, exam)

	corrections := &dto.CorrectionsRequest{
		StudentID: 7,
		Corrections: []dto.CorrectionItem{
			{QuestionID: 10, Status: string(models.AnswerRework)},
			{QuestionID: 11, Status: string(models.AnswerApproved)},
		},
	}

	first, err := svc.Correct(ctx, exam.ID, corrections)
	require.NoError(t, err)

	second, err := svc.Correct(ctx, exam.ID, corrections)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, models.AnswerRework, second.Status)
	for i := range first.Answers {
		assert.Equal(t, first.Answers[i].Status, second.Answers[i].Status)
	}
}

func TestCorrectUnansweredQuestion(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := submitFixture(t, store, subjects, exam)

	_, err := svc.Correct(ctx, exam.ID, &dto.CorrectionsRequest{
		StudentID:   7,
		Corrections: []dto.CorrectionItem{{QuestionID: 999, Status: string(models.AnswerRework)}},
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCorrections)
}

func TestGetReworkQuestions(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := submitFixture(t, store, subjects, exam)

	// Nothing flagged yet
	_, err := svc.GetReworkQuestions(ctx, exam.ID, 7)
	assert.ErrorIs(t, err, apperrors.ErrNoReworkQuestions)

	_, err = svc.Correct(ctx, exam.ID, &dto.CorrectionsRequest{
		StudentID: 7,
		Corrections: []dto.CorrectionItem{
			{QuestionID: 10, Status: string(models.AnswerRework)},
			{QuestionID: 11, Status: string(models.AnswerApproved)},
		},
	})
	require.NoError(t, err)

	items, err := svc.GetReworkQuestions(ctx, exam.ID, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(10), items[0].Question.ID)
	assert.Equal(t, models.AnswerRework, items[0].Answer.Status)
}

func TestResubmitRework(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := submitFixture(t, store, subjects, exam)

	_, err := svc.Correct(ctx, exam.ID, &dto.CorrectionsRequest{
		StudentID: 7,
		Corrections: []dto.CorrectionItem{
			{QuestionID: 10, Status: string(models.AnswerRework)},
			{QuestionID: 11, Status: string(models.AnswerApproved)},
		},
	})
	require.NoError(t, err)

	set, err := svc.ResubmitRework(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{
		Answers: []dto.AnswerItem{{QuestionID: 10, Text: "Segundo intento"}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AnswerDone, set.Status)

	for _, answer := range set.Answers {
		switch answer.QuestionID {
		case 10:
			assert.Equal(t, "Segundo intento", answer.Text)
			assert.Equal(t, models.AnswerDone, answer.Status)
		case 11:
			assert.Equal(t, models.AnswerApproved, answer.Status)
		}
	}
}

func TestResubmitReworkRejectsApprovedQuestion(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := submitFixture(t, store, subjects, exam)

	_, err := svc.Correct(ctx, exam.ID, &dto.CorrectionsRequest{
		StudentID: 7,
		Corrections: []dto.CorrectionItem{
			{QuestionID: 10, Status: string(models.AnswerRework)},
			{QuestionID: 11, Status: string(models.AnswerApproved)},
		},
	})
	require.NoError(t, err)

	// Question 11 was approved, it may not be overwritten
	_, err = svc.ResubmitRework(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{
		Answers: []dto.AnswerItem{{QuestionID: 11, OptionID: optID(21)}},
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuestion)
}

func TestResubmitReworkPartialKeepsReworkStatus(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := submitFixture(t, store, subjects, exam)

	_, err := svc.Correct(ctx, exam.ID, &dto.CorrectionsRequest{
		StudentID: 7,
		Corrections: []dto.CorrectionItem{
			{QuestionID: 10, Status: string(models.AnswerRework)},
			{QuestionID: 11, Status: string(models.AnswerRework)},
		},
	})
	require.NoError(t, err)

	// Only one of the two flagged answers comes back
	set, err := svc.ResubmitRework(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{
		Answers: []dto.AnswerItem{{QuestionID: 10, Text: "Sólo esta"}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AnswerRework, set.Status)
}

func TestResubmitReworkEnforcedDueDate(t *testing.T) {
	ctx := context.Background()
	store, subjects, exam := newExamFixture(t)
	svc := submitFixture(t, store, subjects, exam)

	_, err := svc.Correct(ctx, exam.ID, &dto.CorrectionsRequest{
		StudentID:   7,
		Corrections: []dto.CorrectionItem{{QuestionID: 10, Status: string(models.AnswerRework)}},
	})
	require.NoError(t, err)

	exam.DueDate = time.Now().AddDate(0, 0, -2)

	// Default configuration lets rework through after the due date
	_, err = svc.ResubmitRework(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{
		Answers: []dto.AnswerItem{{QuestionID: 10, Text: "tarde"}},
	}, nil)
	assert.NoError(t, err)

	strict := NewExamService(store, subjects, newFakeStorage(), true)
	_, err = strict.ResubmitRework(ctx, exam.ID, 7, &dto.SubmitAnswersRequest{
		Answers: []dto.AnswerItem{{QuestionID: 10, Text: "tarde"}},
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrDueDatePassed)
}

func TestCreateExamValidatesQuestions(t *testing.T) {
	ctx := context.Background()
	store, subjects, _ := newExamFixture(t)
	svc := NewExamService(store, subjects, newFakeStorage(), false)

	_, err := svc.CreateExam(ctx, 1, 5, &dto.CreateExamRequest{
		Title:   "Parcial inválido",
		DueDate: time.Now().Add(24 * time.Hour),
		Questions: []dto.QuestionPayload{
			{Text: "Elija", Type: string(models.QuestionMultipleChoice)},
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.CreateExam(ctx, 1, 5, &dto.CreateExamRequest{
		Title:   "Parcial inválido",
		DueDate: time.Now().Add(24 * time.Hour),
		Questions: []dto.QuestionPayload{
			{Text: "Desarrolle", Type: string(models.QuestionFreeResponse), Options: []dto.OptionPayload{{Text: "no va", Score: 0}}},
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateExamOnClosedSubject(t *testing.T) {
	ctx := context.Background()
	store, subjects, _ := newExamFixture(t)
	subjects.subjects[1].IsClosed = true
	svc := NewExamService(store, subjects, newFakeStorage(), false)

	_, err := svc.CreateExam(ctx, 1, 5, &dto.CreateExamRequest{
		Title:     "Parcial",
		DueDate:   time.Now().Add(24 * time.Hour),
		Questions: []dto.QuestionPayload{{Text: "Desarrolle", Type: string(models.QuestionFreeResponse)}},
	})
	assert.ErrorIs(t, err, apperrors.ErrSubjectAlreadyClosed)
}

func audioHeader(filename, contentType string) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: filename,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}

func TestAudioFileFor(t *testing.T) {
	files := []*multipart.FileHeader{
		audioHeader("audio_7.webm", "audio/webm"),
		audioHeader("audio_8.pdf", "application/pdf"),
		audioHeader("notes.webm", "audio/webm"),
	}

	match := audioFileFor(files, 7)
	require.NotNil(t, match)
	assert.Equal(t, "audio_7.webm", match.Filename)

	// Non-audio parts are ignored even when the name matches
	assert.Nil(t, audioFileFor(files, 8))
	assert.Nil(t, audioFileFor(files, 99))
}
