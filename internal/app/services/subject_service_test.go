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

// fakeSubjectStore keeps subjects, enrollments and materials in memory.
type fakeSubjectStore struct {
	subjects    map[int64]*models.Subject
	enrollments map[int64][]models.Enrollment
	materials   map[int64]*models.Material
	nextID      int64
}

func newFakeSubjectStore() *fakeSubjectStore {
	return &fakeSubjectStore{
		subjects:    map[int64]*models.Subject{},
		enrollments: map[int64][]models.Enrollment{},
		materials:   map[int64]*models.Material{},
		nextID:      1,
	}
}

func (f *fakeSubjectStore) CreateSubject(ctx context.Context, subject *models.Subject) (int64, error) {
	for _, existing := range f.subjects {
		if existing.Name == subject.Name && existing.Level == subject.Level {
			return 0, apperrors.ErrSubjectAlreadyExists
		}
	}
	f.nextID++
	subject.ID = f.nextID
	f.subjects[subject.ID] = subject
	return subject.ID, nil
}

func (f *fakeSubjectStore) GetSubjectByID(ctx context.Context, id int64) (*models.Subject, error) {
	subject, ok := f.subjects[id]
	if !ok {
		return nil, apperrors.ErrSubjectNotFound
	}
	return subject, nil
}

func (f *fakeSubjectStore) GetAllSubjects(ctx context.Context) ([]*models.Subject, error) {
	result := []*models.Subject{}
	for _, subject := range f.subjects {
		result = append(result, subject)
	}
	return result, nil
}

func (f *fakeSubjectStore) GetSubjectsByProfessor(ctx context.Context, professorID int64) ([]*models.Subject, error) {
	result := []*models.Subject{}
	for _, subject := range f.subjects {
		if subject.ProfessorID != nil && *subject.ProfessorID == professorID {
			result = append(result, subject)
		}
	}
	return result, nil
}

func (f *fakeSubjectStore) GetSubjectsByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	result := []models.Enrollment{}
	for _, entries := range f.enrollments {
		for _, entry := range entries {
			if entry.StudentID == studentID {
				result = append(result, entry)
			}
		}
	}
	return result, nil
}

func (f *fakeSubjectStore) UpdateSubject(ctx context.Context, id int64, updates map[string]interface{}) error {
	subject, ok := f.subjects[id]
	if !ok {
		return apperrors.ErrSubjectNotFound
	}
	if v, ok := updates["is_enrollment_open"]; ok {
		subject.IsEnrollmentOpen = v.(bool)
	}
	if v, ok := updates["is_closed"]; ok {
		subject.IsClosed = v.(bool)
	}
	if v, ok := updates["professor_id"]; ok {
		if v == nil {
			subject.ProfessorID = nil
		} else {
			id := v.(int64)
			subject.ProfessorID = &id
		}
	}
	return nil
}

func (f *fakeSubjectStore) DeleteSubject(ctx context.Context, id int64) error {
	if _, ok := f.subjects[id]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	delete(f.subjects, id)
	delete(f.enrollments, id)
	return nil
}

func (f *fakeSubjectStore) Enroll(ctx context.Context, subjectID, studentID int64) (int64, error) {
	for _, entry := range f.enrollments[subjectID] {
		if entry.StudentID == studentID {
			return 0, apperrors.ErrAlreadyEnrolled
		}
	}
	f.nextID++
	f.enrollments[subjectID] = append(f.enrollments[subjectID], models.Enrollment{
		ID:        f.nextID,
		SubjectID: subjectID,
		StudentID: studentID,
		Status:    models.EnrollmentPending,
	})
	return f.nextID, nil
}

func (f *fakeSubjectStore) GetEnrollment(ctx context.Context, subjectID, studentID int64) (*models.Enrollment, error) {
	for i := range f.enrollments[subjectID] {
		if f.enrollments[subjectID][i].StudentID == studentID {
			return &f.enrollments[subjectID][i], nil
		}
	}
	return nil, apperrors.ErrEnrollmentNotFound
}

func (f *fakeSubjectStore) UpdateEnrollmentStatus(ctx context.Context, subjectID, studentID int64, status models.EnrollmentStatus) error {
	for i := range f.enrollments[subjectID] {
		if f.enrollments[subjectID][i].StudentID == studentID {
			f.enrollments[subjectID][i].Status = status
			return nil
		}
	}
	return apperrors.ErrEnrollmentNotFound
}

func (f *fakeSubjectStore) GetRoster(ctx context.Context, subjectID int64, status models.EnrollmentStatus) ([]models.Enrollment, error) {
	result := []models.Enrollment{}
	for _, entry := range f.enrollments[subjectID] {
		if status != "" && entry.Status != status {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

func (f *fakeSubjectStore) ClearRoster(ctx context.Context, subjectID int64) error {
	delete(f.enrollments, subjectID)
	return nil
}

func (f *fakeSubjectStore) ClearMaterials(ctx context.Context, subjectID int64) error {
	for id, material := range f.materials {
		if material.SubjectID == subjectID {
			delete(f.materials, id)
		}
	}
	return nil
}

func (f *fakeSubjectStore) AddMaterial(ctx context.Context, material *models.Material) (int64, error) {
	f.nextID++
	material.ID = f.nextID
	f.materials[material.ID] = material
	return material.ID, nil
}

func (f *fakeSubjectStore) GetMaterials(ctx context.Context, subjectID int64, kind models.MaterialKind) ([]models.Material, error) {
	result := []models.Material{}
	for _, material := range f.materials {
		if material.SubjectID != subjectID {
			continue
		}
		if kind != "" && material.Kind != kind {
			continue
		}
		result = append(result, *material)
	}
	return result, nil
}

func (f *fakeSubjectStore) GetMaterialByID(ctx context.Context, id int64) (*models.Material, error) {
	material, ok := f.materials[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return material, nil
}

func (f *fakeSubjectStore) DeleteMaterial(ctx context.Context, id int64) error {
	delete(f.materials, id)
	return nil
}

// fakeUserStore keeps users in memory.
type fakeUserStore struct {
	users map[int64]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: map[int64]*models.User{}}
	for _, user := range users {
		f.users[user.ID] = user
	}
	return f
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) UpdateRole(ctx context.Context, id int64, role models.RoleType) error {
	user, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.Role = role
	return nil
}

// fakeTranscriptStore records upserts.
type fakeTranscriptStore struct {
	records []models.Transcript
	nextID  int64
}

func (f *fakeTranscriptStore) Upsert(ctx context.Context, transcript *models.Transcript) (int64, error) {
	for i := range f.records {
		if f.records[i].StudentID == transcript.StudentID && f.records[i].SubjectID == transcript.SubjectID {
			f.records[i] = *transcript
			return f.records[i].ID, nil
		}
	}
	f.nextID++
	transcript.ID = f.nextID
	f.records = append(f.records, *transcript)
	return f.nextID, nil
}

type subjectFixture struct {
	subjects    *fakeSubjectStore
	users       *fakeUserStore
	exams       *fakeExamStore
	transcripts *fakeTranscriptStore
	storage     *fakeStorage
	svc         SubjectService
}

func newSubjectFixture(t *testing.T) *subjectFixture {
	t.Helper()
	f := &subjectFixture{
		subjects: newFakeSubjectStore(),
		users: newFakeUserStore(
			&models.User{ID: 5, Name: "Profesor Díaz", Role: models.RoleInstructor},
			&models.User{ID: 7, Name: "Alumna Pérez", Role: models.RoleStudent},
			&models.User{ID: 8, Name: "Alumno Gómez", Role: models.RoleStudent},
		),
		exams:       newFakeExamStore(),
		transcripts: &fakeTranscriptStore{},
		storage:     newFakeStorage(),
	}
	f.svc = NewSubjectService(f.subjects, f.users, f.exams, f.transcripts, f.storage)
	return f
}

func (f *subjectFixture) createSubject(t *testing.T) *models.Subject {
	t.Helper()
	subject, err := f.svc.CreateSubject(context.Background(), &dto.CreateSubjectRequest{
		Name: "Homilética “A”", Level: string(models.LevelAvanzado3),
	})
	require.NoError(t, err)
	return subject
}

func TestCreateSubjectStartsClosed(t *testing.T) {
	f := newSubjectFixture(t)
	subject := f.createSubject(t)
	assert.False(t, subject.IsEnrollmentOpen)
	assert.False(t, subject.IsClosed)

	_, err := f.svc.CreateSubject(context.Background(), &dto.CreateSubjectRequest{
		Name: "Homilética “A”", Level: string(models.LevelAvanzado3),
	})
	assert.ErrorIs(t, err, apperrors.ErrSubjectAlreadyExists)
}

func TestEnrollRequiresOpenEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newSubjectFixture(t)
	subject := f.createSubject(t)

	err := f.svc.Enroll(ctx, subject.ID, 7)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentClosed)

	require.NoError(t, f.svc.ToggleEnrollment(ctx, subject.ID, true))
	require.NoError(t, f.svc.Enroll(ctx, subject.ID, 7))

	// Instructors cannot enroll as students
	err = f.svc.Enroll(ctx, subject.ID, 5)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = f.svc.Enroll(ctx, subject.ID, 7)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)
}

func TestAssignProfessorPromotesStudent(t *testing.T) {
	ctx := context.Background()
	f := newSubjectFixture(t)
	subject := f.createSubject(t)

	require.NoError(t, f.svc.AssignProfessor(ctx, subject.ID, 8))

	promoted, err := f.users.GetUserByID(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, promoted.Role)
	require.NotNil(t, subject.ProfessorID)
	assert.Equal(t, int64(8), *subject.ProfessorID)
}

// closureFixture enrolls two accepted students and one pending one, with a
// single exam both accepted students answered.
func closureFixture(t *testing.T) (*subjectFixture, *models.Subject, *models.Exam) {
	t.Helper()
	ctx := context.Background()
	f := newSubjectFixture(t)
	subject := f.createSubject(t)

	require.NoError(t, f.svc.AssignProfessor(ctx, subject.ID, 5))
	require.NoError(t, f.svc.ToggleEnrollment(ctx, subject.ID, true))
	require.NoError(t, f.svc.Enroll(ctx, subject.ID, 7))
	require.NoError(t, f.svc.Enroll(ctx, subject.ID, 8))
	require.NoError(t, f.svc.UpdateEnrollmentStatus(ctx, subject.ID, 7, models.EnrollmentAccepted))
	require.NoError(t, f.svc.UpdateEnrollmentStatus(ctx, subject.ID, 8, models.EnrollmentAccepted))

	exam := &models.Exam{
		SubjectID:    subject.ID,
		InstructorID: 5,
		Title:        "Final",
		DueDate:      time.Now().Add(24 * time.Hour),
		Questions:    []models.Question{{ID: 10, Position: 1, Text: "Desarrolle", Type: models.QuestionFreeResponse}},
	}
	_, err := f.exams.CreateExam(ctx, exam)
	require.NoError(t, err)

	return f, subject, exam
}

func answerExam(t *testing.T, f *subjectFixture, exam *models.Exam, studentID int64, status models.AnswerStatus) {
	t.Helper()
	_, err := f.exams.CreateAnswerSet(context.Background(), &models.AnswerSet{
		ExamID:    exam.ID,
		StudentID: studentID,
		Status:    status,
		Answers:   []models.Answer{{QuestionID: 10, Text: "respuesta", Status: status}},
	})
	require.NoError(t, err)
}

func TestCloseSubjectDerivesTranscripts(t *testing.T) {
	ctx := context.Background()
	f, subject, exam := closureFixture(t)

	answerExam(t, f, exam, 7, models.AnswerApproved)
	// Student 8 never submitted

	transcripts, err := f.svc.CloseSubject(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, transcripts, 2)

	byStudent := map[int64]models.FinalStatus{}
	for _, transcript := range transcripts {
		byStudent[transcript.StudentID] = transcript.FinalStatus
	}
	assert.Equal(t, models.FinalApproved, byStudent[7])
	assert.Equal(t, models.FinalMustRepeat, byStudent[8])

	// Working data is purged, the subject row survives closed
	assert.True(t, subject.IsClosed)
	assert.False(t, subject.IsEnrollmentOpen)
	assert.Nil(t, subject.ProfessorID)
	assert.Empty(t, f.subjects.enrollments[subject.ID])
	assert.Empty(t, f.exams.exams)
	assert.Contains(t, f.storage.deletedPrefixes, subjectPrefix(subject.ID))
}

func TestCloseSubjectUnapprovedAnswerMeansRepeat(t *testing.T) {
	ctx := context.Background()
	f, subject, exam := closureFixture(t)

	answerExam(t, f, exam, 7, models.AnswerApproved)
	answerExam(t, f, exam, 8, models.AnswerRework)

	transcripts, err := f.svc.CloseSubject(ctx, subject.ID)
	require.NoError(t, err)

	byStudent := map[int64]models.FinalStatus{}
	for _, transcript := range transcripts {
		byStudent[transcript.StudentID] = transcript.FinalStatus
	}
	assert.Equal(t, models.FinalApproved, byStudent[7])
	assert.Equal(t, models.FinalMustRepeat, byStudent[8])
}

func TestCloseSubjectEmptySubmissionMeansRepeat(t *testing.T) {
	ctx := context.Background()
	f, subject, exam := closureFixture(t)

	answerExam(t, f, exam, 7, models.AnswerApproved)

	// A set without answers must not read as approved
	_, err := f.exams.CreateAnswerSet(ctx, &models.AnswerSet{
		ExamID:    exam.ID,
		StudentID: 8,
		Status:    models.AnswerDone,
	})
	require.NoError(t, err)

	transcripts, err := f.svc.CloseSubject(ctx, subject.ID)
	require.NoError(t, err)

	byStudent := map[int64]models.FinalStatus{}
	for _, transcript := range transcripts {
		byStudent[transcript.StudentID] = transcript.FinalStatus
	}
	assert.Equal(t, models.FinalApproved, byStudent[7])
	assert.Equal(t, models.FinalMustRepeat, byStudent[8])
}

func TestCloseSubjectSkipsPendingStudents(t *testing.T) {
	ctx := context.Background()
	f, subject, exam := closureFixture(t)
	require.NoError(t, f.subjects.UpdateEnrollmentStatus(ctx, subject.ID, 8, models.EnrollmentPending))

	answerExam(t, f, exam, 7, models.AnswerApproved)

	transcripts, err := f.svc.CloseSubject(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, transcripts, 1)
	assert.Equal(t, int64(7), transcripts[0].StudentID)
}

func TestCloseSubjectTwice(t *testing.T) {
	ctx := context.Background()
	f, subject, _ := closureFixture(t)

	_, err := f.svc.CloseSubject(ctx, subject.ID)
	require.NoError(t, err)

	_, err = f.svc.CloseSubject(ctx, subject.ID)
	assert.ErrorIs(t, err, apperrors.ErrSubjectAlreadyClosed)
}

func TestCloseSubjectSurvivesStorageFailure(t *testing.T) {
	ctx := context.Background()
	f, subject, exam := closureFixture(t)
	answerExam(t, f, exam, 7, models.AnswerApproved)
	answerExam(t, f, exam, 8, models.AnswerApproved)
	f.storage.failDelete = true

	_, err := f.svc.CloseSubject(ctx, subject.ID)
	assert.NoError(t, err)
	assert.True(t, subject.IsClosed)
}

func TestClosedSubjectRejectsChanges(t *testing.T) {
	ctx := context.Background()
	f, subject, _ := closureFixture(t)
	_, err := f.svc.CloseSubject(ctx, subject.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.AssignProfessor(ctx, subject.ID, 5), apperrors.ErrSubjectAlreadyClosed)
	assert.ErrorIs(t, f.svc.ToggleEnrollment(ctx, subject.ID, true), apperrors.ErrSubjectAlreadyClosed)
	assert.ErrorIs(t, f.svc.Enroll(ctx, subject.ID, 7), apperrors.ErrEnrollmentClosed)
	assert.ErrorIs(t, f.svc.UpdateEnrollmentStatus(ctx, subject.ID, 7, models.EnrollmentAccepted), apperrors.ErrSubjectAlreadyClosed)
}

func TestDeleteMaterialChecksSubject(t *testing.T) {
	ctx := context.Background()
	f := newSubjectFixture(t)
	subject := f.createSubject(t)

	id, err := f.subjects.AddMaterial(ctx, &models.Material{
		SubjectID: subject.ID,
		Kind:      models.MaterialFile,
		Name:      "apunte.pdf",
		URL:       "https://files.test/subjects/x/files/apunte.pdf",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteMaterial(ctx, subject.ID+1, id), apperrors.ErrResourceNotFound)
	require.NoError(t, f.svc.DeleteMaterial(ctx, subject.ID, id))
	assert.Contains(t, f.storage.deleted, "https://files.test/subjects/x/files/apunte.pdf")
}
