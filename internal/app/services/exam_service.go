package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/filestorage"
	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// examStore is the slice of exam persistence the exam service needs.
type examStore interface {
	CreateExam(ctx context.Context, exam *models.Exam) (int64, error)
	GetExamByID(ctx context.Context, id int64) (*models.Exam, error)
	GetExamsBySubject(ctx context.Context, subjectID int64) ([]*models.Exam, error)
	DeleteExam(ctx context.Context, id int64) error
	CreateAnswerSet(ctx context.Context, set *models.AnswerSet) (int64, error)
	GetAnswerSet(ctx context.Context, examID, studentID int64) (*models.AnswerSet, error)
	GetAnswerSetsByExam(ctx context.Context, examID int64) ([]models.AnswerSet, error)
	ApplyCorrections(ctx context.Context, setID int64, statuses map[int64]models.AnswerStatus, setStatus models.AnswerStatus) error
	UpdateAnswers(ctx context.Context, setID int64, answers []models.Answer, setStatus models.AnswerStatus) error
}

// examSubjectStore is the slice of subject persistence the exam service needs.
type examSubjectStore interface {
	GetSubjectByID(ctx context.Context, id int64) (*models.Subject, error)
}

// ExamService defines the interface for exam lifecycle operations:
// definition, submission, correction and rework.
type ExamService interface {
	CreateExam(ctx context.Context, subjectID, instructorID int64, req *dto.CreateExamRequest) (*models.Exam, error)
	GetExam(ctx context.Context, id int64) (*models.Exam, error)
	GetExamsBySubject(ctx context.Context, subjectID int64) ([]*models.Exam, error)
	DeleteExam(ctx context.Context, id int64) error
	SubmitAnswers(ctx context.Context, examID, studentID int64, req *dto.SubmitAnswersRequest, audioFiles []*multipart.FileHeader) (*models.AnswerSet, error)
	GetSubmissions(ctx context.Context, examID int64) ([]models.AnswerSet, error)
	GetOwnSubmission(ctx context.Context, examID, studentID int64) (*models.AnswerSet, error)
	Correct(ctx context.Context, examID int64, req *dto.CorrectionsRequest) (*models.AnswerSet, error)
	GetReworkQuestions(ctx context.Context, examID, studentID int64) ([]dto.ReworkItem, error)
	ResubmitRework(ctx context.Context, examID, studentID int64, req *dto.SubmitAnswersRequest, audioFiles []*multipart.FileHeader) (*models.AnswerSet, error)
}

type examServiceImpl struct {
	examStore          examStore
	subjectStore       examSubjectStore
	storage            filestorage.ObjectStorage
	enforceReworkDates bool
}

// NewExamService creates a new exam service instance. enforceReworkDates
// extends the due-date check to rework resubmissions.
func NewExamService(examStore examStore, subjectStore examSubjectStore, storage filestorage.ObjectStorage, enforceReworkDates bool) ExamService {
	return &examServiceImpl{
		examStore:          examStore,
		subjectStore:       subjectStore,
		storage:            storage,
		enforceReworkDates: enforceReworkDates,
	}
}

// validateQuestions enforces the shape of each question: multiple choice
// needs a non-empty option list, other types carry none.
func validateQuestions(questions []dto.QuestionPayload) error {
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: la pregunta %d no tiene texto", apperrors.ErrValidationFailed, i+1)
		}
		switch models.QuestionType(q.Type) {
		case models.QuestionMultipleChoice:
			if len(q.Options) == 0 {
				return fmt.Errorf("%w: la pregunta %d necesita al menos una opción", apperrors.ErrValidationFailed, i+1)
			}
		case models.QuestionFreeResponse, models.QuestionAudio:
			if len(q.Options) > 0 {
				return fmt.Errorf("%w: la pregunta %d no admite opciones", apperrors.ErrValidationFailed, i+1)
			}
		default:
			return fmt.Errorf("%w: tipo de pregunta inválido", apperrors.ErrValidationFailed)
		}
	}
	return nil
}

// CreateExam defines a new exam for an open subject.
func (s *examServiceImpl) CreateExam(ctx context.Context, subjectID, instructorID int64, req *dto.CreateExamRequest) (*models.Exam, error) {
	subject, err := s.subjectStore.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.IsClosed {
		return nil, apperrors.ErrSubjectAlreadyClosed
	}

	if err := validateQuestions(req.Questions); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		SubjectID:    subjectID,
		InstructorID: instructorID,
		Title:        strings.TrimSpace(req.Title),
		DueDate:      req.DueDate,
	}
	for _, q := range req.Questions {
		question := models.Question{
			Text: q.Text,
			Type: models.QuestionType(q.Type),
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, models.Option{Text: o.Text, Score: o.Score})
		}
		exam.Questions = append(exam.Questions, question)
	}

	id, err := s.examStore.CreateExam(ctx, exam)
	if err != nil {
		return nil, err
	}
	exam.ID = id

	logger.Info().Int64("examID", id).Int64("subjectID", subjectID).Msg("Exam created")
	return s.examStore.GetExamByID(ctx, id)
}

// GetExam retrieves an exam with its questions.
func (s *examServiceImpl) GetExam(ctx context.Context, id int64) (*models.Exam, error) {
	return s.examStore.GetExamByID(ctx, id)
}

// GetExamsBySubject lists a subject's exams.
func (s *examServiceImpl) GetExamsBySubject(ctx context.Context, subjectID int64) ([]*models.Exam, error) {
	return s.examStore.GetExamsBySubject(ctx, subjectID)
}

// DeleteExam removes an exam and its submissions.
func (s *examServiceImpl) DeleteExam(ctx context.Context, id int64) error {
	return s.examStore.DeleteExam(ctx, id)
}

// audioFileFor finds the multipart part for a question by the
// audio_<questionID> filename convention. Parts that are not audio are
// ignored.
func audioFileFor(files []*multipart.FileHeader, questionID int64) *multipart.FileHeader {
	wanted := fmt.Sprintf("audio_%d", questionID)
	for _, file := range files {
		name := file.Filename
		if dot := strings.LastIndex(name, "."); dot > 0 {
			name = name[:dot]
		}
		if name != wanted {
			continue
		}
		if !strings.HasPrefix(file.Header.Get("Content-Type"), "audio/") {
			continue
		}
		return file
	}
	return nil
}

// uploadAudioAnswers uploads every matched audio part concurrently and
// returns question id -> stored URL. Keys live under the subject's prefix
// so closing the subject purges them along with the materials.
func (s *examServiceImpl) uploadAudioAnswers(ctx context.Context, exam *models.Exam, questions map[int64]models.Question, items []dto.AnswerItem, files []*multipart.FileHeader) (map[int64]string, error) {
	urls := make(map[int64]string)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, item := range items {
		question, ok := questions[item.QuestionID]
		if !ok || question.Type != models.QuestionAudio {
			continue
		}
		file := audioFileFor(files, item.QuestionID)
		if file == nil {
			continue
		}

		questionID := item.QuestionID
		g.Go(func() error {
			src, err := file.Open()
			if err != nil {
				return fmt.Errorf("failed to open audio upload: %w", err)
			}
			defer src.Close()

			key := filestorage.UniqueKey(fmt.Sprintf("subjects/%d/exams/%d/audio", exam.SubjectID, exam.ID), file.Filename)
			url, err := s.storage.Upload(ctx, key, src, file.Header.Get("Content-Type"))
			if err != nil {
				return err
			}

			mu.Lock()
			urls[questionID] = url
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Int64("examID", exam.ID).Msg("Failed to upload audio answers")
		return nil, err
	}
	return urls, nil
}

// buildAnswers validates submitted items against the exam's questions and
// assembles answer rows with status DONE.
func buildAnswers(questions map[int64]models.Question, items []dto.AnswerItem, audioURLs map[int64]string) ([]models.Answer, error) {
	answers := make([]models.Answer, 0, len(items))
	seen := make(map[int64]bool)

	for _, item := range items {
		question, ok := questions[item.QuestionID]
		if !ok {
			return nil, apperrors.ErrInvalidQuestion
		}
		if seen[item.QuestionID] {
			return nil, fmt.Errorf("%w: respuesta duplicada para la pregunta %d", apperrors.ErrValidationFailed, item.QuestionID)
		}
		seen[item.QuestionID] = true

		answer := models.Answer{
			QuestionID: item.QuestionID,
			Status:     models.AnswerDone,
		}

		switch question.Type {
		case models.QuestionMultipleChoice:
			if item.OptionID == nil {
				return nil, fmt.Errorf("%w: la pregunta %d requiere una opción", apperrors.ErrValidationFailed, item.QuestionID)
			}
			if item.Text != "" {
				return nil, fmt.Errorf("%w: la pregunta %d no admite texto libre", apperrors.ErrValidationFailed, item.QuestionID)
			}
			valid := false
			for _, option := range question.Options {
				if option.ID == *item.OptionID {
					valid = true
					break
				}
			}
			if !valid {
				return nil, fmt.Errorf("%w: opción inválida para la pregunta %d", apperrors.ErrValidationFailed, item.QuestionID)
			}
			answer.OptionID = item.OptionID
		case models.QuestionFreeResponse:
			if item.OptionID != nil {
				return nil, fmt.Errorf("%w: la pregunta %d no admite opciones", apperrors.ErrValidationFailed, item.QuestionID)
			}
			answer.Text = item.Text
		case models.QuestionAudio:
			if item.OptionID != nil || item.Text != "" {
				return nil, fmt.Errorf("%w: la pregunta %d solo admite audio", apperrors.ErrValidationFailed, item.QuestionID)
			}
			if url, ok := audioURLs[item.QuestionID]; ok {
				answer.AudioURL = &url
			}
		}

		answers = append(answers, answer)
	}

	return answers, nil
}

// SubmitAnswers records a student's one-and-only submission for an exam.
func (s *examServiceImpl) SubmitAnswers(ctx context.Context, examID, studentID int64, req *dto.SubmitAnswersRequest, audioFiles []*multipart.FileHeader) (*models.AnswerSet, error) {
	exam, err := s.examStore.GetExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.DueDatePassed(time.Now()) {
		return nil, apperrors.ErrDueDatePassed
	}

	if _, err := s.examStore.GetAnswerSet(ctx, examID, studentID); err == nil {
		return nil, apperrors.ErrAlreadySubmitted
	} else if !errors.Is(err, apperrors.ErrAnswerSetNotFound) {
		return nil, err
	}

	// A submission must answer every question; partial sets would read
	// as fully approved once corrected.
	if len(req.Answers) != len(exam.Questions) {
		return nil, fmt.Errorf("%w: el examen tiene %d preguntas y se recibieron %d respuestas",
			apperrors.ErrValidationFailed, len(exam.Questions), len(req.Answers))
	}

	questions := make(map[int64]models.Question, len(exam.Questions))
	for _, q := range exam.Questions {
		questions[q.ID] = q
	}

	audioURLs, err := s.uploadAudioAnswers(ctx, exam, questions, req.Answers, audioFiles)
	if err != nil {
		return nil, err
	}

	answers, err := buildAnswers(questions, req.Answers, audioURLs)
	if err != nil {
		return nil, err
	}

	set := &models.AnswerSet{
		ExamID:    examID,
		StudentID: studentID,
		Status:    models.AnswerDone,
		Answers:   answers,
	}
	id, err := s.examStore.CreateAnswerSet(ctx, set)
	if err != nil {
		return nil, err
	}
	set.ID = id

	logger.Info().Int64("examID", examID).Int64("studentID", studentID).Msg("Answers submitted")
	return set, nil
}

// GetSubmissions lists every submission for an exam.
func (s *examServiceImpl) GetSubmissions(ctx context.Context, examID int64) ([]models.AnswerSet, error) {
	if _, err := s.examStore.GetExamByID(ctx, examID); err != nil {
		return nil, err
	}
	return s.examStore.GetAnswerSetsByExam(ctx, examID)
}

// GetOwnSubmission retrieves a student's submission for an exam.
func (s *examServiceImpl) GetOwnSubmission(ctx context.Context, examID, studentID int64) (*models.AnswerSet, error) {
	return s.examStore.GetAnswerSet(ctx, examID, studentID)
}

// Correct applies an instructor's per-answer verdicts. The set-level
// status becomes REWORK if any answer needs rework, APPROVED otherwise.
func (s *examServiceImpl) Correct(ctx context.Context, examID int64, req *dto.CorrectionsRequest) (*models.AnswerSet, error) {
	set, err := s.examStore.GetAnswerSet(ctx, examID, req.StudentID)
	if err != nil {
		return nil, err
	}

	answered := make(map[int64]bool, len(set.Answers))
	for _, answer := range set.Answers {
		answered[answer.QuestionID] = true
	}

	statuses := make(map[int64]models.AnswerStatus, len(req.Corrections))
	for _, correction := range req.Corrections {
		if !answered[correction.QuestionID] {
			return nil, apperrors.ErrInvalidCorrections
		}
		statuses[correction.QuestionID] = models.AnswerStatus(correction.Status)
	}

	for i := range set.Answers {
		if status, ok := statuses[set.Answers[i].QuestionID]; ok {
			set.Answers[i].Status = status
		}
	}
	setStatus := set.AggregateStatus()

	if err := s.examStore.ApplyCorrections(ctx, set.ID, statuses, setStatus); err != nil {
		return nil, err
	}
	set.Status = setStatus

	logger.Info().
		Int64("examID", examID).
		Int64("studentID", req.StudentID).
		Str("status", string(setStatus)).
		Msg("Corrections applied")
	return set, nil
}

// GetReworkQuestions returns the questions a student must redo, paired
// with their current answers.
func (s *examServiceImpl) GetReworkQuestions(ctx context.Context, examID, studentID int64) ([]dto.ReworkItem, error) {
	exam, err := s.examStore.GetExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	set, err := s.examStore.GetAnswerSet(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	questions := make(map[int64]models.Question, len(exam.Questions))
	for _, q := range exam.Questions {
		questions[q.ID] = q
	}

	items := []dto.ReworkItem{}
	for _, answer := range set.Answers {
		if answer.Status != models.AnswerRework {
			continue
		}
		items = append(items, dto.ReworkItem{
			Question: questions[answer.QuestionID],
			Answer:   answer,
		})
	}

	if len(items) == 0 {
		return nil, apperrors.ErrNoReworkQuestions
	}
	return items, nil
}

// ResubmitRework overwrites the answers flagged for rework. Only those
// answers may change; they come back with status DONE, ready for another
// round of correction.
func (s *examServiceImpl) ResubmitRework(ctx context.Context, examID, studentID int64, req *dto.SubmitAnswersRequest, audioFiles []*multipart.FileHeader) (*models.AnswerSet, error) {
	exam, err := s.examStore.GetExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if s.enforceReworkDates && exam.DueDatePassed(time.Now()) {
		return nil, apperrors.ErrDueDatePassed
	}

	set, err := s.examStore.GetAnswerSet(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	reworkable := make(map[int64]bool)
	for _, answer := range set.Answers {
		if answer.Status == models.AnswerRework {
			reworkable[answer.QuestionID] = true
		}
	}
	if len(reworkable) == 0 {
		return nil, apperrors.ErrNoReworkQuestions
	}

	for _, item := range req.Answers {
		if !reworkable[item.QuestionID] {
			return nil, apperrors.ErrInvalidQuestion
		}
	}

	questions := make(map[int64]models.Question, len(exam.Questions))
	for _, q := range exam.Questions {
		questions[q.ID] = q
	}

	audioURLs, err := s.uploadAudioAnswers(ctx, exam, questions, req.Answers, audioFiles)
	if err != nil {
		return nil, err
	}

	answers, err := buildAnswers(questions, req.Answers, audioURLs)
	if err != nil {
		return nil, err
	}

	resubmitted := make(map[int64]bool, len(answers))
	for _, answer := range answers {
		resubmitted[answer.QuestionID] = true
	}

	// Any rework answer left untouched keeps the set in REWORK.
	setStatus := models.AnswerDone
	for questionID := range reworkable {
		if !resubmitted[questionID] {
			setStatus = models.AnswerRework
			break
		}
	}

	if err := s.examStore.UpdateAnswers(ctx, set.ID, answers, setStatus); err != nil {
		return nil, err
	}

	logger.Info().Int64("examID", examID).Int64("studentID", studentID).Msg("Rework resubmitted")
	return s.examStore.GetAnswerSet(ctx, examID, studentID)
}
