package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/db"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// ExamRepository handles exam, question and submission database operations
type ExamRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(db *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateExam inserts an exam with its questions and options in a single
// transaction. Question positions follow the order they arrive in.
func (r *ExamRepository) CreateExam(ctx context.Context, exam *models.Exam) (int64, error) {
	var examID int64

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("exams").
			Columns("subject_id", "instructor_id", "title", "due_date").
			Values(exam.SubjectID, exam.InstructorID, exam.Title, exam.DueDate).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create exam query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&examID); err != nil {
			return fmt.Errorf("error creating exam: %w", err)
		}

		for i := range exam.Questions {
			question := &exam.Questions[i]

			sql, args, err := r.sb.Insert("questions").
				Columns("exam_id", "position", "text", "type").
				Values(examID, i+1, question.Text, question.Type).
				Suffix("RETURNING id").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create question query: %w", err)
			}

			if err := tx.QueryRow(ctx, sql, args...).Scan(&question.ID); err != nil {
				return fmt.Errorf("error creating question: %w", err)
			}

			if len(question.Options) == 0 {
				continue
			}

			optInsert := r.sb.Insert("question_options").Columns("question_id", "text", "score")
			for _, option := range question.Options {
				optInsert = optInsert.Values(question.ID, option.Text, option.Score)
			}

			sql, args, err = optInsert.ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create options query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("error creating options: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", exam.SubjectID).Msg("Error creating exam")
		return 0, err
	}

	return examID, nil
}

// GetExamByID retrieves an exam with its questions and options.
func (r *ExamRepository) GetExamByID(ctx context.Context, id int64) (*models.Exam, error) {
	sql, args, err := r.sb.Select("id", "subject_id", "instructor_id", "title", "due_date", "created_at").
		From("exams").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get exam query: %w", err)
	}

	exam := &models.Exam{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&exam.ID, &exam.SubjectID, &exam.InstructorID,
		&exam.Title, &exam.DueDate, &exam.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrExamNotFound
		}
		logger.Error().Err(err).Int64("examID", id).Msg("Error scanning exam row")
		return nil, fmt.Errorf("error getting exam by ID: %w", err)
	}

	questions, err := r.getQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	exam.Questions = questions

	return exam, nil
}

func (r *ExamRepository) getQuestions(ctx context.Context, examID int64) ([]models.Question, error) {
	sql, args, err := r.sb.Select("id", "exam_id", "position", "text", "type").
		From("questions").
		Where(squirrel.Eq{"exam_id": examID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get questions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	questionIndex := map[int64]int{}
	for rows.Next() {
		question := models.Question{}
		if err := rows.Scan(&question.ID, &question.ExamID, &question.Position, &question.Text, &question.Type); err != nil {
			return nil, fmt.Errorf("error scanning question row: %w", err)
		}
		questionIndex[question.ID] = len(questions)
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}
	if len(questions) == 0 {
		return questions, nil
	}

	optSQL, optArgs, err := r.sb.Select("o.id", "o.question_id", "o.text", "o.score").
		From("question_options o").
		Join("questions q ON o.question_id = q.id").
		Where(squirrel.Eq{"q.exam_id": examID}).
		OrderBy("o.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get options query: %w", err)
	}

	optRows, err := r.db.Query(ctx, optSQL, optArgs...)
	if err != nil {
		return nil, fmt.Errorf("error querying options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		option := models.Option{}
		if err := optRows.Scan(&option.ID, &option.QuestionID, &option.Text, &option.Score); err != nil {
			return nil, fmt.Errorf("error scanning option row: %w", err)
		}
		if idx, ok := questionIndex[option.QuestionID]; ok {
			questions[idx].Options = append(questions[idx].Options, option)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating option rows: %w", err)
	}

	return questions, nil
}

// GetExamsBySubject retrieves a subject's exams without questions.
func (r *ExamRepository) GetExamsBySubject(ctx context.Context, subjectID int64) ([]*models.Exam, error) {
	sql, args, err := r.sb.Select("id", "subject_id", "instructor_id", "title", "due_date", "created_at").
		From("exams").
		Where(squirrel.Eq{"subject_id": subjectID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build exams by subject query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("subjectID", subjectID).Msg("Error querying exams by subject")
		return nil, fmt.Errorf("error querying exams by subject: %w", err)
	}
	defer rows.Close()

	exams := []*models.Exam{}
	for rows.Next() {
		exam := &models.Exam{}
		err := rows.Scan(&exam.ID, &exam.SubjectID, &exam.InstructorID, &exam.Title, &exam.DueDate, &exam.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning exam row: %w", err)
		}
		exams = append(exams, exam)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exam rows: %w", err)
	}

	return exams, nil
}

// DeleteExam removes an exam and, via cascade, its questions and submissions.
func (r *ExamRepository) DeleteExam(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("exams").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete exam query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("examID", id).Msg("Error executing delete exam query")
		return fmt.Errorf("error deleting exam: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrExamNotFound
	}

	return nil
}

// DeleteExamsBySubject removes every exam of a subject; questions, answer
// sets and answers cascade. Used at closure.
func (r *ExamRepository) DeleteExamsBySubject(ctx context.Context, subjectID int64) error {
	sql, args, err := r.sb.Delete("exams").
		Where(squirrel.Eq{"subject_id": subjectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete exams by subject query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("subjectID", subjectID).Msg("Error deleting exams by subject")
		return fmt.Errorf("error deleting exams by subject: %w", err)
	}
	return nil
}

// CreateAnswerSet inserts a student's submission with all its answers in
// one transaction. A second submission for the same exam and student hits
// the unique constraint and returns ErrAlreadySubmitted.
func (r *ExamRepository) CreateAnswerSet(ctx context.Context, set *models.AnswerSet) (int64, error) {
	var setID int64

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("answer_sets").
			Columns("exam_id", "student_id", "status").
			Values(set.ExamID, set.StudentID, set.Status).
			Suffix("RETURNING id, submitted_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create answer set query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&setID, &set.SubmittedAt); err != nil {
			if isDuplicateKeyError(err) {
				return apperrors.ErrAlreadySubmitted
			}
			return fmt.Errorf("error creating answer set: %w", err)
		}

		for i := range set.Answers {
			answer := &set.Answers[i]

			sql, args, err := r.sb.Insert("answers").
				Columns("answer_set_id", "question_id", "text", "option_id", "audio_url", "status").
				Values(setID, answer.QuestionID, answer.Text, answer.OptionID, answer.AudioURL, answer.Status).
				Suffix("RETURNING id").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create answer query: %w", err)
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(&answer.ID); err != nil {
				return fmt.Errorf("error creating answer: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrAlreadySubmitted) {
			logger.Error().Err(err).Int64("examID", set.ExamID).Int64("studentID", set.StudentID).Msg("Error creating answer set")
		}
		return 0, err
	}

	return setID, nil
}

// GetAnswerSet retrieves a student's submission for an exam with its answers.
func (r *ExamRepository) GetAnswerSet(ctx context.Context, examID, studentID int64) (*models.AnswerSet, error) {
	sql, args, err := r.sb.Select("id", "exam_id", "student_id", "status", "submitted_at").
		From("answer_sets").
		Where(squirrel.Eq{"exam_id": examID, "student_id": studentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get answer set query: %w", err)
	}

	set := &models.AnswerSet{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&set.ID, &set.ExamID, &set.StudentID, &set.Status, &set.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAnswerSetNotFound
		}
		logger.Error().Err(err).Int64("examID", examID).Int64("studentID", studentID).Msg("Error scanning answer set row")
		return nil, fmt.Errorf("error getting answer set: %w", err)
	}

	answers, err := r.getAnswers(ctx, set.ID)
	if err != nil {
		return nil, err
	}
	set.Answers = answers

	return set, nil
}

func (r *ExamRepository) getAnswers(ctx context.Context, setID int64) ([]models.Answer, error) {
	sql, args, err := r.sb.Select(
		"a.id", "a.answer_set_id", "a.question_id", "a.text", "a.option_id", "a.audio_url", "a.status",
	).
		From("answers a").
		Join("questions q ON a.question_id = q.id").
		Where(squirrel.Eq{"a.answer_set_id": setID}).
		OrderBy("q.position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get answers query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying answers: %w", err)
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		answer := models.Answer{}
		err := rows.Scan(
			&answer.ID, &answer.AnswerSetID, &answer.QuestionID,
			&answer.Text, &answer.OptionID, &answer.AudioURL, &answer.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning answer row: %w", err)
		}
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answer rows: %w", err)
	}

	return answers, nil
}

// GetAnswerSetsByExam retrieves every submission for an exam with the
// submitting student attached.
func (r *ExamRepository) GetAnswerSetsByExam(ctx context.Context, examID int64) ([]models.AnswerSet, error) {
	sql, args, err := r.sb.Select(
		"s.id", "s.exam_id", "s.student_id", "s.status", "s.submitted_at",
		"u.id", "u.name", "u.email", "u.dni", "u.legajo",
	).
		From("answer_sets s").
		Join("users u ON s.student_id = u.id").
		Where(squirrel.Eq{"s.exam_id": examID}).
		OrderBy("u.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build answer sets by exam query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("examID", examID).Msg("Error querying answer sets by exam")
		return nil, fmt.Errorf("error querying answer sets: %w", err)
	}
	defer rows.Close()

	sets := []models.AnswerSet{}
	for rows.Next() {
		set := models.AnswerSet{Student: &models.User{}}
		err := rows.Scan(
			&set.ID, &set.ExamID, &set.StudentID, &set.Status, &set.SubmittedAt,
			&set.Student.ID, &set.Student.Name, &set.Student.Email,
			&set.Student.DNI, &set.Student.Legajo,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning answer set row: %w", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answer set rows: %w", err)
	}

	for i := range sets {
		answers, err := r.getAnswers(ctx, sets[i].ID)
		if err != nil {
			return nil, err
		}
		sets[i].Answers = answers
	}

	return sets, nil
}

// ApplyCorrections updates per-answer statuses and the set-level status in
// one transaction.
func (r *ExamRepository) ApplyCorrections(ctx context.Context, setID int64, statuses map[int64]models.AnswerStatus, setStatus models.AnswerStatus) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for questionID, status := range statuses {
			sql, args, err := r.sb.Update("answers").
				Set("status", status).
				Where(squirrel.Eq{"answer_set_id": setID, "question_id": questionID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build update answer query: %w", err)
			}

			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return fmt.Errorf("error updating answer status: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return apperrors.ErrInvalidQuestion
			}
		}

		sql, args, err := r.sb.Update("answer_sets").
			Set("status", setStatus).
			Where(squirrel.Eq{"id": setID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update answer set query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error updating answer set status: %w", err)
		}

		return nil
	})
}

// UpdateAnswers overwrites the content and status of the given answers in
// one transaction, then sets the set-level status. Used for rework
// resubmission, where only REWORK answers may change.
func (r *ExamRepository) UpdateAnswers(ctx context.Context, setID int64, answers []models.Answer, setStatus models.AnswerStatus) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, answer := range answers {
			sql, args, err := r.sb.Update("answers").
				Set("text", answer.Text).
				Set("option_id", answer.OptionID).
				Set("audio_url", answer.AudioURL).
				Set("status", answer.Status).
				Where(squirrel.Eq{"answer_set_id": setID, "question_id": answer.QuestionID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build update answer query: %w", err)
			}

			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return fmt.Errorf("error updating answer: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return apperrors.ErrInvalidQuestion
			}
		}

		sql, args, err := r.sb.Update("answer_sets").
			Set("status", setStatus).
			Where(squirrel.Eq{"id": setID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update answer set query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error updating answer set status: %w", err)
		}

		return nil
	})
}
