package models

import "time"

// Exam belongs to exactly one subject and one authoring instructor
type Exam struct {
	ID           int64     `json:"id" db:"id"`
	SubjectID    int64     `json:"subjectId" db:"subject_id"`
	InstructorID int64     `json:"instructorId" db:"instructor_id"`
	Title        string    `json:"title" db:"title"`
	DueDate      time.Time `json:"dueDate" db:"due_date"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`

	// Relations
	Questions  []Question  `json:"questions,omitempty"`
	AnswerSets []AnswerSet `json:"answerSets,omitempty"`
}

// DueDatePassed reports whether now is past the exam's due date. The whole
// due-date day counts as on time.
func (e *Exam) DueDatePassed(now time.Time) bool {
	endOfDay := time.Date(
		e.DueDate.Year(), e.DueDate.Month(), e.DueDate.Day(),
		23, 59, 59, int(time.Second-time.Nanosecond), e.DueDate.Location(),
	)
	return now.After(endOfDay)
}

// Question is one exam question; options only exist for multiple choice
type Question struct {
	ID       int64        `json:"id" db:"id"`
	ExamID   int64        `json:"examId" db:"exam_id"`
	Position int          `json:"position" db:"position"`
	Text     string       `json:"text" db:"text"`
	Type     QuestionType `json:"type" db:"type"`

	Options []Option `json:"options,omitempty"`
}

// Option is one selectable answer for a multiple-choice question
type Option struct {
	ID         int64  `json:"id" db:"id"`
	QuestionID int64  `json:"questionId" db:"question_id"`
	Text       string `json:"text" db:"text"`
	Score      int    `json:"score" db:"score"`
}

// AnswerSet is one student's full set of answers to one exam.
// At most one exists per (exam, student) pair.
type AnswerSet struct {
	ID          int64        `json:"id" db:"id"`
	ExamID      int64        `json:"examId" db:"exam_id"`
	StudentID   int64        `json:"studentId" db:"student_id"`
	Status      AnswerStatus `json:"status" db:"status"`
	SubmittedAt time.Time    `json:"submittedAt" db:"submitted_at"`

	Answers []Answer `json:"answers,omitempty"`
	Student *User    `json:"student,omitempty"`
}

// AggregateStatus derives the set-level status from its answers: REWORK if
// any answer needs rework, otherwise APPROVED.
func (s *AnswerSet) AggregateStatus() AnswerStatus {
	for _, a := range s.Answers {
		if a.Status == AnswerRework {
			return AnswerRework
		}
	}
	return AnswerApproved
}

// Answer is one student's answer to one question. Which of Text, OptionID
// and AudioURL is populated depends on the question's type.
type Answer struct {
	ID          int64        `json:"id" db:"id"`
	AnswerSetID int64        `json:"answerSetId" db:"answer_set_id"`
	QuestionID  int64        `json:"questionId" db:"question_id"`
	Text        string       `json:"text,omitempty" db:"text"`
	OptionID    *int64       `json:"optionId,omitempty" db:"option_id"`
	AudioURL    *string      `json:"audioUrl,omitempty" db:"audio_url"`
	Status      AnswerStatus `json:"status" db:"status"`
}
