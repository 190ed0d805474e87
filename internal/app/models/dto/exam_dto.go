package dto

import (
	"time"

	"github.com/campusvirtual/backend/internal/app/models"
)

// OptionPayload is a single choice on a multiple-choice question
type OptionPayload struct {
	Text  string `json:"text" binding:"required"`
	Score int    `json:"score"`
}

// QuestionPayload is one question inside a CreateExamRequest
type QuestionPayload struct {
	Text    string          `json:"text" binding:"required"`
	Type    string          `json:"type" binding:"required,oneof=MULTIPLE_CHOICE FREE_RESPONSE AUDIO"`
	Options []OptionPayload `json:"options,omitempty"`
}

// CreateExamRequest defines a new exam for a subject
type CreateExamRequest struct {
	Title     string            `json:"title" binding:"required"`
	DueDate   time.Time         `json:"dueDate" binding:"required"`
	Questions []QuestionPayload `json:"questions" binding:"required,min=1,dive"`
}

// AnswerItem is a student's answer to one question. Audio answers carry
// no body here; their files arrive as multipart parts named audio_<questionId>.
type AnswerItem struct {
	QuestionID int64  `json:"questionId" binding:"required"`
	Text       string `json:"text,omitempty"`
	OptionID   *int64 `json:"optionId,omitempty"`
}

// SubmitAnswersRequest is the JSON part of a submission
type SubmitAnswersRequest struct {
	Answers []AnswerItem `json:"answers" binding:"required,min=1,dive"`
}

// ReworkItem pairs a question flagged for rework with the student's
// current answer to it
type ReworkItem struct {
	Question models.Question `json:"question"`
	Answer   models.Answer   `json:"answer"`
}

// CorrectionItem marks one answer as approved or needing rework
type CorrectionItem struct {
	QuestionID int64  `json:"questionId" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=APPROVED REWORK"`
}

// CorrectionsRequest applies an instructor's corrections to a submission
type CorrectionsRequest struct {
	StudentID   int64            `json:"studentId" binding:"required"`
	Corrections []CorrectionItem `json:"corrections" binding:"required,min=1,dive"`
}
