package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin      RoleType = "ADMIN"
	RoleInstructor RoleType = "INSTRUCTOR"
	RoleStudent    RoleType = "STUDENT"
)

// SubjectLevel represents the level a subject is taught at
type SubjectLevel string

const (
	LevelElemental SubjectLevel = "ELEMENTAL"
	LevelAvanzado1 SubjectLevel = "AVANZADO_1"
	LevelAvanzado2 SubjectLevel = "AVANZADO_2"
	LevelAvanzado3 SubjectLevel = "AVANZADO_3"
)

// ValidSubjectLevels lists every recognized subject level
var ValidSubjectLevels = []SubjectLevel{
	LevelElemental, LevelAvanzado1, LevelAvanzado2, LevelAvanzado3,
}

// EnrollmentStatus represents a roster entry's state
type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "PENDING"
	EnrollmentAccepted EnrollmentStatus = "ACCEPTED"
	EnrollmentRejected EnrollmentStatus = "REJECTED"
)

// QuestionType classifies exam questions
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionFreeResponse   QuestionType = "FREE_RESPONSE"
	QuestionAudio          QuestionType = "AUDIO"
)

// AnswerStatus is the per-answer and per-answer-set correction state.
// Answers start DONE on submission, and correction moves them to APPROVED
// or REWORK. PENDING only appears on answer sets that were never submitted.
type AnswerStatus string

const (
	AnswerPending  AnswerStatus = "PENDING"
	AnswerDone     AnswerStatus = "DONE"
	AnswerApproved AnswerStatus = "APPROVED"
	AnswerRework   AnswerStatus = "REWORK"
)

// FinalStatus is the durable per-subject outcome recorded in a transcript
type FinalStatus string

const (
	FinalApproved   FinalStatus = "APPROVED"
	FinalMustRepeat FinalStatus = "MUST_REPEAT"
)
