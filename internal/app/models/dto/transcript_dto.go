package dto

import "time"

// UpsertTranscriptRequest records or amends a final grade entry by hand.
// Used by admins to fix closure results or to load historic records.
type UpsertTranscriptRequest struct {
	StudentID   int64      `json:"studentId" binding:"required"`
	SubjectID   int64      `json:"subjectId" binding:"required"`
	FinalStatus string     `json:"finalStatus" binding:"required,oneof=APPROVED MUST_REPEAT"`
	Receipt     string     `json:"receipt,omitempty"`
	PaymentDate *time.Time `json:"paymentDate,omitempty"`
}
