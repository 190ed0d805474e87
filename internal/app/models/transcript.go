package models

import "time"

// Transcript ("libreta") is the durable final-status record for one student
// in one subject. It is written at subject closure and outlives the exam
// data that produced it.
type Transcript struct {
	ID           int64       `json:"id" db:"id"`
	StudentID    int64       `json:"studentId" db:"student_id"`
	SubjectID    int64       `json:"subjectId" db:"subject_id"`
	InstructorID *int64      `json:"instructorId,omitempty" db:"instructor_id"`
	FinalStatus  FinalStatus `json:"finalStatus" db:"final_status"`
	Receipt      string      `json:"receipt,omitempty" db:"receipt"`
	PaymentDate  *time.Time  `json:"paymentDate,omitempty" db:"payment_date"`
	ClosedAt     time.Time   `json:"closedAt" db:"closed_at"`

	// Relations
	Student *User    `json:"student,omitempty"`
	Subject *Subject `json:"subject,omitempty"`
}
