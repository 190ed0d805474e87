package models

import "time"

// Subject represents a course offering ("materia") with its enrollment roster
type Subject struct {
	ID               int64        `json:"id" db:"id"`
	Name             string       `json:"name" db:"name"`
	Level            SubjectLevel `json:"level" db:"level"`
	IsEnrollmentOpen bool         `json:"isEnrollmentOpen" db:"is_enrollment_open"`
	IsClosed         bool         `json:"isClosed" db:"is_closed"`
	ProfessorID      *int64       `json:"professorId,omitempty" db:"professor_id"`
	CreatedAt        time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time    `json:"updatedAt" db:"updated_at"`

	// Relations
	Professor *User        `json:"professor,omitempty"`
	Roster    []Enrollment `json:"students,omitempty"`
	Files     []Material   `json:"files,omitempty"`
	Videos    []Material   `json:"videos,omitempty"`
	ExamIDs   []int64      `json:"examIds,omitempty"`
}

// Enrollment is one roster entry; a student appears at most once per subject
type Enrollment struct {
	ID        int64            `json:"id" db:"id"`
	SubjectID int64            `json:"subjectId" db:"subject_id"`
	StudentID int64            `json:"studentId" db:"student_id"`
	Status    EnrollmentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`

	Student *User `json:"student,omitempty"`
}

// MaterialKind distinguishes uploaded course materials
type MaterialKind string

const (
	MaterialFile  MaterialKind = "FILE"
	MaterialVideo MaterialKind = "VIDEO"
)

// Material is a file or video attached to a subject
type Material struct {
	ID        int64        `json:"id" db:"id"`
	SubjectID int64        `json:"subjectId" db:"subject_id"`
	Kind      MaterialKind `json:"kind" db:"kind"`
	Name      string       `json:"name" db:"name"`
	URL       string       `json:"url" db:"url"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}
