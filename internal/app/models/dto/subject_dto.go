package dto

// CreateSubjectRequest creates a new subject (admin only)
type CreateSubjectRequest struct {
	Name  string `json:"name" binding:"required"`
	Level string `json:"level" binding:"required,oneof=ELEMENTAL AVANZADO_1 AVANZADO_2 AVANZADO_3"`
}

// UpdateSubjectRequest mutates the enrollment flag and/or assigned professor
type UpdateSubjectRequest struct {
	IsEnrollmentOpen *bool  `json:"isEnrollmentOpen,omitempty"`
	ProfessorID      *int64 `json:"professorId,omitempty"`
}

// AssignProfessorRequest assigns an instructor to a subject
type AssignProfessorRequest struct {
	ProfessorID int64 `json:"professorId" binding:"required"`
}

// EnrollRequest adds a student to a subject's roster
type EnrollRequest struct {
	StudentID int64 `json:"studentId" binding:"required"`
}

// EnrollmentStatusRequest moves a roster entry between states
type EnrollmentStatusRequest struct {
	StudentID int64  `json:"studentId" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=PENDING ACCEPTED REJECTED"`
}

// ToggleEnrollmentRequest opens or closes enrollment for a subject
type ToggleEnrollmentRequest struct {
	Open *bool `json:"open" binding:"required"`
}
