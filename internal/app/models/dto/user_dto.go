package dto

// UpdateUserRequest mutates profile fields; only supplied fields change
type UpdateUserRequest struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty" binding:"omitempty,email"`
	Legajo          *string `json:"legajo,omitempty"`
	Address         *string `json:"address,omitempty"`
	CivilStatus     *string `json:"civilStatus,omitempty"`
	Profession      *string `json:"profession,omitempty"`
	Church          *string `json:"church,omitempty"`
	MinisterialRole *string `json:"ministerialRole,omitempty"`
	Password        *string `json:"password,omitempty" binding:"omitempty,min=8"`
}

// UpdateRoleRequest changes a user's role (admin only)
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN INSTRUCTOR STUDENT"`
}
