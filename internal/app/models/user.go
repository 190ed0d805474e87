package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID              int64      `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Email           string     `json:"email" db:"email"`
	Password        string     `json:"-" db:"password"`
	DNI             string     `json:"dni" db:"dni"`
	Legajo          string     `json:"legajo,omitempty" db:"legajo"`
	PhoneCode       string     `json:"phoneCode,omitempty" db:"phone_code"`
	PhoneArea       string     `json:"phoneArea,omitempty" db:"phone_area"`
	PhoneNumber     string     `json:"phoneNumber,omitempty" db:"phone_number"`
	Birthdate       *time.Time `json:"birthdate,omitempty" db:"birthdate"`
	Address         string     `json:"address,omitempty" db:"address"`
	CivilStatus     string     `json:"civilStatus,omitempty" db:"civil_status"`
	Profession      string     `json:"profession,omitempty" db:"profession"`
	Church          string     `json:"church,omitempty" db:"church"`
	MinisterialRole string     `json:"ministerialRole,omitempty" db:"ministerial_role"`
	Reason          string     `json:"reason,omitempty" db:"reason"`
	ProfileImageURL string     `json:"profileImageUrl,omitempty" db:"profile_image_url"`
	Role            RoleType   `json:"role" db:"role"`
	IsDefaultAdmin  bool       `json:"isDefaultAdmin" db:"is_default_admin"`
	IsVerified      bool       `json:"isVerified" db:"is_verified"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`

	// Verification state, never serialized to clients
	VerificationCode    *string    `json:"-" db:"verification_code"`
	VerificationExpires *time.Time `json:"-" db:"verification_expires"`
}

// FullPhone returns the user's phone number in international digits-only form
func (u *User) FullPhone() string {
	return u.PhoneCode + u.PhoneArea + u.PhoneNumber
}
