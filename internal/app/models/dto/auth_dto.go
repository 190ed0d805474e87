package dto

// RegisterRequest is the payload for student self-registration
type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	DNI             string `json:"dni" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	PhoneCode       string `json:"phoneCode" binding:"required"`
	PhoneArea       string `json:"phoneArea" binding:"required"`
	PhoneNumber     string `json:"phoneNumber" binding:"required"`
	Legajo          string `json:"legajo,omitempty"`
	Birthdate       string `json:"birthdate,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Address         string `json:"address,omitempty"`
	CivilStatus     string `json:"civilStatus,omitempty"`
	Profession      string `json:"profession,omitempty"`
	Church          string `json:"church,omitempty"`
	MinisterialRole string `json:"ministerialRole,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// LoginRequest authenticates by national ID and password
type LoginRequest struct {
	DNI      string `json:"dni" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and basic identity
type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int      `json:"expiresIn"`
	User      UserInfo `json:"user"`
}

// UserInfo is the public identity slice returned on login
type UserInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	DNI   string `json:"dni"`
	Role  string `json:"role"`
}

// VerifyRequest confirms a WhatsApp verification code
type VerifyRequest struct {
	DNI  string `json:"dni" binding:"required"`
	Code string `json:"code" binding:"required,len=6"`
}

// ResendCodeRequest asks for a fresh verification code
type ResendCodeRequest struct {
	DNI string `json:"dni" binding:"required"`
}
