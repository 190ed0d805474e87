package messaging

import (
	"context"
	"fmt"
)

// Service sends outbound messages to students and instructors. The campus
// reaches people over WhatsApp; implementations wrap whichever gateway is
// configured for the deployment.
type Service interface {
	// Init establishes the gateway session. Called once at startup.
	Init(ctx context.Context) error

	// Shutdown releases the gateway session during graceful shutdown.
	Shutdown(ctx context.Context) error

	// SendMessage delivers a free-form text message to a phone number.
	SendMessage(ctx context.Context, phone, message string) error

	// SendVerificationCode delivers an account verification code.
	SendVerificationCode(ctx context.Context, phone, code string) error
}

// VerificationMessage builds the text sent with an account verification code.
func VerificationMessage(code string) string {
	return fmt.Sprintf("Tu código de verificación para el Campus Virtual es: %s. Expira en 15 minutos.", code)
}
