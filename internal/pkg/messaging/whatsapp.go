package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

var nonDigits = regexp.MustCompile(`\D`)

// WhatsAppConfig holds the settings for the WhatsApp HTTP gateway.
type WhatsAppConfig struct {
	GatewayURL string
	Token      string
	Session    string
}

// WhatsAppService talks to a self-hosted WhatsApp gateway over HTTP.
// When no gateway URL is configured it degrades to logging each message,
// so development environments work without a phone session.
type WhatsAppService struct {
	config WhatsAppConfig
	client *http.Client
	logger zerolog.Logger
}

// NewWhatsAppService creates a WhatsAppService.
func NewWhatsAppService(config WhatsAppConfig, logger zerolog.Logger) *WhatsAppService {
	return &WhatsAppService{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

func (s *WhatsAppService) configured() bool {
	return s.config.GatewayURL != ""
}

// Init verifies the gateway session is up.
func (s *WhatsAppService) Init(ctx context.Context) error {
	if !s.configured() {
		s.logger.Warn().Msg("WhatsApp gateway not configured - messages will be logged instead of sent")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.GatewayURL+"/api/sessions/"+s.config.Session, nil)
	if err != nil {
		return fmt.Errorf("failed to build session check request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach WhatsApp gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp gateway session check failed: status %d: %s", resp.StatusCode, string(body))
	}

	s.logger.Info().Str("session", s.config.Session).Msg("WhatsApp gateway session ready")
	return nil
}

// Shutdown is a no-op for the HTTP gateway; the session outlives the API.
func (s *WhatsAppService) Shutdown(_ context.Context) error {
	return nil
}

// SendMessage delivers a text message. Phone numbers are normalized to
// digits only before being handed to the gateway.
func (s *WhatsAppService) SendMessage(ctx context.Context, phone, message string) error {
	chatID := nonDigits.ReplaceAllString(phone, "")
	if chatID == "" {
		return fmt.Errorf("phone number %q has no digits", phone)
	}

	if !s.configured() {
		s.logger.Warn().
			Str("phone", chatID).
			Str("message", message).
			Msg("WhatsApp gateway not configured - message not sent")
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"chatId":  chatID + "@c.us",
		"text":    message,
		"session": s.config.Session,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.GatewayURL+"/api/sendText", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach WhatsApp gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp gateway rejected message: status %d: %s", resp.StatusCode, string(body))
	}

	s.logger.Info().Str("phone", chatID).Msg("WhatsApp message sent")
	return nil
}

// SendVerificationCode delivers an account verification code.
func (s *WhatsAppService) SendVerificationCode(ctx context.Context, phone, code string) error {
	return s.SendMessage(ctx, phone, VerificationMessage(code))
}

func (s *WhatsAppService) authorize(req *http.Request) {
	if s.config.Token != "" {
		req.Header.Set("X-Api-Key", s.config.Token)
	}
}
