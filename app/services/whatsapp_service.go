package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// Indonesian numbers in international format: 62 followed by 8 to 13 digits.
var phonePattern = regexp.MustCompile(`^62\d{8,13}$`)

// WhatsAppService delivers nota text to buyers through an external
// gateway.
type WhatsAppService struct {
	gatewayURL string
	apiKey     string
	client     *http.Client
	logger     *LoggerService
}

// NewWhatsAppService creates a new WhatsApp delivery service
func NewWhatsAppService(gatewayURL, apiKey string, logger *LoggerService) *WhatsAppService {
	return &WhatsAppService{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// ValidatePhone checks that a number is an Indonesian number in
// international format.
func ValidatePhone(noHP string) error {
	if !phonePattern.MatchString(noHP) {
		return fmt.Errorf("nomor HP harus diawali 62 dan berisi 10-15 digit")
	}
	return nil
}

// SendNota delivers the plain-text nota to the given number.
func (s *WhatsAppService) SendNota(noHP, notaText string) error {
	if s.gatewayURL == "" {
		return fmt.Errorf("WhatsApp gateway not configured")
	}
	if err := ValidatePhone(noHP); err != nil {
		return err
	}
	if notaText == "" {
		return fmt.Errorf("nota text is empty")
	}

	payload, err := json.Marshal(map[string]string{
		"target":  noHP,
		"message": notaText,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if s.logger != nil {
			s.logger.LogError("WhatsApp gateway rejected message", nil,
				fmt.Sprintf("status=%d body=%s", resp.StatusCode, body))
		}
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if s.logger != nil {
		s.logger.LogInfo("Nota sent via WhatsApp", noHP)
	}
	return nil
}
