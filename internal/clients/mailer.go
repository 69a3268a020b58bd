package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const brevoSendEndpoint = "https://api.brevo.com/v3/smtp/email"

// Mailer delivers transactional mail. The implementation is a thin wrapper
// around the Brevo HTTP API; delivery internals are out of scope here.
type Mailer interface {
	SendOTP(ctx context.Context, email, otp, subject string) error
}

type brevoMailer struct {
	apiKey     string
	senderName string
	senderMail string
	client     *http.Client
	log        *logrus.Logger
}

func NewBrevoMailer(apiKey, senderName, senderMail string, timeout time.Duration, logger *logrus.Logger) Mailer {
	return &brevoMailer{
		apiKey:     apiKey,
		senderName: senderName,
		senderMail: senderMail,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

type brevoParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoSendRequest struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

func (m *brevoMailer) SendOTP(ctx context.Context, email, otp, subject string) error {
	payload := brevoSendRequest{
		Sender:  brevoParty{Name: m.senderName, Email: m.senderMail},
		To:      []brevoParty{{Email: email}},
		Subject: subject,
		HTMLContent: fmt.Sprintf(
			"<html><body><p>Aapka KisanX verification code hai: <strong>%s</strong>. Ye 10 minutes ke liye valid hai.</p></body></html>",
			otp,
		),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		m.log.Errorf("Mailer: failed to marshal send request for %s: %v", email, err)
		return fmt.Errorf("failed to prepare email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoSendEndpoint, bytes.NewBuffer(body))
	if err != nil {
		m.log.Errorf("Mailer: failed to create request for %s: %v", email, err)
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Errorf("Mailer: failed to reach email service for %s: %v", email, err)
		return fmt.Errorf("failed to communicate with email service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		m.log.Errorf("Mailer: email service returned status %d for %s", resp.StatusCode, email)
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	m.log.Infof("Mailer: OTP email sent to %s", email)
	return nil
}
