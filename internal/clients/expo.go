package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const expoPushEndpoint = "https://exp.host/--/api/v2/push/send"

// PushSender delivers a push notification to a single device token.
// Transport details are out of scope; failures are for the caller to log
// and swallow.
type PushSender interface {
	Send(ctx context.Context, token, title, body string) error
}

type expoPushSender struct {
	endpoint string
	client   *http.Client
	log      *logrus.Logger
}

func NewExpoPushSender(timeout time.Duration, logger *logrus.Logger) PushSender {
	return NewExpoPushSenderWithEndpoint(expoPushEndpoint, timeout, logger)
}

// NewExpoPushSenderWithEndpoint exists for tests pointed at a local server.
func NewExpoPushSenderWithEndpoint(endpoint string, timeout time.Duration, logger *logrus.Logger) PushSender {
	return &expoPushSender{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

type expoPushMessage struct {
	To       string `json:"to"`
	Sound    string `json:"sound"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Priority string `json:"priority"`
}

func (s *expoPushSender) Send(ctx context.Context, token, title, body string) error {
	if !strings.HasPrefix(token, "ExponentPushToken") {
		s.log.Warnf("PushSender: token %q is not a valid Expo push token", token)
		return fmt.Errorf("invalid push token")
	}

	payload, err := json.Marshal([]expoPushMessage{{
		To:       token,
		Sound:    "default",
		Title:    title,
		Body:     body,
		Priority: "high",
	}})
	if err != nil {
		return fmt.Errorf("failed to prepare push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Errorf("PushSender: failed to reach push service: %v", err)
		return fmt.Errorf("failed to communicate with push service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Errorf("PushSender: push service returned status %d", resp.StatusCode)
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}

	s.log.Infof("PushSender: notification %q delivered", title)
	return nil
}
