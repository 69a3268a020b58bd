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

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash-8b:generateContent"

const farmingSystemPrompt = `You are KisanX AI, a smart and friendly agricultural assistant for Indian farmers.
Your job is to help farmers with:
- Crop selection, planting schedules, and harvesting tips
- Soil health, fertilizers, and irrigation advice
- Pest and disease identification and treatment
- Weather-based farming decisions
- Market prices and selling strategies
- Government schemes and subsidies for farmers

Always respond in a mix of Hindi and English (Hinglish) that is easy for Indian farmers to understand.
Keep responses concise, practical, and actionable.
Use simple language. Avoid overly technical jargon.
If asked something unrelated to farming/agriculture, politely redirect the conversation back to farming topics.`

const chatFallbackReply = "Sorry, kuch problem ho gayi. Please dobara try karein."

type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ChatClient turns a conversation history into a single assistant reply.
type ChatClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

type geminiClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *logrus.Logger
}

func NewGeminiClient(apiKey string, timeout time.Duration, logger *logrus.Logger) ChatClient {
	return &geminiClient{
		endpoint: defaultGeminiEndpoint,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

// NewGeminiClientWithEndpoint exists for tests pointed at a local server.
func NewGeminiClientWithEndpoint(endpoint, apiKey string, timeout time.Duration, logger *logrus.Logger) ChatClient {
	return &geminiClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"system_instruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	payload := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: farmingSystemPrompt}}},
	}
	payload.GenerationConfig.MaxOutputTokens = 1024
	payload.GenerationConfig.Temperature = 0.7

	for _, m := range messages {
		role := "model"
		if m.Sender == "user" {
			role = "user"
		}
		payload.Contents = append(payload.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Text}},
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to prepare chat payload: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", c.endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("ChatClient: failed to reach AI service: %v", err)
		return "", fmt.Errorf("failed to communicate with AI service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Errorf("ChatClient: AI service returned status %d", resp.StatusCode)
		return "", fmt.Errorf("AI service returned status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.Errorf("ChatClient: failed to decode AI response: %v", err)
		return "", fmt.Errorf("failed to decode AI response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		c.log.Warn("ChatClient: AI response carried no candidates, using fallback reply")
		return chatFallbackReply, nil
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
