package usecase

import (
	"context"
	"fmt"

	"github.com/Anniix/kisanx-backend/internal/clients"
	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/sirupsen/logrus"
)

type ChatUseCase interface {
	Chat(ctx context.Context, userID int64, messages []clients.ChatMessage) (string, error)
}

type chatUseCase struct {
	client clients.ChatClient
	log    *logrus.Logger
}

func NewChatUseCase(client clients.ChatClient, logger *logrus.Logger) ChatUseCase {
	return &chatUseCase{
		client: client,
		log:    logger,
	}
}

func (uc *chatUseCase) Chat(ctx context.Context, userID int64, messages []clients.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages array is required: %w", domain.ErrValidation)
	}

	reply, err := uc.client.Complete(ctx, messages)
	if err != nil {
		uc.log.Errorf("Use Case: Chat completion failed for user %d: %v", userID, err)
		return "", fmt.Errorf("AI service unavailable: %w", err)
	}

	return reply, nil
}
