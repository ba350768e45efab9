package service

import (
	"context"
	"strings"

	"elearning-service/internal/models"
	"elearning-service/internal/repository"
)

type ChatService struct {
	ChatRepo *repository.ChatRepository
}

func NewChatService(chatRepo *repository.ChatRepository) *ChatService {
	return &ChatService{ChatRepo: chatRepo}
}

// GenerateBotResponse answers a message with a canned reply keyed on the
// first matching keyword group.
func GenerateBotResponse(message string) string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "quiz") || strings.Contains(lower, "test"):
		return "To complete a quiz, navigate to the Course Details page for the course, select the final lesson, and look for the 'Take Quiz' link if one is available for that course."
	case strings.Contains(lower, "enroll") || strings.Contains(lower, "start learning"):
		return "You can enroll in any course from the 'Courses' page. Click on the course you want and then use the 'Enroll Now' button."
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! I am your E-Learning Assistant. How can I help you with your courses today?"
	}
	return "I am the E-Learning Assistant. I can help with general questions about courses, enrollment, and quizzes. Can you ask me something specific?"
}

func (s *ChatService) ListChats(ctx context.Context) ([]models.Chat, error) {
	return s.ChatRepo.FindAll(ctx)
}

func (s *ChatService) CreateChat(ctx context.Context, userMessage string) (*models.Chat, error) {
	chat := &models.Chat{
		UserMessage: userMessage,
		BotResponse: GenerateBotResponse(userMessage),
	}
	if err := s.ChatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}
