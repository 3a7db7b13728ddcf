package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mtsuzuki/todo-collab-api/internal/constants"
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/sashabaranov/go-openai"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoSuggestions        = errors.New("no todos could be extracted from the text")
)

// AIService turns free-form text into todo suggestions. Suggestions
// are returned to the client for review; nothing is persisted here.
type AIService struct {
	client *openai.Client
}

// SuggestedTodo is one todo proposal extracted from text
type SuggestedTodo struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// SuggestTodos analyzes text and extracts todo items using OpenAI GPT
func (s *AIService) SuggestTodos(ctx context.Context, text string) ([]SuggestedTodo, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}

	currentTime := time.Now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`You are a task extraction assistant. Extract concrete todo items from the text below.

Current time: %s

Text:
%s

Return a JSON array of the extracted todos in this exact form:
[
  {
    "title": "short task title",
    "description": "task details",
    "priority": "low, medium or high",
    "due_date": "deadline as ISO 8601 (example: 2025-10-28T23:59:59Z), or null when the text gives none"
  }
]

Rules:
- Return an empty array [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next week") to concrete timestamps
- due_date must be an ISO 8601 string or null
- Return only the JSON, no commentary`, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	var suggestions []SuggestedTodo
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	valid := make([]SuggestedTodo, 0, len(suggestions))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, suggestion := range suggestions {
		if strings.TrimSpace(suggestion.Title) == "" {
			continue
		}
		if !models.ValidPriority(models.TodoPriority(suggestion.Priority)) {
			suggestion.Priority = string(models.PriorityMedium)
		}
		if suggestion.DueDate != nil && suggestion.DueDate.Before(cutoff) {
			suggestion.DueDate = nil
		}
		valid = append(valid, suggestion)

		if len(valid) == constants.MaxAISuggestions {
			break
		}
	}

	if len(valid) == 0 {
		return nil, ErrAINoSuggestions
	}

	return valid, nil
}
