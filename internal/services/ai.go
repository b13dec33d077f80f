package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/org-task-api/internal/constants"
	"github.com/yukikurage/org-task-api/internal/models"
)

// ErrAINotConfigured is returned when task drafting is requested without an API key.
var ErrAINotConfigured = errors.New("task generation is not configured")

type AIService struct {
	client *openai.Client
	now    func() time.Time
}

// TaskDraft is a task suggested by the model. Drafts are never stored.
type TaskDraft struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    models.TaskCategory `json:"category"`
	Priority    int                 `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

// NewAIServiceWithConfig creates an AIService against a custom endpoint.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		now:    time.Now,
	}
}

// GenerateTaskDrafts analyzes text and extracts task drafts using OpenAI GPT
func (s *AIService) GenerateTaskDrafts(ctx context.Context, text string) ([]TaskDraft, error) {
	if s == nil || s.client == nil {
		return nil, ErrAINotConfigured
	}

	currentTime := s.now().Format(time.RFC3339)
	prompt := fmt.Sprintf(`You extract actionable tasks from text.

Current time: %s

Text:
%s

Return a JSON array of at most %d tasks in this shape:
[
  {
    "title": "short task title",
    "description": "what needs to be done",
    "category": "one of work, personal, urgent, other",
    "priority": 5,
    "due_date": "RFC3339 deadline such as 2025-10-28T23:59:59Z, or null when none is stated"
  }
]

Rules:
- priority is an integer from 0 (lowest) to 10 (highest)
- Return [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next week") to absolute times
- Return only the JSON array, no prose`, currentTime, text, constants.MaxAIGeneratedTasks)

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

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return normalizeDrafts(drafts), nil
}

// normalizeDrafts drops untitled drafts and clamps the rest into valid task values.
func normalizeDrafts(drafts []TaskDraft) []TaskDraft {
	out := make([]TaskDraft, 0, len(drafts))
	for _, d := range drafts {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			continue
		}
		if !d.Category.Valid() {
			d.Category = models.TaskCategoryOther
		}
		d.Priority = min(max(d.Priority, constants.MinTaskPriority), constants.MaxTaskPriority)
		out = append(out, d)
		if len(out) == constants.MaxAIGeneratedTasks {
			break
		}
	}
	return out
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
