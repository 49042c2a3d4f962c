package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	apperrors "github.com/printops/jobtrack/pkg/util"
)

// DiagnosisService asks a language model for a root-cause hint on an
// error the owner hit. Purely advisory; nothing downstream depends on the
// answer.
type DiagnosisService struct {
	client *openai.Client
	model  string
}

// NewDiagnosisService constructs the service. A missing API key leaves the
// client nil and every call reports a configuration error.
func NewDiagnosisService(apiKey, model string) *DiagnosisService {
	s := &DiagnosisService{model: model}
	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
	}
	if s.model == "" {
		s.model = openai.GPT4o
	}
	return s
}

// Diagnosis is the assistant's answer.
type Diagnosis struct {
	Diagnosis  string `json:"diagnosis"`
	Suggestion string `json:"suggestion"`
}

// Diagnose sends the error description plus optional code context and
// parses the structured answer. A reply that is not valid JSON is still
// returned, whole, as the diagnosis text.
func (s *DiagnosisService) Diagnose(ctx context.Context, description, codeContext string) (*Diagnosis, error) {
	if s.client == nil {
		return nil, apperrors.NewConfigurationError("diagnosis assistant is not configured")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.NewValidationError("error description is required", nil)
	}

	prompt := fmt.Sprintf(`You are a debugging assistant for a print-shop job tracking service.
An operator hit the following error:

%s`, description)
	if codeContext = strings.TrimSpace(codeContext); codeContext != "" {
		prompt += fmt.Sprintf("\n\nRelevant code context:\n%s", codeContext)
	}
	prompt += `

Reply with JSON only, in this shape:
{"diagnosis": "the most likely root cause, one or two sentences", "suggestion": "the concrete remedy to try first"}`

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, apperrors.NewNetworkError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.NewUnknown(fmt.Errorf("empty completion"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var out Diagnosis
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return &Diagnosis{Diagnosis: content}, nil
	}
	return &out, nil
}
