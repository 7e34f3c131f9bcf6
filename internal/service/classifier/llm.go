package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// LLMModel asks a chat model to pick one of the known tags. The answer is
// turned into a one-hot distribution.
type LLMModel struct {
	classes []string
	chain   compose.Runnable[map[string]any, *schema.Message]
}

// NewLLMModel compiles the prompt -> chat model chain.
func NewLLMModel(ctx context.Context, chatModel model.ChatModel, labels *LabelEncoder) (*LLMModel, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(intentSystemPrompt),
		schema.UserMessage(intentUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile intent chain: %w", err)
	}

	return &LLMModel{classes: labels.Classes(), chain: runnable}, nil
}

// Name implements Model.
func (m *LLMModel) Name() string {
	return "llm"
}

// Predict implements Model.
func (m *LLMModel) Predict(ctx context.Context, in Input) ([]float64, error) {
	msg, err := m.chain.Invoke(ctx, map[string]any{
		"tags":    strings.Join(m.classes, ", "),
		"message": in.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("intent chain invoke failed: %w", err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty chat model reply", ErrModelOutput)
	}

	tag, err := parseTagReply(msg.Content)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(m.classes))
	for i, class := range m.classes {
		if strings.EqualFold(class, tag) {
			scores[i] = 1
			return scores, nil
		}
	}
	return nil, fmt.Errorf("%w: chat model picked unknown tag %q", ErrModelOutput, tag)
}

// parseTagReply extracts {"tag": "..."} from a reply that may carry extra text.
func parseTagReply(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("%w: missing json object", ErrModelOutput)
	}

	var payload struct {
		Tag string `json:"tag"`
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelOutput, err)
	}
	if strings.TrimSpace(payload.Tag) == "" {
		return "", fmt.Errorf("%w: empty tag", ErrModelOutput)
	}
	return strings.TrimSpace(payload.Tag), nil
}

const intentSystemPrompt = "You classify messages sent to a mental health support chatbot. " +
	"Choose the single intent tag that best describes the user's message. " +
	"Reply with one JSON object and nothing else: {{\"tag\": \"<one of the allowed tags>\"}}."

const intentUserPrompt = "Allowed tags: {tags}\n\nMessage: {message}"
