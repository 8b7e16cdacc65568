package generativeAI

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yutingw/go-restaurant-suggestions/internal/prompt"
)

// Client is the model boundary the conversation service talks to. One
// blocking call per turn, no retries: a failed call fails the turn and the
// session error policy takes over.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userMessage string, params prompt.SamplingParams) (string, error)
}

var _ Client = (*AIClient)(nil)

type AIClient struct {
	client      *genai.Client
	model       string
	callTimeout time.Duration
	logger      *slog.Logger
}

func NewAIClient(ctx context.Context, model string, callTimeout time.Duration, logger *slog.Logger) (*AIClient, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, &ServiceError{Kind: ErrInvalidAPIKey, Message: "GOOGLE_GEMINI_API_KEY environment variable is not set"}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, classify(err)
	}
	return &AIClient{
		client:      client,
		model:       model,
		callTimeout: callTimeout,
		logger:      logger,
	}, nil
}

// Generate makes one model call with an explicit per-call deadline and
// returns the reply text with markdown fences stripped. Errors are always
// *ServiceError so callers can branch on the failure class.
func (ai *AIClient) Generate(ctx context.Context, systemPrompt, userMessage string, params prompt.SamplingParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ai.callTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](params.Temperature),
		MaxOutputTokens:   params.MaxTokens,
		TopP:              genai.Ptr[float32](params.TopP),
		TopK:              genai.Ptr[float32](float32(params.TopK)),
	}

	start := time.Now()
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(userMessage), config)
	if err != nil {
		serr := classify(err)
		ai.logger.ErrorContext(ctx, "Model call failed",
			slog.String("model", ai.model),
			slog.String("kind", string(serr.Kind)),
			slog.Any("error", err),
		)
		return "", serr
	}

	text := stripFences(result.Text())
	if text == "" {
		return "", &ServiceError{Kind: ErrEmptyResponse, Message: "model returned an empty response"}
	}

	ai.logger.DebugContext(ctx, "Model call completed",
		slog.String("model", ai.model),
		slog.Duration("latency", time.Since(start)),
		slog.Int("reply_chars", len(text)),
	)
	return text, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
