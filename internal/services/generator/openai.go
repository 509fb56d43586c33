package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/chroniclehq/feedgen/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIGenerator implements the ContentGenerator interface using OpenAI's API
type OpenAIGenerator struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIGenerator creates a new OpenAI generator
func NewOpenAIGenerator(apiKey string, model string) *OpenAIGenerator {
	return NewOpenAIGeneratorWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIGeneratorWithLogger creates a new OpenAI generator with logger support
func NewOpenAIGeneratorWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIGenerator {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIGenerator{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// GeneratePost generates one feed post candidate for the given content type
func (g *OpenAIGenerator) GeneratePost(ctx context.Context, contentType models.ContentType, input *UserContext) (*models.Candidate, error) {
	prompt, err := buildPrompt(contentType, input)
	if err != nil {
		return nil, err
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(g.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	cycleID := ExtractCycleID(ctx)
	if g.logger != nil && g.debugMode {
		g.logger.Debug("llm_api_request",
			zap.String("operation", "generate_post"),
			zap.String("content_type", string(contentType)),
			zap.String("model", g.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("user_id", input.UserID.String()),
			zap.String("cycle_id", cycleID),
		)
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if g.logger != nil && g.debugMode {
			g.logger.Debug("llm_api_error",
				zap.String("operation", "generate_post"),
				zap.String("content_type", string(contentType)),
				zap.String("model", g.model),
				zap.Error(err),
				zap.String("user_id", input.UserID.String()),
				zap.String("cycle_id", cycleID),
				zap.Duration("latency_ms", latency),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to generate %s post: %w", contentType, apiErr)
		}
		return nil, fmt.Errorf("failed to generate %s post: %w", contentType, err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}
	content := resp.Choices[0].Message.Content

	if g.logger != nil && g.debugMode {
		g.logger.Debug("llm_api_response",
			zap.String("operation", "generate_post"),
			zap.String("content_type", string(contentType)),
			zap.String("model", g.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("user_id", input.UserID.String()),
			zap.String("cycle_id", cycleID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	title, body, confidence, err := parsePostResponse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s post response: %w", contentType, err)
	}

	return &models.Candidate{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Type:        contentType,
		Title:       title,
		Body:        body,
		Confidence:  confidence,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// parsePostResponse extracts the generated post from the model output,
// tolerating stray text around the JSON object.
func parsePostResponse(content string) (title, body string, confidence float64, err error) {
	var post struct {
		Title      string  `json:"title"`
		Body       string  `json:"body"`
		Confidence float64 `json:"confidence"`
	}

	raw := content
	if unmarshalErr := json.Unmarshal([]byte(raw), &post); unmarshalErr != nil {
		if len(raw) > 0 && raw[0] != '{' {
			start := bytes.Index([]byte(raw), []byte("{"))
			end := bytes.LastIndex([]byte(raw), []byte("}"))
			if start != -1 && end != -1 && end > start {
				raw = raw[start : end+1]
			}
		}
		if unmarshalErr := json.Unmarshal([]byte(raw), &post); unmarshalErr != nil {
			return "", "", 0, fmt.Errorf("failed to parse post response: %w", unmarshalErr)
		}
	}

	if strings.TrimSpace(post.Title) == "" {
		return "", "", 0, errors.New("post response missing title")
	}
	if strings.TrimSpace(post.Body) == "" {
		return "", "", 0, errors.New("post response missing body")
	}

	return post.Title, post.Body, clampConfidence(post.Confidence), nil
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

var _ ContentGenerator = (*OpenAIGenerator)(nil)
