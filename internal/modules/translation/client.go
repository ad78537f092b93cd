package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/luminpress/core/internal/config"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"go.uber.org/zap"
)

const (
	requestTimeout     = 30 * time.Second
	maxNetworkAttempts = 3
	maxParseAttempts   = 2
	modelTemperature   = 0.3
	modelMaxTokens     = 4000
)

// Translator produces a translated rendition of one article in one language.
type Translator interface {
	Translate(ctx context.Context, req *TranslateRequest) (*TranslateResult, error)
}

// GroqClient talks to an OpenAI-compatible chat-completion endpoint. SDK-level
// retries are disabled; the retry and backoff policy lives here so failures
// classify the same way regardless of transport.
type GroqClient struct {
	api    openai.Client
	model  string
	logger *zap.Logger

	networkBackoff time.Duration
	parseBackoff   time.Duration
}

func NewGroqClient(cfg config.AIConfig, logger *zap.Logger) *GroqClient {
	endpoint := cfg.Endpoint
	// The SDK resolves request paths relative to the base URL.
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &GroqClient{
		api: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(endpoint),
			option.WithMaxRetries(0),
			option.WithRequestTimeout(requestTimeout),
		),
		model:          cfg.Model,
		logger:         logger.Named("groq"),
		networkBackoff: time.Second,
		parseBackoff:   500 * time.Millisecond,
	}
}

// Translate asks the model for a structured translation. Unparseable output
// is retried independently of network failures, with its own backoff.
func (c *GroqClient) Translate(ctx context.Context, req *TranslateRequest) (*TranslateResult, error) {
	system, user := buildTranslationPrompt(req)

	var parseErr error
	for attempt := 1; attempt <= maxParseAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, c.parseBackoff<<(attempt-2)); err != nil {
				return nil, err
			}
		}

		raw, err := c.complete(ctx, system, user)
		if err != nil {
			return nil, err
		}

		out, err := parseTranslateResult(raw)
		if err == nil {
			out.Model = c.model
			return out, nil
		}
		parseErr = err
		c.logger.Warn("unparseable model output",
			zap.String("language", req.TargetLanguage),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return nil, fmt.Errorf("model returned invalid JSON after %d attempts: %w", maxParseAttempts, parseErr)
}

func (c *GroqClient) complete(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxNetworkAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, c.networkBackoff<<(attempt-2)); err != nil {
				return "", err
			}
		}

		completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: shared.ChatModel(c.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(user),
			},
			Temperature: openai.Float(modelTemperature),
			MaxTokens:   openai.Int(modelMaxTokens),
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
		})
		if err == nil {
			if len(completion.Choices) == 0 {
				return "", errors.New("empty completion from model")
			}
			return completion.Choices[0].Message.Content, nil
		}

		classified := c.classify(err)
		var pe *providerError
		if errors.As(classified, &pe) && pe.fatal {
			return "", classified
		}
		lastErr = classified
		c.logger.Warn("chat completion attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(classified))
	}
	return "", lastErr
}

// providerError classifies a failed provider call for retry and fallback
// policy. status is 0 for transport-level failures.
type providerError struct {
	status int
	msg    string
	fatal  bool
}

func (e *providerError) Error() string { return e.msg }

func (c *GroqClient) classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &providerError{status: apierr.StatusCode, msg: "Invalid Groq API key", fatal: true}
		case http.StatusNotFound:
			return &providerError{status: apierr.StatusCode, msg: fmt.Sprintf("unknown Groq model %q", c.model), fatal: true}
		case http.StatusRequestTimeout:
			return &providerError{status: apierr.StatusCode, msg: "groq request timeout (status 408)"}
		case http.StatusTooManyRequests:
			return &providerError{status: apierr.StatusCode, msg: "groq rate limit hit (status 429)"}
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return &providerError{status: apierr.StatusCode, msg: fmt.Sprintf("groq server error (status %d)", apierr.StatusCode)}
		default:
			return &providerError{status: apierr.StatusCode, msg: fmt.Sprintf("groq returned status %d", apierr.StatusCode), fatal: true}
		}
	}
	return &providerError{msg: "network error calling groq: " + err.Error()}
}

// ShouldFallbackToMock reports whether a final client error warrants
// substituting the deterministic mock translation. Connectivity and
// rate-limit failures fall back; auth and model errors never do.
func ShouldFallbackToMock(err error) bool {
	var pe *providerError
	if !errors.As(err, &pe) {
		return false
	}
	if pe.fatal {
		return false
	}
	switch pe.status {
	case 0, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return false
}

// MockTranslate produces a deterministic placeholder translation, used when
// no provider is configured or the provider is unreachable. The tagged title
// makes placeholder content obvious in any listing.
func MockTranslate(req *TranslateRequest) *TranslateResult {
	tag := "[" + strings.ToUpper(req.TargetLanguage) + "] "
	return &TranslateResult{
		Title:           tag + req.Title,
		Excerpt:         req.Excerpt,
		Text:            req.Text,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		Keywords:        append([]string(nil), req.Keywords...),
		Confidence:      0.5,
		QualityScore:    0.5,
		NeedsReview:     true,
		Model:           "mock",
	}
}

type mockClient struct{}

func (mockClient) Translate(_ context.Context, req *TranslateRequest) (*TranslateResult, error) {
	return MockTranslate(req), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
