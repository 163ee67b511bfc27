package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/anasco119/QueriesShot/config"
)

// ErrOracleUnavailable wraps any transport or provider failure from the
// text-completion backend. Callers substitute a fixed apology; the error
// never travels past the message handler.
var ErrOracleUnavailable = errors.New("oracle unavailable")

// Oracle is the text-completion backend used for both intent
// classification and content generation.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewOracle builds the configured oracle implementation.
func NewOracle(cfg config.OracleConfig) (Oracle, error) {
	switch cfg.Provider {
	case "gemini":
		return newGeminiOracle(cfg)
	case "openai":
		return newOpenAIOracle(cfg), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}

// geminiOracle talks to the Gemini API, the provider the bot originally
// shipped with.
type geminiOracle struct {
	client *genai.Client
	model  string
}

func newGeminiOracle(cfg config.OracleConfig) (*geminiOracle, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Printf("INFO: [Oracle] Gemini oracle initialized (model %s).", cfg.Gemini.Model)
	return &geminiOracle{client: client, model: cfg.Gemini.Model}, nil
}

func (o *geminiOracle) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := o.client.Models.GenerateContent(ctx, o.model, genai.Text(prompt), nil)
	if err != nil {
		log.Printf("ERROR: [Oracle] Gemini completion failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		log.Println("ERROR: [Oracle] Gemini returned an empty completion.")
		return "", fmt.Errorf("%w: empty completion", ErrOracleUnavailable)
	}
	return text, nil
}

// openaiOracle talks to any OpenAI-compatible endpoint. Useful for
// self-hosted gateways that speak the chat-completions protocol.
type openaiOracle struct {
	client *openai.Client
	model  string
}

func newOpenAIOracle(cfg config.OracleConfig) *openaiOracle {
	clientConfig := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAI.BaseURL
	}
	log.Printf("INFO: [Oracle] OpenAI-compatible oracle initialized (model %s).", cfg.OpenAI.Model)
	return &openaiOracle{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.OpenAI.Model,
	}
}

func (o *openaiOracle) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		log.Printf("ERROR: [Oracle] OpenAI completion failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		log.Println("ERROR: [Oracle] OpenAI returned no choices.")
		return "", fmt.Errorf("%w: empty completion", ErrOracleUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
