// Package report requests narrative performance reports from a generative
// text model.
package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrUnavailable is the single failure reported by report generation; the
// cause is only logged.
var ErrUnavailable = errors.New("report generation unavailable")

const (
	DefaultModel   = "gemini-3-pro-preview"
	DefaultTimeout = 120 * time.Second

	temperature float32 = 0.7
	topP        float32 = 0.95
)

// Generator calls the Gemini API once per request, without retries.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

type Options struct {
	Model      string
	Timeout    time.Duration
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Option func(*Options)

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) { o.Timeout = timeout }
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(o *Options) { o.BaseURL = url }
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) { o.HTTPClient = client }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func NewGenerator(ctx context.Context, apiKey string, opts ...Option) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("report: API key is required")
	}

	options := &Options{
		Model:   DefaultModel,
		Timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger, _ = zap.NewProduction()
	}
	if options.Model == "" {
		options.Model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: options.HTTPClient,
	}
	if options.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: options.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("report: create genai client: %w", err)
	}

	return &Generator{
		client:  client,
		model:   options.Model,
		timeout: options.Timeout,
		logger:  options.Logger.Named("report"),
	}, nil
}

// Generate returns the model's Markdown-like narrative for ev. Every failure
// is logged and surfaced as ErrUnavailable.
func (g *Generator) Generate(ctx context.Context, ev models.EvaluationData) (string, error) {
	prompt, err := BuildPrompt(ev)
	if err != nil {
		g.logger.Error("failed to build prompt", zap.String("key", ev.Key()), zap.Error(err))
		return "", ErrUnavailable
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(temperature),
			TopP:        genai.Ptr(topP),
		},
	)
	if err != nil {
		g.logger.Error("report generation failed",
			zap.String("key", ev.Key()),
			zap.String("model", g.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ErrUnavailable
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		g.logger.Warn("model returned no text", zap.String("key", ev.Key()), zap.String("model", g.model))
		return "", ErrUnavailable
	}

	g.logger.Info("report generated",
		zap.String("key", ev.Key()),
		zap.String("model", g.model),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}

// Disabled stands in for a Generator when no API key is configured.
type Disabled struct{}

func (Disabled) Generate(context.Context, models.EvaluationData) (string, error) {
	return "", ErrUnavailable
}
