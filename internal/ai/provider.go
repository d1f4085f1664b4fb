package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/pkg/errs"
)

// ErrUnavailable is returned by providers that have no credential configured.
var ErrUnavailable = fmt.Errorf("ai provider not configured: %w", errs.ErrConfiguration)

type IAIProvider interface {
	Name() string
	Generate(ctx context.Context, aimodel string, prompt string) (string, error)
	Chat(ctx context.Context, aimodel string, system string, history []model.Message, next string) (string, error)
}

type IEmbedProvider interface {
	Name() string
	Embed(ctx context.Context, aimodel string, text string, taskType string) ([]float32, error)
}

type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type IChatter interface {
	Chat(ctx context.Context, system string, history []model.Message, next string) (string, error)
}

type IEmbedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	ModelName() string
}

type generator struct {
	provider IAIProvider
	model    string
}

func NewGenerator(p IAIProvider, aimodel string) IGenerator {
	return &generator{provider: p, model: aimodel}
}

func (g *generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.provider.Generate(ctx, g.model, prompt)
}

type chatter struct {
	provider IAIProvider
	model    string
}

func NewChatter(p IAIProvider, aimodel string) IChatter {
	return &chatter{provider: p, model: aimodel}
}

func (c *chatter) Chat(ctx context.Context, system string, history []model.Message, next string) (string, error) {
	return c.provider.Chat(ctx, c.model, system, history, next)
}

type embedder struct {
	provider IEmbedProvider
	model    string
}

func NewEmbedder(p IEmbedProvider, aimodel string) IEmbedder {
	return &embedder{provider: p, model: aimodel}
}

func (e *embedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return e.provider.Embed(ctx, e.model, text, taskType)
}

func (e *embedder) ModelName() string {
	return e.model
}

type ProviderFactory func(args interface{}) (IAIProvider, error)

type EmbedFactory func(args interface{}) (IEmbedProvider, error)

var (
	registry      = map[string]ProviderFactory{}
	embedRegistry = map[string]EmbedFactory{}
)

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func RegisterEmbed(name string, factory EmbedFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	embedRegistry[key] = factory
}

func NewProvider(name string, args interface{}) (IAIProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required: %w", errs.ErrConfiguration)
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider %q: %w", name, errs.ErrConfiguration)
	}
	return factory(args)
}

func NewEmbedProvider(name string, args interface{}) (IEmbedProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required: %w", errs.ErrConfiguration)
	}
	factory := embedRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai embed provider %q: %w", name, errs.ErrConfiguration)
	}
	return factory(args)
}

// providerErr tags a failed remote call so callers can match on
// errs.ErrProvider without losing the underlying cause.
func providerErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, errs.ErrProvider, err)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required: %w", errs.ErrConfiguration)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
