package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/termexplain/internal/cache"
	"github.com/dshills/termexplain/internal/config"
	"github.com/dshills/termexplain/internal/prompt"
	"github.com/dshills/termexplain/internal/providers"
	"github.com/dshills/termexplain/internal/redact"
	"github.com/rs/zerolog"
)

var (
	// ErrEmptyInput is returned when the error text is blank.
	ErrEmptyInput = errors.New("no error text provided")
	// ErrEmptyResponse is returned when the provider answers with no text.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// ProviderFactory creates the provider used on a cache miss.
type ProviderFactory func() (providers.Explainer, error)

// Options control a single Explain call.
type Options struct {
	// NoCache skips the cache lookup. A fresh result may still be saved.
	NoCache bool
	// Save stores the fresh explanation in the cache.
	Save bool
}

// Result is the outcome of Explain.
type Result struct {
	ErrorText   string
	Explanation string
	Cached      bool
	Saved       bool
	Provider    string
	Model       string
	TokensUsed  int
	Duration    time.Duration
}

// Engine explains error text using a cache and a provider.
type Engine struct {
	cfg         config.Config
	cache       *cache.Cache
	newProvider ProviderFactory
	provider    providers.Explainer
	log         zerolog.Logger
	homeDir     string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithHomeDir sets the directory collapsed to "~" when privacy.redactHome
// is enabled.
func WithHomeDir(dir string) Option {
	return func(e *Engine) { e.homeDir = dir }
}

// New returns an Engine. c may be nil, which disables caching.
func New(cfg config.Config, c *cache.Cache, factory ProviderFactory, opts ...Option) *Engine {
	if cfg.Model == "" {
		cfg.Model = providers.DefaultModel(cfg.Provider)
	}
	e := &Engine{
		cfg:         cfg,
		cache:       c,
		newProvider: factory,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explain returns an explanation for errorText, from the cache when
// possible. The cache is keyed on errorText exactly as given; redaction only
// applies to the text sent to the provider.
func (e *Engine) Explain(ctx context.Context, errorText string, opts Options) (*Result, error) {
	if strings.TrimSpace(errorText) == "" {
		return nil, ErrEmptyInput
	}
	start := time.Now()

	useCache := e.cache != nil && e.cfg.Cache.Enabled
	if useCache && !opts.NoCache {
		if text, ok := e.cache.Get(errorText); ok {
			return &Result{
				ErrorText:   errorText,
				Explanation: text,
				Cached:      true,
				Duration:    time.Since(start),
			}, nil
		}
	}

	p, err := e.explainer()
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}

	outbound := redact.ErrorText(errorText, e.redactOptions())
	if outbound != errorText {
		e.log.Debug().Msg("redacted error text before sending")
	}

	e.log.Info().Str("provider", p.Name()).Str("model", e.cfg.Model).Msg("requesting explanation")
	resp, err := p.Explain(ctx, providers.Request{
		UserPrompt:  prompt.Build(outbound),
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("getting explanation from %s: %w", p.Name(), err)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", p.Name(), ErrEmptyResponse)
	}

	res := &Result{
		ErrorText:   errorText,
		Explanation: text,
		Provider:    p.Name(),
		Model:       e.cfg.Model,
		TokensUsed:  resp.TokensUsed,
	}
	if useCache && (opts.Save || e.cfg.Cache.AutoSave) {
		e.cache.Save(errorText, text)
		res.Saved = true
	}
	res.Duration = time.Since(start)
	return res, nil
}

func (e *Engine) explainer() (providers.Explainer, error) {
	if e.provider != nil {
		return e.provider, nil
	}
	if e.newProvider == nil {
		return nil, errors.New("no provider configured")
	}
	p, err := e.newProvider()
	if err != nil {
		return nil, err
	}
	e.provider = p
	return p, nil
}

func (e *Engine) redactOptions() redact.Options {
	opts := redact.Options{Secrets: e.cfg.Privacy.RedactSecrets}
	if e.cfg.Privacy.RedactHome {
		opts.HomeDir = e.homeDir
	}
	return opts
}
