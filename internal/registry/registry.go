package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/llm"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/llm/factory"
)

// ErrUnknownModel is returned when a request names a model the registry does
// not carry. The registry fails closed, it never substitutes the default for
// an unknown name.
var ErrUnknownModel = errors.New("unknown model")

type ModelParameters struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// ModelConfig is one entry in models.yml.
type ModelConfig struct {
	Provider       string          `yaml:"provider"`
	Endpoint       string          `yaml:"endpoint"`
	Model          string          `yaml:"model"`
	APIKey         string          `yaml:"api_key"`
	PromptTemplate string          `yaml:"prompt_template"`
	Parameters     ModelParameters `yaml:"parameters"`
	Fallback       string          `yaml:"fallback"`
}

type File struct {
	Models       map[string]ModelConfig `yaml:"models"`
	DefaultModel string                 `yaml:"default_model"`
}

// Handle is a resolved model: its configuration plus a live backend.
type Handle struct {
	Name     string
	Config   ModelConfig
	provider llm.LLMProvider
}

// Registry holds the model catalog. Immutable after construction.
type Registry struct {
	handles       map[string]*Handle
	defaultModel  string
	invokeTimeout time.Duration
	log           logger.ILogger
}

// Load reads models.yml and builds a backend for every entry.
func Load(path string, invokeTimeout time.Duration, log logger.ILogger) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read models config: %w", err)
	}

	// ${VAR} references resolve from the environment, so api keys stay out
	// of the file itself.
	expanded := []byte(os.ExpandEnv(string(raw)))

	var file File
	if err := yaml.Unmarshal(expanded, &file); err != nil {
		return nil, fmt.Errorf("parse models config: %w", err)
	}

	providers := make(map[string]llm.LLMProvider, len(file.Models))
	for name, cfg := range file.Models {
		provider, err := factory.NewLLMProvider(cfg.Provider, cfg.Model, cfg.Endpoint, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
		providers[name] = provider
	}

	return New(file, providers, invokeTimeout, log)
}

// New builds a registry from a parsed catalog and pre-built backends. Used
// directly by tests, Load is the production path.
func New(file File, providers map[string]llm.LLMProvider, invokeTimeout time.Duration, log logger.ILogger) (*Registry, error) {
	if len(file.Models) == 0 {
		return nil, errors.New("models config declares no models")
	}
	if file.DefaultModel == "" {
		return nil, errors.New("models config missing default_model")
	}
	if _, ok := file.Models[file.DefaultModel]; !ok {
		return nil, fmt.Errorf("default_model %q not declared", file.DefaultModel)
	}
	if invokeTimeout <= 0 {
		invokeTimeout = 60 * time.Second
	}

	handles := make(map[string]*Handle, len(file.Models))
	for name, cfg := range file.Models {
		if cfg.Fallback != "" {
			if _, ok := file.Models[cfg.Fallback]; !ok {
				return nil, fmt.Errorf("model %q: fallback %q not declared", name, cfg.Fallback)
			}
			if cfg.Fallback == name {
				return nil, fmt.Errorf("model %q: fallback points at itself", name)
			}
		}
		provider, ok := providers[name]
		if !ok {
			return nil, fmt.Errorf("model %q: no backend provided", name)
		}
		handles[name] = &Handle{Name: name, Config: cfg, provider: provider}
	}

	return &Registry{
		handles:       handles,
		defaultModel:  file.DefaultModel,
		invokeTimeout: invokeTimeout,
		log:           log,
	}, nil
}

// Resolve maps a requested model name to a handle. Empty picks the default,
// unknown names are an error.
func (r *Registry) Resolve(name string) (*Handle, error) {
	if name == "" {
		name = r.defaultModel
	}
	handle, ok := r.handles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return handle, nil
}

// Names lists the catalog, sorted, default first.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		if name != r.defaultModel {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{r.defaultModel}, names...)
}

// DefaultModel returns the catalog's default model name.
func (r *Registry) DefaultModel() string {
	return r.defaultModel
}

// Invoke sends the prompt to the handle's backend under the configured
// timeout. On failure it tries the configured fallback exactly once, never a
// chain. Returns the answer and the name of the model that produced it.
func (r *Registry) Invoke(ctx context.Context, handle *Handle, prompt string) (string, string, error) {
	answer, err := r.invokeOne(ctx, handle, prompt)
	if err == nil {
		return answer, handle.Name, nil
	}

	if handle.Config.Fallback == "" {
		return "", "", err
	}

	fallback := r.handles[handle.Config.Fallback]
	r.log.Warn("registry", "primary model failed, trying fallback", map[string]interface{}{
		"model":    handle.Name,
		"fallback": fallback.Name,
		"error":    err.Error(),
	})

	answer, fbErr := r.invokeOne(ctx, fallback, prompt)
	if fbErr != nil {
		return "", "", fmt.Errorf("primary %s: %v; fallback %s: %w", handle.Name, err, fallback.Name, fbErr)
	}
	return answer, fallback.Name, nil
}

func (r *Registry) invokeOne(ctx context.Context, handle *Handle, prompt string) (string, error) {
	invokeCtx, cancel := context.WithTimeout(ctx, r.invokeTimeout)
	defer cancel()

	opts := []llm.Option{}
	if handle.Config.Parameters.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(handle.Config.Parameters.Temperature))
	}
	if handle.Config.Parameters.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(handle.Config.Parameters.MaxTokens))
	}

	return handle.provider.Generate(invokeCtx, prompt, opts...)
}
