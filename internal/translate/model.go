package translate

import (
	"log/slog"
	"sort"
	"strings"
)

// defaultNamespace is prepended to model names that are neither qualified
// nor present in the alias table. The upstream rejects bad identifiers on
// its own; resolution never fails here.
const defaultNamespace = "openai"

// builtinAliases maps well-known short model names to the fully qualified
// identifiers the upstream service requires. Lookups are case-insensitive.
var builtinAliases = map[string]string{
	"gpt-4o":            "openai/gpt-4o",
	"gpt-4o-mini":       "openai/gpt-4o-mini",
	"gpt-4.1":           "openai/gpt-4.1",
	"gpt-4.1-mini":      "openai/gpt-4.1-mini",
	"gpt-4-turbo":       "openai/gpt-4-turbo",
	"gpt-3.5-turbo":     "openai/gpt-3.5-turbo",
	"o1":                "openai/o1",
	"o1-mini":           "openai/o1-mini",
	"o3":                "openai/o3",
	"o3-mini":           "openai/o3-mini",
	"o4-mini":           "openai/o4-mini",
	"claude-3-5-sonnet": "anthropic/claude-3.5-sonnet",
	"claude-3-7-sonnet": "anthropic/claude-3.7-sonnet",
	"claude-3-opus":     "anthropic/claude-3-opus",
	"claude-3-haiku":    "anthropic/claude-3-haiku",
	"llama-3.1-70b":     "meta-llama/llama-3.1-70b-instruct",
	"llama-3.1-8b":      "meta-llama/llama-3.1-8b-instruct",
	"mistral-large":     "mistralai/mistral-large",
	"gemini-1.5-pro":    "google/gemini-pro-1.5",
	"gemini-2.0-flash":  "google/gemini-2.0-flash-001",
}

// ModelResolver maps short model names to fully qualified identifiers.
type ModelResolver struct {
	aliases map[string]string
	logger  *slog.Logger
}

// NewModelResolver builds a resolver from the built-in table plus any
// config-supplied aliases, which take precedence.
func NewModelResolver(extra map[string]string, logger *slog.Logger) *ModelResolver {
	if logger == nil {
		logger = slog.Default()
	}
	aliases := make(map[string]string, len(builtinAliases)+len(extra))
	for k, v := range builtinAliases {
		aliases[strings.ToLower(k)] = v
	}
	for k, v := range extra {
		aliases[strings.ToLower(k)] = v
	}
	return &ModelResolver{aliases: aliases, logger: logger}
}

// Resolve returns the fully qualified model identifier. Already-qualified
// names pass through unchanged; unknown names get the default namespace
// prepended with a warning. Resolution never fails.
func (r *ModelResolver) Resolve(model string) string {
	if strings.Contains(model, "/") {
		return model
	}
	if qualified, ok := r.aliases[strings.ToLower(model)]; ok {
		return qualified
	}
	r.logger.Warn("unknown model name, assuming default namespace",
		slog.String("model", model),
		slog.String("namespace", defaultNamespace),
	)
	return defaultNamespace + "/" + model
}

// Known returns the sorted short names in the alias table.
func (r *ModelResolver) Known() []string {
	names := make([]string, 0, len(r.aliases))
	for name := range r.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
