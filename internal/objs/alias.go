// Package objs holds the data model shared across the serving runtime:
// aliases, resolved model files, tokenizer configs, chat messages and
// engine init params.
package objs

import "regexp"

// GGUFExtension is the required suffix for model weight files.
const GGUFExtension = ".gguf"

// RegexRepo matches a Hugging Face "owner/repo" identifier.
var RegexRepo = regexp.MustCompile(`^[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)

// Feature is a capability an Alias advertises.
type Feature string

// FeatureChat is the only feature currently recognized.
const FeatureChat Feature = "chat"

// ChatTemplateID names one of the small set of built-in chat templates
// bundled with the binary, selected with `bodhi create --chat-template`.
type ChatTemplateID string

const (
	ChatTemplateLlama3       ChatTemplateID = "llama3"
	ChatTemplateLlama2       ChatTemplateID = "llama2"
	ChatTemplateLlama2Legacy ChatTemplateID = "llama2-legacy"
	ChatTemplatePhi3         ChatTemplateID = "phi3"
	ChatTemplateGemma        ChatTemplateID = "gemma"
	ChatTemplateDeepseek     ChatTemplateID = "deepseek"
	ChatTemplateCommandR     ChatTemplateID = "command-r"
	ChatTemplateOpenChat     ChatTemplateID = "openchat"
)

// RequestParams carries the OpenAI request defaults an alias applies when
// the incoming request leaves a field unset.
type RequestParams struct {
	Temperature      *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	Seed             *int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	MaxTokens        *int64   `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty" yaml:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" yaml:"frequency_penalty,omitempty"`
	Stop             []string `json:"stop,omitempty" yaml:"stop,omitempty"`
	ResponseFormat   *string  `json:"response_format,omitempty" yaml:"response_format,omitempty"`
	User             *string  `json:"user,omitempty" yaml:"user,omitempty"`
}

// ContextParams carries the engine context-sizing defaults an alias binds
// to its model file.
type ContextParams struct {
	NThreads  *int `json:"n_threads,omitempty" yaml:"n_threads,omitempty"`
	NCtx      *int `json:"n_ctx,omitempty" yaml:"n_ctx,omitempty"`
	NParallel *int `json:"n_parallel,omitempty" yaml:"n_parallel,omitempty"`
	NPredict  *int `json:"n_predict,omitempty" yaml:"n_predict,omitempty"`
}

// ChatTemplate is either a built-in template id or a reference to a
// tokenizer-config-bearing hub repo, exactly one of which is set.
type ChatTemplate struct {
	ID               ChatTemplateID `json:"chat_template_id,omitempty" yaml:"chat_template_id,omitempty"`
	TokenizerConfig  string         `json:"tokenizer_config_repo,omitempty" yaml:"tokenizer_config_repo,omitempty"`
}

// Alias is a user-named binding of a model file to a chat template and
// default inference parameters. Once loaded from the on-disk YAML
// catalog it is treated as immutable by the serving runtime.
type Alias struct {
	Alias         string        `json:"alias" yaml:"alias"`
	Family        string        `json:"family,omitempty" yaml:"family,omitempty"`
	Repo          string        `json:"repo" yaml:"repo"`
	Filename      string        `json:"filename" yaml:"filename"`
	Snapshot      string        `json:"snapshot" yaml:"snapshot"`
	Features      []Feature     `json:"features" yaml:"features"`
	ChatTemplate  ChatTemplate  `json:"chat_template" yaml:"chat_template"`
	RequestParams RequestParams `json:"request_params" yaml:"request_params"`
	ContextParams ContextParams `json:"context_params" yaml:"context_params"`
}

// HasFeature reports whether the alias advertises the given feature.
func (a Alias) HasFeature(f Feature) bool {
	for _, got := range a.Features {
		if got == f {
			return true
		}
	}
	return false
}
