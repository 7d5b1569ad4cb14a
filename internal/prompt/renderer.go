// Package prompt renders a chat transcript into the raw text an inference
// engine consumes, using the tokenizer's Jinja chat template (spec.md
// §4.2).
package prompt

import (
	"bytes"
	"strings"

	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"

	"bodhi/internal/objs"
	apperrors "bodhi/pkg/errors"
)

// MaxTemplateSize bounds the chat template gonja will compile, guarding
// against a pathological tokenizer_config.json.
const MaxTemplateSize = 64 * 1024

// Renderer turns a tokenizer config's chat template into raw model input.
type Renderer struct{}

// NewRenderer constructs a Renderer. It carries no state: every call to
// Render is independent, since a template string may come from a
// different alias each time.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render flattens messages to plain text and executes the chat template
// against {messages, bos_token, eos_token, add_generation_prompt}, per
// spec.md §4.2.
func (r *Renderer) Render(cfg objs.TokenizerConfig, messages []objs.ChatMessage, addGenerationPrompt bool) (string, error) {
	if cfg.ChatTemplate == nil {
		return "", apperrors.NewTemplateMissing()
	}
	template, ok := cfg.ChatTemplate.Resolve()
	if !ok {
		return "", apperrors.NewTemplateMissing()
	}
	if len(template) > MaxTemplateSize {
		return "", apperrors.New(apperrors.TemplateRender, "chat_template exceeds maximum size")
	}
	template = normalize(template)

	flattened, err := flatten(messages)
	if err != nil {
		return "", err
	}

	tmpl, err := gonja.FromString(template)
	if err != nil {
		return "", apperrors.NewTemplateRender("syntax error", err)
	}

	ctx := exec.NewContext(map[string]any{
		"messages":              flattened,
		"bos_token":             cfg.BOSToken,
		"eos_token":             cfg.EOSToken,
		"add_generation_prompt": addGenerationPrompt,
	})

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", apperrors.NewTemplateRender("runtime error", err)
	}
	return buf.String(), nil
}

// normalize rewrites the two Python string-method calls Hugging Face chat
// templates commonly use that gonja does not implement as methods:
// `.strip()` becomes the `trim` filter and `.title()` becomes `title`.
func normalize(template string) string {
	template = stripCallPattern.ReplaceAllString(template, "$1 | trim")
	template = titleCallPattern.ReplaceAllString(template, "$1 | title")
	return template
}

func flatten(messages []objs.ChatMessage) ([]map[string]string, error) {
	out := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case objs.RoleSystem, objs.RoleUser, objs.RoleAssistant:
		default:
			return nil, apperrors.NewUnsupportedRole(string(m.Role))
		}
		out = append(out, map[string]string{
			"role":    string(m.Role),
			"content": strings.TrimSpace(m.Content),
		})
	}
	return out, nil
}
