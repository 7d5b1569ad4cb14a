package chatcompletion

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"bodhi/internal/objs"
)

//go:embed templates/*.json
var builtinTemplates embed.FS

func loadTokenizerConfigFile(path string) (objs.TokenizerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return objs.TokenizerConfig{}, fmt.Errorf("read tokenizer_config.json: %w", err)
	}
	var cfg objs.TokenizerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return objs.TokenizerConfig{}, fmt.Errorf("parse tokenizer_config.json: %w", err)
	}
	return cfg, nil
}

// builtinTokenizerConfig loads one of the chat templates bundled with the
// binary for `bodhi create --chat-template`.
func builtinTokenizerConfig(id objs.ChatTemplateID) (objs.TokenizerConfig, error) {
	data, err := builtinTemplates.ReadFile("templates/" + string(id) + ".json")
	if err != nil {
		return objs.TokenizerConfig{}, fmt.Errorf("unknown built-in chat template %q: %w", id, err)
	}
	var cfg objs.TokenizerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return objs.TokenizerConfig{}, fmt.Errorf("parse built-in chat template %q: %w", id, err)
	}
	return cfg, nil
}
