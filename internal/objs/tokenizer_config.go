package objs

import (
	"encoding/json"
	"fmt"
)

// ChatTemplateVersions is either a single template string or a named set
// of templates, matching tokenizer_config.json's `chat_template` field as
// published by Hugging Face. Exactly one of Single/Multiple is non-empty
// after unmarshaling.
type ChatTemplateVersions struct {
	Single   string
	Multiple []NamedChatTemplate
}

// NamedChatTemplate is one entry of a multi-template `chat_template` set.
type NamedChatTemplate struct {
	Name     string `json:"name"`
	Template string `json:"template"`
}

// UnmarshalJSON accepts either a bare string or an array of
// {name, template} objects, mirroring the untagged enum the original
// tokenizer_config.json schema uses.
func (v *ChatTemplateVersions) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Single = s
		v.Multiple = nil
		return nil
	}
	var list []NamedChatTemplate
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("chat_template: expected string or array of named templates: %w", err)
	}
	v.Multiple = list
	v.Single = ""
	return nil
}

// MarshalJSON round-trips whichever variant is populated.
func (v ChatTemplateVersions) MarshalJSON() ([]byte, error) {
	if v.Multiple != nil {
		return json.Marshal(v.Multiple)
	}
	return json.Marshal(v.Single)
}

// Resolve implements spec.md §4.2's template selection rule: a single
// string is used as-is; a named set yields the entry named "default".
// The second return value is false when neither applies.
func (v ChatTemplateVersions) Resolve() (string, bool) {
	if v.Single != "" {
		return v.Single, true
	}
	for _, t := range v.Multiple {
		if t.Name == "default" {
			return t.Template, true
		}
	}
	return "", false
}

// stringOrContent unmarshals a field that tokenizer_config.json may encode
// as a bare string or as an object carrying the string under "content"
// (the format some tokenizers use for bos_token/eos_token).
type stringOrContent struct {
	value string
	isSet bool
}

func (s *stringOrContent) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.value, s.isSet = str, true
		return nil
	}
	var obj struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid type: expected a string or a map with a 'content' key")
	}
	if obj.Content != nil {
		s.value, s.isSet = *obj.Content, true
	}
	return nil
}

// TokenizerConfig is the subset of tokenizer_config.json the prompt
// renderer needs: the chat template and the special-token strings it
// references.
type TokenizerConfig struct {
	ChatTemplate *ChatTemplateVersions `json:"chat_template,omitempty"`
	BOSToken     string                 `json:"-"`
	EOSToken     string                 `json:"-"`
}

// UnmarshalJSON applies the string-or-content decoding to bos_token and
// eos_token while leaving chat_template to its own decoder.
func (c *TokenizerConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		ChatTemplate *ChatTemplateVersions `json:"chat_template"`
		BOSToken     *stringOrContent       `json:"bos_token"`
		EOSToken     *stringOrContent       `json:"eos_token"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ChatTemplate = raw.ChatTemplate
	if raw.BOSToken != nil {
		c.BOSToken = raw.BOSToken.value
	}
	if raw.EOSToken != nil {
		c.EOSToken = raw.EOSToken.value
	}
	return nil
}
