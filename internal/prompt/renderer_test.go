package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodhi/internal/objs"
)

func chatTemplate(tmpl string) objs.TokenizerConfig {
	versions := objs.ChatTemplateVersions{Single: tmpl}
	return objs.TokenizerConfig{
		ChatTemplate: &versions,
		BOSToken:     "<s>",
		EOSToken:     "</s>",
	}
}

func TestRenderSingleTemplate(t *testing.T) {
	r := NewRenderer()
	cfg := chatTemplate(`{{ bos_token }}{% for m in messages %}{{ m.role }}: {{ m.content }}
{% endfor %}{% if add_generation_prompt %}assistant:{% endif %}`)

	messages := []objs.ChatMessage{
		{Role: objs.RoleSystem, Content: "be terse"},
		{Role: objs.RoleUser, Content: "hi"},
	}

	out, err := r.Render(cfg, messages, true)
	require.NoError(t, err)
	assert.Equal(t, "<s>system: be terse\nuser: hi\nassistant:", out)
}

func TestRenderNamedTemplateSelectsDefault(t *testing.T) {
	r := NewRenderer()
	cfg := objs.TokenizerConfig{
		ChatTemplate: &objs.ChatTemplateVersions{
			Multiple: []objs.NamedChatTemplate{
				{Name: "tool_use", Template: "{{ messages }}"},
				{Name: "default", Template: "{% for m in messages %}{{ m.content }}{% endfor %}"},
			},
		},
	}

	out, err := r.Render(cfg, []objs.ChatMessage{{Role: objs.RoleUser, Content: "hello"}}, false)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestRenderMissingTemplate(t *testing.T) {
	r := NewRenderer()
	cfg := objs.TokenizerConfig{}

	_, err := r.Render(cfg, nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat_template not found")
}

func TestRenderUnsupportedRole(t *testing.T) {
	r := NewRenderer()
	cfg := chatTemplate("{{ messages }}")

	_, err := r.Render(cfg, []objs.ChatMessage{{Role: "tool", Content: "x"}}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported message role")
}

func TestRenderSyntaxError(t *testing.T) {
	r := NewRenderer()
	cfg := chatTemplate("{% for m in messages %}")

	_, err := r.Render(cfg, []objs.ChatMessage{{Role: objs.RoleUser, Content: "hi"}}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestNormalizeStripAndTitle(t *testing.T) {
	out := normalize(`{{ message.content.strip() }} {{ m.role.title() }}`)
	assert.Equal(t, `{{ message.content | trim }} {{ m.role | title }}`, out)
}
