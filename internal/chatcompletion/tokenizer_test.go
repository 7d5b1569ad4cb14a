package chatcompletion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodhi/internal/objs"
	"bodhi/internal/prompt"
)

// TestBuiltinTemplatesRenderByteForByte exercises builtinTokenizerConfig
// against every template shipped under templates/*.json, not a
// hand-written inline stand-in, and checks the rendered prompt
// byte-for-byte against a hand-derived rendering of each bundled
// template's chat_template, bos_token and eos_token for the same messages.
func TestBuiltinTemplatesRenderByteForByte(t *testing.T) {
	r := prompt.NewRenderer()

	cases := []struct {
		name                string
		id                  objs.ChatTemplateID
		messages            []objs.ChatMessage
		addGenerationPrompt bool
		want                string
	}{
		{
			name:                "llama3/simple",
			id:                  objs.ChatTemplateLlama3,
			messages:            []objs.ChatMessage{{Role: objs.RoleUser, Content: "hi"}},
			addGenerationPrompt: true,
			want:                "<|begin_of_text|><|start_header_id|>user<|end_header_id|>\n\nhi<|eot_id|><|start_header_id|>assistant<|end_header_id|>\n\n",
		},
		{
			name: "llama2/system",
			id:   objs.ChatTemplateLlama2,
			messages: []objs.ChatMessage{
				{Role: objs.RoleSystem, Content: "be terse"},
				{Role: objs.RoleUser, Content: "hi"},
			},
			want: "<s><<SYS>>\nbe terse\n<</SYS>>\n\n[INST] hi [/INST]",
		},
		{
			name:     "llama2-legacy/simple",
			id:       objs.ChatTemplateLlama2Legacy,
			messages: []objs.ChatMessage{{Role: objs.RoleUser, Content: "hi"}},
			want:     "<s>[INST] hi [/INST]",
		},
		{
			name:                "phi3/simple",
			id:                  objs.ChatTemplatePhi3,
			messages:            []objs.ChatMessage{{Role: objs.RoleUser, Content: "hi"}},
			addGenerationPrompt: true,
			want:                "<|user|>\nhi<|end|>\n<|assistant|>\n",
		},
		{
			name:                "gemma/simple",
			id:                  objs.ChatTemplateGemma,
			messages:            []objs.ChatMessage{{Role: objs.RoleUser, Content: "hi"}},
			addGenerationPrompt: true,
			want:                "<bos><start_of_turn>user\nhi<end_of_turn>\n<start_of_turn>model\n",
		},
		{
			name: "deepseek/convo",
			id:   objs.ChatTemplateDeepseek,
			messages: []objs.ChatMessage{
				{Role: objs.RoleSystem, Content: "be terse"},
				{Role: objs.RoleUser, Content: "hi"},
				{Role: objs.RoleAssistant, Content: "hello"},
			},
			addGenerationPrompt: true,
			want:                "<｜begin▁of▁sentence｜>be terse\nUser: hi\n\nAssistant: hello<｜end▁of▁sentence｜>Assistant:",
		},
		{
			name:                "command-r/simple",
			id:                  objs.ChatTemplateCommandR,
			messages:            []objs.ChatMessage{{Role: objs.RoleUser, Content: "hi"}},
			addGenerationPrompt: true,
			want:                "<BOS_TOKEN><|START_OF_TURN_TOKEN|><|USER_TOKEN|>hi<|END_OF_TURN_TOKEN|><|START_OF_TURN_TOKEN|><|CHATBOT_TOKEN|>",
		},
		{
			name:                "openchat/simple",
			id:                  objs.ChatTemplateOpenChat,
			messages:            []objs.ChatMessage{{Role: objs.RoleUser, Content: "hi"}},
			addGenerationPrompt: true,
			want:                "<s>GPT4 Correct User: hi<|end_of_turn|>GPT4 Correct Assistant:",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := builtinTokenizerConfig(tc.id)
			require.NoError(t, err)

			got, err := r.Render(cfg, tc.messages, tc.addGenerationPrompt)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuiltinTokenizerConfigUnknownID(t *testing.T) {
	_, err := builtinTokenizerConfig(objs.ChatTemplateID("does-not-exist"))
	assert.Error(t, err)
}
