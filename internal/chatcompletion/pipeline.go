package chatcompletion

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"bodhi/internal/engine"
	"bodhi/internal/hub"
	"bodhi/internal/objs"
	"bodhi/internal/prompt"
	apperrors "bodhi/pkg/errors"
	"bodhi/pkg/pointers"
)

// Pipeline implements the eight-step chat-completion algorithm of
// spec.md §4.4.
type Pipeline struct {
	hub      *hub.Adapter
	smc      *engine.SharedModelContext
	renderer *prompt.Renderer
	now      func() time.Time
}

// New constructs a Pipeline over the given alias/hub adapter and shared
// model context.
func New(h *hub.Adapter, smc *engine.SharedModelContext) *Pipeline {
	return &Pipeline{hub: h, smc: smc, renderer: prompt.NewRenderer(), now: time.Now}
}

// Stop releases the pipeline's underlying engine (spec.md §4.6's
// on-exit SMC.try_stop). Safe to call whether or not a model is loaded.
func (p *Pipeline) Stop() error {
	return p.smc.TryStop()
}

// merged is the fully resolved set of parameters a request runs with,
// after step 2 of the algorithm layers request overrides onto alias
// defaults. temperature/topP/seed/maxTokens/the penalties stay pointers
// so a still-unset field leaves the native engine's own default alone
// (pkg/pointers' Coalesce* helpers collapse to a concrete zero instead,
// which is the wrong shape for these); responseFormat/user carry no
// such native default and are merged as plain strings.
type merged struct {
	temperature      *float64
	topP             *float64
	seed             *int64
	maxTokens        *int64
	presencePenalty  *float64
	frequencyPenalty *float64
	stop             []string
	responseFormat   string
	user             string
}

func mergeParams(req Request, alias objs.Alias) merged {
	rp := alias.RequestParams
	return merged{
		temperature:      firstNonNilF(req.Temperature, rp.Temperature),
		topP:             firstNonNilF(req.TopP, rp.TopP),
		seed:             firstNonNilI(req.Seed, rp.Seed),
		maxTokens:        firstNonNilI(req.MaxTokens, rp.MaxTokens),
		presencePenalty:  firstNonNilF(req.PresencePenalty, rp.PresencePenalty),
		frequencyPenalty: firstNonNilF(req.FrequencyPenalty, rp.FrequencyPenalty),
		stop:             pointers.CoalesceStrings(req.Stop, rp.Stop),
		responseFormat:   pointers.CoalesceString(req.ResponseFormat, pointers.CoalesceString(rp.ResponseFormat, "")),
		user:             pointers.CoalesceString(req.User, pointers.CoalesceString(rp.User, "")),
	}
}

func firstNonNilF(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

func firstNonNilI(a, b *int64) *int64 {
	if a != nil {
		return a
	}
	return b
}

func toChatMessages(inputs []MessageInput) ([]objs.ChatMessage, error) {
	out := make([]objs.ChatMessage, 0, len(inputs))
	for _, m := range inputs {
		var sb strings.Builder
		for _, part := range m.Parts {
			if part.Type != "text" {
				return nil, apperrors.NewUnsupportedContent()
			}
			sb.WriteString(part.Text)
		}
		out = append(out, objs.ChatMessage{Role: objs.Role(m.Role), Content: sb.String()})
	}
	return out, nil
}

// resolveTokenizerConfig loads the tokenizer config for the alias's chat
// template, either from a bundled built-in template or by resolving
// tokenizer_config.json out of the referenced hub repo.
func (p *Pipeline) resolveTokenizerConfig(alias objs.Alias) (objs.TokenizerConfig, error) {
	if alias.ChatTemplate.TokenizerConfig != "" {
		file, ok := p.hub.FindLocalFile(alias.ChatTemplate.TokenizerConfig, "tokenizer_config.json", "main")
		if !ok {
			missing := objs.LocalModelFile{HFCacheRoot: p.hub.HFHome(), Repo: alias.ChatTemplate.TokenizerConfig, Snapshot: "main"}
			return objs.TokenizerConfig{}, apperrors.NewFileMissing("tokenizer_config.json", missing.RelSnapshotDir())
		}
		return loadTokenizerConfigFile(file.Path())
	}
	return builtinTokenizerConfig(alias.ChatTemplate.ID)
}

// Result is what a completion call produces: either a single complete
// response, or a channel of SSE-ready chunk payloads.
type Result struct {
	Stream bool
	Single *Response
	Chunks <-chan string
}

// Run executes the full algorithm for req and returns how the HTTP layer
// should deliver it (spec.md §4.4 step 8).
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	alias, ok := p.hub.FindAlias(req.Model)
	if !ok {
		return nil, apperrors.NewAliasNotFound(req.Model)
	}

	params := mergeParams(req, alias)

	file, ok := p.hub.FindLocalFile(alias.Repo, alias.Filename, alias.Snapshot)
	if !ok {
		missing := objs.LocalModelFile{HFCacheRoot: p.hub.HFHome(), Repo: alias.Repo, Snapshot: alias.Snapshot}
		return nil, apperrors.NewFileMissing(alias.Filename, missing.RelSnapshotDir())
	}

	tokenizerCfg, err := p.resolveTokenizerConfig(alias)
	if err != nil {
		return nil, err
	}

	messages, err := toChatMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	rendered, err := p.renderer.Render(tokenizerCfg, messages, true)
	if err != nil {
		return nil, err
	}

	gptParams := objs.FromAlias(alias, file.Path())
	if err := p.smc.Reload(gptParams, false); err != nil {
		return nil, err
	}

	tokens, err := p.smc.Completion(ctx, rendered, engine.SamplingParams{
		Temperature:      params.temperature,
		TopP:             params.topP,
		Seed:             params.seed,
		MaxTokens:        params.maxTokens,
		PresencePenalty:  params.presencePenalty,
		FrequencyPenalty: params.frequencyPenalty,
		Stop:             params.stop,
	})
	if err != nil {
		return nil, err
	}

	streaming := req.Stream != nil && *req.Stream
	created := p.now().Unix()

	if !streaming {
		return p.collectSingle(req.Model, created, tokens)
	}
	return p.streamChunks(req.Model, created, tokens), nil
}

func (p *Pipeline) collectSingle(model string, created int64, tokens <-chan engine.CompletionChunk) (*Result, error) {
	var sb strings.Builder
	for chunk := range tokens {
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		sb.WriteString(chunk.Token)
	}

	resp := &Response{
		ID:      "chatcmpl-" + ulid.Make().String(),
		Object:  "chat.completion",
		Created: created,
		Model:   model,
		Choices: []Choice{{
			Index:        0,
			Message:      ResponseMessage{Role: "assistant", Content: sb.String()},
			FinishReason: "stop",
		}},
	}
	return &Result{Stream: false, Single: resp}, nil
}

func (p *Pipeline) streamChunks(model string, created int64, tokens <-chan engine.CompletionChunk) *Result {
	out := make(chan string, engine.ChunkBufferSize)
	go func() {
		defer close(out)
		index := 0
		for chunk := range tokens {
			if chunk.Err != nil {
				return
			}
			payload, err := marshalChunk(model, created, index, chunk.Token)
			index++
			if err != nil {
				return
			}
			out <- payload
		}
	}()
	return &Result{Stream: true, Chunks: out}
}
