package engine

import (
	"fmt"

	llama "github.com/go-skynet/go-llama.cpp"

	"bodhi/internal/objs"
)

// nativeModel wraps the llama.cpp cgo binding. A model is loaded once and
// its weights are shared across every completion; each completion instead
// gets its own token budget and sampling parameters, mirroring how
// whisper.cpp shares one loaded model across many inference contexts.
type nativeModel struct {
	handle *llama.LLama
	params objs.GptParams
}

func loadNativeModel(params objs.GptParams) (*nativeModel, error) {
	opts := []llama.ModelOption{
		llama.SetContext(params.NCtx),
		llama.SetNParallel(params.NParallel),
		llama.EnableF16Memory,
	}
	handle, err := llama.New(params.Model, opts...)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", params.Model, err)
	}
	return &nativeModel{handle: handle, params: params}, nil
}

// Predict runs completion over prompt, delivering each generated token on
// tokens until generation ends or stop is closed. It always closes
// tokens before returning. The caller (SharedModelContext.Completion)
// holds the shared lock for the duration of this call, so m.handle
// cannot be freed concurrently.
func (m *nativeModel) Predict(prompt string, sampling SamplingParams, stop <-chan struct{}, tokens chan<- CompletionChunk) error {
	defer close(tokens)

	cancelled := false
	callback := func(piece string) bool {
		select {
		case <-stop:
			cancelled = true
			return false
		default:
		}
		select {
		case tokens <- CompletionChunk{Token: piece}:
			return true
		case <-stop:
			cancelled = true
			return false
		}
	}

	predictOpts := []llama.PredictOption{
		llama.SetTokenCallback(callback),
		llama.SetThreads(m.params.NThreads),
		llama.SetSeed(int(m.params.Seed)),
	}
	if sampling.Temperature != nil {
		predictOpts = append(predictOpts, llama.SetTemperature(*sampling.Temperature))
	}
	if sampling.TopP != nil {
		predictOpts = append(predictOpts, llama.SetTopP(*sampling.TopP))
	}
	if sampling.Seed != nil {
		predictOpts = append(predictOpts, llama.SetSeed(int(*sampling.Seed)))
	}
	if sampling.MaxTokens != nil {
		predictOpts = append(predictOpts, llama.SetTokens(int(*sampling.MaxTokens)))
	}
	if sampling.PresencePenalty != nil {
		predictOpts = append(predictOpts, llama.SetPenalty(*sampling.PresencePenalty))
	}
	if sampling.FrequencyPenalty != nil {
		predictOpts = append(predictOpts, llama.SetFrequencyPenalty(*sampling.FrequencyPenalty))
	}
	if len(sampling.Stop) > 0 {
		predictOpts = append(predictOpts, llama.SetStopPrompts(sampling.Stop...))
	}

	_, err := m.handle.Predict(prompt, predictOpts...)
	if err != nil && !cancelled {
		tokens <- CompletionChunk{Err: fmt.Errorf("native completion: %w", err)}
	}
	return err
}

// Close frees the native handle. The caller (SharedModelContext.Reload)
// holds the exclusive lock when calling this, which only succeeds once
// every in-flight Predict has returned.
func (m *nativeModel) Close() error {
	if m.handle != nil {
		m.handle.Free()
	}
	return nil
}

// Params returns the GptParams the handle was loaded with.
func (m *nativeModel) Params() objs.GptParams {
	return m.params
}
