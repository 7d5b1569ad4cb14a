package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodhi/internal/objs"
	apperrors "bodhi/pkg/errors"
)

func paramsFor(model string) objs.GptParams {
	return objs.GptParams{Model: model, NCtx: 2048, NParallel: 1, NThreads: 4, Seed: -1}
}

func newTestSMC(load func(objs.GptParams) (ModelHandle, error)) *SharedModelContext {
	return NewWithLoader(load)
}

func TestDecideTable(t *testing.T) {
	p1 := paramsFor("a.gguf")
	p2 := paramsFor("b.gguf")
	m1 := &nativeModel{params: p1}

	assert.Equal(t, decisionNoop, decide(nil, p1, true))
	assert.Equal(t, decisionLoad, decide(nil, p1, false))
	assert.Equal(t, decisionUnload, decide(m1, p1, true))
	assert.Equal(t, decisionNoop, decide(m1, p1, false))
	assert.Equal(t, decisionSwap, decide(m1, p2, false))
}

func TestReloadLoadsAndSwaps(t *testing.T) {
	loaded := 0
	smc := newTestSMC(func(p objs.GptParams) (ModelHandle, error) {
		loaded++
		return &nativeModel{params: p}, nil
	})

	require.NoError(t, smc.Reload(paramsFor("a.gguf"), false))
	assert.True(t, smc.HasModel())
	got, ok := smc.GetGptParams()
	require.True(t, ok)
	assert.Equal(t, "a.gguf", got.Model)
	assert.Equal(t, 1, loaded)

	require.NoError(t, smc.Reload(paramsFor("a.gguf"), false))
	assert.Equal(t, 1, loaded, "identical params must not trigger a reload")

	require.NoError(t, smc.Reload(paramsFor("b.gguf"), false))
	assert.Equal(t, 2, loaded)
	got, _ = smc.GetGptParams()
	assert.Equal(t, "b.gguf", got.Model)
}

func TestTryStopUnloads(t *testing.T) {
	smc := newTestSMC(func(p objs.GptParams) (ModelHandle, error) {
		return &nativeModel{params: p}, nil
	})
	require.NoError(t, smc.Reload(paramsFor("a.gguf"), false))
	require.NoError(t, smc.TryStop())
	assert.False(t, smc.HasModel())
	require.NoError(t, smc.TryStop(), "stopping an already-empty context is a no-op")
}

func TestCompletionWithoutModelFails(t *testing.T) {
	smc := New()
	_, err := smc.Completion(context.Background(), "hi", SamplingParams{})
	require.Error(t, err)
	assert.Equal(t, 503, apperrors.StatusCode(err))
}

// fakeModel is a ModelHandle whose Predict blocks on release and whose
// Close fails the test if it runs while a Predict call is still in
// flight — the exact use-after-free shape a buggy Completion/Reload race
// would hit against the real cgo handle.
type fakeModel struct {
	params   objs.GptParams
	release  chan struct{}
	inFlight *int32
}

func (m *fakeModel) Predict(prompt string, sampling SamplingParams, stop <-chan struct{}, tokens chan<- CompletionChunk) error {
	defer close(tokens)
	atomic.AddInt32(m.inFlight, 1)
	defer atomic.AddInt32(m.inFlight, -1)
	<-m.release
	return nil
}

func (m *fakeModel) Close() error {
	if atomic.LoadInt32(m.inFlight) != 0 {
		return fmt.Errorf("Close called while a completion is still in flight")
	}
	return nil
}

func (m *fakeModel) Params() objs.GptParams { return m.params }

func TestReloadWaitsForInFlightCompletion(t *testing.T) {
	var inFlight int32
	release := make(chan struct{})
	model := &fakeModel{params: paramsFor("a.gguf"), release: release, inFlight: &inFlight}

	smc := newTestSMC(func(objs.GptParams) (ModelHandle, error) { return model, nil })
	require.NoError(t, smc.Reload(paramsFor("a.gguf"), false))

	tokens, err := smc.Completion(context.Background(), "hi", SamplingParams{})
	require.NoError(t, err)

	for atomic.LoadInt32(&inFlight) == 0 {
		runtime.Gosched()
	}

	reloadDone := make(chan error, 1)
	go func() { reloadDone <- smc.Reload(paramsFor("b.gguf"), false) }()

	select {
	case err := <-reloadDone:
		t.Fatalf("reload returned (err=%v) while a completion was still in flight", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	for range tokens {
	}

	require.NoError(t, <-reloadDone, "reload must succeed once the completion drains")
}
