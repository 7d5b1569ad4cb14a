// Package engine owns the single live native inference engine shared by
// every request in the process (spec.md §4.1).
package engine

import (
	"context"
	"sync"

	"bodhi/internal/objs"
	apperrors "bodhi/pkg/errors"
)

// ModelHandle is the seam between SharedModelContext and a concrete
// inference engine. nativeModel is the only production implementation;
// tests substitute a fake to drive the pipeline without linking the
// llama.cpp cgo binding.
type ModelHandle interface {
	// Predict runs prompt to completion, delivering generated tokens on
	// tokens until stop is closed or generation ends. It always closes
	// tokens before returning.
	Predict(prompt string, sampling SamplingParams, stop <-chan struct{}, tokens chan<- CompletionChunk) error
	// Close releases the handle's resources. Called at most once.
	Close() error
	// Params returns the GptParams the handle was loaded with.
	Params() objs.GptParams
}

// SharedModelContext serializes reloads against in-flight completions: a
// reload blocks until every completion holding the read side has
// returned, and a completion holds the read side for the whole predict
// call so a reload can never free a handle out from under it.
type SharedModelContext struct {
	mu     sync.RWMutex
	model  ModelHandle
	loader func(objs.GptParams) (ModelHandle, error)
}

// New constructs an empty SharedModelContext backed by the native
// llama.cpp binding.
func New() *SharedModelContext {
	return NewWithLoader(func(p objs.GptParams) (ModelHandle, error) {
		return loadNativeModel(p)
	})
}

// NewWithLoader constructs an empty SharedModelContext using loader in
// place of the native binding, letting tests inject a fake ModelHandle.
func NewWithLoader(loader func(objs.GptParams) (ModelHandle, error)) *SharedModelContext {
	return &SharedModelContext{loader: loader}
}

// HasModel reports whether a model is currently loaded.
func (s *SharedModelContext) HasModel() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// GetGptParams returns the params of the currently loaded model, if any.
func (s *SharedModelContext) GetGptParams() (objs.GptParams, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return objs.GptParams{}, false
	}
	return s.model.Params(), true
}

// decision is the spec.md §4.1 reload decision table, applied in Reload.
type decision int

const (
	decisionNoop decision = iota
	decisionLoad
	decisionUnload
	decisionSwap
)

func decide(current ModelHandle, want objs.GptParams, wantsUnload bool) decision {
	switch {
	case current == nil && wantsUnload:
		return decisionNoop
	case current == nil && !wantsUnload:
		return decisionLoad
	case current != nil && wantsUnload:
		return decisionUnload
	case current.Params().Equal(want):
		return decisionNoop
	default:
		return decisionSwap
	}
}

// Reload ensures the shared context matches want. Passing wantsUnload=true
// requests that any live model be stopped and no model be loaded. It
// takes the exclusive lock, so it blocks until every in-flight Completion
// has released its read lock (i.e. until its predict call has returned)
// before closing the old handle — no completion can ever observe a
// half-swapped model or run against a freed one.
func (s *SharedModelContext) Reload(want objs.GptParams, wantsUnload bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch decide(s.model, want, wantsUnload) {
	case decisionNoop:
		return nil

	case decisionLoad, decisionSwap:
		if s.model != nil {
			if err := s.model.Close(); err != nil {
				return apperrors.NewEngineStop(err)
			}
			s.model = nil
		}
		m, err := s.loader(want)
		if err != nil {
			return apperrors.NewEngineInit(err)
		}
		s.model = m
		return nil

	case decisionUnload:
		if err := s.model.Close(); err != nil {
			return apperrors.NewEngineStop(err)
		}
		s.model = nil
		return nil
	}
	return nil
}

// TryStop releases the current model if one is loaded, otherwise is a
// no-op. Unlike Reload it never loads a replacement. Callers invoke this
// on shutdown (spec.md §4.5's on_shutdown, §4.6's REPL exit) so the
// engine is always stopped before its memory is released.
func (s *SharedModelContext) TryStop() error {
	return s.Reload(objs.GptParams{}, true)
}

// SamplingParams are the per-request sampling knobs merged from the
// request and alias defaults (spec.md §4.4 step 2), as opposed to
// GptParams which are fixed at model load time.
type SamplingParams struct {
	Temperature      *float64
	TopP             *float64
	Seed             *int64
	MaxTokens        *int64
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Stop             []string
}

// CompletionChunk is one increment of a streamed completion.
type CompletionChunk struct {
	Token string
	Err   error
}

// ChunkBufferSize is the bounded capacity of the channel Completion
// returns (spec.md §4.4 step 7).
const ChunkBufferSize = 100

// Completion runs prompt through the currently loaded model, streaming
// generated tokens on the returned channel. It holds the shared read
// lock for the entire duration of the predict call, only releasing it
// once the model has finished generating (or been cancelled) — so a
// concurrent Reload cannot close the handle this call is still using.
// Multiple completions may hold the read lock at once; a pending reload
// simply waits for all of them to finish before it proceeds.
func (s *SharedModelContext) Completion(ctx context.Context, prompt string, sampling SamplingParams) (<-chan CompletionChunk, error) {
	s.mu.RLock()
	model := s.model
	if model == nil {
		s.mu.RUnlock()
		return nil, apperrors.NewEngineNotLoaded()
	}

	out := make(chan CompletionChunk, ChunkBufferSize)
	raw := make(chan CompletionChunk, ChunkBufferSize)
	stop := make(chan struct{})

	go func() {
		defer close(stop)
		<-ctx.Done()
	}()

	go func() {
		defer s.mu.RUnlock()
		if err := model.Predict(prompt, sampling, stop, raw); err != nil && ctx.Err() == nil {
			// Predict already pushed an error chunk unless cancelled.
			_ = err
		}
	}()

	go func() {
		defer close(out)
		for chunk := range raw {
			if chunk.Err != nil {
				out <- CompletionChunk{Err: apperrors.NewEngineCompletion(chunk.Err)}
				return
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
