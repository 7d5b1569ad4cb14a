// Package interactive implements the `bodhi run` REPL: a stateful chat
// session driven straight against the chat-completion pipeline, without an
// HTTP hop (spec.md §4.6).
package interactive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"bodhi/internal/chatcompletion"
	"bodhi/internal/store"
	apperrors "bodhi/pkg/errors"
)

// State is a node of the REPL's state machine:
// Idle -> CollectingInput -> Rendering -> Generating -> Streaming -> AppendHistory -> Idle.
type State int

const (
	StateIdle State = iota
	StateCollectingInput
	StateRendering
	StateGenerating
	StateStreaming
	StateAppendHistory
)

// ExitCommand ends a session when entered as the whole line.
const ExitCommand = "/bye"

// REPL drives one interactive chat session against a model alias.
type REPL struct {
	pipeline *chatcompletion.Pipeline
	store    *store.Store
	alias    string
	in       *bufio.Scanner
	out      io.Writer
	isTTY    bool

	history        []chatcompletion.MessageInput
	conversationID string
	state          State
}

// New constructs a REPL reading from in and writing prompts/output to out.
// A "> " input prompt is printed only when fd is a terminal; a piped,
// non-interactive input suppresses it. Each turn is persisted to
// conversations via the given store.
func New(pipeline *chatcompletion.Pipeline, conversations *store.Store, alias string, in io.Reader, out io.Writer, fd int) *REPL {
	return &REPL{
		pipeline: pipeline,
		store:    conversations,
		alias:    alias,
		in:       bufio.NewScanner(in),
		out:      out,
		isTTY:    term.IsTerminal(fd),
		state:    StateIdle,
	}
}

// Run drives the REPL until the user types /bye or input is exhausted.
// On every exit path it stops the shared engine (spec.md §4.6's
// on-exit SMC.try_stop), so the REPL never leaks the native engine.
func (r *REPL) Run(ctx context.Context) error {
	defer func() {
		if err := r.pipeline.Stop(); err != nil {
			fmt.Fprintf(r.out, "warning: failed to stop engine: %v\n", err)
		}
	}()

	for {
		r.state = StateCollectingInput
		if r.isTTY {
			fmt.Fprint(r.out, "\n> ")
		}
		if !r.in.Scan() {
			return r.in.Err()
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		if line == ExitCommand {
			return nil
		}

		if err := r.processInput(ctx, line); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

// conversation lazily creates the persisted conversation for this
// session on its first turn, so an empty session leaves no empty row
// behind.
func (r *REPL) conversation(ctx context.Context) (string, error) {
	if r.conversationID != "" {
		return r.conversationID, nil
	}
	c, err := r.store.CreateConversation(ctx, r.alias)
	if err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	r.conversationID = c.ID
	return r.conversationID, nil
}

// processInput appends the user's turn, runs one completion, and appends
// the assistant's turn only on success, per spec.md §4.6.
func (r *REPL) processInput(ctx context.Context, line string) error {
	conversationID, err := r.conversation(ctx)
	if err != nil {
		return err
	}

	r.history = append(r.history, chatcompletion.MessageInput{
		Role:  "user",
		Parts: []chatcompletion.ContentPart{{Type: "text", Text: line}},
	})
	if _, err := r.store.AppendMessage(ctx, conversationID, "user", "", line); err != nil {
		fmt.Fprintf(r.out, "warning: failed to persist message: %v\n", err)
	}

	r.state = StateRendering
	r.state = StateGenerating

	result, err := r.pipeline.Run(ctx, chatcompletion.Request{
		Model:    r.alias,
		Messages: r.history,
	})
	if err != nil {
		r.history = r.history[:len(r.history)-1]
		return describeError(err)
	}

	r.state = StateStreaming
	var reply strings.Builder
	if result.Stream {
		for chunk := range result.Chunks {
			fmt.Fprint(r.out, chunk)
			reply.WriteString(chunk)
		}
	} else {
		reply.WriteString(result.Single.Choices[0].Message.Content)
		fmt.Fprint(r.out, reply.String())
	}
	fmt.Fprintln(r.out)

	r.state = StateAppendHistory
	r.history = append(r.history, chatcompletion.MessageInput{
		Role:  "assistant",
		Parts: []chatcompletion.ContentPart{{Type: "text", Text: reply.String()}},
	})
	if _, err := r.store.AppendMessage(ctx, conversationID, "assistant", "", reply.String()); err != nil {
		fmt.Fprintf(r.out, "warning: failed to persist message: %v\n", err)
	}
	r.state = StateIdle
	return nil
}

// describeError renders an AppError using the exact two-line format
// spec.md's FileMissing case requires, falling back to the bare message
// for every other error kind.
func describeError(err error) error {
	if appErr, ok := apperrors.As(err); ok {
		return fmt.Errorf("%s", appErr.Message)
	}
	return err
}
