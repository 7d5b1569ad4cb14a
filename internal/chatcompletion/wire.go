// Package chatcompletion implements the OpenAI-compatible chat completion
// pipeline (spec.md §4.4): resolving an alias, merging request parameters,
// rendering a prompt, and streaming a completion back through the shared
// model context.
//
// The request/response/chunk types below are hand-declared rather than
// imported from a third-party OpenAI SDK: spec.md §8 pins several of these
// shapes to an exact byte-for-byte JSON fixture, and only a type this
// package owns can be held to that guarantee.
package chatcompletion

import "encoding/json"

// Request is an OpenAI chat completion request.
type Request struct {
	Model            string          `json:"model"`
	Messages         []MessageInput  `json:"messages"`
	Stream           *bool           `json:"stream,omitempty"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	Seed             *int64          `json:"seed,omitempty"`
	MaxTokens        *int64          `json:"max_tokens,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	Stop             []string        `json:"stop,omitempty"`
	ResponseFormat   *string         `json:"response_format,omitempty"`
	User             *string         `json:"user,omitempty"`
}

// MessageInput is one request message. Content is either a bare string or
// an array of content parts; UnmarshalJSON normalizes both into Parts.
type MessageInput struct {
	Role  string
	Parts []ContentPart
}

// ContentPart is one element of a multi-part message content array.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func (m *MessageInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role

	var asString string
	if err := json.Unmarshal(raw.Content, &asString); err == nil {
		m.Parts = []ContentPart{{Type: "text", Text: asString}}
		return nil
	}

	var asParts []ContentPart
	if err := json.Unmarshal(raw.Content, &asParts); err != nil {
		return err
	}
	m.Parts = asParts
	return nil
}

// Choice is one generated completion in a non-streaming response.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// ResponseMessage is the assistant message returned in a non-streaming
// response.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a non-streaming CreateChatCompletionResponse.
type Response struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// ChunkDelta is the incremental content of one streamed chunk.
type ChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChunkChoice is one choice of a streamed chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// Chunk is a CreateChatCompletionStreamResponse: one SSE `data:` event.
type Chunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ErrorBody is the JSON body of an error response, matching the shape
// scenario S2 pins.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the message and classification of a failed request.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}
