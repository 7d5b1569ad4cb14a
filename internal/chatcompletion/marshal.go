package chatcompletion

import (
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"
)

func marshalChunk(model string, created int64, index int, delta string) (string, error) {
	role := ""
	if index == 0 {
		role = "assistant"
	}
	chunk := Chunk{
		ID:      "chatcmpl-" + ulid.Make().String(),
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []ChunkChoice{{
			Index: 0,
			Delta: ChunkDelta{Role: role, Content: delta},
		}},
	}
	data, err := json.Marshal(chunk)
	if err != nil {
		return "", fmt.Errorf("marshal chunk: %w", err)
	}
	return string(data), nil
}
