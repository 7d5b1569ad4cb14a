package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRepoRejectsNonOwnerSlashRepo(t *testing.T) {
	err := validateRepo("meta-llama$Meta-Llama-3-8B")
	assert.ErrorContains(t, err, "does not match huggingface repo format - 'owner/repo'")
}

func TestValidateRepoAcceptsOwnerSlashRepo(t *testing.T) {
	assert.NoError(t, validateRepo("meta-llama/Meta-Llama-3-8B"))
}

func TestValidateFilenameRejectsNonGGUF(t *testing.T) {
	err := validateFilename("Meta-Llama-3-8B-Instruct.Q8_0.safetensor")
	assert.ErrorContains(t, err, "only GGUF file extension supported")
}

func TestValidateFilenameAcceptsGGUF(t *testing.T) {
	assert.NoError(t, validateFilename("Meta-Llama-3-8B-Instruct.Q8_0.gguf"))
}
