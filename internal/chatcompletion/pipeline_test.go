package chatcompletion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodhi/internal/engine"
	"bodhi/internal/hub"
	"bodhi/internal/objs"
)

func newTestPipeline(t *testing.T) (*Pipeline, *hub.Adapter) {
	t.Helper()
	hfHome := t.TempDir()
	bodhiHome := t.TempDir()

	snapshotDir := filepath.Join(hfHome, "hub", "models--Org--Model", "snapshots", "main")
	require.NoError(t, os.MkdirAll(snapshotDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(snapshotDir, "model.gguf"), []byte("gguf"), 0o644))

	h, err := hub.New(bodhiHome, hfHome)
	require.NoError(t, err)
	require.NoError(t, h.SaveAlias(objs.Alias{
		Alias:        "demo:latest",
		Repo:         "Org/Model",
		Filename:     "model.gguf",
		Snapshot:     "main",
		Features:     []objs.Feature{objs.FeatureChat},
		ChatTemplate: objs.ChatTemplate{ID: objs.ChatTemplateLlama3},
	}))

	return New(h, engine.New()), h
}

func TestRunAliasNotFound(t *testing.T) {
	p, _ := newTestPipeline(t)
	_, err := p.Run(context.Background(), Request{Model: "missing:latest"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMergeParamsPrefersRequestOverAlias(t *testing.T) {
	aliasTemp := 0.2
	reqTemp := 0.9
	alias := objs.Alias{RequestParams: objs.RequestParams{Temperature: &aliasTemp}}
	got := mergeParams(Request{Temperature: &reqTemp}, alias)
	require.NotNil(t, got.temperature)
	assert.Equal(t, 0.9, *got.temperature)
}

func TestMergeParamsFallsBackToAlias(t *testing.T) {
	aliasTemp := 0.2
	alias := objs.Alias{RequestParams: objs.RequestParams{Temperature: &aliasTemp}}
	got := mergeParams(Request{}, alias)
	require.NotNil(t, got.temperature)
	assert.Equal(t, 0.2, *got.temperature)
}

func TestToChatMessagesFlattensTextParts(t *testing.T) {
	msgs := []MessageInput{
		{Role: "user", Parts: []ContentPart{{Type: "text", Text: "hello "}, {Type: "text", Text: "world"}}},
	}
	out, err := toChatMessages(msgs)
	require.NoError(t, err)
	assert.Equal(t, "hello world", out[0].Content)
}

func TestToChatMessagesRejectsImageParts(t *testing.T) {
	msgs := []MessageInput{{Role: "user", Parts: []ContentPart{{Type: "image_url"}}}}
	_, err := toChatMessages(msgs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported message content")
}
