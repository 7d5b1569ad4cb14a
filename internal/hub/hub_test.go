package hub

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodhi/internal/objs"
)

func TestSaveAliasRoundTrip(t *testing.T) {
	bodhiHome := t.TempDir()
	hfHome := t.TempDir()

	a, err := New(bodhiHome, hfHome)
	require.NoError(t, err)

	alias := objs.Alias{
		Alias:    "tiny:latest",
		Repo:     "TheBloke/TinyLlama-1.1B-GGUF",
		Filename: "tinyllama.Q4_K_M.gguf",
		Snapshot: "main",
		Features: []objs.Feature{objs.FeatureChat},
	}
	require.NoError(t, a.SaveAlias(alias))

	got, ok := a.FindAlias("tiny:latest")
	require.True(t, ok)
	assert.Equal(t, alias.Repo, got.Repo)

	// A fresh Adapter over the same directory must see it too.
	a2, err := New(bodhiHome, hfHome)
	require.NoError(t, err)
	got2, ok := a2.FindAlias("tiny:latest")
	require.True(t, ok)
	assert.Equal(t, alias.Filename, got2.Filename)
}

func TestFindLocalFileMissingAndPresent(t *testing.T) {
	hfHome := t.TempDir()
	a, err := New(t.TempDir(), hfHome)
	require.NoError(t, err)

	_, ok := a.FindLocalFile("owner/repo", "model.gguf", "main")
	assert.False(t, ok)

	snapshotDir := filepath.Join(hfHome, "hub", "models--owner--repo", "snapshots", "main")
	require.NoError(t, os.MkdirAll(snapshotDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(snapshotDir, "model.gguf"), []byte("gguf"), 0o644))

	file, ok := a.FindLocalFile("owner/repo", "model.gguf", "main")
	require.True(t, ok)
	assert.Equal(t, int64(4), file.Size)
}
