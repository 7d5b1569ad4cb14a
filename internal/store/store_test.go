package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationAndMessageRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bodhi.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	conv, err := s.CreateConversation(ctx, "test chat")
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)

	_, err = s.AppendMessage(ctx, conv.ID, "user", "", "hello")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, conv.ID, "assistant", "", "hi there")
	require.NoError(t, err)

	messages, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, "hi there", messages[1].Content)
}

func TestListGetDeleteConversations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bodhi.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	a, err := s.CreateConversation(ctx, "first")
	require.NoError(t, err)
	b, err := s.CreateConversation(ctx, "second")
	require.NoError(t, err)

	list, err := s.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	got, ok, err := s.GetConversation(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", got.Title)

	_, ok, err = s.GetConversation(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.DeleteConversation(ctx, a.ID))
	_, ok, err = s.GetConversation(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok, "deleting a conversation must also drop it from future lookups")

	require.NoError(t, s.DeleteAllConversations(ctx))
	list, err = s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, ok, err = s.GetConversation(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMigrationsApplyOnce(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bodhi.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	_, err = s2.CreateConversation(context.Background(), "second open")
	require.NoError(t, err)
}
