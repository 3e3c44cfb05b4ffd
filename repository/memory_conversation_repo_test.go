package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuongle/docquery-be/types"
)

func newFolder(id, documentID string) *types.ConversationFolder {
	return &types.ConversationFolder{
		ID:         id,
		Title:      "conversation " + id,
		DocumentID: documentID,
	}
}

func newTurn(conversationID, documentID, question string) *types.ConversationTurn {
	return &types.ConversationTurn{
		ID:             conversationID + "-" + question,
		ConversationID: conversationID,
		DocumentID:     documentID,
		Question:       question,
		Answer:         "answer to " + question,
		TaskType:       types.TaskExtraction,
	}
}

func TestMemoryConversationRepoFolderLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryConversationRepo()

	require.NoError(t, repo.CreateFolder(ctx, newFolder("c1", "doc")))

	folder, err := repo.GetFolder(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, folder.MessageCount)
	assert.NotZero(t, folder.CreatedAt)

	require.NoError(t, repo.RenameFolder(ctx, "c1", "renamed"))
	folder, err = repo.GetFolder(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", folder.Title)

	require.NoError(t, repo.DeleteFolder(ctx, "c1"))
	_, err = repo.GetFolder(ctx, "c1")
	require.ErrorIs(t, err, types.ErrConversationNotFound)
}

func TestMemoryConversationRepoRenameMissing(t *testing.T) {
	repo := NewMemoryConversationRepo()
	err := repo.RenameFolder(context.Background(), "nope", "title")
	require.ErrorIs(t, err, types.ErrConversationNotFound)
}

func TestMemoryConversationRepoMessageCountInvariant(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryConversationRepo()
	require.NoError(t, repo.CreateFolder(ctx, newFolder("c1", "doc")))

	const n = 5
	for i := 0; i < n; i++ {
		require.NoError(t, repo.AppendTurn(ctx, newTurn("c1", "doc", fmt.Sprintf("q%d", i))))
	}

	folder, err := repo.GetFolder(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, n, folder.MessageCount)

	turns, err := repo.Turns(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, turns, n)
	for i, turn := range turns {
		assert.Equal(t, fmt.Sprintf("q%d", i), turn.Question)
	}
}

func TestMemoryConversationRepoAppendToMissingFolder(t *testing.T) {
	repo := NewMemoryConversationRepo()
	err := repo.AppendTurn(context.Background(), newTurn("ghost", "doc", "q"))
	require.ErrorIs(t, err, types.ErrConversationNotFound)
}

func TestMemoryConversationRepoRecentByDocument(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryConversationRepo()
	require.NoError(t, repo.CreateFolder(ctx, newFolder("c1", "doc-a")))
	require.NoError(t, repo.CreateFolder(ctx, newFolder("c2", "doc-a")))
	require.NoError(t, repo.CreateFolder(ctx, newFolder("other", "doc-b")))

	require.NoError(t, repo.AppendTurn(ctx, newTurn("c1", "doc-a", "q1")))
	require.NoError(t, repo.AppendTurn(ctx, newTurn("c2", "doc-a", "q2")))
	require.NoError(t, repo.AppendTurn(ctx, newTurn("c1", "doc-a", "q3")))
	require.NoError(t, repo.AppendTurn(ctx, newTurn("other", "doc-b", "unrelated")))

	// Most recent two turns for doc-a, oldest first.
	turns, err := repo.RecentByDocument(ctx, "doc-a", 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "q2", turns[0].Question)
	assert.Equal(t, "q3", turns[1].Question)
}

func TestMemoryConversationRepoDeleteRemovesTurns(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryConversationRepo()
	require.NoError(t, repo.CreateFolder(ctx, newFolder("c1", "doc")))
	require.NoError(t, repo.AppendTurn(ctx, newTurn("c1", "doc", "q1")))

	require.NoError(t, repo.DeleteFolder(ctx, "c1"))

	turns, err := repo.Turns(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, turns)

	recent, err := repo.RecentByDocument(ctx, "doc", 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestMemoryConversationRepoListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryConversationRepo()
	require.NoError(t, repo.CreateFolder(ctx, newFolder("c1", "doc")))
	require.NoError(t, repo.CreateFolder(ctx, newFolder("c2", "doc")))

	// An append touches updated_at, moving c1 to the front unless c2 shares
	// the same second; equal timestamps keep either order.
	require.NoError(t, repo.AppendTurn(ctx, newTurn("c1", "doc", "q")))

	folders, err := repo.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	ids := []string{folders[0].ID, folders[1].ID}
	assert.Contains(t, ids, "c1")
	assert.Contains(t, ids, "c2")
}
