package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuongle/docquery-be/repository"
	"github.com/vuongle/docquery-be/types"
)

func TestAppendCreatesFolderOnFirstUse(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryConversationRepo()
	svc := NewMemoryService(repo)

	require.NoError(t, svc.Append(ctx, "", "doc-1", "what is collected?", "an answer", types.TaskExtraction))

	// Conversation id defaults to the document id.
	folder, err := repo.GetFolder(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, folder.MessageCount)
	assert.Equal(t, "doc-1", folder.DocumentID)
	assert.Equal(t, "what is collected?", folder.Title)
}

func TestAppendRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryConversationRepo()
	svc := NewMemoryService(repo)

	require.NoError(t, svc.Append(ctx, "conv", "doc-1", "q1", "a1", types.TaskExplanation))

	turns, err := svc.Recent(ctx, "doc-1", 1)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "q1", turns[0].Question)
	assert.Equal(t, "a1", turns[0].Answer)
	assert.Equal(t, types.TaskExplanation, turns[0].TaskType)
	assert.NotEmpty(t, turns[0].ID)
}

func TestAppendMessageCountAfterN(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryConversationRepo()
	svc := NewMemoryService(repo)

	const n = 7
	for i := 0; i < n; i++ {
		require.NoError(t, svc.Append(ctx, "conv", "doc-1", fmt.Sprintf("q%d", i), "a", types.TaskExtraction))
	}
	folder, err := repo.GetFolder(ctx, "conv")
	require.NoError(t, err)
	assert.Equal(t, n, folder.MessageCount)
}

func TestAppendConcurrentSameConversation(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryConversationRepo()
	svc := NewMemoryService(repo)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, svc.Append(ctx, "conv", "doc-1", fmt.Sprintf("q%d", i), "a", types.TaskExtraction))
		}(i)
	}
	wg.Wait()

	folder, err := repo.GetFolder(ctx, "conv")
	require.NoError(t, err)
	assert.Equal(t, n, folder.MessageCount)
}

func TestContextDigestFormat(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryConversationRepo()
	svc := NewMemoryService(repo)

	longAnswer := strings.Repeat("a", 500)
	require.NoError(t, svc.Append(ctx, "conv", "doc-1", "q1", "short answer", types.TaskExtraction))
	require.NoError(t, svc.Append(ctx, "conv", "doc-1", "q2", longAnswer, types.TaskExtraction))
	require.NoError(t, svc.Append(ctx, "conv", "doc-1", "q3", "third answer", types.TaskExtraction))

	digest := svc.ContextDigest(ctx, "doc-1")
	assert.True(t, strings.HasPrefix(digest, "Previous conversation context:"))
	assert.Contains(t, digest, "---")

	// Only the last two turns make it in.
	assert.NotContains(t, digest, "q1")
	assert.Contains(t, digest, "Q: q2")
	assert.Contains(t, digest, "Q: q3")

	// Long answers are truncated to a bounded preview.
	assert.Contains(t, digest, strings.Repeat("a", answerPreviewLength)+"...")
	assert.NotContains(t, digest, strings.Repeat("a", answerPreviewLength+1))
}

func TestContextDigestEmpty(t *testing.T) {
	svc := NewMemoryService(repository.NewMemoryConversationRepo())
	assert.Empty(t, svc.ContextDigest(context.Background(), "never-seen"))
}
