package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vuongle/docquery-be/types"
)

// MemoryConversationRepo is a process-local ConversationRepo. The single
// mutex makes AppendTurn's insert and count increment atomic with respect
// to every reader.
type MemoryConversationRepo struct {
	mu      sync.RWMutex
	folders map[string]types.ConversationFolder
	turns   map[string][]types.ConversationTurn // conversation id -> ordered turns
}

func NewMemoryConversationRepo() *MemoryConversationRepo {
	return &MemoryConversationRepo{
		folders: make(map[string]types.ConversationFolder),
		turns:   make(map[string][]types.ConversationTurn),
	}
}

func (r *MemoryConversationRepo) CreateFolder(ctx context.Context, folder *types.ConversationFolder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().Unix()
	if folder.CreatedAt == 0 {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now
	folder.MessageCount = 0
	r.folders[folder.ID] = *folder
	r.turns[folder.ID] = nil
	return nil
}

func (r *MemoryConversationRepo) GetFolder(ctx context.Context, id string) (*types.ConversationFolder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	folder, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, types.ErrConversationNotFound)
	}
	return &folder, nil
}

func (r *MemoryConversationRepo) ListFolders(ctx context.Context) ([]types.ConversationFolder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	folders := make([]types.ConversationFolder, 0, len(r.folders))
	for _, folder := range r.folders {
		folders = append(folders, folder)
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].UpdatedAt > folders[j].UpdatedAt })
	return folders, nil
}

func (r *MemoryConversationRepo) RenameFolder(ctx context.Context, id, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	folder, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("conversation %s: %w", id, types.ErrConversationNotFound)
	}
	folder.Title = title
	folder.UpdatedAt = time.Now().Unix()
	r.folders[id] = folder
	return nil
}

func (r *MemoryConversationRepo) DeleteFolder(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.folders, id)
	delete(r.turns, id)
	return nil
}

func (r *MemoryConversationRepo) AppendTurn(ctx context.Context, turn *types.ConversationTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	folder, ok := r.folders[turn.ConversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", turn.ConversationID, types.ErrConversationNotFound)
	}
	if turn.Timestamp == 0 {
		turn.Timestamp = time.Now().UnixNano()
	}
	// Keep timestamps strictly increasing so append order survives sorting
	// even when two turns land within one clock tick.
	if turns := r.turns[turn.ConversationID]; len(turns) > 0 {
		if last := turns[len(turns)-1].Timestamp; turn.Timestamp <= last {
			turn.Timestamp = last + 1
		}
	}
	r.turns[turn.ConversationID] = append(r.turns[turn.ConversationID], *turn)
	folder.MessageCount++
	folder.UpdatedAt = time.Now().Unix()
	r.folders[turn.ConversationID] = folder
	return nil
}

func (r *MemoryConversationRepo) Turns(ctx context.Context, conversationID string) ([]types.ConversationTurn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.turns[conversationID]
	out := make([]types.ConversationTurn, len(src))
	copy(out, src)
	return out, nil
}

func (r *MemoryConversationRepo) RecentByDocument(ctx context.Context, documentID string, limit int) ([]types.ConversationTurn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []types.ConversationTurn
	for _, turns := range r.turns {
		for _, turn := range turns {
			if turn.DocumentID == documentID {
				all = append(all, turn)
			}
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp < all[j].Timestamp })
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}
