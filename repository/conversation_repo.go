package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vuongle/docquery-be/types"
)

// ConversationRepo persists conversation folders and their turns. Turns are
// append-only; AppendTurn must bump the folder's message_count in the same
// logical operation so the count always equals the number of stored turns.
type ConversationRepo interface {
	CreateFolder(ctx context.Context, folder *types.ConversationFolder) error
	GetFolder(ctx context.Context, id string) (*types.ConversationFolder, error)
	ListFolders(ctx context.Context) ([]types.ConversationFolder, error)
	RenameFolder(ctx context.Context, id, title string) error
	DeleteFolder(ctx context.Context, id string) error

	AppendTurn(ctx context.Context, turn *types.ConversationTurn) error
	Turns(ctx context.Context, conversationID string) ([]types.ConversationTurn, error)
	RecentByDocument(ctx context.Context, documentID string, limit int) ([]types.ConversationTurn, error)
}

type conversationRepo struct {
	folders *mongo.Collection
	turns   *mongo.Collection
}

// NewConversationRepo builds a Mongo-backed repo over two collections:
// conversation_folders and conversation_turns.
func NewConversationRepo(db *mongo.Database) ConversationRepo {
	return &conversationRepo{
		folders: db.Collection("conversation_folders"),
		turns:   db.Collection("conversation_turns"),
	}
}

func (r *conversationRepo) CreateFolder(ctx context.Context, folder *types.ConversationFolder) error {
	now := time.Now().Unix()
	if folder.CreatedAt == 0 {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now
	folder.MessageCount = 0
	_, err := r.folders.ReplaceOne(ctx, bson.M{"_id": folder.ID}, folder, options.Replace().SetUpsert(true))
	return err
}

func (r *conversationRepo) GetFolder(ctx context.Context, id string) (*types.ConversationFolder, error) {
	var folder types.ConversationFolder
	err := r.folders.FindOne(ctx, bson.M{"_id": id}).Decode(&folder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("conversation %s: %w", id, types.ErrConversationNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *conversationRepo) ListFolders(ctx context.Context) ([]types.ConversationFolder, error) {
	cursor, err := r.folders.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var folders []types.ConversationFolder
	for cursor.Next(ctx) {
		var folder types.ConversationFolder
		if err := cursor.Decode(&folder); err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	return folders, cursor.Err()
}

func (r *conversationRepo) RenameFolder(ctx context.Context, id, title string) error {
	res, err := r.folders.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"title": title, "updated_at": time.Now().Unix()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("conversation %s: %w", id, types.ErrConversationNotFound)
	}
	return nil
}

func (r *conversationRepo) DeleteFolder(ctx context.Context, id string) error {
	if _, err := r.turns.DeleteMany(ctx, bson.M{"conversation_id": id}); err != nil {
		return err
	}
	_, err := r.folders.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *conversationRepo) AppendTurn(ctx context.Context, turn *types.ConversationTurn) error {
	if turn.Timestamp == 0 {
		turn.Timestamp = time.Now().UnixNano()
	}
	if _, err := r.turns.InsertOne(ctx, turn); err != nil {
		return err
	}
	res, err := r.folders.UpdateOne(ctx, bson.M{"_id": turn.ConversationID}, bson.M{
		"$inc": bson.M{"message_count": 1},
		"$set": bson.M{"updated_at": time.Now().Unix()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Keep the count invariant: a turn must never exist without its folder.
		_, _ = r.turns.DeleteOne(ctx, bson.M{"_id": turn.ID})
		return fmt.Errorf("conversation %s: %w", turn.ConversationID, types.ErrConversationNotFound)
	}
	return nil
}

func (r *conversationRepo) Turns(ctx context.Context, conversationID string) ([]types.ConversationTurn, error) {
	cursor, err := r.turns.Find(ctx, bson.M{"conversation_id": conversationID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeTurns(ctx, cursor)
}

func (r *conversationRepo) RecentByDocument(ctx context.Context, documentID string, limit int) ([]types.ConversationTurn, error) {
	cursor, err := r.turns.Find(ctx, bson.M{"document_id": documentID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	turns, err := decodeTurns(ctx, cursor)
	if err != nil {
		return nil, err
	}
	// Newest-first from the query, chronological for the caller.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func decodeTurns(ctx context.Context, cursor *mongo.Cursor) ([]types.ConversationTurn, error) {
	var turns []types.ConversationTurn
	for cursor.Next(ctx) {
		var turn types.ConversationTurn
		if err := cursor.Decode(&turn); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, cursor.Err()
}
