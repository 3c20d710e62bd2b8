package chat

import (
	"context"
	"time"

	"creator-chat-backend/internal/database"
	"creator-chat-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// HistoryStore persists sent messages and replays a bounded window at join
// time. Append failures are non-fatal to the caller: live delivery never
// depends on durable storage succeeding.
type HistoryStore interface {
	Append(ctx context.Context, msg model.MessageItem) (model.MessageItem, error)
	Recent(ctx context.Context, roomID string, limit int) ([]model.MessageItem, error)
}

type DynamoHistory struct {
	db  *database.Database
	now func() time.Time
}

func NewDynamoHistory(db *database.Database) *DynamoHistory {
	return &DynamoHistory{db: db, now: time.Now}
}

// sortKeyTimeLayout pads fractional seconds to a fixed nine digits.
// RFC3339Nano drops trailing zeros, which breaks the lexicographic order
// DynamoDB sorts string keys by; a fixed-width layout keeps byte order and
// chronological order identical.
const sortKeyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Append stamps the server-side id and timestamp before writing.
func (h *DynamoHistory) Append(ctx context.Context, msg model.MessageItem) (model.MessageItem, error) {
	msg.MessageID = uuid.NewString()
	msg.CreatedAt = h.now().UTC().Format(sortKeyTimeLayout)

	if err := h.db.Client.PutItem(ctx, model.MessagesTable, msg); err != nil {
		return model.MessageItem{}, err
	}
	return msg, nil
}

// Recent returns up to limit messages for the room, oldest first. The query
// walks the partition newest-first so the window covers the most recent
// messages, then the page is reversed.
func (h *DynamoHistory) Recent(ctx context.Context, roomID string, limit int) ([]model.MessageItem, error) {
	if limit <= 0 {
		limit = model.HistoryLimit
	}

	scanForward := false
	pageSize := int32(limit)
	items, err := h.db.Client.QueryItems(
		ctx,
		model.MessagesTable,
		nil,
		"roomId = :roomId",
		map[string]types.AttributeValue{
			":roomId": &types.AttributeValueMemberS{Value: roomID},
		},
		nil,
		aws.Bool(scanForward),
		&pageSize,
	)
	if err != nil {
		return nil, err
	}

	messages := make([]model.MessageItem, 0, len(items))
	for _, item := range items {
		var msg model.MessageItem
		if err := attributevalue.UnmarshalMap(item, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	// Reverse newest-first into replay order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
