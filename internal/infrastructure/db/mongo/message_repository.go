package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/connectly/support-api/internal/core/domain"
)

const collectionMessages = "messages"

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(collectionMessages)}
}

type mongoMessage struct {
	ID           string `bson:"_id"`
	ChatID       string `bson:"chat_id"`
	CustomerName string `bson:"customer_name"`
	Message      string `bson:"message"`
	Timestamp    string `bson:"timestamp"`
}

func (m mongoMessage) toDomain() domain.Message {
	return domain.Message{
		ID:           m.ID,
		ChatID:       m.ChatID,
		CustomerName: m.CustomerName,
		Message:      m.Message,
		Timestamp:    m.Timestamp,
	}
}

// Create inserts a new message document.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, mongoMessage{
		ID:           msg.ID,
		ChatID:       msg.ChatID,
		CustomerName: msg.CustomerName,
		Message:      msg.Message,
		Timestamp:    msg.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByChat returns the messages of chatID in ascending timestamp order.
func (r *MessageRepository) ListByChat(ctx context.Context, chatID string) ([]domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoMessage
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	out := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

type chatSummaryDoc struct {
	ChatID       string `bson:"_id"`
	CustomerName string `bson:"customer_name"`
	Message      string `bson:"message"`
	Timestamp    string `bson:"timestamp"`
}

// ChatSummaries groups messages by chat keeping the latest one, newest chat
// first. The first $sort is covered by the {chat_id, timestamp} index.
func (r *MessageRepository) ChatSummaries(ctx context.Context) ([]domain.ChatSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "chat_id", Value: 1}, {Key: "timestamp", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$chat_id"},
			{Key: "customer_name", Value: bson.D{{Key: "$first", Value: "$customer_name"}}},
			{Key: "message", Value: bson.D{{Key: "$first", Value: "$message"}}},
			{Key: "timestamp", Value: bson.D{{Key: "$first", Value: "$timestamp"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate chats: %w", err)
	}
	defer cur.Close(ctx)

	var docs []chatSummaryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}

	out := make([]domain.ChatSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.ChatSummary{
			ChatID:       d.ChatID,
			CustomerName: d.CustomerName,
			Message:      d.Message,
			Timestamp:    d.Timestamp,
		})
	}
	return out, nil
}

// EnsureIndexes creates the indexes backing ListByChat and ChatSummaries.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	return err
}
