package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/connectly/support-api/internal/core/domain"
)

// MessageRepository keeps messages in a table keyed by message id. Reads
// are scans reduced in memory.
type MessageRepository struct {
	api   API
	table string
}

func NewMessageRepository(api API, table string) *MessageRepository {
	return &MessageRepository{api: api, table: table}
}

type messageItem struct {
	ID           string `dynamodbav:"id"`
	ChatID       string `dynamodbav:"chatId"`
	CustomerName string `dynamodbav:"customerName"`
	Message      string `dynamodbav:"message"`
	Timestamp    string `dynamodbav:"timestamp"`
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(messageItem(*msg))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if _, err := r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByChat(ctx context.Context, chatID string) ([]domain.Message, error) {
	msgs, err := r.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("chatId = :chatId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":chatId": &types.AttributeValueMemberS{Value: chatID},
		},
	})
	if err != nil {
		return nil, err
	}
	domain.SortMessages(msgs)
	return msgs, nil
}

func (r *MessageRepository) ChatSummaries(ctx context.Context) ([]domain.ChatSummary, error) {
	msgs, err := r.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.table)})
	if err != nil {
		return nil, err
	}
	return domain.SummarizeChats(msgs), nil
}

func (r *MessageRepository) scan(ctx context.Context, in *dynamodb.ScanInput) ([]domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items, err := scanAll(ctx, r.api, in)
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}

	var raw []messageItem
	if err := attributevalue.UnmarshalListOfMaps(items, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}

	out := make([]domain.Message, 0, len(raw))
	for _, it := range raw {
		out = append(out, domain.Message(it))
	}
	return out, nil
}
