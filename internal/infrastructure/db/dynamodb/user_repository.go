package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/connectly/support-api/internal/core/domain"
)

const (
	attrEmail = "email"
	attrID    = "id"
	attrUser  = "userID"
)

// UserRepository keeps users in a table whose partition key is the
// lower-cased email, so a conditional put enforces uniqueness.
type UserRepository struct {
	api   API
	table string
}

func NewUserRepository(api API, table string) *UserRepository {
	return &UserRepository{api: api, table: table}
}

type userItem struct {
	UserID    string `dynamodbav:"userID"`
	Email     string `dynamodbav:"email"`
	Password  string `dynamodbav:"password"`
	Role      string `dynamodbav:"role"`
	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

func (it userItem) toDomain() *domain.User {
	created, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updated, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return &domain.User{
		ID:           it.UserID,
		Email:        it.Email,
		PasswordHash: it.Password,
		Role:         it.Role,
		CreatedAt:    created.UTC(),
		UpdatedAt:    updated.UTC(),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(userItem{
		UserID:    user.ID,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Role:      user.Role,
		CreatedAt: domain.FormatTimestamp(user.CreatedAt),
		UpdatedAt: domain.FormatTimestamp(user.UpdatedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#email)"),
		ExpressionAttributeNames: map[string]string{
			"#email": attrEmail,
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("put user: %w", err)
	}

	created := *user
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			attrEmail: &types.AttributeValueMemberS{Value: email},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrUserNotFound
	}

	var it userItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return it.toDomain(), nil
}

// FindByID scans for the user id. The table has no index on it; profile
// lookups are rare enough for a filtered scan.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items, err := scanAll(ctx, r.api, &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("#uid = :uid"),
		ExpressionAttributeNames: map[string]string{
			"#uid": attrUser,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrUserNotFound
	}

	var it userItem
	if err := attributevalue.UnmarshalMap(items[0], &it); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return it.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items, err := scanAll(ctx, r.api, &dynamodb.ScanInput{TableName: aws.String(r.table)})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	var raw []userItem
	if err := attributevalue.UnmarshalListOfMaps(items, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}

	users := make([]*domain.User, 0, len(raw))
	for _, it := range raw {
		users = append(users, it.toDomain())
	}
	return users, nil
}
