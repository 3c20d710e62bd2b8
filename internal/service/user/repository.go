package user

import (
	"context"
	"errors"
	"strings"

	"creator-chat-backend/internal/database"
	"creator-chat-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("user repository: not found")

type Repository interface {
	CreateUser(ctx context.Context, user model.UserItem) error
	SaveUser(ctx context.Context, user model.UserItem) error
	GetUser(ctx context.Context, userID string) (model.UserItem, error)
	FindByGoogleID(ctx context.Context, googleID string) (model.UserItem, error)
	FindByEmail(ctx context.Context, email string) (model.UserItem, error)
	UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	return r.db.Client.PutItem(ctx, model.UsersTable, user)
}

func (r *DynamoRepository) SaveUser(ctx context.Context, user model.UserItem) error {
	return r.db.Client.PutItem(ctx, model.UsersTable, user)
}

func (r *DynamoRepository) GetUser(ctx context.Context, userID string) (model.UserItem, error) {
	var user model.UserItem
	err := r.db.Client.GetItem(
		ctx,
		model.UsersTable,
		map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
		&user,
	)
	if err != nil {
		if isNotFoundError(err) {
			return model.UserItem{}, ErrNotFound
		}
		return model.UserItem{}, err
	}

	return user, nil
}

func (r *DynamoRepository) FindByGoogleID(ctx context.Context, googleID string) (model.UserItem, error) {
	return r.queryOne(ctx, "byGoogleId", "googleId = :googleId", map[string]types.AttributeValue{
		":googleId": &types.AttributeValueMemberS{Value: googleID},
	})
}

func (r *DynamoRepository) FindByEmail(ctx context.Context, email string) (model.UserItem, error) {
	return r.queryOne(ctx, "byEmail", "email = :email", map[string]types.AttributeValue{
		":email": &types.AttributeValueMemberS{Value: email},
	})
}

func (r *DynamoRepository) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	items, err := r.db.Client.QueryItems(
		ctx,
		model.UsersTable,
		aws.String("byUsername"),
		"username = :username",
		map[string]types.AttributeValue{
			":username": &types.AttributeValueMemberS{Value: username},
		},
		nil,
		nil,
		nil,
	)
	if err != nil {
		return false, err
	}

	for _, item := range items {
		var user model.UserItem
		if err := attributevalue.UnmarshalMap(item, &user); err != nil {
			return false, err
		}
		if user.UserID != excludeUserID {
			return true, nil
		}
	}

	return false, nil
}

func (r *DynamoRepository) queryOne(
	ctx context.Context,
	indexName string,
	keyCondExpr string,
	exprAttrValues map[string]types.AttributeValue,
) (model.UserItem, error) {
	items, err := r.db.Client.QueryItems(
		ctx,
		model.UsersTable,
		aws.String(indexName),
		keyCondExpr,
		exprAttrValues,
		nil,
		nil,
		nil,
	)
	if err != nil {
		return model.UserItem{}, err
	}
	if len(items) == 0 {
		return model.UserItem{}, ErrNotFound
	}

	var user model.UserItem
	if err := attributevalue.UnmarshalMap(items[0], &user); err != nil {
		return model.UserItem{}, err
	}

	return user, nil
}

func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "item not found")
}
