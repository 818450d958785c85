package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mr-atuzie/angt-votify-BE/logging"
)

const userEmailIndex = "EmailIndex"

type UserStorage interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

type DynamoUserStorage struct {
	Client    *dynamodb.Client
	TableName string
	Timeout   time.Duration
}

func (s *DynamoUserStorage) Get(ctx context.Context, id string) (*User, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("USER: GetItem for id %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var user *User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal user: %v", err)
		return nil, err
	}
	return user, nil
}

func (s *DynamoUserStorage) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		IndexName:              aws.String(userEmailIndex),
		KeyConditionExpression: aws.String("Email = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		logging.Log.Errorf("USER: query by email failed: %v", err)
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}

	var user *User
	if err := attributevalue.UnmarshalMap(out.Items[0], &user); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal user: %v", err)
		return nil, err
	}
	return user, nil
}

func (s *DynamoUserStorage) Create(ctx context.Context, user *User) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal user: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("USER: failed to create user: %v", err)
		return err
	}
	return nil
}

func (s *DynamoUserStorage) Update(ctx context.Context, user *User) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal user: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		logging.Log.Errorf("USER: failed to update user %s: %v", user.ID, err)
		return err
	}
	return nil
}

func (s *DynamoUserStorage) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal key: %v", err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("USER: failed to delete user %s: %v", id, err)
	}
	return err
}
