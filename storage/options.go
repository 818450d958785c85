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

type VotingOptionStorage interface {
	Get(ctx context.Context, id string) (*VotingOption, error)
	GetByBallot(ctx context.Context, ballotID string) ([]*VotingOption, error)
	Create(ctx context.Context, option *VotingOption) error
	Update(ctx context.Context, option *VotingOption) error
	Delete(ctx context.Context, id string) error
	// AddVoter appends a voter to the option's tally set and returns the
	// updated option.
	AddVoter(ctx context.Context, optionID, voterID string) (*VotingOption, error)
}

type DynamoVotingOptionStorage struct {
	Client    *dynamodb.Client
	TableName string
	Timeout   time.Duration
}

func (s *DynamoVotingOptionStorage) Get(ctx context.Context, id string) (*VotingOption, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("OPTION: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("OPTION: GetItem for id %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var option *VotingOption
	if err := attributevalue.UnmarshalMap(out.Item, &option); err != nil {
		logging.Log.Errorf("OPTION: failed to unmarshal option: %v", err)
		return nil, err
	}
	return option, nil
}

func (s *DynamoVotingOptionStorage) GetByBallot(ctx context.Context, ballotID string) ([]*VotingOption, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("BallotID = :b"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":b": &types.AttributeValueMemberS{Value: ballotID},
		},
	})
	if err != nil {
		logging.Log.Errorf("OPTION: scan by ballot %s failed: %v", ballotID, err)
		return nil, err
	}

	var options []*VotingOption
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &options); err != nil {
		logging.Log.Errorf("OPTION: failed to unmarshal option list: %v", err)
		return nil, err
	}
	return options, nil
}

func (s *DynamoVotingOptionStorage) Create(ctx context.Context, option *VotingOption) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	if option.CreatedAt.IsZero() {
		option.CreatedAt = time.Now().UTC()
	}

	item, err := attributevalue.MarshalMap(option)
	if err != nil {
		logging.Log.Errorf("OPTION: failed to marshal option: %v", err)
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
		logging.Log.Errorf("OPTION: failed to create option: %v", err)
		return err
	}
	return nil
}

func (s *DynamoVotingOptionStorage) Update(ctx context.Context, option *VotingOption) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(option)
	if err != nil {
		logging.Log.Errorf("OPTION: failed to marshal option: %v", err)
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
		logging.Log.Errorf("OPTION: failed to update option %s: %v", option.ID, err)
		return err
	}
	return nil
}

func (s *DynamoVotingOptionStorage) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("OPTION: failed to marshal key: %v", err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("OPTION: failed to delete option %s: %v", id, err)
	}
	return err
}

func (s *DynamoVotingOptionStorage) AddVoter(ctx context.Context, optionID, voterID string) (*VotingOption, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: optionID},
		},
		UpdateExpression:          aws.String("ADD Voters :ids"),
		ConditionExpression:       aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":ids": &types.AttributeValueMemberSS{Value: []string{voterID}}},
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrNotFound
		}
		logging.Log.Errorf("OPTION: failed to add voter to option %s: %v", optionID, err)
		return nil, err
	}

	var option *VotingOption
	if err := attributevalue.UnmarshalMap(out.Attributes, &option); err != nil {
		logging.Log.Errorf("OPTION: failed to unmarshal updated option: %v", err)
		return nil, err
	}
	return option, nil
}
