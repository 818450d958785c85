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

type BallotStorage interface {
	Get(ctx context.Context, id string) (*Ballot, error)
	GetByElection(ctx context.Context, electionID string) ([]*Ballot, error)
	Create(ctx context.Context, ballot *Ballot) error
	Delete(ctx context.Context, id string) error
	// AddVoter records that a voter has cast a vote in this ballot.
	AddVoter(ctx context.Context, ballotID, voterID string) error
	AddOption(ctx context.Context, ballotID, optionID string) error
	RemoveOption(ctx context.Context, ballotID, optionID string) error
}

type DynamoBallotStorage struct {
	Client    *dynamodb.Client
	TableName string
	Timeout   time.Duration
}

func (s *DynamoBallotStorage) Get(ctx context.Context, id string) (*Ballot, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("BALLOT: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("BALLOT: GetItem for id %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var ballot *Ballot
	if err := attributevalue.UnmarshalMap(out.Item, &ballot); err != nil {
		logging.Log.Errorf("BALLOT: failed to unmarshal ballot: %v", err)
		return nil, err
	}
	return ballot, nil
}

func (s *DynamoBallotStorage) GetByElection(ctx context.Context, electionID string) ([]*Ballot, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("ElectionID = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: electionID},
		},
	})
	if err != nil {
		logging.Log.Errorf("BALLOT: scan by election %s failed: %v", electionID, err)
		return nil, err
	}

	var ballots []*Ballot
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &ballots); err != nil {
		logging.Log.Errorf("BALLOT: failed to unmarshal ballot list: %v", err)
		return nil, err
	}
	return ballots, nil
}

func (s *DynamoBallotStorage) Create(ctx context.Context, ballot *Ballot) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(ballot)
	if err != nil {
		logging.Log.Errorf("BALLOT: failed to marshal ballot: %v", err)
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
		logging.Log.Errorf("BALLOT: failed to create ballot: %v", err)
		return err
	}
	return nil
}

func (s *DynamoBallotStorage) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("BALLOT: failed to marshal key: %v", err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("BALLOT: failed to delete ballot %s: %v", id, err)
	}
	return err
}

func (s *DynamoBallotStorage) AddVoter(ctx context.Context, ballotID, voterID string) error {
	return s.mutateSet(ctx, ballotID, "ADD Voters :ids", voterID)
}

func (s *DynamoBallotStorage) AddOption(ctx context.Context, ballotID, optionID string) error {
	return s.mutateSet(ctx, ballotID, "ADD VotingOptions :ids", optionID)
}

func (s *DynamoBallotStorage) RemoveOption(ctx context.Context, ballotID, optionID string) error {
	return s.mutateSet(ctx, ballotID, "DELETE VotingOptions :ids", optionID)
}

func (s *DynamoBallotStorage) mutateSet(ctx context.Context, ballotID, expression, id string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ballotID},
		},
		UpdateExpression:          aws.String(expression),
		ConditionExpression:       aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":ids": &types.AttributeValueMemberSS{Value: []string{id}}},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		logging.Log.Errorf("BALLOT: set mutation on %s failed: %v", ballotID, err)
	}
	return err
}
