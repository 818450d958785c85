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

type VoteStorage interface {
	// Create inserts the ledger record for a (ballot, voter) pair. The insert
	// is conditional on the pair not existing, which makes it the single
	// race-free arbiter between concurrent casts: the loser gets
	// ErrVoteAlreadyCast no matter how the reads interleaved.
	Create(ctx context.Context, vote *Vote) error
	GetByBallot(ctx context.Context, ballotID string) ([]*Vote, error)
	Delete(ctx context.Context, ballotID, voterID string) error
}

type DynamoVoteStorage struct {
	Client    *dynamodb.Client
	TableName string
	Timeout   time.Duration
}

func (s *DynamoVoteStorage) Create(ctx context.Context, vote *Vote) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	if vote.Timestamp.IsZero() {
		vote.Timestamp = time.Now().UTC()
	}

	item, err := attributevalue.MarshalMap(vote)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to marshal vote: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrVoteAlreadyCast
		}
		logging.Log.Errorf("VOTE: failed to create vote: %v", err)
		return err
	}
	return nil
}

func (s *DynamoVoteStorage) GetByBallot(ctx context.Context, ballotID string) ([]*Vote, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :b"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":b": &types.AttributeValueMemberS{Value: ballotID},
		},
	})
	if err != nil {
		logging.Log.Errorf("VOTE: failed to query votes for ballot %s: %v", ballotID, err)
		return nil, err
	}

	var votes []*Vote
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &votes); err != nil {
		logging.Log.Errorf("VOTE: failed to unmarshal votes for ballot %s: %v", ballotID, err)
		return nil, err
	}
	return votes, nil
}

func (s *DynamoVoteStorage) Delete(ctx context.Context, ballotID, voterID string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ballotID},
			"SK": &types.AttributeValueMemberS{Value: voterID},
		},
	})
	if err != nil {
		logging.Log.Errorf("VOTE: failed to delete vote %s/%s: %v", ballotID, voterID, err)
	}
	return err
}
