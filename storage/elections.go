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

type ElectionStorage interface {
	Get(ctx context.Context, id string) (*Election, error)
	GetAll(ctx context.Context) ([]*Election, error)
	GetByUser(ctx context.Context, userID string) ([]*Election, error)
	GetByTitle(ctx context.Context, title string) (*Election, error)
	Create(ctx context.Context, election *Election) error
	Update(ctx context.Context, election *Election) error
	Delete(ctx context.Context, id string) error
	// AddVoters appends voter ids to the election's voter set. ADD on a string
	// set is idempotent, so concurrent imports cannot produce duplicate ids.
	AddVoters(ctx context.Context, electionID string, voterIDs []string) error
	RemoveVoter(ctx context.Context, electionID, voterID string) error
	AddBallot(ctx context.Context, electionID, ballotID string) error
	RemoveBallot(ctx context.Context, electionID, ballotID string) error
}

type DynamoElectionStorage struct {
	Client    *dynamodb.Client
	TableName string
	Timeout   time.Duration
}

func (s *DynamoElectionStorage) Get(ctx context.Context, id string) (*Election, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("ELECTION: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("ELECTION: GetItem for id %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var election *Election
	if err := attributevalue.UnmarshalMap(out.Item, &election); err != nil {
		logging.Log.Errorf("ELECTION: failed to unmarshal election: %v", err)
		return nil, err
	}
	return election, nil
}

func (s *DynamoElectionStorage) GetAll(ctx context.Context) ([]*Election, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("ELECTION: scan failed: %v", err)
		return nil, err
	}

	var elections []*Election
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &elections); err != nil {
		logging.Log.Errorf("ELECTION: failed to unmarshal election list: %v", err)
		return nil, err
	}
	return elections, nil
}

func (s *DynamoElectionStorage) GetByUser(ctx context.Context, userID string) ([]*Election, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("UserID = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		logging.Log.Errorf("ELECTION: scan by user %s failed: %v", userID, err)
		return nil, err
	}

	var elections []*Election
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &elections); err != nil {
		logging.Log.Errorf("ELECTION: failed to unmarshal election list: %v", err)
		return nil, err
	}
	return elections, nil
}

func (s *DynamoElectionStorage) GetByTitle(ctx context.Context, title string) (*Election, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        &s.TableName,
		FilterExpression: aws.String("Title = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: title},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		logging.Log.Errorf("ELECTION: scan by title failed: %v", err)
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}

	var election *Election
	if err := attributevalue.UnmarshalMap(out.Items[0], &election); err != nil {
		logging.Log.Errorf("ELECTION: failed to unmarshal election: %v", err)
		return nil, err
	}
	return election, nil
}

func (s *DynamoElectionStorage) Create(ctx context.Context, election *Election) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	if election.CreatedAt.IsZero() {
		election.CreatedAt = time.Now().UTC()
	}

	item, err := attributevalue.MarshalMap(election)
	if err != nil {
		logging.Log.Errorf("ELECTION: failed to marshal election: %v", err)
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
		logging.Log.Errorf("ELECTION: failed to create election: %v", err)
		return err
	}
	return nil
}

func (s *DynamoElectionStorage) Update(ctx context.Context, election *Election) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(election)
	if err != nil {
		logging.Log.Errorf("ELECTION: failed to marshal election: %v", err)
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
		logging.Log.Errorf("ELECTION: failed to update election %s: %v", election.ID, err)
		return err
	}
	return nil
}

func (s *DynamoElectionStorage) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("ELECTION: failed to marshal key: %v", err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("ELECTION: failed to delete election %s: %v", id, err)
	}
	return err
}

func (s *DynamoElectionStorage) AddVoters(ctx context.Context, electionID string, voterIDs []string) error {
	if len(voterIDs) == 0 {
		return nil
	}
	return s.mutateSet(ctx, electionID, "ADD Voters :ids", voterIDs)
}

func (s *DynamoElectionStorage) RemoveVoter(ctx context.Context, electionID, voterID string) error {
	return s.mutateSet(ctx, electionID, "DELETE Voters :ids", []string{voterID})
}

func (s *DynamoElectionStorage) AddBallot(ctx context.Context, electionID, ballotID string) error {
	return s.mutateSet(ctx, electionID, "ADD Ballots :ids", []string{ballotID})
}

func (s *DynamoElectionStorage) RemoveBallot(ctx context.Context, electionID, ballotID string) error {
	return s.mutateSet(ctx, electionID, "DELETE Ballots :ids", []string{ballotID})
}

func (s *DynamoElectionStorage) mutateSet(ctx context.Context, electionID, expression string, ids []string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: electionID},
		},
		UpdateExpression:          aws.String(expression),
		ConditionExpression:       aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":ids": &types.AttributeValueMemberSS{Value: ids}},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		logging.Log.Errorf("ELECTION: set mutation on %s failed: %v", electionID, err)
	}
	return err
}
