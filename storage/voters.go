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

const voterElectionIndex = "ElectionIndex"

type VoterStorage interface {
	Get(ctx context.Context, id string) (*Voter, error)
	GetAll(ctx context.Context) ([]*Voter, error)
	GetByElection(ctx context.Context, electionID string) ([]*Voter, error)
	// FindForLogin resolves a voter by its public identifier within one election.
	FindForLogin(ctx context.Context, electionID, voterID string) (*Voter, error)
	// Register inserts the voter together with per-(election, contact) guard
	// items in one transaction; it fails with ErrVoterAlreadyRegistered when
	// the email or phone is already taken for that election.
	Register(ctx context.Context, voter *Voter) error
	Update(ctx context.Context, voter *Voter) error
	MarkVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, voter *Voter) error
}

type DynamoVoterStorage struct {
	Client         *dynamodb.Client
	TableName      string
	GuardTableName string
	Timeout        time.Duration
}

func (s *DynamoVoterStorage) Get(ctx context.Context, id string) (*Voter, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("VOTER: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("VOTER: GetItem for id %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var voter *Voter
	if err := attributevalue.UnmarshalMap(out.Item, &voter); err != nil {
		logging.Log.Errorf("VOTER: failed to unmarshal voter: %v", err)
		return nil, err
	}
	return voter, nil
}

func (s *DynamoVoterStorage) GetAll(ctx context.Context) ([]*Voter, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	if err != nil {
		logging.Log.Errorf("VOTER: scan failed: %v", err)
		return nil, err
	}

	var voters []*Voter
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &voters); err != nil {
		logging.Log.Errorf("VOTER: failed to unmarshal voter list: %v", err)
		return nil, err
	}
	return voters, nil
}

func (s *DynamoVoterStorage) GetByElection(ctx context.Context, electionID string) ([]*Voter, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	var voters []*Voter
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.TableName,
			IndexName:              aws.String(voterElectionIndex),
			KeyConditionExpression: aws.String("ElectionID = :e"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":e": &types.AttributeValueMemberS{Value: electionID},
			},
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			logging.Log.Errorf("VOTER: query by election %s failed: %v", electionID, err)
			return nil, err
		}

		var page []*Voter
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			logging.Log.Errorf("VOTER: failed to unmarshal voters for election %s: %v", electionID, err)
			return nil, err
		}
		voters = append(voters, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}
	return voters, nil
}

func (s *DynamoVoterStorage) FindForLogin(ctx context.Context, electionID, voterID string) (*Voter, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.TableName,
		IndexName:              aws.String(voterElectionIndex),
		KeyConditionExpression: aws.String("ElectionID = :e AND VoterID = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: electionID},
			":v": &types.AttributeValueMemberS{Value: voterID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		logging.Log.Errorf("VOTER: login lookup for %s in election %s failed: %v", voterID, electionID, err)
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}

	var voter *Voter
	if err := attributevalue.UnmarshalMap(out.Items[0], &voter); err != nil {
		logging.Log.Errorf("VOTER: failed to unmarshal login lookup result: %v", err)
		return nil, err
	}
	return voter, nil
}

func (s *DynamoVoterStorage) Register(ctx context.Context, voter *Voter) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	if voter.CreatedAt.IsZero() {
		voter.CreatedAt = time.Now().UTC()
	}

	item, err := attributevalue.MarshalMap(voter)
	if err != nil {
		logging.Log.Errorf("VOTER: failed to marshal voter: %v", err)
		return err
	}

	writes := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           &s.TableName,
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			},
		},
	}
	for _, key := range guardKeys(voter) {
		guardItem, err := attributevalue.MarshalMap(&VoterGuard{
			Key:        key,
			VoterID:    voter.ID,
			ElectionID: voter.ElectionID,
		})
		if err != nil {
			logging.Log.Errorf("VOTER: failed to marshal guard item: %v", err)
			return err
		}
		writes = append(writes, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           &s.GuardTableName,
				Item:                guardItem,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			},
		})
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: writes,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return ErrVoterAlreadyRegistered
				}
			}
		}
		logging.Log.Errorf("VOTER: failed to register voter %s: %v", voter.VoterID, err)
		return err
	}
	return nil
}

func (s *DynamoVoterStorage) Update(ctx context.Context, voter *Voter) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(voter)
	if err != nil {
		logging.Log.Errorf("VOTER: failed to marshal voter: %v", err)
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
		logging.Log.Errorf("VOTER: failed to update voter %s: %v", voter.ID, err)
		return err
	}
	return nil
}

func (s *DynamoVoterStorage) MarkVerified(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String("SET IsVerified = :val"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":val": &types.AttributeValueMemberBOOL{Value: true}},
	})
	if err != nil {
		logging.Log.Errorf("VOTER: failed to mark voter %s verified: %v", id, err)
	}
	return err
}

func (s *DynamoVoterStorage) Delete(ctx context.Context, voter *Voter) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{"PK": voter.ID})
	if err != nil {
		logging.Log.Errorf("VOTER: failed to marshal key: %v", err)
		return err
	}

	if _, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	}); err != nil {
		logging.Log.Errorf("VOTER: failed to delete voter %s: %v", voter.ID, err)
		return err
	}

	// Guard items free up the contact details for re-registration.
	for _, guardKey := range guardKeys(voter) {
		if _, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: &s.GuardTableName,
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: guardKey},
			},
		}); err != nil {
			logging.Log.Errorf("VOTER: failed to delete guard %s: %v", guardKey, err)
			return err
		}
	}
	return nil
}

func guardKeys(voter *Voter) []string {
	var keys []string
	if voter.Email != "" {
		keys = append(keys, emailGuardKey(voter.ElectionID, voter.Email))
	}
	if voter.Phone != "" {
		keys = append(keys, phoneGuardKey(voter.ElectionID, voter.Phone))
	}
	return keys
}
