package storage

import "time"

type Subscription struct {
	Plan             string    `dynamodbav:"Plan" json:"plan"`
	VoterLimit       int       `dynamodbav:"VoterLimit" json:"voterLimit"`
	ElectionsAllowed int       `dynamodbav:"ElectionsAllowed" json:"electionsAllowed"`
	StartDate        time.Time `dynamodbav:"StartDate" json:"startDate"`
	EndDate          time.Time `dynamodbav:"EndDate" json:"endDate"`
}

type User struct {
	ID           string       `dynamodbav:"PK"`
	FullName     string       `dynamodbav:"FullName"`
	Email        string       `dynamodbav:"Email"`
	PasswordHash string       `dynamodbav:"PasswordHash"`
	Role         string       `dynamodbav:"Role"`
	Subscription Subscription `dynamodbav:"Subscription"`
	CreatedAt    time.Time    `dynamodbav:"CreatedAt"`
}

type Election struct {
	ID           string    `dynamodbav:"PK"`
	Title        string    `dynamodbav:"Title"`
	Description  string    `dynamodbav:"Description"`
	StartDate    time.Time `dynamodbav:"StartDate"`
	EndDate      time.Time `dynamodbav:"EndDate"`
	Status       string    `dynamodbav:"Status"`
	ElectionType string    `dynamodbav:"ElectionType"`
	VotingFormat string    `dynamodbav:"VotingFormat"`
	UserID       string    `dynamodbav:"UserID"`
	Ballots      []string  `dynamodbav:"Ballots,stringset,omitempty"`
	Voters       []string  `dynamodbav:"Voters,stringset,omitempty"`
	CreatedAt    time.Time `dynamodbav:"CreatedAt"`
}

type Ballot struct {
	ID            string   `dynamodbav:"PK"`
	Title         string   `dynamodbav:"Title"`
	Description   string   `dynamodbav:"Description"`
	ElectionID    string   `dynamodbav:"ElectionID"`
	VotingOptions []string `dynamodbav:"VotingOptions,stringset,omitempty"`
	// Voters holds the ids of voters that already cast a vote in this ballot.
	Voters []string `dynamodbav:"Voters,stringset,omitempty"`
}

type VotingOption struct {
	ID          string `dynamodbav:"PK"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description"`
	Image       string `dynamodbav:"Image"`
	BallotID    string `dynamodbav:"BallotID"`
	// Voters is the tally: one entry per voter that picked this option.
	Voters    []string  `dynamodbav:"Voters,stringset,omitempty"`
	CreatedAt time.Time `dynamodbav:"CreatedAt"`
}

type Voter struct {
	ID       string `dynamodbav:"PK"`
	FullName string `dynamodbav:"FullName"`
	Email    string `dynamodbav:"Email,omitempty"`
	Phone    string `dynamodbav:"Phone,omitempty"`
	// VoterID is the public identifier (VOTER-XXXXXXXX), distinct from PK.
	VoterID          string `dynamodbav:"VoterID"`
	VerificationCode string `dynamodbav:"VerificationCode,omitempty"`
	// IsVerified is set after the voter's first successful vote, so in
	// practice it means "has voted" rather than "identity confirmed".
	IsVerified bool      `dynamodbav:"IsVerified"`
	ElectionID string    `dynamodbav:"ElectionID"`
	CreatedAt  time.Time `dynamodbav:"CreatedAt"`
}

// Vote is the ledger record arbitrating duplicate votes: the (ballot, voter)
// composite key is unique, so the conditional insert of this record decides
// which of two racing cast-vote calls wins.
type Vote struct {
	BallotID       string    `dynamodbav:"PK" json:"ballotId"`
	VoterID        string    `dynamodbav:"SK" json:"voterId"`
	VotingOptionID string    `dynamodbav:"VotingOptionID" json:"votingOptionId"`
	Timestamp      time.Time `dynamodbav:"Timestamp" json:"timestamp"`
}

// VoterGuard marks an (election, contact) pair as taken. Guard items are
// written in the same transaction as the voter record, each conditioned on
// attribute_not_exists, which gives per-election email/phone uniqueness that
// a plain attribute cannot enforce.
type VoterGuard struct {
	Key        string `dynamodbav:"PK"`
	VoterID    string `dynamodbav:"VoterID"`
	ElectionID string `dynamodbav:"ElectionID"`
}
