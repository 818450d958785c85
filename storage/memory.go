package storage

import (
	"context"
	"sync"
	"time"
)

// In-memory implementations of the repository interfaces. They reproduce the
// conditional-write semantics of the Dynamo implementations under a mutex, so
// tests and local runs hit the same conflict behavior without a DynamoDB
// endpoint.

type MemoryUserStorage struct {
	mu    sync.Mutex
	users map[string]*User
}

func NewMemoryUserStorage() *MemoryUserStorage {
	return &MemoryUserStorage{users: make(map[string]*User)}
}

func (s *MemoryUserStorage) Get(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemoryUserStorage) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStorage) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return ErrItemAlreadyExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *MemoryUserStorage) Update(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return ErrNotFound
	}
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *MemoryUserStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

type MemoryElectionStorage struct {
	mu        sync.Mutex
	elections map[string]*Election
}

func NewMemoryElectionStorage() *MemoryElectionStorage {
	return &MemoryElectionStorage{elections: make(map[string]*Election)}
}

func (s *MemoryElectionStorage) Get(_ context.Context, id string) (*Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyElection(election), nil
}

func (s *MemoryElectionStorage) GetAll(_ context.Context) ([]*Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Election, 0, len(s.elections))
	for _, e := range s.elections {
		out = append(out, copyElection(e))
	}
	return out, nil
}

func (s *MemoryElectionStorage) GetByUser(_ context.Context, userID string) ([]*Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Election
	for _, e := range s.elections {
		if e.UserID == userID {
			out = append(out, copyElection(e))
		}
	}
	return out, nil
}

func (s *MemoryElectionStorage) GetByTitle(_ context.Context, title string) (*Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.elections {
		if e.Title == title {
			return copyElection(e), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryElectionStorage) Create(_ context.Context, election *Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elections[election.ID]; ok {
		return ErrItemAlreadyExists
	}
	if election.CreatedAt.IsZero() {
		election.CreatedAt = time.Now().UTC()
	}
	s.elections[election.ID] = copyElection(election)
	return nil
}

func (s *MemoryElectionStorage) Update(_ context.Context, election *Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elections[election.ID]; !ok {
		return ErrNotFound
	}
	s.elections[election.ID] = copyElection(election)
	return nil
}

func (s *MemoryElectionStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elections, id)
	return nil
}

func (s *MemoryElectionStorage) AddVoters(_ context.Context, electionID string, voterIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[electionID]
	if !ok {
		return ErrNotFound
	}
	for _, id := range voterIDs {
		election.Voters = addToSet(election.Voters, id)
	}
	return nil
}

func (s *MemoryElectionStorage) RemoveVoter(_ context.Context, electionID, voterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[electionID]
	if !ok {
		return ErrNotFound
	}
	election.Voters = removeFromSet(election.Voters, voterID)
	return nil
}

func (s *MemoryElectionStorage) AddBallot(_ context.Context, electionID, ballotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[electionID]
	if !ok {
		return ErrNotFound
	}
	election.Ballots = addToSet(election.Ballots, ballotID)
	return nil
}

func (s *MemoryElectionStorage) RemoveBallot(_ context.Context, electionID, ballotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[electionID]
	if !ok {
		return ErrNotFound
	}
	election.Ballots = removeFromSet(election.Ballots, ballotID)
	return nil
}

type MemoryBallotStorage struct {
	mu      sync.Mutex
	ballots map[string]*Ballot
}

func NewMemoryBallotStorage() *MemoryBallotStorage {
	return &MemoryBallotStorage{ballots: make(map[string]*Ballot)}
}

func (s *MemoryBallotStorage) Get(_ context.Context, id string) (*Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ballot, ok := s.ballots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBallot(ballot), nil
}

func (s *MemoryBallotStorage) GetByElection(_ context.Context, electionID string) ([]*Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Ballot
	for _, b := range s.ballots {
		if b.ElectionID == electionID {
			out = append(out, copyBallot(b))
		}
	}
	return out, nil
}

func (s *MemoryBallotStorage) Create(_ context.Context, ballot *Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ballots[ballot.ID]; ok {
		return ErrItemAlreadyExists
	}
	s.ballots[ballot.ID] = copyBallot(ballot)
	return nil
}

func (s *MemoryBallotStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ballots, id)
	return nil
}

func (s *MemoryBallotStorage) AddVoter(_ context.Context, ballotID, voterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ballot, ok := s.ballots[ballotID]
	if !ok {
		return ErrNotFound
	}
	ballot.Voters = addToSet(ballot.Voters, voterID)
	return nil
}

func (s *MemoryBallotStorage) AddOption(_ context.Context, ballotID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ballot, ok := s.ballots[ballotID]
	if !ok {
		return ErrNotFound
	}
	ballot.VotingOptions = addToSet(ballot.VotingOptions, optionID)
	return nil
}

func (s *MemoryBallotStorage) RemoveOption(_ context.Context, ballotID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ballot, ok := s.ballots[ballotID]
	if !ok {
		return ErrNotFound
	}
	ballot.VotingOptions = removeFromSet(ballot.VotingOptions, optionID)
	return nil
}

type MemoryVotingOptionStorage struct {
	mu      sync.Mutex
	options map[string]*VotingOption
}

func NewMemoryVotingOptionStorage() *MemoryVotingOptionStorage {
	return &MemoryVotingOptionStorage{options: make(map[string]*VotingOption)}
}

func (s *MemoryVotingOptionStorage) Get(_ context.Context, id string) (*VotingOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	option, ok := s.options[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyOption(option), nil
}

func (s *MemoryVotingOptionStorage) GetByBallot(_ context.Context, ballotID string) ([]*VotingOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*VotingOption
	for _, o := range s.options {
		if o.BallotID == ballotID {
			out = append(out, copyOption(o))
		}
	}
	return out, nil
}

func (s *MemoryVotingOptionStorage) Create(_ context.Context, option *VotingOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.options[option.ID]; ok {
		return ErrItemAlreadyExists
	}
	if option.CreatedAt.IsZero() {
		option.CreatedAt = time.Now().UTC()
	}
	s.options[option.ID] = copyOption(option)
	return nil
}

func (s *MemoryVotingOptionStorage) Update(_ context.Context, option *VotingOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.options[option.ID]; !ok {
		return ErrNotFound
	}
	s.options[option.ID] = copyOption(option)
	return nil
}

func (s *MemoryVotingOptionStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.options, id)
	return nil
}

func (s *MemoryVotingOptionStorage) AddVoter(_ context.Context, optionID, voterID string) (*VotingOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	option, ok := s.options[optionID]
	if !ok {
		return nil, ErrNotFound
	}
	option.Voters = addToSet(option.Voters, voterID)
	return copyOption(option), nil
}

type MemoryVoterStorage struct {
	mu     sync.Mutex
	voters map[string]*Voter
	guards map[string]string
}

func NewMemoryVoterStorage() *MemoryVoterStorage {
	return &MemoryVoterStorage{
		voters: make(map[string]*Voter),
		guards: make(map[string]string),
	}
}

func (s *MemoryVoterStorage) Get(_ context.Context, id string) (*Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	voter, ok := s.voters[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := *voter
	return &v, nil
}

func (s *MemoryVoterStorage) GetAll(_ context.Context) ([]*Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Voter, 0, len(s.voters))
	for _, voter := range s.voters {
		v := *voter
		out = append(out, &v)
	}
	return out, nil
}

func (s *MemoryVoterStorage) GetByElection(_ context.Context, electionID string) ([]*Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Voter
	for _, voter := range s.voters {
		if voter.ElectionID == electionID {
			v := *voter
			out = append(out, &v)
		}
	}
	return out, nil
}

func (s *MemoryVoterStorage) FindForLogin(_ context.Context, electionID, voterID string) (*Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, voter := range s.voters {
		if voter.ElectionID == electionID && voter.VoterID == voterID {
			v := *voter
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryVoterStorage) Register(_ context.Context, voter *Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.voters[voter.ID]; ok {
		return ErrVoterAlreadyRegistered
	}
	keys := guardKeys(voter)
	for _, key := range keys {
		if _, taken := s.guards[key]; taken {
			return ErrVoterAlreadyRegistered
		}
	}
	if voter.CreatedAt.IsZero() {
		voter.CreatedAt = time.Now().UTC()
	}
	for _, key := range keys {
		s.guards[key] = voter.ID
	}
	v := *voter
	s.voters[voter.ID] = &v
	return nil
}

func (s *MemoryVoterStorage) Update(_ context.Context, voter *Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.voters[voter.ID]; !ok {
		return ErrNotFound
	}
	v := *voter
	s.voters[voter.ID] = &v
	return nil
}

func (s *MemoryVoterStorage) MarkVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	voter, ok := s.voters[id]
	if !ok {
		return ErrNotFound
	}
	voter.IsVerified = true
	return nil
}

func (s *MemoryVoterStorage) Delete(_ context.Context, voter *Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.voters, voter.ID)
	for _, key := range guardKeys(voter) {
		delete(s.guards, key)
	}
	return nil
}

type MemoryVoteStorage struct {
	mu    sync.Mutex
	votes map[string]*Vote
}

func NewMemoryVoteStorage() *MemoryVoteStorage {
	return &MemoryVoteStorage{votes: make(map[string]*Vote)}
}

func (s *MemoryVoteStorage) Create(_ context.Context, vote *Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := vote.BallotID + "#" + vote.VoterID
	if _, ok := s.votes[key]; ok {
		return ErrVoteAlreadyCast
	}
	if vote.Timestamp.IsZero() {
		vote.Timestamp = time.Now().UTC()
	}
	v := *vote
	s.votes[key] = &v
	return nil
}

func (s *MemoryVoteStorage) GetByBallot(_ context.Context, ballotID string) ([]*Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Vote
	for _, vote := range s.votes {
		if vote.BallotID == ballotID {
			v := *vote
			out = append(out, &v)
		}
	}
	return out, nil
}

func (s *MemoryVoteStorage) Delete(_ context.Context, ballotID, voterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.votes, ballotID+"#"+voterID)
	return nil
}

func addToSet(set []string, id string) []string {
	for _, existing := range set {
		if existing == id {
			return set
		}
	}
	return append(set, id)
}

func removeFromSet(set []string, id string) []string {
	out := set[:0]
	for _, existing := range set {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func copyElection(e *Election) *Election {
	c := *e
	c.Ballots = append([]string(nil), e.Ballots...)
	c.Voters = append([]string(nil), e.Voters...)
	return &c
}

func copyBallot(b *Ballot) *Ballot {
	c := *b
	c.VotingOptions = append([]string(nil), b.VotingOptions...)
	c.Voters = append([]string(nil), b.Voters...)
	return &c
}

func copyOption(o *VotingOption) *VotingOption {
	c := *o
	c.Voters = append([]string(nil), o.Voters...)
	return &c
}
