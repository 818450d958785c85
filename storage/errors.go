package storage

import "errors"

var ErrNotFound = errors.New("item not found in storage")
var ErrItemAlreadyExists = errors.New("item already exists in storage")

// ErrVoterAlreadyRegistered: a voter with the same email or phone is already
// registered for the election (guard item collision).
var ErrVoterAlreadyRegistered = errors.New("voter already registered for this election")

// ErrVoteAlreadyCast: the (ballot, voter) ledger record already exists.
var ErrVoteAlreadyCast = errors.New("voter has already cast a vote in this ballot")
