package models

import "github.com/mr-atuzie/angt-votify-BE/storage"

type CreateVotingOptionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	BallotID    string `json:"ballotId"`
}

type UpdateVotingOptionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type VotingOptionResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	BallotID    string   `json:"ballotId"`
	Votes       int      `json:"votes"`
	Voters      []string `json:"voters"`
}

type VotingOptionDetailResponse struct {
	Message      string               `json:"message"`
	VotingOption VotingOptionResponse `json:"votingOption"`
}

// BallotResultEntry is one line of a ballot's results view, derived from the
// option tallies rather than stored separately.
type BallotResultEntry struct {
	OptionID string `json:"optionId"`
	Name     string `json:"name"`
	Votes    int    `json:"votes"`
}

type BallotResultsResponse struct {
	BallotID   string              `json:"ballotId"`
	TotalVotes int                 `json:"totalVotes"`
	Results    []BallotResultEntry `json:"results"`
}

func TransformVotingOptionFromStorage(o *storage.VotingOption) VotingOptionResponse {
	return VotingOptionResponse{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		Image:       o.Image,
		BallotID:    o.BallotID,
		Votes:       len(o.Voters),
		Voters:      o.Voters,
	}
}
