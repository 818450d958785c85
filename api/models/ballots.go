package models

import "github.com/mr-atuzie/angt-votify-BE/storage"

type CreateBallotRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ElectionID  string `json:"electionId"`
}

type BallotResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ElectionID    string   `json:"electionId"`
	VotingOptions []string `json:"votingOptions"`
	Voters        []string `json:"voters"`
}

type BallotDetailResponse struct {
	Message string                 `json:"message"`
	Ballot  BallotResponse         `json:"ballot"`
	Options []VotingOptionResponse `json:"options,omitempty"`
}

func TransformBallotFromStorage(b *storage.Ballot) BallotResponse {
	return BallotResponse{
		ID:            b.ID,
		Title:         b.Title,
		Description:   b.Description,
		ElectionID:    b.ElectionID,
		VotingOptions: b.VotingOptions,
		Voters:        b.Voters,
	}
}
