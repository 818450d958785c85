package models

import (
	"time"

	"github.com/mr-atuzie/angt-votify-BE/storage"
)

type CreateElectionRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	ElectionType string    `json:"electionType"`
	VotingFormat string    `json:"votingFormat"`
}

type UpdateElectionRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	ElectionType string     `json:"electionType"`
	VotingFormat string     `json:"votingFormat"`
}

type ElectionResponse struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	StartDate    time.Time      `json:"startDate"`
	EndDate      time.Time      `json:"endDate"`
	Status       ElectionStatus `json:"status"`
	ElectionType string         `json:"electionType"`
	VotingFormat string         `json:"votingFormat"`
	UserID       string         `json:"userId"`
	Ballots      []string       `json:"ballots"`
	Voters       []string       `json:"voters"`
	CreatedAt    time.Time      `json:"createdAt"`
}

type ElectionDetailResponse struct {
	Message  string           `json:"message"`
	Election ElectionResponse `json:"election"`
}

// DeriveElectionStatus recomputes the status on read: anything past its end
// date is Ended, a manual close sticks, and everything else reads back as
// Upcoming. The read path deliberately never yields Ongoing.
func DeriveElectionStatus(e *storage.Election, now time.Time) ElectionStatus {
	if !now.Before(e.EndDate) {
		return ElectionStatusEnded
	}
	if e.Status == string(ElectionStatusEnded) {
		return ElectionStatusEnded
	}
	return ElectionStatusUpcoming
}

func TransformElectionFromStorage(e *storage.Election, now time.Time) ElectionResponse {
	return ElectionResponse{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		Status:       DeriveElectionStatus(e, now),
		ElectionType: e.ElectionType,
		VotingFormat: e.VotingFormat,
		UserID:       e.UserID,
		Ballots:      e.Ballots,
		Voters:       e.Voters,
		CreatedAt:    e.CreatedAt,
	}
}
