package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/mr-atuzie/angt-votify-BE/storage"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeVoterLoginID turns a login fragment into the canonical voter
// identifier: uppercased and prefixed when the caller omitted the prefix.
func NormalizeVoterLoginID(fragment string) string {
	id := strings.ToUpper(strings.TrimSpace(fragment))
	if !strings.HasPrefix(id, VoterIDPrefix) {
		id = VoterIDPrefix + id
	}
	return id
}

type CreateVoterRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ElectionID string `json:"electionId"`
}

type UpdateVoterRequest struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	IsVerified *bool  `json:"isVerified"`
}

type LoginVoterRequest struct {
	VoterID          string `json:"voterId"`
	VerificationCode string `json:"verificationCode"`
	ElectionID       string `json:"electionId"`
	VoterLoginID     string `json:"voterLoginId"`
}

type CastVoteRequest struct {
	VotingOptionID string `json:"votingOptionId"`
	VoterID        string `json:"voterId"`
	BallotID       string `json:"ballotId"`
}

type VoterResponse struct {
	ID         string    `json:"id"`
	VoterID    string    `json:"voterId"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	IsVerified bool      `json:"isVerified"`
	ElectionID string    `json:"electionId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VoterSession is the minimal descriptor returned by a successful login. No
// token is minted here.
type VoterSession struct {
	ID       string `json:"id"`
	VoterID  string `json:"voterId"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type CreateVoterResponse struct {
	Message string        `json:"message"`
	Voter   VoterResponse `json:"voter"`
}

type UploadVotersResponse struct {
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Voters  []VoterResponse `json:"voters"`
}

type LoginVoterResponse struct {
	Message string       `json:"message"`
	Voter   VoterSession `json:"voter"`
}

type CastVoteResponse struct {
	Message      string               `json:"message"`
	VotingOption VotingOptionResponse `json:"votingOption"`
}

type VotersResponse struct {
	Voters []VoterResponse `json:"voters"`
}

func TransformVoterFromStorage(v *storage.Voter) VoterResponse {
	return VoterResponse{
		ID:         v.ID,
		VoterID:    v.VoterID,
		FullName:   v.FullName,
		Email:      v.Email,
		Phone:      v.Phone,
		IsVerified: v.IsVerified,
		ElectionID: v.ElectionID,
		CreatedAt:  v.CreatedAt,
	}
}

func TransformVoterToSession(v *storage.Voter) VoterSession {
	return VoterSession{
		ID:       v.ID,
		VoterID:  v.VoterID,
		FullName: v.FullName,
		Email:    v.Email,
		Phone:    v.Phone,
	}
}
