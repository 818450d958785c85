package models

var Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
var Digits = "0123456789"

const (
	VoterIDPrefix          = "VOTER-"
	VoterIDLength          = 8
	VerificationCodeLength = 6
)

type ElectionStatus string

const (
	ElectionStatusUpcoming ElectionStatus = "Upcoming"
	ElectionStatusOngoing  ElectionStatus = "Ongoing"
	ElectionStatusEnded    ElectionStatus = "Ended"
)

var ValidElectionTypes = map[string]string{
	"single-choice":   "single-choice",
	"multiple-choice": "multiple-choice",
	"ranked-choice":   "ranked-choice",
}

var ValidVotingFormats = map[string]string{
	"public":       "public",
	"private":      "private",
	"confidential": "confidential",
}
