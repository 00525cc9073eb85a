package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownElectionType = errors.New("unknown election type")

// ElectionType selects which contest the candidate and tally endpoints serve.
type ElectionType string

const (
	Presidential ElectionType = "presidential"
	Governorship ElectionType = "governorship"
	Senatorial   ElectionType = "senatorial"
)

// ElectionTypes lists the supported types in display order.
var ElectionTypes = []ElectionType{Presidential, Governorship, Senatorial}

// DefaultElectionType is selected when a page opens.
const DefaultElectionType = Presidential

// ParseElectionType accepts a type key in any case.
func ParseElectionType(s string) (ElectionType, error) {
	t := ElectionType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ElectionTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownElectionType, s)
}

// Label is the capitalised display name, e.g. "Presidential".
func (t ElectionType) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// Candidate as served by GET /vote/candidates/{type}/.
type Candidate struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Party         string `json:"party"`
	Age           int    `json:"age"`
	ImageURL      string `json:"image_url"`
	PartyImageURL string `json:"party_image_url"`
	// UserVoted is set by the server on the candidate the viewer voted for.
	UserVoted bool `json:"user_voted"`
}

// PartyVote as served by GET /vote/party-votes/{type}/.
type PartyVote struct {
	Party         string `json:"party"`
	VoteCount     int64  `json:"vote_count"`
	PartyImageURL string `json:"party_image_url,omitempty"`
}

// PartyTally is a party's vote count merged with the candidate list.
type PartyTally struct {
	Party         string
	Votes         int64
	PartyImageURL string
}

// CastVoteRequest is the body of POST /vote/cast/.
type CastVoteRequest struct {
	Candidate int64 `json:"candidate"`
}

// Receipt records a vote submitted from this client.
type Receipt struct {
	ID            int64
	NationalID    string
	ElectionType  ElectionType
	CandidateID   int64
	CandidateName string
	Party         string
	Message       string
	CastAt        time.Time
}
