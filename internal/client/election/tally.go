package election

import (
	"strings"

	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/common"
)

// MergeTallies builds one tally per distinct candidate party, in order of
// first appearance. Parties missing from votes count zero; vote rows for
// parties without candidates are dropped. The party photo is the first
// candidate's, then the vote row's, then the placeholder.
func MergeTallies(cands []models.Candidate, votes []models.PartyVote) []models.PartyTally {
	index := make(map[string]int, len(cands))
	tallies := make([]models.PartyTally, 0, len(cands))

	for _, c := range cands {
		if _, seen := index[c.Party]; seen {
			continue
		}
		index[c.Party] = len(tallies)
		tallies = append(tallies, models.PartyTally{Party: c.Party, PartyImageURL: c.PartyImageURL})
	}

	for _, v := range votes {
		i, ok := index[v.Party]
		if !ok {
			continue
		}
		tallies[i].Votes = v.VoteCount
		if tallies[i].PartyImageURL == "" {
			tallies[i].PartyImageURL = v.PartyImageURL
		}
	}

	for i := range tallies {
		if tallies[i].PartyImageURL == "" {
			tallies[i].PartyImageURL = common.PlaceholderImage
		}
	}

	return tallies
}

// VotedCandidate returns the first candidate carrying the self-vote flag.
func VotedCandidate(cands []models.Candidate) (models.Candidate, bool) {
	for _, c := range cands {
		if c.UserVoted {
			return c, true
		}
	}
	return models.Candidate{}, false
}

// Filter keeps candidates whose name or party contains query, ignoring case.
// A blank query keeps everything.
func Filter(cands []models.Candidate, query string) []models.Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cands
	}

	out := make([]models.Candidate, 0, len(cands))
	for _, c := range cands {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Party), q) {
			out = append(out, c)
		}
	}
	return out
}

// TotalPages is never less than one, so an empty list still has a page 1.
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

func ClampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Paginate returns the 1-based page of cands.
func Paginate(cands []models.Candidate, page, size int) []models.Candidate {
	if size <= 0 {
		return cands
	}
	start := (page - 1) * size
	if start < 0 || start >= len(cands) {
		return nil
	}
	end := min(start+size, len(cands))
	return cands[start:end]
}
