// Package results derives the read-only results dashboard: vote totals, the
// leading party and candidate, and each party's share of the vote.
package results

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dustin/go-humanize"
)

// Share is one party's part of the total.
type Share struct {
	Party         string
	Votes         int64
	Percent       float64
	PartyImageURL string
}

type Summary struct {
	ElectionType models.ElectionType
	Total        int64
	// LeadingParty is empty when there are no tallies.
	LeadingParty     string
	LeadingCandidate *models.Candidate
	Shares           []Share
}

// Summarize computes totals over the vote rows as served. The leading party
// is the first one holding the highest count.
func Summarize(t models.ElectionType, votes []models.PartyVote, cands []models.Candidate) Summary {
	s := Summary{ElectionType: t}

	for _, v := range votes {
		s.Total += v.VoteCount
	}

	best := -1
	for i, v := range votes {
		if best < 0 || v.VoteCount > votes[best].VoteCount {
			best = i
		}
	}
	if best >= 0 {
		s.LeadingParty = votes[best].Party
		s.LeadingCandidate = leadingCandidate(s.LeadingParty, cands)
	}

	s.Shares = make([]Share, 0, len(votes))
	for _, v := range votes {
		s.Shares = append(s.Shares, Share{
			Party:         v.Party,
			Votes:         v.VoteCount,
			Percent:       Percent(v.VoteCount, s.Total),
			PartyImageURL: v.PartyImageURL,
		})
	}

	return s
}

// leadingCandidate is the party's first candidate, else the first candidate.
func leadingCandidate(party string, cands []models.Candidate) *models.Candidate {
	if len(cands) == 0 {
		return nil
	}
	for _, c := range cands {
		if c.Party == party {
			return &c
		}
	}
	c := cands[0]
	return &c
}

// Percent is v's share of total rounded to one decimal, 0 when total is 0.
func Percent(v, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(v)/float64(total)*1000) / 10
}

// ShortNumber renders 1234 as 1.2K and 3400000 as 3.4M.
func ShortNumber(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return strconv.FormatInt(n, 10)
}

// Comma renders n with thousands separators.
func Comma(n int64) string {
	return humanize.Comma(n)
}

// Bar is a horizontal bar of width cells filled to percent.
func Bar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(percent / 100 * float64(width)))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
