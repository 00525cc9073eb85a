package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/countdown"
	"github.com/dmitrijs2005/evote/internal/client/election"
	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/client/results"
	"github.com/dmitrijs2005/evote/internal/common"
	"github.com/dmitrijs2005/evote/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRenderElection_Loading(t *testing.T) {
	got := renderElection(election.View{Phase: election.PhaseLoading, ElectionType: models.Senatorial}, countdown.Remaining{Days: 1})

	assert.Equal(t, "Senatorial election\nTime left to vote: 1d 0h 0m 0s\nLoading...", got)
}

func TestRenderElection_PendingAndNotice(t *testing.T) {
	cands := testutil.PresidentialCandidates()
	v := election.View{
		Phase:        election.PhaseReady,
		ElectionType: models.Presidential,
		Tallies:      []models.PartyTally{{Party: "A", Votes: 1200}},
		Candidates:   cands[:2],
		Matches:      2,
		Page:         1,
		TotalPages:   1,
		Pending:      &cands[1],
		Notice:       election.Notice{Text: "Vote failed. Please try again.", Kind: election.NoticeError},
	}

	got := renderElection(v, countdown.Remaining{})

	assert.Contains(t, got, "Voting has closed.")
	assert.Contains(t, got, "1,200")
	assert.Contains(t, got, "Candidates (page 1 of 1)")
	assert.Contains(t, got, "Vote for Bola Ade (B) in the Presidential election?")
	assert.Contains(t, got, "[error] Vote failed. Please try again.")
	assert.Contains(t, got, "Use 'vote <id>' to choose a candidate.")
}

func TestRenderElection_MarksVote(t *testing.T) {
	v := election.View{
		Phase:        election.PhaseReady,
		ElectionType: models.Presidential,
		Candidates:   testutil.PresidentialCandidates(),
		Page:         1,
		TotalPages:   1,
		Voted:        true,
		SelectedID:   3,
		Notice:       election.Notice{Text: election.NoticeAlreadyVoted},
	}

	got := renderElection(v, countdown.Remaining{Hours: 2})

	var marked []string
	for _, line := range strings.Split(got, "\n") {
		if strings.Contains(line, "<- your vote") {
			marked = append(marked, line)
		}
	}
	assert.Len(t, marked, 1)
	assert.Contains(t, marked[0], "Chidi Okafor")
	assert.Contains(t, got, "[ok] "+election.NoticeAlreadyVoted)
	assert.NotContains(t, got, "Use 'vote <id>'")
}

func TestRenderResults(t *testing.T) {
	cands := testutil.PresidentialCandidates()
	v := results.View{
		ElectionType: models.Presidential,
		Summary:      results.Summarize(models.Presidential, []models.PartyVote{{Party: "A", VoteCount: 1500}, {Party: "B", VoteCount: 500}}, cands),
		UpdatedAt:    time.Date(2025, 12, 1, 9, 30, 5, 0, time.UTC),
	}

	got := renderResults(v)

	assert.Contains(t, got, "Last Updated: 09:30:05")
	assert.Contains(t, got, "Total votes: 2,000")
	assert.Contains(t, got, "Leading candidate: Amaka Eze (A)")
	assert.Contains(t, got, "1.5K")
	assert.Contains(t, got, "75.0%")
	assert.Contains(t, got, results.Bar(75, barWidth))
}

func TestRenderResults_EmptyAndStates(t *testing.T) {
	empty := renderResults(results.View{ElectionType: models.Senatorial, Summary: results.Summary{ElectionType: models.Senatorial}})
	assert.Contains(t, empty, "Total votes: 0")
	assert.Contains(t, empty, "No votes recorded yet.")
	assert.NotContains(t, empty, "Leading party")

	assert.Equal(t, "Senatorial results\nLoading...", renderResults(results.View{ElectionType: models.Senatorial, Loading: true}))
	assert.Equal(t, "Senatorial results\n"+results.NoticeLoadFailed,
		renderResults(results.View{ElectionType: models.Senatorial, Message: results.NoticeLoadFailed}))
}

func TestRenderTypes(t *testing.T) {
	assert.Equal(t, "  presidential\n* governorship\n  senatorial", renderTypes(models.Governorship))
}

func TestRenderProfile(t *testing.T) {
	p := testutil.Voter()
	p.ProfilePic = ""

	got := renderProfile(p, time.Time{}, false)

	assert.Contains(t, got, "Ada Obi")
	assert.Contains(t, got, common.PlaceholderImage)
	assert.Contains(t, got, "unknown")
}

func TestRenderReceipts(t *testing.T) {
	assert.Equal(t, "No votes recorded on this device.", renderReceipts(nil))

	got := renderReceipts([]models.Receipt{{
		ElectionType:  models.Senatorial,
		CandidateName: "Jones",
		Party:         "B",
		Message:       "Vote submitted!",
		CastAt:        time.Now().Add(-time.Hour),
	}})
	assert.Contains(t, got, "1 hour ago")
	assert.Contains(t, got, "Senatorial")
	assert.Contains(t, got, "Vote submitted!")
}
