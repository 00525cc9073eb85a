package results

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/client"
	"github.com/dmitrijs2005/evote/internal/client/election"
	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	votes := []models.PartyVote{
		{Party: "A", VoteCount: 10},
		{Party: "B", VoteCount: 30},
		{Party: "C", VoteCount: 30},
	}
	cands := []models.Candidate{
		{ID: 1, Name: "Amaka", Party: "A"},
		{ID: 2, Name: "Bola", Party: "B"},
		{ID: 3, Name: "Bisi", Party: "B"},
	}

	s := Summarize(models.Presidential, votes, cands)

	assert.Equal(t, int64(70), s.Total)
	assert.Equal(t, "B", s.LeadingParty, "ties go to the first party seen")
	require.NotNil(t, s.LeadingCandidate)
	assert.Equal(t, "Bola", s.LeadingCandidate.Name)
	require.Len(t, s.Shares, 3)
	assert.Equal(t, 14.3, s.Shares[0].Percent)
	assert.Equal(t, 42.9, s.Shares[1].Percent)
}

func TestSummarize_LeadingCandidateFallsBackToFirst(t *testing.T) {
	s := Summarize(models.Senatorial,
		[]models.PartyVote{{Party: "Z", VoteCount: 3}},
		[]models.Candidate{{ID: 7, Name: "Only", Party: "Y"}})

	assert.Equal(t, "Z", s.LeadingParty)
	require.NotNil(t, s.LeadingCandidate)
	assert.Equal(t, int64(7), s.LeadingCandidate.ID)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(models.Presidential, nil, nil)
	assert.Zero(t, s.Total)
	assert.Empty(t, s.LeadingParty)
	assert.Nil(t, s.LeadingCandidate)
	assert.Empty(t, s.Shares)
}

func TestSummarize_ZeroTotal(t *testing.T) {
	s := Summarize(models.Presidential,
		[]models.PartyVote{{Party: "A"}, {Party: "B"}}, nil)

	for _, sh := range s.Shares {
		assert.Zero(t, sh.Percent)
	}
	assert.Equal(t, "A", s.LeadingParty)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 66.7, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(9, 9))
}

func TestShortNumber(t *testing.T) {
	tests := map[int64]string{
		0:         "0",
		999:       "999",
		1000:      "1.0K",
		1234:      "1.2K",
		999_999:   "1000.0K",
		3_400_000: "3.4M",
	}
	for in, want := range tests {
		assert.Equal(t, want, ShortNumber(in), "ShortNumber(%d)", in)
	}
}

func TestCommaAndBar(t *testing.T) {
	assert.Equal(t, "1,234,567", Comma(1234567))
	assert.Equal(t, "█████░░░░░", Bar(50, 10))
	assert.Equal(t, "░░░░░░░░░░", Bar(0, 10))
	assert.Equal(t, "██████████", Bar(120, 10))
	assert.Empty(t, Bar(50, 0))
}

func TestFetch_AgainstBackend(t *testing.T) {
	b := testutil.NewBackend(t)
	b.SeedDefault()
	access, refresh := b.IssueTokens(t, testutil.Voter().NationalID)
	api := client.NewHTTPClient(b.URL, time.Second, &staticTokens{access: access, refresh: refresh}, nil)

	s, err := Fetch(context.Background(), api, models.Presidential)
	require.NoError(t, err)
	assert.Equal(t, int64(45), s.Total)
	assert.Equal(t, "B", s.LeadingParty)
	assert.Equal(t, "Bola Ade", s.LeadingCandidate.Name)
	assert.Len(t, s.Shares, 3, "results show vote rows as served")
}

type staticTokens struct{ access, refresh string }

func (s *staticTokens) AccessToken() string  { return s.access }
func (s *staticTokens) RefreshToken() string { return s.refresh }

func (s *staticTokens) UpdateTokens(_ context.Context, access, _ string) error {
	s.access = access
	return nil
}

func (s *staticTokens) Clear(context.Context) error {
	s.access, s.refresh = "", ""
	return nil
}

type gatedAPI struct {
	mu    sync.Mutex
	gate  map[models.ElectionType]chan struct{}
	calls int
	err   error
}

func (g *gatedAPI) Candidates(_ context.Context, t models.ElectionType) ([]models.Candidate, error) {
	return []models.Candidate{{ID: 1, Name: string(t), Party: "A"}}, nil
}

func (g *gatedAPI) PartyVotes(ctx context.Context, t models.ElectionType) ([]models.PartyVote, error) {
	g.mu.Lock()
	g.calls++
	gate, err := g.gate[t], g.err
	g.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return []models.PartyVote{{Party: "A", VoteCount: 1}}, nil
}

func (g *gatedAPI) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestDashboard_SelectAndRefresh(t *testing.T) {
	api := &gatedAPI{gate: map[models.ElectionType]chan struct{}{}}
	d := NewDashboard(api, nil)
	fixed := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	require.NoError(t, d.Select(context.Background(), models.Governorship))
	v := d.View()
	assert.Equal(t, models.Governorship, v.ElectionType)
	assert.Equal(t, int64(1), v.Summary.Total)
	assert.Equal(t, fixed, v.UpdatedAt)
	assert.False(t, v.Loading)

	require.NoError(t, d.Refresh(context.Background()))
	assert.Equal(t, 2, api.callCount())
}

func TestDashboard_RefreshInFlight(t *testing.T) {
	gate := make(chan struct{})
	api := &gatedAPI{gate: map[models.ElectionType]chan struct{}{models.Presidential: gate}}
	d := NewDashboard(api, nil)

	errc := make(chan error, 1)
	go func() { errc <- d.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return api.callCount() == 1 }, time.Second, 5*time.Millisecond)

	require.ErrorIs(t, d.Refresh(context.Background()), election.ErrReloadInFlight)
	assert.True(t, d.View().Loading)

	close(gate)
	require.NoError(t, <-errc)
}

func TestDashboard_StaleSelectionDiscarded(t *testing.T) {
	gate := make(chan struct{})
	api := &gatedAPI{gate: map[models.ElectionType]chan struct{}{models.Presidential: gate}}
	d := NewDashboard(api, nil)

	errc := make(chan error, 1)
	go func() { errc <- d.Select(context.Background(), models.Presidential) }()
	require.Eventually(t, func() bool { return api.callCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, d.Select(context.Background(), models.Senatorial))
	close(gate)
	require.ErrorIs(t, <-errc, election.ErrSuperseded)

	v := d.View()
	assert.Equal(t, models.Senatorial, v.ElectionType)
	require.NotNil(t, v.Summary.LeadingCandidate)
	assert.Equal(t, "senatorial", v.Summary.LeadingCandidate.Name)
}

func TestDashboard_LoadFailure(t *testing.T) {
	api := &gatedAPI{err: errors.New("boom")}
	d := NewDashboard(api, nil)

	require.Error(t, d.Select(context.Background(), models.Presidential))
	v := d.View()
	assert.Equal(t, NoticeLoadFailed, v.Message)
	assert.Zero(t, v.Summary.Total)
	assert.False(t, v.Loading)
}
