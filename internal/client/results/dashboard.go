package results

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/election"
	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/logging"
	"golang.org/x/sync/errgroup"
)

const NoticeLoadFailed = "Failed to load results. Try again."

type API interface {
	Candidates(ctx context.Context, t models.ElectionType) ([]models.Candidate, error)
	PartyVotes(ctx context.Context, t models.ElectionType) ([]models.PartyVote, error)
}

// Fetch loads tallies and candidates for t concurrently and summarizes them.
func Fetch(ctx context.Context, api API, t models.ElectionType) (Summary, error) {
	var (
		votes []models.PartyVote
		cands []models.Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		votes, err = api.PartyVotes(gctx, t)
		return err
	})
	g.Go(func() error {
		var err error
		cands, err = api.Candidates(gctx, t)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("fetch results %s: %w", t, err)
	}

	return Summarize(t, votes, cands), nil
}

type View struct {
	ElectionType models.ElectionType
	Summary      Summary
	Loading      bool
	Message      string
	UpdatedAt    time.Time
}

// Dashboard keeps the latest summary for the selected type. Loads follow the
// same rules as the election workflow: one at a time, stale answers dropped.
type Dashboard struct {
	api    API
	logger logging.Logger
	now    func() time.Time

	mu           sync.Mutex
	electionType models.ElectionType
	generation   uint64
	loading      bool
	summary      Summary
	message      string
	updatedAt    time.Time
}

func NewDashboard(api API, logger logging.Logger) *Dashboard {
	return &Dashboard{
		api:          api,
		logger:       logging.OrNop(logger),
		now:          time.Now,
		electionType: models.DefaultElectionType,
	}
}

// Select switches to t and loads it.
func (d *Dashboard) Select(ctx context.Context, t models.ElectionType) error {
	d.mu.Lock()
	d.generation++
	gen := d.generation
	d.electionType = t
	d.loading = true
	d.summary = Summary{ElectionType: t}
	d.mu.Unlock()

	return d.load(ctx, gen, t)
}

// Refresh reloads the current type.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.loading {
		d.mu.Unlock()
		return election.ErrReloadInFlight
	}
	d.loading = true
	gen, t := d.generation, d.electionType
	d.mu.Unlock()

	return d.load(ctx, gen, t)
}

func (d *Dashboard) load(ctx context.Context, gen uint64, t models.ElectionType) error {
	s, err := Fetch(ctx, d.api, t)

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.generation {
		return election.ErrSuperseded
	}
	d.loading = false

	if err != nil {
		d.summary = Summary{ElectionType: t}
		d.message = NoticeLoadFailed
		d.logger.Warn(ctx, "failed to load results", "type", t, "error", err)
		return err
	}

	d.summary = s
	d.message = ""
	d.updatedAt = d.now()
	return nil
}

func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return View{
		ElectionType: d.electionType,
		Summary:      d.summary,
		Loading:      d.loading,
		Message:      d.message,
		UpdatedAt:    d.updatedAt,
	}
}
