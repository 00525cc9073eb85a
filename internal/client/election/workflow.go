// Package election implements the voting workflow: loading candidates and
// party tallies per election type, paging and searching the list, and the
// confirm-then-submit voting flow with its "already voted" lock.
//
// Every selection of an election type starts a new generation. Responses
// that arrive for an older generation are discarded with ErrSuperseded, so a
// slow answer for a previous type can never overwrite the current one.
package election

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/client"
	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/logging"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAlreadyVoted     = errors.New("already voted in this category")
	ErrVoteInFlight     = errors.New("a vote is already being submitted")
	ErrNoPendingVote    = errors.New("no vote awaiting confirmation")
	ErrUnknownCandidate = errors.New("unknown candidate")
	ErrNotReady         = errors.New("election data not loaded")
	ErrReloadInFlight   = errors.New("election data is already loading")
	ErrSuperseded       = errors.New("response superseded by a newer selection")
)

const (
	NoticeAlreadyVoted   = "You have already voted in this category."
	NoticeLoadFailed     = "Failed to load election data."
	NoticeVoteSubmitted  = "Vote submitted!"
	NoticeSessionExpired = "Session expired. Please log in again."
	NoticeVoteFailed     = "Vote failed. Please try again."

	DefaultPageSize   = 5
	DefaultMessageTTL = 3 * time.Second
)

// API is the part of the backend the workflow talks to.
type API interface {
	Candidates(ctx context.Context, t models.ElectionType) ([]models.Candidate, error)
	PartyVotes(ctx context.Context, t models.ElectionType) ([]models.PartyVote, error)
	CastVote(ctx context.Context, candidateID int64) (string, error)
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	}
	return "idle"
}

type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

type Notice struct {
	Text string
	Kind NoticeKind
}

type Options struct {
	PageSize   int
	MessageTTL time.Duration
	Logger     logging.Logger
	// OnAuthFailure runs when the backend refuses the session.
	OnAuthFailure func()
	// OnVoted runs after the backend accepted a vote.
	OnVoted func(ctx context.Context, t models.ElectionType, c models.Candidate, message string)
}

// View is a snapshot of the workflow for rendering.
type View struct {
	Phase          Phase
	ElectionType   models.ElectionType
	Tallies        []models.PartyTally
	Candidates     []models.Candidate
	Matches        int
	Page           int
	TotalPages     int
	Query          string
	Voted          bool
	SelectedID     int64
	VotingInFlight bool
	Pending        *models.Candidate
	Notice         Notice
}

type Workflow struct {
	api    API
	opts   Options
	logger logging.Logger

	mu             sync.Mutex
	phase          Phase
	electionType   models.ElectionType
	generation     uint64
	reloading      bool
	candidates     []models.Candidate
	tallies        []models.PartyTally
	voted          bool
	selectedID     int64
	votingInFlight bool
	intent         *models.Candidate
	committed      map[models.ElectionType]int64
	query          string
	page           int

	notice      Notice
	noticeSeq   uint64
	noticeTimer *time.Timer
	closed      bool
}

func NewWorkflow(api API, opts Options) *Workflow {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MessageTTL <= 0 {
		opts.MessageTTL = DefaultMessageTTL
	}
	return &Workflow{
		api:       api,
		opts:      opts,
		logger:    logging.OrNop(opts.Logger),
		committed: map[models.ElectionType]int64{},
		page:      1,
	}
}

// SelectType switches to t and loads its data. The list returns to page 1.
func (w *Workflow) SelectType(ctx context.Context, t models.ElectionType) error {
	w.mu.Lock()
	w.generation++
	gen := w.generation
	w.electionType = t
	w.phase = PhaseLoading
	w.reloading = true
	w.candidates, w.tallies = nil, nil
	_, w.voted = w.committed[t]
	w.selectedID = w.committed[t]
	w.intent = nil
	w.page = 1
	w.mu.Unlock()

	return w.load(ctx, gen, t, true)
}

// Reload refetches the current type. Only one reload runs at a time.
func (w *Workflow) Reload(ctx context.Context) error {
	return w.reload(ctx, true)
}

func (w *Workflow) reload(ctx context.Context, announce bool) error {
	w.mu.Lock()
	if w.phase == PhaseIdle {
		w.mu.Unlock()
		return ErrNotReady
	}
	if w.reloading {
		w.mu.Unlock()
		return ErrReloadInFlight
	}
	w.reloading = true
	gen, t := w.generation, w.electionType
	w.mu.Unlock()

	return w.load(ctx, gen, t, announce)
}

// load fetches candidates and tallies concurrently and applies them if gen
// is still current. announce controls the "already voted" notice.
func (w *Workflow) load(ctx context.Context, gen uint64, t models.ElectionType, announce bool) error {
	var (
		cands []models.Candidate
		votes []models.PartyVote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cands, err = w.api.Candidates(gctx, t)
		return err
	})
	g.Go(func() error {
		var err error
		votes, err = w.api.PartyVotes(gctx, t)
		return err
	})
	err := g.Wait()

	w.mu.Lock()
	if gen != w.generation {
		w.mu.Unlock()
		w.logger.Debug(ctx, "discarding stale election data", "type", t)
		return ErrSuperseded
	}
	w.reloading = false
	w.phase = PhaseReady

	if err != nil {
		w.candidates, w.tallies = nil, nil
		w.setNoticeLocked(NoticeLoadFailed, NoticeError)
		w.mu.Unlock()

		w.logger.Warn(ctx, "failed to load election data", "type", t, "error", err)
		if errors.Is(err, client.ErrUnauthorized) {
			w.authFailure()
		}
		return fmt.Errorf("load %s: %w", t, err)
	}

	w.candidates = cands
	w.tallies = MergeTallies(cands, votes)

	if c, ok := VotedCandidate(cands); ok {
		w.voted, w.selectedID = true, c.ID
		if announce {
			w.setNoticeLocked(NoticeAlreadyVoted, NoticeSuccess)
		}
	} else if id, ok := w.committed[t]; ok {
		w.voted, w.selectedID = true, id
	} else {
		w.voted, w.selectedID = false, 0
	}

	w.page = ClampPage(w.page, TotalPages(len(Filter(w.candidates, w.query)), w.opts.PageSize))
	w.mu.Unlock()

	return nil
}

// RequestVote opens the confirmation step for candidate id.
func (w *Workflow) RequestVote(id int64) (models.Candidate, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase != PhaseReady {
		return models.Candidate{}, ErrNotReady
	}
	if w.voted {
		return models.Candidate{}, ErrAlreadyVoted
	}
	for _, c := range w.candidates {
		if c.ID == id {
			w.intent = &c
			return c, nil
		}
	}
	return models.Candidate{}, fmt.Errorf("%w: %d", ErrUnknownCandidate, id)
}

func (w *Workflow) CancelVote() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.intent == nil {
		return ErrNoPendingVote
	}
	w.intent = nil
	return nil
}

// ConfirmVote submits the pending vote. The confirmation step is closed in
// every outcome, and only one submission may be in flight.
func (w *Workflow) ConfirmVote(ctx context.Context) error {
	w.mu.Lock()
	if w.votingInFlight {
		w.intent = nil
		w.mu.Unlock()
		return ErrVoteInFlight
	}
	if w.intent == nil {
		w.mu.Unlock()
		return ErrNoPendingVote
	}
	cand := *w.intent
	w.intent = nil
	if w.voted {
		w.mu.Unlock()
		return ErrAlreadyVoted
	}
	w.votingInFlight = true
	gen, t := w.generation, w.electionType
	w.mu.Unlock()

	msg, err := w.api.CastVote(ctx, cand.ID)

	w.mu.Lock()
	w.votingInFlight = false

	if err != nil {
		authFailed := errors.Is(err, client.ErrUnauthorized)
		if authFailed {
			w.setNoticeLocked(NoticeSessionExpired, NoticeError)
		} else {
			text := client.ServerMessage(err)
			if text == "" {
				text = NoticeVoteFailed
			}
			w.setNoticeLocked(text, NoticeError)
		}
		w.mu.Unlock()

		w.logger.Warn(ctx, "vote failed", "candidate", cand.ID, "error", err)
		if authFailed {
			w.authFailure()
		}
		return fmt.Errorf("cast vote: %w", err)
	}

	w.committed[t] = cand.ID
	if gen == w.generation {
		w.voted, w.selectedID = true, cand.ID
	}
	notice := msg
	if notice == "" {
		notice = NoticeVoteSubmitted
	}
	w.setNoticeLocked(notice, NoticeSuccess)
	w.mu.Unlock()

	w.logger.Info(ctx, "vote submitted", "type", t, "candidate", cand.ID)
	if w.opts.OnVoted != nil {
		w.opts.OnVoted(ctx, t, cand, msg)
	}

	if err := w.reload(ctx, false); err != nil && !errors.Is(err, ErrReloadInFlight) {
		w.logger.Warn(ctx, "reload after vote failed", "error", err)
	}
	return nil
}

// Search filters the list and returns to page 1.
func (w *Workflow) Search(query string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query = query
	w.page = 1
}

// SetPage moves to page p, clamped to the available pages, and returns it.
func (w *Workflow) SetPage(p int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.page = ClampPage(p, TotalPages(len(Filter(w.candidates, w.query)), w.opts.PageSize))
	return w.page
}

func (w *Workflow) NextPage() int {
	w.mu.Lock()
	p := w.page + 1
	w.mu.Unlock()
	return w.SetPage(p)
}

func (w *Workflow) PrevPage() int {
	w.mu.Lock()
	p := w.page - 1
	w.mu.Unlock()
	return w.SetPage(p)
}

func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	matches := Filter(w.candidates, w.query)
	total := TotalPages(len(matches), w.opts.PageSize)
	page := ClampPage(w.page, total)

	v := View{
		Phase:          w.phase,
		ElectionType:   w.electionType,
		Tallies:        append([]models.PartyTally(nil), w.tallies...),
		Candidates:     append([]models.Candidate(nil), Paginate(matches, page, w.opts.PageSize)...),
		Matches:        len(matches),
		Page:           page,
		TotalPages:     total,
		Query:          w.query,
		Voted:          w.voted,
		SelectedID:     w.selectedID,
		VotingInFlight: w.votingInFlight,
		Notice:         w.notice,
	}
	if w.intent != nil {
		c := *w.intent
		v.Pending = &c
	}
	return v
}

// Close stops the notice timer. The workflow must not be used afterwards.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.noticeTimer != nil {
		w.noticeTimer.Stop()
		w.noticeTimer = nil
	}
}

// setNoticeLocked shows text until MessageTTL passes or another notice
// replaces it.
func (w *Workflow) setNoticeLocked(text string, kind NoticeKind) {
	if w.closed {
		return
	}
	if w.noticeTimer != nil {
		w.noticeTimer.Stop()
	}
	w.noticeSeq++
	seq := w.noticeSeq
	w.notice = Notice{Text: text, Kind: kind}
	w.noticeTimer = time.AfterFunc(w.opts.MessageTTL, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.noticeSeq == seq {
			w.notice = Notice{}
			w.noticeTimer = nil
		}
	})
}

func (w *Workflow) authFailure() {
	if w.opts.OnAuthFailure != nil {
		w.opts.OnAuthFailure()
	}
}
