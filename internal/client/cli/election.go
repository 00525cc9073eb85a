package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/evote/internal/client/election"
	"github.com/dmitrijs2005/evote/internal/client/models"
)

func (a *App) showElection(ctx context.Context) error {
	w := a.currentWorkflow()
	t := w.View().ElectionType
	if t == "" {
		t = models.DefaultElectionType
	}

	err := w.SelectType(ctx, t)
	a.printElection()
	return err
}

func (a *App) printElection() {
	a.mu.Lock()
	remaining := a.remaining
	a.mu.Unlock()

	printlnFn(renderElection(a.currentWorkflow().View(), remaining))
}

// onElectionPage prints a hint when a list command is used elsewhere.
func (a *App) onElectionPage() bool {
	if a.currentRoute() == RouteElection {
		return true
	}
	printlnFn("Open the election page first (type 'election').")
	return false
}

// Types lists the election types, marking the one shown on the current page.
func (a *App) Types(_ context.Context) error {
	var current models.ElectionType
	switch a.currentRoute() {
	case RouteElection:
		current = a.currentWorkflow().View().ElectionType
	case RouteResults:
		current = a.dashboard.View().ElectionType
	}
	printlnFn(renderTypes(current))
	return nil
}

// SelectType switches the election or results page to the named type.
func (a *App) SelectType(ctx context.Context, name string) error {
	t, err := models.ParseElectionType(name)
	if err != nil {
		printlnFn(fmt.Sprintf("Unknown election type %q. Available: %s", name, typeList()))
		return err
	}

	switch a.currentRoute() {
	case RouteElection:
		err = a.currentWorkflow().SelectType(ctx, t)
		a.printElection()
	case RouteResults:
		err = a.dashboard.Select(ctx, t)
		a.printResults()
	default:
		printlnFn("Election types are chosen on the election and results pages.")
	}
	return err
}

func (a *App) Search(_ context.Context, query string) error {
	if !a.onElectionPage() {
		return nil
	}
	a.currentWorkflow().Search(query)
	a.printElection()
	return nil
}

func (a *App) Page(_ context.Context, arg string) error {
	if !a.onElectionPage() {
		return nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		printlnFn("Usage: page <number>")
		return err
	}
	a.currentWorkflow().SetPage(n)
	a.printElection()
	return nil
}

func (a *App) Next(_ context.Context) error {
	if !a.onElectionPage() {
		return nil
	}
	a.currentWorkflow().NextPage()
	a.printElection()
	return nil
}

func (a *App) Prev(_ context.Context) error {
	if !a.onElectionPage() {
		return nil
	}
	a.currentWorkflow().PrevPage()
	a.printElection()
	return nil
}

// Vote opens the confirmation step for the candidate with the given ID.
func (a *App) Vote(_ context.Context, arg string) error {
	if !a.onElectionPage() {
		return nil
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		printlnFn("Usage: vote <candidate id>")
		return err
	}

	w := a.currentWorkflow()
	c, err := w.RequestVote(id)
	switch {
	case errors.Is(err, election.ErrAlreadyVoted):
		printlnFn(election.NoticeAlreadyVoted)
	case errors.Is(err, election.ErrUnknownCandidate):
		printlnFn(fmt.Sprintf("No candidate with ID %d in this election.", id))
	case errors.Is(err, election.ErrNotReady):
		printlnFn("Candidates are still loading.")
	case err == nil:
		printlnFn(renderConfirmation(w.View().ElectionType, c))
	}
	return err
}

// Confirm submits the pending vote and shows the outcome.
func (a *App) Confirm(ctx context.Context) error {
	if !a.onElectionPage() {
		return nil
	}

	err := a.currentWorkflow().ConfirmVote(ctx)
	switch {
	case errors.Is(err, election.ErrNoPendingVote):
		printlnFn("Nothing to confirm. Choose a candidate with 'vote <id>'.")
		return err
	case errors.Is(err, election.ErrVoteInFlight):
		printlnFn("A vote is already being submitted.")
		return err
	case errors.Is(err, election.ErrAlreadyVoted):
		printlnFn(election.NoticeAlreadyVoted)
		return err
	}

	a.printElection()
	return err
}

func (a *App) Cancel(_ context.Context) error {
	if !a.onElectionPage() {
		return nil
	}
	if err := a.currentWorkflow().CancelVote(); err != nil {
		printlnFn("Nothing to cancel.")
		return err
	}
	printlnFn("Vote cancelled.")
	return nil
}

// Refresh reloads the election or results page.
func (a *App) Refresh(ctx context.Context) error {
	var err error
	switch a.currentRoute() {
	case RouteElection:
		err = a.currentWorkflow().Reload(ctx)
		if errors.Is(err, election.ErrReloadInFlight) {
			printlnFn("Already refreshing.")
			return err
		}
		a.printElection()
	case RouteResults:
		err = a.dashboard.Refresh(ctx)
		if errors.Is(err, election.ErrReloadInFlight) {
			printlnFn("Already refreshing.")
			return err
		}
		a.printResults()
	default:
		printlnFn("Nothing to refresh on this page.")
	}
	return err
}
