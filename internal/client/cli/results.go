package cli

import "context"

func (a *App) showResults(ctx context.Context) error {
	err := a.dashboard.Select(ctx, a.dashboard.View().ElectionType)
	a.printResults()
	return err
}

func (a *App) printResults() {
	printlnFn(renderResults(a.dashboard.View()))
}
