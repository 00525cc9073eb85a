package cli

import (
	"context"

	"github.com/dmitrijs2005/evote/internal/client/session"
	"github.com/dmitrijs2005/evote/internal/common"
)

// Whoami shows the signed-in voter and when the access token expires.
func (a *App) Whoami(_ context.Context) error {
	sess, ok := a.store.Current()
	if !ok || !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return common.ErrNotAuthenticated
	}

	expiry, known := session.TokenExpiry(sess.AccessToken)
	printlnFn(renderProfile(sess.User, expiry, known))
	return nil
}

// Receipts lists votes submitted from this device by the signed-in voter.
func (a *App) Receipts(ctx context.Context) error {
	sess, ok := a.store.Current()
	if !ok || !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return common.ErrNotAuthenticated
	}

	list, err := a.receipts.ListByVoter(ctx, sess.User.NationalID)
	if err != nil {
		a.logger.Error(ctx, "failed to list receipts", "error", err)
		printlnFn("Could not read local vote history.")
		return err
	}

	printlnFn(renderReceipts(list))
	return nil
}
