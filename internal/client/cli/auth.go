package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/evote/internal/client/client"
	"github.com/dmitrijs2005/evote/internal/client/forms"
	"github.com/dmitrijs2005/evote/internal/client/services"
	"github.com/dmitrijs2005/evote/internal/client/session"
	"github.com/dmitrijs2005/evote/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const NoticeUnavailable = "Server unavailable. Please try again later."

// Login prompts for national ID and password. On success the voter lands on
// the election page. The password byte slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	printlnFn("Log in to vote")

	id, err := getSimpleText(a.reader, "National ID", a.out)
	if err != nil {
		return err
	}
	pw, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	sess, err := a.authService.Login(ctx, forms.LoginForm{NationalID: id, Password: string(pw)})
	if err != nil {
		printAuthFailure(err, services.InvalidCredentialsNotice)
		return err
	}

	a.signedIn(ctx, sess)
	return a.Navigate(ctx, string(RouteElection))
}

// Register prompts for every registration field in form order, creates the
// account and signs the new voter in.
func (a *App) Register(ctx context.Context) error {
	printlnFn("Create a voter account")

	var form forms.RegistrationForm
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"National ID", &form.NationalID},
		{"First name", &form.FirstName},
		{"Last name", &form.LastName},
		{"Date of birth (YYYY-MM-DD)", &form.DateOfBirth},
		{"State", &form.State},
		{"LGA", &form.LGA},
		{"VIN (17 characters)", &form.VIN},
		{"Profile picture (path to an image file)", &form.PhotoPath},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	pw, err := getPassword(a.reader, "Password (at least 6 characters)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	form.Password = string(pw)

	sess, err := a.authService.Register(ctx, form)
	if err != nil {
		printAuthFailure(err, services.RegistrationFailedNotice)
		return err
	}

	printlnFn("Registration successful!")
	a.signedIn(ctx, sess)
	return a.Navigate(ctx, string(RouteElection))
}

func (a *App) signedIn(ctx context.Context, sess *session.Session) {
	a.resetWorkflow()
	printlnFn(fmt.Sprintf("Welcome, %s!", sess.User.FullName()))
	a.logger.Debug(ctx, "session started", "national_id", sess.User.NationalID)
}

// Logout clears the session and returns to the home page.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return common.ErrNotAuthenticated
	}

	if err := a.authService.Logout(ctx); err != nil {
		a.logger.Warn(ctx, "stored session not cleared", "error", err)
	}
	a.resetWorkflow()

	printlnFn("Logged out.")
	return a.Navigate(ctx, string(RouteHome))
}

// printAuthFailure shows the first validation message and lists every
// offending field, or a single notice for backend failures.
func printAuthFailure(err error, fallback string) {
	var ve *forms.ValidationError
	switch {
	case errors.As(err, &ve):
		printlnFn(ve.First())
		if len(ve.Fields) > 1 {
			names := make([]string, 0, len(ve.Fields))
			for name := range ve.Map() {
				names = append(names, name)
			}
			sort.Strings(names)
			printlnFn("Check:", strings.Join(names, ", "))
		}
	case errors.Is(err, common.ErrInvalidCredentials):
		printlnFn(services.InvalidCredentialsNotice)
	case errors.Is(err, client.ErrUnavailable):
		printlnFn(NoticeUnavailable)
	default:
		printlnFn(services.FailureMessage(err, fallback))
	}
}
