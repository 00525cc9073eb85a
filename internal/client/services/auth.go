// Package services contains application services for the evote client.
// This file defines the authentication service: login, registration followed
// by an immediate login, and logout, all of which drive the session store.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/evote/internal/client/client"
	"github.com/dmitrijs2005/evote/internal/client/forms"
	"github.com/dmitrijs2005/evote/internal/client/session"
	"github.com/dmitrijs2005/evote/internal/common"
	"github.com/dmitrijs2005/evote/internal/filex"
	"github.com/dmitrijs2005/evote/internal/logging"
	"github.com/dustin/go-humanize"
)

const (
	InvalidCredentialsNotice = "Invalid National ID or password"
	RegistrationFailedNotice = "Registration failed."
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: validate, authenticate against the server, persist the session.
//   - Register: validate, create the account, then log in as Login does.
//   - Logout: clear the persisted session.
//   - Current: the signed-in session, if any.
//
// Validation failures are *forms.ValidationError and never reach the network.
type AuthService interface {
	Login(ctx context.Context, form forms.LoginForm) (*session.Session, error)
	Register(ctx context.Context, form forms.RegistrationForm) (*session.Session, error)
	Logout(ctx context.Context) error
	Current() (session.Session, bool)
}

type authService struct {
	client client.Client
	store  *session.Store
	logger logging.Logger
}

func NewAuthService(client client.Client, store *session.Store, logger logging.Logger) AuthService {
	return &authService{client: client, store: store, logger: logging.OrNop(logger)}
}

// Login maps any 400/401 answer to common.ErrInvalidCredentials so the
// caller cannot tell which field was wrong.
func (a *authService) Login(ctx context.Context, form forms.LoginForm) (*session.Session, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	sess, err := a.login(ctx, form)
	if err != nil {
		return nil, err
	}

	a.logger.Info(ctx, "logged in", "national_id", sess.User.NationalID)
	return sess, nil
}

func (a *authService) login(ctx context.Context, form forms.LoginForm) (*session.Session, error) {
	res, err := a.client.Login(ctx, form.Credentials())
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized) {
			return nil, fmt.Errorf("login error: %w", common.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("login error: %w", err)
	}

	sess := session.Session{User: res.User, AccessToken: res.Access, RefreshToken: res.Refresh}
	if err := a.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Register reads the profile photo, creates the account and logs in with the
// same credentials.
func (a *authService) Register(ctx context.Context, form forms.RegistrationForm) (*session.Session, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	photo, err := filex.ReadPhoto(form.PhotoPath)
	if err != nil {
		if errors.Is(err, filex.ErrNotImage) || errors.Is(err, filex.ErrPhotoTooLarge) {
			return nil, &forms.ValidationError{Fields: []forms.FieldError{
				{Field: "profile_pic", Message: photoMessage(err)},
			}}
		}
		return nil, fmt.Errorf("read photo: %w", err)
	}

	if err := a.client.Register(ctx, form.Registration(photo)); err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}

	a.logger.Info(ctx, "registered", "national_id", form.NationalID)

	sess, err := a.login(ctx, forms.LoginForm{NationalID: form.NationalID, Password: form.Password})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	a.logger.Info(ctx, "logged out")
	return nil
}

func (a *authService) Current() (session.Session, bool) {
	return a.store.Current()
}

// FailureMessage is the backend's own message carried by err, or fallback.
func FailureMessage(err error, fallback string) string {
	if msg := client.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}

func photoMessage(err error) string {
	if errors.Is(err, filex.ErrPhotoTooLarge) {
		return fmt.Sprintf("Profile picture must be at most %s.", humanize.IBytes(filex.MaxPhotoSize))
	}
	return "Profile picture must be an image."
}
