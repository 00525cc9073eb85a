// Package session owns the signed-in voter's profile and tokens.
//
// The Store is the single source of truth for "is a user logged in". It
// keeps an in-memory copy of the session and mirrors every transition
// (login, token refresh, logout) to durable storage under the fixed keys
// user, access_token and refresh_token, so the session survives restarts.
// A Store is safe for concurrent use.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/client/repositories/storage"
	"github.com/dmitrijs2005/evote/internal/common"
	"github.com/dmitrijs2005/evote/internal/dbx"
	"github.com/golang-jwt/jwt/v5"
)

// Session is the signed-in voter and their credentials.
type Session struct {
	User         models.Profile
	AccessToken  string
	RefreshToken string
}

type Store struct {
	mu      sync.RWMutex
	db      *sql.DB
	repo    func(dbx.DBTX) storage.Repository
	current *Session
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repo: newSQLiteRepository}
}

func newSQLiteRepository(db dbx.DBTX) storage.Repository {
	return storage.NewSQLiteRepository(db)
}

// Load restores the session from durable storage. Missing keys leave the
// store signed out.
func (s *Store) Load(ctx context.Context) error {
	repo := s.repo(s.db)

	rawUser, err := repo.Get(ctx, common.StorageKeyUser)
	if err != nil {
		return err
	}
	access, err := repo.Get(ctx, common.StorageKeyAccessToken)
	if err != nil {
		return err
	}
	refresh, err := repo.Get(ctx, common.StorageKeyRefreshToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rawUser == nil && access == nil && refresh == nil {
		s.current = nil
		return nil
	}

	sess := &Session{AccessToken: string(access), RefreshToken: string(refresh)}
	if len(rawUser) > 0 {
		if err := json.Unmarshal(rawUser, &sess.User); err != nil {
			return fmt.Errorf("stored user is corrupt: %w", err)
		}
	}
	s.current = sess
	return nil
}

// Save replaces the session, e.g. after login or registration.
func (s *Store) Save(ctx context.Context, sess Session) error {
	rawUser, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, common.StorageKeyUser, rawUser); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.StorageKeyAccessToken, []byte(sess.AccessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, common.StorageKeyRefreshToken, []byte(sess.RefreshToken))
	})
	if err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	return nil
}

// UpdateTokens overwrites the access token after a refresh exchange. An
// empty refresh keeps the stored refresh token (the server did not rotate it).
func (s *Store) UpdateTokens(ctx context.Context, access, refresh string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, common.StorageKeyAccessToken, []byte(access)); err != nil {
			return err
		}
		if refresh == "" {
			return nil
		}
		return repo.Set(ctx, common.StorageKeyRefreshToken, []byte(refresh))
	})
	if err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		s.current = &Session{}
	}
	s.current.AccessToken = access
	if refresh != "" {
		s.current.RefreshToken = refresh
	}
	return nil
}

// Clear removes the user and both tokens together (logout, failed refresh).
func (s *Store) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repo(tx).Delete(ctx,
			common.StorageKeyUser, common.StorageKeyAccessToken, common.StorageKeyRefreshToken)
	})

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("session clearing error: %w", err)
	}
	return nil
}

// Current returns a copy of the session, if any.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// IsAuthenticated reports whether both a user and an access token are held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.User.NationalID != "" && s.current.AccessToken != ""
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.RefreshToken
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The client cannot verify tokens; the value is informational only.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
