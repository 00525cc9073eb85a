package client

import (
	"context"

	"github.com/dmitrijs2005/evote/internal/client/models"
)

// Client is the evote backend API.
type Client interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) error
	Candidates(ctx context.Context, t models.ElectionType) ([]models.Candidate, error)
	PartyVotes(ctx context.Context, t models.ElectionType) ([]models.PartyVote, error)
	// CastVote returns the server's confirmation message.
	CastVote(ctx context.Context, candidateID int64) (string, error)
}

// TokenStore is the part of the session the HTTP client reads and updates.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	UpdateTokens(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}
