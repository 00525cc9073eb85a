// Package receipts keeps a local history of votes submitted from this client.
package receipts

import (
	"context"

	"github.com/dmitrijs2005/evote/internal/client/models"
)

type Repository interface {
	Insert(ctx context.Context, r *models.Receipt) error
	ListByVoter(ctx context.Context, nationalID string) ([]models.Receipt, error)
}
